package screenplay

import (
	"errors"
	"testing"

	"stillwriter/internal/apperr"
)

const validScene = `{
	"genre": "film noir",
	"scene_heading": "INT. DINER - NIGHT",
	"elements": [
		{"type": "visual", "visual": "Rain streaks the window."},
		{"type": "sound", "sound": "(A jukebox hums)"},
		{"type": "dialogue", "character": "MARLOWE", "line": "Coffee. Black.", "manner": "(Wearily)"},
		{"type": "scene_ending", "transition": "CUT TO:"}
	]
}`

func TestNormalizeValidScene(t *testing.T) {
	scene, err := Normalize([]byte(validScene))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if scene.Genre != "film noir" {
		t.Errorf("Genre = %q, want %q", scene.Genre, "film noir")
	}
	if scene.SceneHeading != "INT. DINER - NIGHT" {
		t.Errorf("SceneHeading = %q, want %q", scene.SceneHeading, "INT. DINER - NIGHT")
	}
	if len(scene.Elements) != 4 {
		t.Fatalf("len(Elements) = %d, want 4", len(scene.Elements))
	}

	// Order is preserved exactly.
	wantTypes := []string{TypeVisual, TypeSound, TypeDialogue, TypeSceneEnding}
	for i, want := range wantTypes {
		if got := scene.Elements[i].ElementType(); got != want {
			t.Errorf("Elements[%d].ElementType() = %q, want %q", i, got, want)
		}
	}

	sound := scene.Elements[1].(Sound)
	if sound.Description != "A jukebox hums" {
		t.Errorf("Sound.Description = %q, want parens stripped", sound.Description)
	}

	dialogue := scene.Elements[2].(Dialogue)
	if dialogue.Manner != "Wearily" {
		t.Errorf("Dialogue.Manner = %q, want %q", dialogue.Manner, "Wearily")
	}
}

func TestNormalizeManner(t *testing.T) {
	tests := []struct {
		name   string
		manner string
		want   string
	}{
		{"Wrapped in parens", "(Excitedly)", "Excitedly"},
		{"Bare", "Excitedly", "Excitedly"},
		{"Padded and wrapped", "  (Quietly)  ", "Quietly"},
		{"Empty parens", "()", ""},
		{"Whitespace only", "   ", ""},
		{"Empty", "", ""},
		{"Inner parens kept", "(half (joking))", "half (joking)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{
				"genre": "drama",
				"scene_heading": "INT. ROOM - DAY",
				"elements": [{"type": "dialogue", "character": "A", "line": "Hi.", "manner": ` + quote(tt.manner) + `}]
			}`
			scene, err := Normalize([]byte(raw))
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			d := scene.Elements[0].(Dialogue)
			if d.Manner != tt.want {
				t.Errorf("Manner = %q, want %q", d.Manner, tt.want)
			}
		})
	}
}

func quote(s string) string {
	return `"` + s + `"`
}

func TestNormalizeMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Missing genre", `{"scene_heading": "INT. ROOM - DAY", "elements": []}`},
		{"Missing scene heading", `{"genre": "drama", "elements": []}`},
		{"Empty genre", `{"genre": "", "scene_heading": "INT. ROOM - DAY", "elements": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.raw))
			if err == nil {
				t.Fatal("Normalize() error = nil, want validation error")
			}
			if !errors.Is(err, apperr.ErrSchemaValidation) {
				t.Errorf("Normalize() error = %v, want ErrSchemaValidation", err)
			}
		})
	}
}

func TestNormalizeUnknownElementType(t *testing.T) {
	raw := `{
		"genre": "drama",
		"scene_heading": "INT. ROOM - DAY",
		"elements": [{"type": "montage", "visual": "A training sequence."}]
	}`
	_, err := Normalize([]byte(raw))
	if err == nil {
		t.Fatal("Normalize() error = nil, want validation error")
	}
	if !errors.Is(err, apperr.ErrSchemaValidation) {
		t.Errorf("Normalize() error = %v, want ErrSchemaValidation", err)
	}
}

func TestNormalizeInvalidJSON(t *testing.T) {
	_, err := Normalize([]byte("this is prose, not JSON"))
	if err == nil {
		t.Fatal("Normalize() error = nil, want validation error")
	}
	if !errors.Is(err, apperr.ErrSchemaValidation) {
		t.Errorf("Normalize() error = %v, want ErrSchemaValidation", err)
	}
}

func TestNormalizeMissingElements(t *testing.T) {
	scene, err := Normalize([]byte(`{"genre": "drama", "scene_heading": "INT. ROOM - DAY"}`))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if scene.Elements == nil {
		t.Error("Elements = nil, want empty slice")
	}
	if len(scene.Elements) != 0 {
		t.Errorf("len(Elements) = %d, want 0", len(scene.Elements))
	}
}
