package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stillwriter/internal/apperr"
	"stillwriter/internal/chat"
)

const structuredResponse = `{
	"genre": "thriller",
	"scene_heading": "EXT. ROOFTOP - NIGHT",
	"elements": [
		{"type": "visual", "visual": "City lights below."},
		{"type": "scene_ending", "transition": "CUT TO:"}
	]
}`

// fakeService scripts one response per call and records every request.
type fakeService struct {
	responses []string
	errs      []error
	calls     []chat.Request
}

var _ chat.Service = (*fakeService)(nil)

func (f *fakeService) Invoke(_ context.Context, req chat.Request) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i >= len(f.responses) {
		return "", errors.New("unexpected extra call")
	}
	return f.responses[i], nil
}

func testModels() Models {
	return Models{Creative: "creative-model", Structured: "structured-model"}
}

func TestRunExecutesStagesInOrder(t *testing.T) {
	svc := &fakeService{responses: []string{"an analysis", "scene prose", structuredResponse}}
	orch := New(svc, testModels())

	state, err := orch.Run(context.Background(), []byte("jpeg-bytes"), "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(svc.calls) != 3 {
		t.Fatalf("model calls = %d, want 3", len(svc.calls))
	}

	if state.Analysis != "an analysis" {
		t.Errorf("Analysis = %q, want %q", state.Analysis, "an analysis")
	}
	if state.SceneText != "scene prose" {
		t.Errorf("SceneText = %q, want %q", state.SceneText, "scene prose")
	}
	if state.Structured == nil {
		t.Fatal("Structured = nil")
	}
	if state.Structured.SceneHeading != "EXT. ROOFTOP - NIGHT" {
		t.Errorf("SceneHeading = %q", state.Structured.SceneHeading)
	}
	if len(state.Structured.Elements) != 2 {
		t.Errorf("len(Elements) = %d, want 2", len(state.Structured.Elements))
	}

	// The first two calls are creative and carry the image; the last is the
	// structured call with a response schema and no image.
	for i := 0; i < 2; i++ {
		if svc.calls[i].Model != "creative-model" {
			t.Errorf("call %d model = %q, want creative-model", i, svc.calls[i].Model)
		}
		if len(svc.calls[i].Image) == 0 {
			t.Errorf("call %d missing image", i)
		}
		if svc.calls[i].Schema != nil {
			t.Errorf("call %d has schema, want none", i)
		}
	}
	last := svc.calls[2]
	if last.Model != "structured-model" {
		t.Errorf("structuring model = %q, want structured-model", last.Model)
	}
	if last.Schema == nil {
		t.Error("structuring call missing response schema")
	}
	if len(last.Image) != 0 {
		t.Error("structuring call carries image, want text only")
	}
	if last.Temperature != structuredTemperature {
		t.Errorf("structuring temperature = %v, want %v", last.Temperature, structuredTemperature)
	}
	if !strings.Contains(last.Prompt, "scene prose") {
		t.Error("structuring prompt does not embed the drafted scene")
	}
}

func TestRunRecordsDistinctModels(t *testing.T) {
	svc := &fakeService{responses: []string{"a", "b", structuredResponse}}
	orch := New(svc, testModels())

	state, err := orch.Run(context.Background(), []byte("img"), "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"creative-model", "structured-model"}
	if len(state.ModelsUsed) != len(want) {
		t.Fatalf("ModelsUsed = %v, want %v", state.ModelsUsed, want)
	}
	for i := range want {
		if state.ModelsUsed[i] != want[i] {
			t.Errorf("ModelsUsed[%d] = %q, want %q", i, state.ModelsUsed[i], want[i])
		}
	}
}

func TestRunThreadsGenre(t *testing.T) {
	svc := &fakeService{responses: []string{"a", "b", structuredResponse}}
	orch := New(svc, testModels())

	state, err := orch.Run(context.Background(), []byte("img"), "western")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.Contains(svc.calls[1].Prompt, "western") {
		t.Error("drafting prompt does not carry the requested genre")
	}
	// The structured output's genre wins over the request genre.
	if state.Genre != "thriller" {
		t.Errorf("final Genre = %q, want model's %q", state.Genre, "thriller")
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("model unavailable")
	svc := &fakeService{errs: []error{boom}}
	orch := New(svc, testModels())

	_, err := orch.Run(context.Background(), []byte("img"), "")
	if err == nil {
		t.Fatal("Run() error = nil, want stage failure")
	}
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want wrapped %v", err, boom)
	}
	if len(svc.calls) != 1 {
		t.Errorf("model calls after first failure = %d, want 1", len(svc.calls))
	}
}

func TestRunRejectsMalformedStructuredOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"Not JSON", "I couldn't structure that scene."},
		{"Missing required field", `{"elements": []}`},
		{"Unknown element type", `{"genre": "g", "scene_heading": "h", "elements": [{"type": "montage"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{responses: []string{"a", "b", tt.response}}
			orch := New(svc, testModels())

			_, err := orch.Run(context.Background(), []byte("img"), "")
			if err == nil {
				t.Fatal("Run() error = nil, want schema validation error")
			}
			if !errors.Is(err, apperr.ErrSchemaValidation) {
				t.Errorf("Run() error = %v, want ErrSchemaValidation", err)
			}
		})
	}
}

func TestRunFencedStructuredOutput(t *testing.T) {
	fenced := "```json\n" + structuredResponse + "\n```"
	svc := &fakeService{responses: []string{"a", "b", fenced}}
	orch := New(svc, testModels())

	state, err := orch.Run(context.Background(), []byte("img"), "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.Structured == nil || state.Structured.Genre != "thriller" {
		t.Errorf("Structured = %+v, want thriller scene", state.Structured)
	}
}
