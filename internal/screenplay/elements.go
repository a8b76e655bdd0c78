// Package screenplay defines the typed scene representation produced by the
// generation pipeline: a genre-tagged scene heading plus an ordered sequence
// of scene elements. Elements form a closed tagged union discriminated by a
// "type" field on the wire; unknown discriminators are rejected rather than
// coerced or dropped.
package screenplay

import (
	"encoding/json"
	"fmt"

	"stillwriter/internal/apperr"
)

// Wire discriminator values for the element union.
const (
	TypeDialogue    = "dialogue"
	TypeVisual      = "visual"
	TypeSound       = "sound"
	TypeSceneEnding = "scene_ending"
)

// Element is one entry in a scene. Exactly four concrete types implement it:
// Dialogue, Visual, Sound, and SceneEnding.
type Element interface {
	// ElementType returns the wire discriminator for this element.
	ElementType() string

	sealed()
}

// Dialogue is a line spoken by a character, optionally with a delivery manner.
type Dialogue struct {
	Character string `json:"character"`
	Line      string `json:"line"`
	// Manner describes the delivery ("Excitedly", "Quietly"). Empty means absent.
	Manner string `json:"manner,omitempty"`
}

// Visual describes anything visually perceived by the audience.
type Visual struct {
	Description string `json:"visual"`
}

// Sound specifies a sound effect or ambient sound.
type Sound struct {
	Description string `json:"sound"`
}

// SceneEnding is the scene's closing transition (e.g. "FADE TO BLACK").
type SceneEnding struct {
	Transition string `json:"transition"`
}

func (Dialogue) ElementType() string    { return TypeDialogue }
func (Visual) ElementType() string      { return TypeVisual }
func (Sound) ElementType() string       { return TypeSound }
func (SceneEnding) ElementType() string { return TypeSceneEnding }

func (Dialogue) sealed()    {}
func (Visual) sealed()      {}
func (Sound) sealed()       {}
func (SceneEnding) sealed() {}

// Elements is an ordered element sequence. Order is significant and preserved
// exactly through decode and encode.
type Elements []Element

// Scene is the validated, typed representation of a screenplay scene.
type Scene struct {
	Genre        string   `json:"genre"`
	SceneHeading string   `json:"scene_heading"`
	Elements     Elements `json:"elements"`
}

// UnmarshalJSON decodes the element array, dispatching each entry on its
// "type" discriminator. An unrecognized discriminator fails the whole decode.
func (es *Elements) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: elements: %v", apperr.ErrSchemaValidation, err)
	}

	out := make(Elements, 0, len(raw))
	for i, msg := range raw {
		elem, err := decodeElement(msg)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, elem)
	}
	*es = out
	return nil
}

func decodeElement(msg json.RawMessage) (Element, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &tag); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrSchemaValidation, err)
	}

	switch tag.Type {
	case TypeDialogue:
		var d Dialogue
		if err := json.Unmarshal(msg, &d); err != nil {
			return nil, fmt.Errorf("%w: dialogue: %v", apperr.ErrSchemaValidation, err)
		}
		return d, nil
	case TypeVisual:
		var v Visual
		if err := json.Unmarshal(msg, &v); err != nil {
			return nil, fmt.Errorf("%w: visual: %v", apperr.ErrSchemaValidation, err)
		}
		return v, nil
	case TypeSound:
		var s Sound
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, fmt.Errorf("%w: sound: %v", apperr.ErrSchemaValidation, err)
		}
		return s, nil
	case TypeSceneEnding:
		var e SceneEnding
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, fmt.Errorf("%w: scene_ending: %v", apperr.ErrSchemaValidation, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: unknown element type %q", apperr.ErrSchemaValidation, tag.Type)
	}
}

// MarshalJSON encodes each element with its discriminator restored, keeping
// the stored form identical to the wire contract.
func (es Elements) MarshalJSON() ([]byte, error) {
	out := make([]map[string]any, 0, len(es))
	for _, e := range es {
		body, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		m := map[string]any{}
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, err
		}
		m["type"] = e.ElementType()
		out = append(out, m)
	}
	return json.Marshal(out)
}
