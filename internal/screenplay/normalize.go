package screenplay

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"stillwriter/internal/apperr"
)

// wrappingParens strips a single layer of optional wrapping parentheses from
// a whole string: "(Excitedly)" -> "Excitedly", "A door creaks" unchanged.
var wrappingParens = regexp.MustCompile(`^\(?(.*?)\)?$`)

// Normalize parses a raw structured-output payload into a Scene and applies
// the text-field cleanup pass. It fails with a schema validation error when
// the payload is not valid JSON, misses a required field, or contains an
// unknown element discriminator. Element order is preserved exactly.
func Normalize(raw []byte) (*Scene, error) {
	var scene Scene
	if err := json.Unmarshal(raw, &scene); err != nil {
		if errors.Is(err, apperr.ErrSchemaValidation) {
			// Element dispatch already tagged the kind.
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrSchemaValidation, err)
	}

	if scene.Genre == "" {
		return nil, fmt.Errorf("%w: missing required field genre", apperr.ErrSchemaValidation)
	}
	if scene.SceneHeading == "" {
		return nil, fmt.Errorf("%w: missing required field scene_heading", apperr.ErrSchemaValidation)
	}
	if scene.Elements == nil {
		scene.Elements = Elements{}
	}

	for i, elem := range scene.Elements {
		switch e := elem.(type) {
		case Dialogue:
			e.Manner = stripParens(e.Manner)
			if strings.TrimSpace(e.Manner) == "" {
				e.Manner = ""
			}
			scene.Elements[i] = e
		case Sound:
			e.Description = stripParens(e.Description)
			scene.Elements[i] = e
		}
	}

	return &scene, nil
}

// stripParens removes one layer of wrapping parentheses from the trimmed
// string, if present.
func stripParens(s string) string {
	return wrappingParens.ReplaceAllString(strings.TrimSpace(s), "$1")
}
