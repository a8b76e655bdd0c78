package pipeline

import "stillwriter/internal/screenplay"

// State carries the intermediate products of one generation run. It is owned
// by exactly one run: stages receive it by value and return the next version,
// so there is never a second writer.
type State struct {
	// Image is the canonical JPEG the run operates on.
	Image []byte

	// Genre constrains drafting when set before the run; STRUCTURING
	// overwrites it with the genre the model settled on.
	Genre string

	// Analysis is the still analysis produced by ANALYZING.
	Analysis string

	// SceneText is the screenplay prose produced by DRAFTING.
	SceneText string

	// Structured is the validated scene produced by STRUCTURING.
	Structured *screenplay.Scene

	// ModelsUsed lists the distinct model ids invoked, in first-use order.
	ModelsUsed []string
}

// recordModel adds a model id to ModelsUsed unless already present.
func (s State) recordModel(model string) State {
	for _, m := range s.ModelsUsed {
		if m == model {
			return s
		}
	}
	s.ModelsUsed = append(s.ModelsUsed, model)
	return s
}
