// Package chat is the boundary to the generative model service. The pipeline
// talks to the Service interface only; the Gemini-backed implementation lives
// in gemini.go and fakes live next to the tests that need them.
package chat

import (
	"context"

	"google.golang.org/genai"
)

// Request describes one model invocation: at most one inline image part plus
// one text part, an optional system instruction, a sampling temperature, and
// an optional response schema. When Schema is set the service returns JSON
// conforming to it (service-side contract).
type Request struct {
	// Model is the model id to invoke.
	Model string

	// Image is optional inline image data; ImageMIME must be set with it.
	Image     []byte
	ImageMIME string

	// Prompt is the user text part.
	Prompt string

	// System is the optional system-level instruction.
	System string

	// Temperature is the sampling temperature.
	Temperature float32

	// Schema, when non-nil, constrains the response to JSON of this shape.
	Schema *genai.Schema
}

// Service invokes the generative model and returns the response text.
type Service interface {
	Invoke(ctx context.Context, req Request) (string, error)
}
