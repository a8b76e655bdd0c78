package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"stillwriter/internal/apperr"
)

// Gemini implements Service against the Gemini API.
type Gemini struct {
	client *genai.Client
}

// Compile-time interface check.
var _ Service = (*Gemini)(nil)

// NewGemini creates a Gemini-backed Service using the given API key.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// Invoke sends the request to Gemini and returns the response text. Transport
// failures and empty responses surface as model service errors.
func (g *Gemini) Invoke(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema
	}

	var parts []*genai.Part
	if len(req.Image) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.ImageMIME,
				Data:     req.Image,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Prompt})

	log.Debug().
		Str("model", req.Model).
		Bool("has_image", len(req.Image) > 0).
		Bool("has_schema", req.Schema != nil).
		Int("prompt_length", len(req.Prompt)).
		Msg("Starting Gemini API call")

	callStart := time.Now()
	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, config)
	duration := time.Since(callStart)

	if err != nil {
		log.Error().Err(err).Str("model", req.Model).Dur("duration", duration).Msg("Gemini call failed")
		return "", fmt.Errorf("%w: %v", apperr.ErrModelService, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty response", apperr.ErrModelService)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: response contains no text", apperr.ErrModelService)
	}

	log.Debug().
		Str("model", req.Model).
		Int("response_length", len(text)).
		Dur("duration", duration).
		Msg("Gemini API response received")

	return text, nil
}
