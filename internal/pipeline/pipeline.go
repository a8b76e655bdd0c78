// Package pipeline runs the fixed three-stage generation workflow that turns
// a canonical image into a structured screenplay scene. The topology never
// varies — ANALYZING, then DRAFTING, then STRUCTURING — so the stages are a
// static slice of functions threading State, not a runtime-built graph. The
// first failing stage ends the run; retries are the caller's business.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"stillwriter/internal/apperr"
	"stillwriter/internal/assets"
	"stillwriter/internal/canonical"
	"stillwriter/internal/chat"
	"stillwriter/internal/jsonutil"
	"stillwriter/internal/metrics"
	"stillwriter/internal/screenplay"
)

// Sampling temperatures: creative prose wants variety, structuring wants
// near-determinism.
const (
	creativeTemperature   = 0.7
	structuredTemperature = 0.1
)

// Models names the model ids the orchestrator invokes per stage.
type Models struct {
	// Creative handles ANALYZING and DRAFTING.
	Creative string

	// Structured handles STRUCTURING; typically a cheaper, faster tier.
	Structured string
}

// Orchestrator executes the generation workflow against a model service.
type Orchestrator struct {
	svc    chat.Service
	models Models
}

// New creates an Orchestrator calling svc with the given models.
func New(svc chat.Service, models Models) *Orchestrator {
	return &Orchestrator{svc: svc, models: models}
}

type stage struct {
	name string
	fn   func(context.Context, State) (State, error)
}

// Run executes the full workflow over the canonical image and returns the
// terminal state. genre, when non-empty, constrains drafting; a first-pass
// generation passes "". On error the partially-filled state is returned
// alongside it for logging, but must not be persisted.
func (o *Orchestrator) Run(ctx context.Context, image []byte, genre string) (State, error) {
	state := State{Image: image, Genre: genre}

	stages := []stage{
		{"analyzing", o.analyze},
		{"drafting", o.draft},
		{"structuring", o.structure},
	}

	for _, st := range stages {
		start := time.Now()
		next, err := st.fn(ctx, state)
		metrics.ObserveStage(st.name, time.Since(start))
		if err != nil {
			log.Error().Err(err).Str("stage", st.name).Msg("Pipeline stage failed")
			return state, fmt.Errorf("stage %s: %w", st.name, err)
		}
		state = next
		log.Debug().Str("stage", st.name).Dur("duration", time.Since(start)).Msg("Pipeline stage complete")
	}

	log.Info().
		Str("genre", state.Genre).
		Int("elements", len(state.Structured.Elements)).
		Strs("models", state.ModelsUsed).
		Msg("Generation pipeline complete")

	return state, nil
}

// analyze reads the still for genre, mood, and story hooks.
func (o *Orchestrator) analyze(ctx context.Context, state State) (State, error) {
	state = state.recordModel(o.models.Creative)

	text, err := o.svc.Invoke(ctx, chat.Request{
		Model:       o.models.Creative,
		Image:       state.Image,
		ImageMIME:   canonical.ContentType,
		Prompt:      assets.AnalyzeStillPrompt,
		System:      assets.ScreenwriterSystemPrompt,
		Temperature: creativeTemperature,
	})
	if err != nil {
		return state, err
	}

	state.Analysis = text
	return state, nil
}

// draft writes the screenplay prose for the still, informed by the analysis.
func (o *Orchestrator) draft(ctx context.Context, state State) (State, error) {
	state = state.recordModel(o.models.Creative)

	prompt := assets.RenderScenePrompt(assets.ScenePromptData{
		Genre:    state.Genre,
		Analysis: state.Analysis,
	})

	text, err := o.svc.Invoke(ctx, chat.Request{
		Model:       o.models.Creative,
		Image:       state.Image,
		ImageMIME:   canonical.ContentType,
		Prompt:      prompt,
		System:      assets.ScreenwriterSystemPrompt,
		Temperature: creativeTemperature,
	})
	if err != nil {
		return state, err
	}

	state.SceneText = text
	return state, nil
}

// structure converts the prose into the validated scene representation.
func (o *Orchestrator) structure(ctx context.Context, state State) (State, error) {
	state = state.recordModel(o.models.Structured)

	text, err := o.svc.Invoke(ctx, chat.Request{
		Model:       o.models.Structured,
		Prompt:      assets.RenderStructurePrompt(state.SceneText),
		Temperature: structuredTemperature,
		Schema:      screenplay.ResponseSchema(),
	})
	if err != nil {
		return state, err
	}

	payload, err := jsonutil.Payload(text)
	if err != nil {
		return state, fmt.Errorf("%w: %v", apperr.ErrSchemaValidation, err)
	}

	scene, err := screenplay.Normalize(payload)
	if err != nil {
		return state, err
	}

	state.Genre = scene.Genre
	state.Structured = scene
	return state, nil
}
