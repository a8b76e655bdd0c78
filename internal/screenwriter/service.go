// Package screenwriter exposes the single operation this system exists for:
// turn an uploaded photograph into a stored, structured screenplay scene.
// It glues the registry (dedup + canonical image) to the generation pipeline
// and persists the combined result.
package screenwriter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stillwriter/internal/apperr"
	"stillwriter/internal/canonical"
	"stillwriter/internal/metrics"
	"stillwriter/internal/pipeline"
	"stillwriter/internal/registry"
	"stillwriter/internal/screenplay"
	"stillwriter/internal/store"
)

// Result is the outcome of one successful generation.
type Result struct {
	ScreenplayID string            `json:"screenplay_id"`
	AssetID      string            `json:"asset_id"`
	Analysis     string            `json:"analysis"`
	SceneText    string            `json:"scene_text"`
	Genre        string            `json:"genre"`
	Structured   *screenplay.Scene `json:"structured_scene"`
	ModelsUsed   []string          `json:"models_used"`
}

// Service runs the photo-to-screenplay operation.
type Service struct {
	registry    *registry.Registry
	pipeline    *pipeline.Orchestrator
	screenplays store.ScreenplayStore
}

// New creates a Service over the given collaborators.
func New(reg *registry.Registry, orch *pipeline.Orchestrator, screenplays store.ScreenplayStore) *Service {
	return &Service{registry: reg, pipeline: orch, screenplays: screenplays}
}

// Generate ingests the upload and runs the generation pipeline over its
// canonical image, then persists and returns the result. genre optionally
// constrains the scene; pass "" to let the model choose.
//
// The content-type gate runs before any hashing, storage, or model work, so
// a rejected upload has zero side effects. A canonical image persisted by
// the registry is not rolled back when the pipeline later fails: the image
// remains addressable by digest, so a retried upload dedupes straight past
// canonicalization.
func (s *Service) Generate(ctx context.Context, original []byte, contentType, genre string) (*Result, error) {
	result, err := s.generate(ctx, original, contentType, genre)
	if err != nil {
		metrics.CountGeneration(apperr.Kind(err))
		return nil, err
	}
	metrics.CountGeneration("ok")
	return result, nil
}

func (s *Service) generate(ctx context.Context, original []byte, contentType, genre string) (*Result, error) {
	if !canonical.AllowedContentType(contentType) {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidContentType, contentType)
	}

	assetID, canonicalBytes, err := s.registry.Ingest(ctx, original, contentType)
	if err != nil {
		return nil, err
	}

	state, err := s.pipeline.Run(ctx, canonicalBytes, genre)
	if err != nil {
		return nil, err
	}

	rec := store.ScreenplayRecord{
		ID:         uuid.NewString(),
		AssetID:    assetID,
		Genre:      state.Genre,
		Analysis:   state.Analysis,
		SceneText:  state.SceneText,
		Structured: state.Structured,
		ModelsUsed: state.ModelsUsed,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.screenplays.Put(ctx, rec); err != nil {
		return nil, err
	}

	log.Info().
		Str("screenplay_id", rec.ID).
		Str("asset_id", assetID).
		Str("genre", rec.Genre).
		Msg("Screenplay generated and stored")

	return &Result{
		ScreenplayID: rec.ID,
		AssetID:      assetID,
		Analysis:     state.Analysis,
		SceneText:    state.SceneText,
		Genre:        state.Genre,
		Structured:   state.Structured,
		ModelsUsed:   state.ModelsUsed,
	}, nil
}
