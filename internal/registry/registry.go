// Package registry owns dedup policy and persistence for uploaded images.
// Uploads are addressed by the SHA-256 digest of their original bytes: the
// first sight of a digest canonicalizes and stores the image, every later
// upload of the same bytes resolves to the stored asset without re-deriving
// anything. Only exact re-uploads dedupe; a re-encoded copy of the same
// photo hashes differently and is a distinct asset.
package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"stillwriter/internal/apperr"
	"stillwriter/internal/blob"
	"stillwriter/internal/canonical"
	"stillwriter/internal/metrics"
	"stillwriter/internal/store"
)

// Registry maps content digests to stored canonical images.
type Registry struct {
	canon  *canonical.Canonicalizer
	images store.ImageStore
	blobs  blob.Store

	// ingests collapses concurrent identical uploads so the canonicalization
	// runs at most once per digest per process. Cross-process races are
	// settled by the store's conditional create.
	ingests singleflight.Group
}

// New creates a Registry over the given canonicalizer and stores.
func New(canon *canonical.Canonicalizer, images store.ImageStore, blobs blob.Store) *Registry {
	return &Registry{canon: canon, images: images, blobs: blobs}
}

// ingestResult carries an Ingest outcome through singleflight.
type ingestResult struct {
	assetID   string
	canonical []byte
}

// Ingest resolves original upload bytes to a stored canonical image,
// creating it on first sight of the digest. It returns the asset id and the
// canonical JPEG bytes.
func (r *Registry) Ingest(ctx context.Context, original []byte, contentType string) (string, []byte, error) {
	sum := sha256.Sum256(original)
	digest := hex.EncodeToString(sum[:])

	v, err, shared := r.ingests.Do(digest, func() (any, error) {
		return r.ingest(ctx, digest, original, contentType)
	})
	if err != nil {
		return "", nil, err
	}
	if shared {
		log.Debug().Str("digest", digest).Msg("Concurrent identical upload collapsed")
	}
	res := v.(*ingestResult)
	return res.assetID, res.canonical, nil
}

func (r *Registry) ingest(ctx context.Context, digest string, original []byte, contentType string) (*ingestResult, error) {
	existing, err := r.images.FindByDigest(ctx, digest)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return r.fetchExisting(ctx, existing)
	}

	data, width, height, err := r.canon.Canonicalize(original)
	if err != nil {
		return nil, err
	}

	rec := store.ImageRecord{
		AssetID:     uuid.NewString(),
		Digest:      digest,
		ContentType: contentType,
		Width:       width,
		Height:      height,
		CreatedAt:   time.Now().UTC(),
	}

	adopted, created, err := r.images.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !created {
		// Another process won the digest; use its blob and discard ours.
		return r.fetchExisting(ctx, &adopted)
	}

	if err := r.blobs.Put(ctx, rec.AssetID, data, canonical.ContentType); err != nil {
		return nil, err
	}

	log.Info().
		Str("asset_id", rec.AssetID).
		Str("digest", digest).
		Int("width", width).
		Int("height", height).
		Msg("Stored new canonical image")

	return &ingestResult{assetID: rec.AssetID, canonical: data}, nil
}

// fetchExisting returns the already-stored canonical bytes for a record.
func (r *Registry) fetchExisting(ctx context.Context, rec *store.ImageRecord) (*ingestResult, error) {
	data, err := r.blobs.Get(ctx, rec.AssetID)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			// Metadata without a blob means a half-finished ingest crashed
			// between the record create and the blob write.
			return nil, fmt.Errorf("%w: asset %s has metadata but no blob", apperr.ErrStorage, rec.AssetID)
		}
		return nil, err
	}
	metrics.CountDedupHit()
	log.Debug().Str("asset_id", rec.AssetID).Str("digest", rec.Digest).Msg("Upload deduplicated against stored image")
	return &ingestResult{assetID: rec.AssetID, canonical: data}, nil
}
