// Package store provides persistent metadata storage for canonical images
// and generated screenplays.
//
// The DynamoDB implementation uses a single-table design. Image records are
// keyed by content digest (IMAGE#{digest} / META) so that "create exactly one
// record per digest" is a conditional write, with a mirror item keyed by
// asset id (ASSET#{assetId} / META) for reads. Screenplay records live under
// SCREENPLAY#{id} / META and carry GSI attributes for the newest-first
// gallery listing. An in-memory implementation backs tests and the CLI.
package store

import (
	"context"
	"time"

	"stillwriter/internal/screenplay"
)

// GalleryPageSize is the default page size for screenplay listings.
const GalleryPageSize = 12

// ImageRecord is the metadata for one stored canonical image. Created once
// per distinct digest and immutable thereafter.
type ImageRecord struct {
	AssetID     string    `dynamodbav:"assetId" json:"asset_id"`
	Digest      string    `dynamodbav:"digest" json:"digest"`
	ContentType string    `dynamodbav:"contentType" json:"content_type"`
	Width       int       `dynamodbav:"width" json:"width"`
	Height      int       `dynamodbav:"height" json:"height"`
	CreatedAt   time.Time `dynamodbav:"createdAt" json:"created_at"`
}

// ScreenplayRecord is one persisted generation result.
type ScreenplayRecord struct {
	ID         string            `dynamodbav:"id" json:"id"`
	AssetID    string            `dynamodbav:"assetId" json:"asset_id"`
	Genre      string            `dynamodbav:"genre" json:"genre"`
	Analysis   string            `dynamodbav:"analysis" json:"analysis"`
	SceneText  string            `dynamodbav:"sceneText" json:"scene_text"`
	Structured *screenplay.Scene `dynamodbav:"-" json:"structured_scene"`
	ModelsUsed []string          `dynamodbav:"modelsUsed" json:"models_used"`
	Public     bool              `dynamodbav:"public" json:"public"`
	CreatedAt  time.Time         `dynamodbav:"createdAt" json:"created_at"`

	// StructuredJSON is the wire/storage form of Structured. Implementations
	// keep the two in sync; callers use Structured.
	StructuredJSON string `dynamodbav:"structured" json:"-"`
}

// ImageStore persists image metadata keyed by content digest.
// Each method is safe for concurrent use. Get methods return nil, nil when
// the record does not exist.
type ImageStore interface {
	// Create inserts rec if and only if no record with its digest exists,
	// atomically. It returns the record that owns the digest afterwards and
	// whether this call created it. When created is false the caller lost a
	// race (or the digest pre-existed) and must adopt the returned record.
	Create(ctx context.Context, rec ImageRecord) (ImageRecord, bool, error)

	// FindByDigest retrieves the image record for a digest.
	FindByDigest(ctx context.Context, digest string) (*ImageRecord, error)

	// Get retrieves an image record by asset id.
	Get(ctx context.Context, assetID string) (*ImageRecord, error)
}

// ListOptions selects a page of the screenplay listing.
type ListOptions struct {
	// PublicOnly restricts the listing to public records.
	PublicOnly bool

	// Cursor is the opaque continuation token from a previous page, or "".
	Cursor string

	// PageSize caps the page; 0 means GalleryPageSize.
	PageSize int
}

// Page is one page of screenplay records, newest first.
type Page struct {
	Items []ScreenplayRecord `json:"items"`

	// NextCursor continues the listing, or "" on the last page.
	NextCursor string `json:"next_cursor,omitempty"`
}

// ScreenplayStore persists generation results.
type ScreenplayStore interface {
	// Put creates or replaces a screenplay record.
	Put(ctx context.Context, rec ScreenplayRecord) error

	// Get retrieves a screenplay record. Returns nil, nil if not found.
	Get(ctx context.Context, id string) (*ScreenplayRecord, error)

	// List returns one page of records ordered by creation time descending.
	List(ctx context.Context, opts ListOptions) (*Page, error)
}
