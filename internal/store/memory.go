package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// MemoryImageStore implements ImageStore in process memory. It backs the CLI
// and tests; semantics match the DynamoDB implementation, including atomic
// create-if-absent on digest.
type MemoryImageStore struct {
	mu       sync.Mutex
	byDigest map[string]ImageRecord
	byAsset  map[string]ImageRecord
}

// Compile-time interface check.
var _ ImageStore = (*MemoryImageStore)(nil)

// NewMemoryImageStore creates an empty in-memory image store.
func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{
		byDigest: make(map[string]ImageRecord),
		byAsset:  make(map[string]ImageRecord),
	}
}

// Create inserts rec unless its digest is already owned; the mutex makes the
// check-then-insert atomic.
func (m *MemoryImageStore) Create(_ context.Context, rec ImageRecord) (ImageRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byDigest[rec.Digest]; ok {
		return existing, false, nil
	}
	m.byDigest[rec.Digest] = rec
	m.byAsset[rec.AssetID] = rec
	return rec, true, nil
}

// FindByDigest retrieves the image record for a digest, or nil.
func (m *MemoryImageStore) FindByDigest(_ context.Context, digest string) (*ImageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.byDigest[digest]; ok {
		return &rec, nil
	}
	return nil, nil
}

// Get retrieves an image record by asset id, or nil.
func (m *MemoryImageStore) Get(_ context.Context, assetID string) (*ImageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.byAsset[assetID]; ok {
		return &rec, nil
	}
	return nil, nil
}

// MemoryScreenplayStore implements ScreenplayStore in process memory.
type MemoryScreenplayStore struct {
	mu      sync.Mutex
	records map[string]ScreenplayRecord
}

// Compile-time interface check.
var _ ScreenplayStore = (*MemoryScreenplayStore)(nil)

// NewMemoryScreenplayStore creates an empty in-memory screenplay store.
func NewMemoryScreenplayStore() *MemoryScreenplayStore {
	return &MemoryScreenplayStore{records: make(map[string]ScreenplayRecord)}
}

// Put creates or replaces a screenplay record.
func (m *MemoryScreenplayStore) Put(_ context.Context, rec ScreenplayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

// Get retrieves a screenplay record by id, or nil.
func (m *MemoryScreenplayStore) Get(_ context.Context, id string) (*ScreenplayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[id]; ok {
		return &rec, nil
	}
	return nil, nil
}

// List returns one page of screenplay records, newest first. The cursor is
// the sort key of the last record on the previous page.
func (m *MemoryScreenplayStore) List(_ context.Context, opts ListOptions) (*Page, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = GalleryPageSize
	}

	m.mu.Lock()
	all := make([]ScreenplayRecord, 0, len(m.records))
	for _, rec := range m.records {
		if opts.PublicOnly && !rec.Public {
			continue
		}
		all = append(all, rec)
	}
	m.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		return memorySortKey(all[i]) > memorySortKey(all[j])
	})

	start := 0
	if opts.Cursor != "" {
		start = len(all)
		for i, rec := range all {
			if memorySortKey(rec) < opts.Cursor {
				start = i
				break
			}
		}
	}

	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	page := &Page{Items: all[start:end]}
	if end < len(all) && end > start {
		page.NextCursor = memorySortKey(all[end-1])
	}
	return page, nil
}

// memorySortKey mirrors the DynamoDB gallery sort key ordering. Nanosecond
// timestamps are zero-padded so string comparison matches numeric order.
func memorySortKey(rec ScreenplayRecord) string {
	ns := rec.CreatedAt.UTC().UnixNano()
	return padNanos(ns) + "#" + rec.ID
}

func padNanos(ns int64) string {
	s := strconv.FormatInt(ns, 10)
	for len(s) < 20 {
		s = "0" + s
	}
	return s
}
