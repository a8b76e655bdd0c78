package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func seedScreenplays(t *testing.T, s ScreenplayStore, n int) []ScreenplayRecord {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := make([]ScreenplayRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := ScreenplayRecord{
			ID:        fmt.Sprintf("sp-%03d", i),
			AssetID:   fmt.Sprintf("asset-%03d", i),
			Genre:     "drama",
			Public:    i%2 == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Put(context.Background(), rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		records = append(records, rec)
	}
	return records
}

func TestMemoryImageStoreCreateOncePerDigest(t *testing.T) {
	s := NewMemoryImageStore()

	first := ImageRecord{AssetID: "a1", Digest: "d1"}
	got, created, err := s.Create(context.Background(), first)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !created || got.AssetID != "a1" {
		t.Errorf("Create() = (%v, %v), want created a1", got.AssetID, created)
	}

	second := ImageRecord{AssetID: "a2", Digest: "d1"}
	got, created, err = s.Create(context.Background(), second)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created {
		t.Error("second Create() for same digest reported created = true")
	}
	if got.AssetID != "a1" {
		t.Errorf("second Create() returned %q, want the first owner a1", got.AssetID)
	}

	rec, err := s.FindByDigest(context.Background(), "d1")
	if err != nil {
		t.Fatalf("FindByDigest() error = %v", err)
	}
	if rec == nil || rec.AssetID != "a1" {
		t.Errorf("FindByDigest() = %+v, want a1", rec)
	}

	if rec, _ := s.FindByDigest(context.Background(), "missing"); rec != nil {
		t.Errorf("FindByDigest(missing) = %+v, want nil", rec)
	}
	if rec, _ := s.Get(context.Background(), "a2"); rec != nil {
		t.Errorf("Get(a2) = %+v, want nil for the losing record", rec)
	}
}

func TestMemoryScreenplayStoreGet(t *testing.T) {
	s := NewMemoryScreenplayStore()
	seedScreenplays(t, s, 3)

	rec, err := s.Get(context.Background(), "sp-001")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec == nil || rec.ID != "sp-001" {
		t.Errorf("Get() = %+v, want sp-001", rec)
	}

	rec, err = s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec != nil {
		t.Errorf("Get(nope) = %+v, want nil", rec)
	}
}

func TestMemoryScreenplayStoreListNewestFirst(t *testing.T) {
	s := NewMemoryScreenplayStore()
	seedScreenplays(t, s, 5)

	page, err := s.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Items) != 5 {
		t.Fatalf("len(Items) = %d, want 5", len(page.Items))
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt) {
			t.Errorf("Items[%d] newer than Items[%d], want newest first", i, i-1)
		}
	}
	if page.Items[0].ID != "sp-004" {
		t.Errorf("Items[0].ID = %q, want the newest sp-004", page.Items[0].ID)
	}
	if page.NextCursor != "" {
		t.Errorf("NextCursor = %q, want empty on a complete listing", page.NextCursor)
	}
}

func TestMemoryScreenplayStoreListPagination(t *testing.T) {
	s := NewMemoryScreenplayStore()
	seedScreenplays(t, s, 30)

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := s.List(context.Background(), ListOptions{Cursor: cursor})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(page.Items) > GalleryPageSize {
			t.Fatalf("page %d size = %d, exceeds %d", pages, len(page.Items), GalleryPageSize)
		}
		for _, rec := range page.Items {
			if seen[rec.ID] {
				t.Errorf("record %q returned twice", rec.ID)
			}
			seen[rec.ID] = true
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if len(seen) != 30 {
		t.Errorf("walked %d records, want all 30", len(seen))
	}
	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
}

func TestMemoryScreenplayStoreListPublicOnly(t *testing.T) {
	s := NewMemoryScreenplayStore()
	seedScreenplays(t, s, 6)

	page, err := s.List(context.Background(), ListOptions{PublicOnly: true})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3 public records", len(page.Items))
	}
	for _, rec := range page.Items {
		if !rec.Public {
			t.Errorf("record %q is private, want public only", rec.ID)
		}
	}
}

func TestMemoryScreenplayStoreListPageSize(t *testing.T) {
	s := NewMemoryScreenplayStore()
	seedScreenplays(t, s, 10)

	page, err := s.List(context.Background(), ListOptions{PageSize: 4})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Items) != 4 {
		t.Errorf("len(Items) = %d, want 4", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Error("NextCursor empty, want continuation")
	}
}
