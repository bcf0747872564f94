package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"

	"github.com/google/uuid"
)

func newEntry(key string, at time.Time) *models.CacheEntry {
	return &models.CacheEntry{
		ID:            uuid.New(),
		CacheKey:      key,
		CacheType:     models.CacheKindFolder,
		FolderID:      "folder1",
		MaxDepth:      3,
		HierarchyData: json.RawMessage(`{"id":"folder1"}`),
		ItemCount:     4,
		AccessCount:   1,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func TestCacheRepository_GetMissing(t *testing.T) {
	repo := NewCacheRepository()

	_, err := repo.Get(context.Background(), "folder:none:d3")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	_, err = repo.IncrementAccess(context.Background(), "folder:none:d3")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("IncrementAccess() error = %v, want ErrNotFound", err)
	}
}

func TestCacheRepository_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewCacheRepository()
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := repo.Upsert(ctx, newEntry("folder:folder1:d3", t0))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if _, err := repo.IncrementAccess(ctx, first.CacheKey); err != nil {
		t.Fatalf("IncrementAccess() error = %v", err)
	}

	replacement := newEntry("folder:folder1:d3", t0.Add(time.Hour))
	replacement.ItemCount = 9
	second, err := repo.Upsert(ctx, replacement)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("ID = %v, want original %v", second.ID, first.ID)
	}
	if !second.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", second.CreatedAt, t0)
	}
	if !second.UpdatedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %v, want %v", second.UpdatedAt, t0.Add(time.Hour))
	}
	if second.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1", second.AccessCount)
	}
	if second.ItemCount != 9 {
		t.Errorf("ItemCount = %d, want 9", second.ItemCount)
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(entries))
	}
}

func TestCacheRepository_IncrementAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewCacheRepository()
	if _, err := repo.Upsert(ctx, newEntry("k", time.Now())); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	for want := 2; want <= 4; want++ {
		got, err := repo.IncrementAccess(ctx, "k")
		if err != nil {
			t.Fatalf("IncrementAccess() error = %v", err)
		}
		if got != want {
			t.Errorf("IncrementAccess() = %d, want %d", got, want)
		}
	}
}

func TestCacheRepository_ListOrderAndPayload(t *testing.T) {
	ctx := context.Background()
	repo := NewCacheRepository()
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, key := range []string{"a", "b", "c"} {
		if _, err := repo.Upsert(ctx, newEntry(key, t0.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Upsert(%s) error = %v", key, err)
		}
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"c", "b", "a"}
	for i, entry := range entries {
		if entry.CacheKey != want[i] {
			t.Errorf("entries[%d].CacheKey = %q, want %q", i, entry.CacheKey, want[i])
		}
		if entry.HierarchyData != nil {
			t.Errorf("entries[%d] carries hierarchy data", i)
		}
	}
}

func TestCacheRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewCacheRepository()
	if _, err := repo.Upsert(ctx, newEntry("k", time.Now())); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, _ := repo.Get(ctx, "k")
	got.HierarchyData[0] = 'X'
	got.ItemCount = 100

	again, _ := repo.Get(ctx, "k")
	if string(again.HierarchyData) != `{"id":"folder1"}` || again.ItemCount != 4 {
		t.Errorf("stored entry was mutated through a returned copy: %+v", again)
	}
}
