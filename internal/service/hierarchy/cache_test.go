package hierarchy

import (
	"context"
	"errors"
	"testing"
	"time"

	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"
	"driveportal/internal/repository/memory"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const (
	testFolderTTL = 2 * time.Hour
	testRouteTTL  = 4 * time.Hour
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestCache(repo *failingRepo, clock *testClock) *cacheService {
	return NewCacheService(repo, testFolderTTL, testRouteTTL, discardLogger(), WithClock(clock.Now)).(*cacheService)
}

func sampleTree(t *testing.T) (*models.HierarchyItem, *models.BuildStats) {
	t.Helper()
	drive := newFakeDrive().
		add("", folder("root", "Marketing")).
		add("root", folder("docs", "01_sidebar_Docs")).
		add("root", file("p1", "file-P1.jpg", "image/jpeg")).
		add("root", withDescription(file("f", "file.jpg", "image/jpeg"), "copy: SPRING")).
		add("docs", file("v", "02_vimeo_4242_Intro", models.MimeDocument))

	root, stats, err := newTestBuilder(drive).Build(context.Background(), "root", models.BuildOptions{MaxDepth: 3})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return root, stats
}

func TestCacheService_Freshness(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.CacheKind
		age     time.Duration
		wantHit bool
	}{
		{"folder just under expiry", models.CacheKindFolder, testFolderTTL - time.Millisecond, true},
		{"folder at expiry", models.CacheKindFolder, testFolderTTL, false},
		{"folder past expiry", models.CacheKindFolder, testFolderTTL + time.Millisecond, false},
		{"route just under expiry", models.CacheKindRoute, testRouteTTL - time.Millisecond, true},
		{"route past expiry", models.CacheKindRoute, testRouteTTL + time.Millisecond, false},
		{"route entry older than folder expiry", models.CacheKindRoute, 3 * time.Hour, true},
	}

	root, stats := sampleTree(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &testClock{now: t0}
			cache := newTestCache(&failingRepo{CacheRepository: memory.NewCacheRepository()}, clock)
			ctx := context.Background()

			key := models.CacheKey(tt.kind, "id", models.BuildOptions{MaxDepth: 3})
			meta := models.CacheMeta{Kind: tt.kind, FolderID: "root", MaxDepth: 3}
			if _, err := cache.Put(ctx, key, meta, root, stats); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			clock.Set(t0.Add(tt.age))
			_, hit := cache.Get(ctx, key, tt.kind)
			if hit != tt.wantHit {
				t.Errorf("Get() at age %s hit = %v, want %v", tt.age, hit, tt.wantHit)
			}
		})
	}
}

func TestCacheService_PutResetsAccessCount(t *testing.T) {
	clock := &testClock{now: t0}
	cache := newTestCache(&failingRepo{CacheRepository: memory.NewCacheRepository()}, clock)
	ctx := context.Background()
	root, stats := sampleTree(t)
	key := "folder:root:d3"
	meta := models.CacheMeta{Kind: models.CacheKindFolder, FolderID: "root", MaxDepth: 3}

	if _, err := cache.Put(ctx, key, meta, root, stats); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	for want := 2; want <= 3; want++ {
		entry, hit := cache.Get(ctx, key, models.CacheKindFolder)
		if !hit || entry.AccessCount != want {
			t.Fatalf("Get() hit=%v accessCount=%d, want hit with %d", hit, entry.AccessCount, want)
		}
	}

	clock.Set(t0.Add(time.Minute))
	entry, err := cache.Put(ctx, key, meta, root, stats)
	if err != nil {
		t.Fatalf("second Put() error = %v", err)
	}
	if entry.AccessCount != 1 {
		t.Errorf("AccessCount after second Put = %d, want 1", entry.AccessCount)
	}
	if !entry.UpdatedAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("UpdatedAt = %v, want %v", entry.UpdatedAt, t0.Add(time.Minute))
	}
	if entry.ItemCount != stats.TotalItems {
		t.Errorf("ItemCount = %d, want %d", entry.ItemCount, stats.TotalItems)
	}
}

func TestCacheService_RoundTrip(t *testing.T) {
	clock := &testClock{now: t0}
	cache := newTestCache(&failingRepo{CacheRepository: memory.NewCacheRepository()}, clock)
	ctx := context.Background()
	root, stats := sampleTree(t)
	key := "route:marketing:d3"

	if _, err := cache.Put(ctx, key, models.CacheMeta{Kind: models.CacheKindRoute, RoutePath: "marketing", FolderID: "root", MaxDepth: 3}, root, stats); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	entry, hit := cache.Get(ctx, key, models.CacheKindRoute)
	if !hit {
		t.Fatal("Get() missed a fresh entry")
	}

	decoded, err := entry.Hierarchy()
	if err != nil {
		t.Fatalf("Hierarchy() error = %v", err)
	}
	if diff := cmp.Diff(root, decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round-trip mismatch (-built +decoded):\n%s", diff)
	}
	if entry.RoutePath != "marketing" || entry.CacheType != models.CacheKindRoute {
		t.Errorf("entry meta = %q/%q", entry.RoutePath, entry.CacheType)
	}
}

func TestCacheService_ReadErrorIsMiss(t *testing.T) {
	repo := &failingRepo{
		CacheRepository: memory.NewCacheRepository(),
		getErr:          errors.New("connection reset"),
	}
	cache := newTestCache(repo, &testClock{now: t0})

	if _, hit := cache.Get(context.Background(), "folder:x:d3", models.CacheKindFolder); hit {
		t.Error("Get() reported a hit on repository failure")
	}
}

func TestCacheService_PutError(t *testing.T) {
	repo := &failingRepo{
		CacheRepository: memory.NewCacheRepository(),
		upsertErr:       errors.New("disk full"),
	}
	cache := newTestCache(repo, &testClock{now: t0})
	root, stats := sampleTree(t)

	_, err := cache.Put(context.Background(), "folder:root:d3", models.CacheMeta{Kind: models.CacheKindFolder}, root, stats)
	if err == nil {
		t.Fatal("Put() error = nil, want failure")
	}
}

func TestCacheService_TouchAndList(t *testing.T) {
	clock := &testClock{now: t0}
	cache := newTestCache(&failingRepo{CacheRepository: memory.NewCacheRepository()}, clock)
	ctx := context.Background()
	root, stats := sampleTree(t)

	if err := cache.Touch(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Touch(missing) error = %v, want ErrNotFound", err)
	}

	for i, key := range []string{"folder:a:d3", "folder:b:d3"} {
		clock.Set(t0.Add(time.Duration(i) * time.Second))
		if _, err := cache.Put(ctx, key, models.CacheMeta{Kind: models.CacheKindFolder}, root, stats); err != nil {
			t.Fatalf("Put(%s) error = %v", key, err)
		}
	}
	if err := cache.Touch(ctx, "folder:a:d3"); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}

	entries, err := cache.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 || entries[0].CacheKey != "folder:b:d3" {
		t.Fatalf("List() = %+v, want b then a", entries)
	}
	if entries[1].AccessCount != 2 {
		t.Errorf("a.AccessCount = %d, want 2", entries[1].AccessCount)
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		kind models.CacheKind
		id   string
		opts models.BuildOptions
		want string
	}{
		{models.CacheKindRoute, "marketing/brand", models.BuildOptions{MaxDepth: 3}, "route:marketing/brand:d3"},
		{models.CacheKindFolder, "abc", models.BuildOptions{MaxDepth: 2, IncludeHidden: true}, "folder:abc:d2:h"},
		{models.CacheKindFolder, "abc", models.BuildOptions{MaxDepth: 2, IncludeHidden: true, IncludeInactive: true}, "folder:abc:d2:h:i"},
		{models.CacheKindFolder, "abc", models.BuildOptions{MaxDepth: 0, IncludeInactive: true}, "folder:abc:d0:i"},
	}
	for _, tt := range tests {
		if got := models.CacheKey(tt.kind, tt.id, tt.opts); got != tt.want {
			t.Errorf("CacheKey(%s, %s, %+v) = %q, want %q", tt.kind, tt.id, tt.opts, got, tt.want)
		}
	}
}
