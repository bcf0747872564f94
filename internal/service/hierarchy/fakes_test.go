package hierarchy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"
	hierarchyRepo "driveportal/internal/domain/repositories/hierarchy"
)

// fakeDrive is an in-memory DriveClient. Folders are registered with
// addFolder; listFailures makes ListFolder fail for specific ids.
type fakeDrive struct {
	mu           sync.Mutex
	items        map[string]*models.DriveItem
	children     map[string][]models.DriveItem
	listFailures map[string]error
	getCalls     int
	listCalls    int
	listed       []string
	// gate, when set, blocks every ListFolder call until it is closed
	gate chan struct{}
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		items:        make(map[string]*models.DriveItem),
		children:     make(map[string][]models.DriveItem),
		listFailures: make(map[string]error),
	}
}

func folder(id, name string) models.DriveItem {
	return models.DriveItem{ID: id, Name: name, MimeType: models.MimeFolder}
}

func file(id, name, mimeType string) models.DriveItem {
	return models.DriveItem{ID: id, Name: name, MimeType: mimeType}
}

func folderShortcut(id, name, targetID string) models.DriveItem {
	return models.DriveItem{
		ID:                     id,
		Name:                   name,
		MimeType:               models.MimeShortcut,
		ShortcutTargetID:       targetID,
		ShortcutTargetMimeType: models.MimeFolder,
	}
}

// add registers item as a child of parentID (empty for a top-level root)
func (f *fakeDrive) add(parentID string, item models.DriveItem) *fakeDrive {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := item
	if parentID != "" {
		stored.Parents = []string{parentID}
		f.children[parentID] = append(f.children[parentID], stored)
	}
	f.items[item.ID] = &stored
	return f
}

func (f *fakeDrive) GetFolder(ctx context.Context, folderID string) (*models.DriveItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++

	item, ok := f.items[folderID]
	if !ok || !item.IsFolder() {
		return nil, fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	found := *item
	return &found, nil
}

func (f *fakeDrive) ListFolder(ctx context.Context, folderID string) ([]models.DriveItem, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.listed = append(f.listed, folderID)

	if err, ok := f.listFailures[folderID]; ok {
		return nil, err
	}
	items := make([]models.DriveItem, len(f.children[folderID]))
	copy(items, f.children[folderID])
	return items, nil
}

func (f *fakeDrive) GetFile(ctx context.Context, fileID string) (*models.DriveItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++

	item, ok := f.items[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}
	found := *item
	return &found, nil
}

func (f *fakeDrive) GetContent(ctx context.Context, item *models.DriveItem) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	return io.NopCloser(strings.NewReader("content of " + item.Name)), item.MimeType, nil
}

func (f *fakeDrive) calls() (get, list int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls, f.listCalls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// childNames returns the names of an item's children in order
func childNames(item *models.HierarchyItem) []string {
	names := make([]string, 0, len(item.Children))
	for _, child := range item.Children {
		names = append(names, child.Name)
	}
	return names
}

// failingRepo wraps a repository and injects errors per operation
type failingRepo struct {
	hierarchyRepo.CacheRepository
	getErr    error
	upsertErr error
	upserts   int
}

func (r *failingRepo) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.CacheRepository.Get(ctx, key)
}

func (r *failingRepo) Upsert(ctx context.Context, entry *models.CacheEntry) (*models.CacheEntry, error) {
	r.upserts++
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	return r.CacheRepository.Upsert(ctx, entry)
}

// testClock is a settable time source
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
