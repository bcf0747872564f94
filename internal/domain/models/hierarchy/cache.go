package hierarchy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CacheKind discriminates route-root entries from folder-scoped entries.
// The kinds have different expiry windows.
type CacheKind string

const (
	CacheKindRoute  CacheKind = "route"
	CacheKindFolder CacheKind = "folder"
)

// CacheEntry is a persisted hierarchy snapshot.
// At most one entry exists per CacheKey.
type CacheEntry struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CacheKey      string          `json:"cacheKey" db:"cache_key"`
	CacheType     CacheKind       `json:"cacheType" db:"cache_type"`
	RoutePath     string          `json:"routePath,omitempty" db:"route_path"`
	FolderID      string          `json:"folderId" db:"folder_id"`
	MaxDepth      int             `json:"maxDepth" db:"max_depth"`
	HierarchyData json.RawMessage `json:"hierarchyData,omitempty" db:"hierarchy_data"`
	ItemCount     int             `json:"itemCount" db:"item_count"`
	BuildTimeMs   int64           `json:"buildTimeMs" db:"build_time_ms"`
	AccessCount   int             `json:"accessCount" db:"access_count"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// Age returns how long ago the entry was last rebuilt
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.UpdatedAt)
}

// Hierarchy decodes the stored tree
func (e *CacheEntry) Hierarchy() (*HierarchyItem, error) {
	if len(e.HierarchyData) == 0 {
		return nil, fmt.Errorf("cache entry %s has no hierarchy data", e.CacheKey)
	}
	var root HierarchyItem
	if err := json.Unmarshal(e.HierarchyData, &root); err != nil {
		return nil, fmt.Errorf("decode hierarchy for %s: %w", e.CacheKey, err)
	}
	return &root, nil
}

// CacheMeta carries the discriminator fields of a cache entry being written
type CacheMeta struct {
	Kind      CacheKind
	RoutePath string
	FolderID  string
	MaxDepth  int
}

// CacheKey derives the unique key for a hierarchy snapshot.
// Hidden and inactive variants produce different trees, so they get their own keys.
func CacheKey(kind CacheKind, id string, opts BuildOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s:d%d", kind, id, opts.MaxDepth)
	if opts.IncludeHidden {
		b.WriteString(":h")
	}
	if opts.IncludeInactive {
		b.WriteString(":i")
	}
	return b.String()
}
