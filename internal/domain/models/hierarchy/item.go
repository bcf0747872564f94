package hierarchy

// HierarchyItem is one node of a built hierarchy.
// Items are constructed fresh on every build and are not mutated once the
// build returns; cached copies are decoded from JSON.
type HierarchyItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	DisplayName    string          `json:"displayName"`
	DriveType      DriveType       `json:"driveType"`
	MimeType       string          `json:"mimeType"`
	Depth          int             `json:"depth"`
	ParentID       string          `json:"parentId,omitempty"` // empty for the root
	Order          int             `json:"order"`
	Prefixes       []string        `json:"prefixes"`
	Suffixes       []string        `json:"suffixes"`
	Type           ItemType        `json:"type"`
	Classification *Classification `json:"classification,omitempty"`
	Description    string          `json:"description,omitempty"`
	BaseName       string          `json:"baseName"`
	PreviewPattern string          `json:"previewPattern"`
	PreviewIndex   int             `json:"previewIndex,omitempty"`
	WebViewLink    string          `json:"webViewLink,omitempty"`
	ThumbnailLink  string          `json:"thumbnailLink,omitempty"`
	ModifiedTime   string          `json:"modifiedTime,omitempty"`
	IsShortcut     bool            `json:"isShortcut,omitempty"`
	TargetID       string          `json:"targetId,omitempty"`
	Inactive       bool            `json:"inactive,omitempty"`
	Hidden         bool            `json:"hidden,omitempty"`
	// Cyclic marks a folder that already appears on its own ancestor path
	// (through a shortcut); it is not expanded.
	Cyclic       bool             `json:"cyclic,omitempty"`
	Children     []*HierarchyItem `json:"children"`
	PreviewItems []*HierarchyItem `json:"previewItems"`
}

// IsFolder reports whether the node is a folder (or folder shortcut)
func (h *HierarchyItem) IsFolder() bool {
	return h.DriveType == DriveTypeFolder
}

// Walk visits the node, its preview items and its children depth-first.
// Returning false from fn stops descending below that node.
func (h *HierarchyItem) Walk(fn func(item *HierarchyItem) bool) {
	if h == nil || !fn(h) {
		return
	}
	for _, preview := range h.PreviewItems {
		preview.Walk(fn)
	}
	for _, child := range h.Children {
		child.Walk(fn)
	}
}

// Count returns the number of nodes in the tree, root and preview items included
func (h *HierarchyItem) Count() int {
	count := 0
	h.Walk(func(*HierarchyItem) bool {
		count++
		return true
	})
	return count
}

// DeepestLevel returns the largest depth found in the tree
func (h *HierarchyItem) DeepestLevel() int {
	deepest := 0
	h.Walk(func(item *HierarchyItem) bool {
		if item.Depth > deepest {
			deepest = item.Depth
		}
		return true
	})
	return deepest
}

// FindByID returns the first node with the given id, or nil
func (h *HierarchyItem) FindByID(id string) *HierarchyItem {
	var found *HierarchyItem
	h.Walk(func(item *HierarchyItem) bool {
		if found != nil {
			return false
		}
		if item.ID == id {
			found = item
			return false
		}
		return true
	})
	return found
}

// BuildOptions controls a single hierarchy build
type BuildOptions struct {
	MaxDepth        int
	IncludeHidden   bool
	IncludeInactive bool
}

// BuildStats describes the work done by one hierarchy build
type BuildStats struct {
	TotalItems    int   `json:"totalItems"`
	FolderCount   int   `json:"folderCount"`
	FileCount     int   `json:"fileCount"`
	PreviewCount  int   `json:"previewCount"`
	MaxDepth      int   `json:"maxDepth"`
	DeepestLevel  int   `json:"deepestLevel"`
	APICalls      int   `json:"apiCalls"`
	FailedFolders int   `json:"failedFolders"`
	SkippedCycles int   `json:"skippedCycles"`
	BuildTimeMs   int64 `json:"buildTimeMs"`
}
