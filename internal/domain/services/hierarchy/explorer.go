package hierarchy

import (
	"context"
	"io"

	models "driveportal/internal/domain/models/hierarchy"
)

// ExplorerService browses arbitrary Drive folders without caching.
// Items are classified the same way the hierarchy builder classifies them.
type ExplorerService interface {
	// ListFolder returns a folder and its direct children, sorted like hierarchy siblings
	ListFolder(ctx context.Context, folderID string) (*FolderListing, error)

	// GetFile returns one classified item
	GetFile(ctx context.Context, fileID string) (*models.HierarchyItem, error)

	// GetContent streams file content. Caller must close the reader.
	GetContent(ctx context.Context, fileID string) (*FileContent, error)
}

// FolderListing is a single folder level
type FolderListing struct {
	Folder *models.HierarchyItem   `json:"folder"`
	Items  []*models.HierarchyItem `json:"items"`
}

// FileContent is a readable file body with its metadata
type FileContent struct {
	Item        *models.HierarchyItem
	ContentType string
	Body        io.ReadCloser
}
