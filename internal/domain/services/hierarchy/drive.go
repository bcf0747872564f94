package hierarchy

import (
	"context"
	"io"

	models "driveportal/internal/domain/models/hierarchy"
)

// DriveClient is the upstream Google Drive collaborator.
// Unknown ids are reported as errors wrapping domain.ErrNotFound.
type DriveClient interface {
	// GetFolder returns folder metadata
	GetFolder(ctx context.Context, folderID string) (*models.DriveItem, error)

	// ListFolder returns the direct, non-trashed children of a folder
	ListFolder(ctx context.Context, folderID string) ([]models.DriveItem, error)

	// GetFile returns file metadata
	GetFile(ctx context.Context, fileID string) (*models.DriveItem, error)

	// GetContent streams the content of an item previously returned by
	// GetFile; Google-native documents are exported. Caller must close the reader.
	GetContent(ctx context.Context, item *models.DriveItem) (io.ReadCloser, string, error)
}
