package hierarchy

import (
	"context"
	"fmt"
	"log/slog"

	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"
	hierarchySvc "driveportal/internal/domain/services/hierarchy"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// explorerService implements the ExplorerService interface
type explorerService struct {
	drive    hierarchySvc.DriveClient
	analyzer hierarchySvc.FileAnalyzer
	logger   *slog.Logger
}

// NewExplorerService creates a new explorer service
func NewExplorerService(
	drive hierarchySvc.DriveClient,
	analyzer hierarchySvc.FileAnalyzer,
	logger *slog.Logger,
) hierarchySvc.ExplorerService {
	return &explorerService{
		drive:    drive,
		analyzer: analyzer,
		logger:   logger,
	}
}

// ListFolder returns one folder level. Hidden and inactive items are kept
// and flagged; preview files are grouped under their base item.
func (s *explorerService) ListFolder(ctx context.Context, folderID string) (*hierarchySvc.FolderListing, error) {
	if err := validateDriveID("folder_id", folderID); err != nil {
		return nil, err
	}

	meta, err := s.drive.GetFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("get folder %s: %w", folderID, err)
	}
	folder := toHierarchyItem(s.analyzer, meta, 0, "")

	items, err := s.drive.ListFolder(ctx, meta.TraversalID())
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folderID, err)
	}

	nodes := make([]*models.HierarchyItem, 0, len(items))
	for i := range items {
		nodes = append(nodes, toHierarchyItem(s.analyzer, &items[i], 1, folder.ID))
	}
	nodes = groupPreviews(nodes)
	folder.Children = nodes

	s.logger.Debug("folder listed",
		"folder_id", folderID,
		"items", len(nodes),
	)

	return &hierarchySvc.FolderListing{Folder: folder, Items: nodes}, nil
}

// GetFile returns one classified item
func (s *explorerService) GetFile(ctx context.Context, fileID string) (*models.HierarchyItem, error) {
	_, item, err := s.lookupFile(ctx, fileID)
	return item, err
}

// GetContent returns the file metadata and an open content stream.
// Metadata is fetched once and handed to the client for the download.
func (s *explorerService) GetContent(ctx context.Context, fileID string) (*hierarchySvc.FileContent, error) {
	meta, item, err := s.lookupFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if item.IsFolder() {
		return nil, fmt.Errorf("%w: %s is a folder", domain.ErrValidation, fileID)
	}

	body, contentType, err := s.drive.GetContent(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("get content %s: %w", fileID, err)
	}

	return &hierarchySvc.FileContent{
		Item:        item,
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *explorerService) lookupFile(ctx context.Context, fileID string) (*models.DriveItem, *models.HierarchyItem, error) {
	if err := validateDriveID("file_id", fileID); err != nil {
		return nil, nil, err
	}

	meta, err := s.drive.GetFile(ctx, fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("get file %s: %w", fileID, err)
	}
	return meta, toHierarchyItem(s.analyzer, meta, 0, firstParent(meta.Parents)), nil
}

func validateDriveID(field, id string) error {
	if err := validation.Validate(id,
		validation.Required.Error("id is required"),
		validation.Match(driveIDPattern).Error("id contains invalid characters"),
	); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrValidation, field, err)
	}
	return nil
}

func firstParent(parents []string) string {
	if len(parents) == 0 {
		return ""
	}
	return parents[0]
}
