// Package drive adapts the Google Drive v3 API to the hierarchy DriveClient.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"
	hierarchySvc "driveportal/internal/domain/services/hierarchy"
	"driveportal/internal/metrics"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	listPageSize = 1000

	fileFields googleapi.Field = "id, name, mimeType, description, parents, webViewLink, " +
		"thumbnailLink, iconLink, modifiedTime, size, trashed, shortcutDetails(targetId, targetMimeType)"
)

// exportFormats maps Google-native types to the format they are exported as
var exportFormats = map[string]string{
	models.MimeDocument:     models.MimePDF,
	models.MimeSpreadsheet:  "text/csv",
	models.MimePresentation: models.MimePDF,
}

// GoogleClient implements hierarchy.DriveClient against the Drive v3 API
type GoogleClient struct {
	service *drive.Service
	logger  *slog.Logger
}

var _ hierarchySvc.DriveClient = (*GoogleClient)(nil)

// NewGoogleClient creates a read-only Drive client.
// With an empty credentialsFile, application default credentials are used.
// Extra options are appended after the credential options.
func NewGoogleClient(ctx context.Context, credentialsFile string, logger *slog.Logger, opts ...option.ClientOption) (*GoogleClient, error) {
	clientOpts := []option.ClientOption{option.WithScopes(drive.DriveReadonlyScope)}
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &GoogleClient{service: service, logger: logger}, nil
}

// GetFolder returns folder metadata. Ids that are not folders are reported as not found.
func (c *GoogleClient) GetFolder(ctx context.Context, folderID string) (*models.DriveItem, error) {
	item, err := c.getItem(ctx, "get_folder", folderID)
	if err != nil {
		return nil, err
	}
	if !item.IsFolder() {
		return nil, fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	return item, nil
}

// GetFile returns file metadata
func (c *GoogleClient) GetFile(ctx context.Context, fileID string) (*models.DriveItem, error) {
	return c.getItem(ctx, "get_file", fileID)
}

// ListFolder returns the direct, non-trashed children of a folder, following
// page tokens until the listing is exhausted
func (c *GoogleClient) ListFolder(ctx context.Context, folderID string) ([]models.DriveItem, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	items := make([]models.DriveItem, 0)
	pageToken := ""
	pages := 0

	for {
		call := c.service.Files.List().
			Q(query).
			Fields("nextPageToken", "files("+fileFields+")").
			PageSize(listPageSize).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		start := time.Now()
		list, err := call.Do()
		metrics.RecordDriveCall("list_folder", time.Since(start), err == nil)
		if err != nil {
			return nil, wrapError("list folder", folderID, err)
		}
		pages++

		for _, f := range list.Files {
			if f.Trashed {
				continue
			}
			items = append(items, *toDriveItem(f))
		}

		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}

	c.logger.Debug("listed drive folder",
		"folder_id", folderID,
		"items", len(items),
		"pages", pages,
	)

	return items, nil
}

// GetContent streams the content of item without fetching its metadata
// again. Google-native documents are exported, everything else is
// downloaded as stored.
func (c *GoogleClient) GetContent(ctx context.Context, item *models.DriveItem) (io.ReadCloser, string, error) {
	fileID := item.ID
	if item.IsFolder() {
		return nil, "", fmt.Errorf("%w: %s is a folder", domain.ErrValidation, fileID)
	}

	var (
		resp      *http.Response
		operation string
		err       error
	)
	mimeType := item.EffectiveMimeType()
	targetID := fileID
	if item.IsShortcut() && item.ShortcutTargetID != "" {
		targetID = item.ShortcutTargetID
	}

	start := time.Now()
	if item.IsGoogleNative() {
		exportType, ok := exportFormats[mimeType]
		if !ok {
			return nil, "", fmt.Errorf("%w: %s documents cannot be exported", domain.ErrValidation, mimeType)
		}
		operation = "export"
		resp, err = c.service.Files.Export(targetID, exportType).Context(ctx).Download()
		mimeType = exportType
	} else {
		operation = "download"
		resp, err = c.service.Files.Get(targetID).SupportsAllDrives(true).Context(ctx).Download()
	}
	metrics.RecordDriveCall(operation, time.Since(start), err == nil)
	if err != nil {
		return nil, "", wrapError(operation, fileID, err)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !item.IsGoogleNative() {
		mimeType = ct
	}
	return resp.Body, mimeType, nil
}

func (c *GoogleClient) getItem(ctx context.Context, operation, id string) (*models.DriveItem, error) {
	start := time.Now()
	f, err := c.service.Files.Get(id).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	metrics.RecordDriveCall(operation, time.Since(start), err == nil)
	if err != nil {
		return nil, wrapError(operation, id, err)
	}
	if f.Trashed {
		return nil, fmt.Errorf("%s %s: %w", operation, id, domain.ErrNotFound)
	}
	return toDriveItem(f), nil
}

// wrapError maps Drive API failures onto domain errors
func wrapError(operation, id string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w", operation, id, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%s %s: %w", operation, id, domain.ErrNotFound)
		case http.StatusBadRequest:
			return fmt.Errorf("%s %s: %w: %s", operation, id, domain.ErrValidation, apiErr.Message)
		}
	}
	return fmt.Errorf("%s %s: %w: %v", operation, id, domain.ErrUpstream, err)
}

func toDriveItem(f *drive.File) *models.DriveItem {
	item := &models.DriveItem{
		ID:            f.Id,
		Name:          f.Name,
		MimeType:      f.MimeType,
		Description:   f.Description,
		Parents:       f.Parents,
		WebViewLink:   f.WebViewLink,
		ThumbnailLink: f.ThumbnailLink,
		IconLink:      f.IconLink,
		ModifiedTime:  f.ModifiedTime,
		Size:          f.Size,
	}
	if f.ShortcutDetails != nil {
		item.ShortcutTargetID = f.ShortcutDetails.TargetId
		item.ShortcutTargetMimeType = f.ShortcutDetails.TargetMimeType
	}
	return item
}
