package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"

	hierarchySvc "driveportal/internal/domain/services/hierarchy"
	"driveportal/internal/httputil"
)

// DriveHandler handles the generic Drive explorer endpoints
type DriveHandler struct {
	explorer hierarchySvc.ExplorerService
	logger   *slog.Logger
}

// NewDriveHandler creates a new drive handler
func NewDriveHandler(explorer hierarchySvc.ExplorerService, logger *slog.Logger) *DriveHandler {
	return &DriveHandler{
		explorer: explorer,
		logger:   logger,
	}
}

// ListFolder returns a folder's direct children with classification
func (h *DriveHandler) ListFolder(w http.ResponseWriter, r *http.Request) {
	listing, err := h.explorer.ListFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listing)
}

// GetFile returns file metadata with classification
func (h *DriveHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	item, err := h.explorer.GetFile(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// GetContent streams file content; Google-native documents arrive exported
func (h *DriveHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.explorer.GetContent(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	defer content.Body.Close()

	contentType := content.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": content.Item.Name,
	}))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)

	// Headers are already sent; a copy failure can only be logged
	if n, err := io.Copy(w, content.Body); err != nil {
		h.logger.Warn("content stream interrupted",
			"file_id", content.Item.ID,
			"bytes_written", n,
			"request_id", httputil.GetRequestID(r),
			"error", err,
		)
	}
}
