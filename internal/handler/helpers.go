package handler

import (
	"log/slog"
	"net/http"

	"driveportal/internal/domain"
	hierarchySvc "driveportal/internal/domain/services/hierarchy"
	"driveportal/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Server-side failures are logged and their detail is not exposed.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := domain.StatusCode(err)
	requestID := httputil.GetRequestID(r)

	detail := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logger.Error("request failed", "path", r.URL.Path, "request_id", requestID, "error", err)
		detail = "internal server error"
	case http.StatusBadGateway:
		logger.Error("drive request failed", "path", r.URL.Path, "request_id", requestID, "error", err)
		detail = "google drive request failed"
	}

	if requestID == "" {
		httputil.RespondError(w, status, detail)
		return
	}
	httputil.RespondErrorWithExtras(w, status, detail, map[string]interface{}{
		"requestId": requestID,
	})
}

// parseHierarchyQuery reads maxDepth, forceRefresh, includeHidden and includeInactive
func parseHierarchyQuery(r *http.Request) (hierarchySvc.HierarchyQuery, error) {
	maxDepth, err := httputil.QueryInt(r, "maxDepth")
	if err != nil {
		return hierarchySvc.HierarchyQuery{}, err
	}
	return hierarchySvc.HierarchyQuery{
		MaxDepth:        maxDepth,
		ForceRefresh:    httputil.QueryBool(r, "forceRefresh"),
		IncludeHidden:   httputil.QueryBool(r, "includeHidden"),
		IncludeInactive: httputil.QueryBool(r, "includeInactive"),
	}, nil
}
