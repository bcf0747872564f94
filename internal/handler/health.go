package handler

import (
	"net/http"

	"driveportal/internal/httputil"
)

// HealthCheck reports that the server is up
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
