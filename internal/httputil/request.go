package httputil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// QueryInt parses an optional integer query parameter.
// Returns nil when the parameter is absent or empty.
func QueryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return &value, nil
}

// QueryBool reports whether a query flag is set to "true" (case-insensitive).
// Any other value, including "1", counts as false.
func QueryBool(r *http.Request, name string) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get(name)), "true")
}
