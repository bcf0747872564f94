package hierarchy

import "strings"

// RouteMapping binds a portal URL path to a Drive root folder and a default depth.
// Mappings are static configuration and read-only while serving requests.
type RouteMapping struct {
	Path        string `json:"path" yaml:"path"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description"`
	FolderID    string `json:"folderId" yaml:"folder_id"`
	MaxDepth    int    `json:"maxDepth" yaml:"max_depth"`
	Active      bool   `json:"active" yaml:"active"`
}

// NormalizeRoutePath lower-cases a route path and strips surrounding slashes
// and empty segments, so "/Marketing//Spring/" and "marketing/spring" match.
func NormalizeRoutePath(path string) string {
	segments := strings.Split(strings.ToLower(strings.TrimSpace(path)), "/")
	kept := segments[:0]
	for _, segment := range segments {
		if segment = strings.TrimSpace(segment); segment != "" {
			kept = append(kept, segment)
		}
	}
	return strings.Join(kept, "/")
}
