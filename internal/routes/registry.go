package routes

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"driveportal/internal/config"
	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

//go:embed config/routes.yaml
var configFiles embed.FS

// Registry holds the route mappings loaded at startup
type Registry struct {
	byPath map[string]*models.RouteMapping
	order  []string
	mu     sync.RWMutex
}

// NewRegistry loads route mappings from path, or from the embedded
// routes.yaml when path is empty
func NewRegistry(path string) (*Registry, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = configFiles.ReadFile("config/routes.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file: %w", err)
	}

	return Parse(data)
}

// Parse builds a registry from a routes.yaml document
func Parse(data []byte) (*Registry, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal routes: %w", err)
	}

	r := &Registry{
		byPath: make(map[string]*models.RouteMapping, len(file.Routes)),
	}
	for i := range file.Routes {
		if err := r.add(file.Routes[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// add validates and registers one mapping
func (r *Registry) add(mapping models.RouteMapping) error {
	mapping.Path = models.NormalizeRoutePath(mapping.Path)
	if err := validateMapping(&mapping); err != nil {
		return fmt.Errorf("route %q: %w", mapping.Path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byPath[mapping.Path]; exists {
		return fmt.Errorf("route %q: duplicate path", mapping.Path)
	}
	r.byPath[mapping.Path] = &mapping
	r.order = append(r.order, mapping.Path)
	return nil
}

// Lookup resolves a request path to the longest active mapping whose path
// is a segment prefix of it, so "marketing/brand/logos" is served by
// "marketing/brand". Inactive mappings are skipped.
func (r *Registry) Lookup(path string) (*models.RouteMapping, error) {
	normalized := models.NormalizeRoutePath(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for candidate := normalized; candidate != ""; candidate = parentPath(candidate) {
		if mapping, ok := r.byPath[candidate]; ok && mapping.Active {
			found := *mapping
			return &found, nil
		}
	}
	return nil, fmt.Errorf("route %s: %w", normalized, domain.ErrNotFound)
}

// parentPath drops the last segment of a normalized path
func parentPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}

// Active returns active mappings in the order they were configured
func (r *Registry) Active() []models.RouteMapping {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]models.RouteMapping, 0, len(r.order))
	for _, path := range r.order {
		if mapping := r.byPath[path]; mapping.Active {
			active = append(active, *mapping)
		}
	}
	return active
}

// All returns every mapping, including inactive ones
func (r *Registry) All() []models.RouteMapping {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.RouteMapping, 0, len(r.order))
	for _, path := range r.order {
		all = append(all, *r.byPath[path])
	}
	return all
}

func validateMapping(m *models.RouteMapping) error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Path, validation.Required, validation.Length(1, config.MaxRoutePathLength)),
		validation.Field(&m.FolderID, validation.Required),
		validation.Field(&m.MaxDepth, validation.Min(0), validation.Max(config.MaxHierarchyDepth)),
	)
}
