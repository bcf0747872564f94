package routes

import (
	models "driveportal/internal/domain/models/hierarchy"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a routes.yaml document
type File struct {
	Routes []models.RouteMapping `yaml:"-"` // Ordered slice, populated by custom unmarshaler
}

// UnmarshalYAML implements custom YAML unmarshaling so routes keep the order
// they are written in; the map key is the route path.
func (f *File) UnmarshalYAML(node *yaml.Node) error {
	type routesOnly struct {
		Routes map[string]models.RouteMapping `yaml:"routes"`
	}
	var m routesOnly
	if err := node.Decode(&m); err != nil {
		return err
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "routes" {
			continue
		}
		// routesNode.Content alternates: key, value, key, value...
		routesNode := node.Content[i+1]
		for j := 0; j+1 < len(routesNode.Content); j += 2 {
			path := routesNode.Content[j].Value
			if mapping, ok := m.Routes[path]; ok {
				mapping.Path = path
				f.Routes = append(f.Routes, mapping)
			}
		}
		break
	}

	return nil
}
