package hierarchy

import (
	"context"

	models "driveportal/internal/domain/models/hierarchy"
)

// HierarchyBuilder walks a Drive folder tree into a HierarchyItem tree
type HierarchyBuilder interface {
	// Build fetches rootFolderID and its descendants up to opts.MaxDepth.
	// Failures below the root degrade that branch to empty; root failures are returned.
	Build(ctx context.Context, rootFolderID string, opts models.BuildOptions) (*models.HierarchyItem, *models.BuildStats, error)
}
