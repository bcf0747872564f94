package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"
	hierarchySvc "driveportal/internal/domain/services/hierarchy"
)

// hierarchyBuilder implements the HierarchyBuilder interface
type hierarchyBuilder struct {
	drive    hierarchySvc.DriveClient
	analyzer hierarchySvc.FileAnalyzer
	logger   *slog.Logger
}

// NewHierarchyBuilder creates a new hierarchy builder
func NewHierarchyBuilder(
	drive hierarchySvc.DriveClient,
	analyzer hierarchySvc.FileAnalyzer,
	logger *slog.Logger,
) hierarchySvc.HierarchyBuilder {
	return &hierarchyBuilder{
		drive:    drive,
		analyzer: analyzer,
		logger:   logger,
	}
}

// buildState is the per-build mutable state threaded through the recursion
type buildState struct {
	rootID string
	opts   models.BuildOptions
	stats  *models.BuildStats
	// onPath holds the traversal ids of the folders between the root and the
	// folder currently being listed
	onPath map[string]bool
}

// Build walks rootFolderID down to opts.MaxDepth.
// Siblings are fetched sequentially; each expanded folder costs one list call.
func (b *hierarchyBuilder) Build(ctx context.Context, rootFolderID string, opts models.BuildOptions) (*models.HierarchyItem, *models.BuildStats, error) {
	if opts.MaxDepth < 0 {
		return nil, nil, fmt.Errorf("%w: max depth must not be negative", domain.ErrValidation)
	}

	start := time.Now()
	state := &buildState{
		rootID: rootFolderID,
		opts:   opts,
		stats:  &models.BuildStats{MaxDepth: opts.MaxDepth},
		onPath: make(map[string]bool),
	}

	rootMeta, err := b.drive.GetFolder(ctx, rootFolderID)
	state.stats.APICalls++
	if err != nil {
		return nil, nil, fmt.Errorf("get root folder %s: %w", rootFolderID, err)
	}

	root := b.newItem(rootMeta, 0, "")

	if opts.MaxDepth > 0 {
		traversalID := rootMeta.TraversalID()
		state.onPath[traversalID] = true
		children, err := b.listChildren(ctx, state, root, traversalID)
		if err != nil {
			return nil, nil, fmt.Errorf("list root folder %s: %w", rootFolderID, err)
		}
		root.Children = children
	}

	finalizeStats(root, state.stats)
	state.stats.BuildTimeMs = time.Since(start).Milliseconds()

	b.logger.Info("hierarchy built",
		"root_id", rootFolderID,
		"max_depth", opts.MaxDepth,
		"total_items", state.stats.TotalItems,
		"api_calls", state.stats.APICalls,
		"failed_folders", state.stats.FailedFolders,
		"skipped_cycles", state.stats.SkippedCycles,
		"build_time_ms", state.stats.BuildTimeMs,
	)

	return root, state.stats, nil
}

// listChildren fetches and assembles the direct children of a folder node.
// The returned error is either the listing failure of this folder or a
// context error from anywhere below it.
func (b *hierarchyBuilder) listChildren(ctx context.Context, state *buildState, parent *models.HierarchyItem, folderID string) ([]*models.HierarchyItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, err := b.drive.ListFolder(ctx, folderID)
	state.stats.APICalls++
	if err != nil {
		return nil, err
	}

	nodes := make([]*models.HierarchyItem, 0, len(items))
	for i := range items {
		item := &items[i]
		node := b.newItem(item, parent.Depth+1, parent.ID)

		if node.Inactive && !state.opts.IncludeInactive {
			continue
		}
		if node.Hidden && !state.opts.IncludeHidden {
			continue
		}

		if node.IsFolder() && node.Depth < state.opts.MaxDepth {
			if err := b.expand(ctx, state, node, item.TraversalID()); err != nil {
				return nil, err
			}
		}

		nodes = append(nodes, node)
	}

	return groupPreviews(nodes), nil
}

// expand fills in a folder node's children. Listing failures degrade the
// branch to empty; only context errors are returned.
func (b *hierarchyBuilder) expand(ctx context.Context, state *buildState, node *models.HierarchyItem, traversalID string) error {
	if state.onPath[traversalID] {
		node.Cyclic = true
		state.stats.SkippedCycles++
		b.logger.Warn("folder cycle skipped",
			"root_id", state.rootID,
			"folder_id", traversalID,
			"item_id", node.ID,
			"depth", node.Depth,
		)
		return nil
	}

	state.onPath[traversalID] = true
	defer delete(state.onPath, traversalID)

	children, err := b.listChildren(ctx, state, node, traversalID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		state.stats.FailedFolders++
		b.logger.Warn("subfolder listing failed, branch left empty",
			"root_id", state.rootID,
			"folder_id", traversalID,
			"depth", node.Depth,
			"error", err,
		)
		return nil
	}

	node.Children = children
	return nil
}

func (b *hierarchyBuilder) newItem(item *models.DriveItem, depth int, parentID string) *models.HierarchyItem {
	return toHierarchyItem(b.analyzer, item, depth, parentID)
}

// toHierarchyItem converts a Drive record into a hierarchy node (without children)
func toHierarchyItem(analyzer hierarchySvc.FileAnalyzer, item *models.DriveItem, depth int, parentID string) *models.HierarchyItem {
	parsed := analyzer.ParseName(item)
	classification := analyzer.Classify(item, parsed)

	node := &models.HierarchyItem{
		ID:             item.ID,
		Name:           item.Name,
		DisplayName:    parsed.DisplayName,
		DriveType:      item.DriveType(),
		MimeType:       item.MimeType,
		Depth:          depth,
		ParentID:       parentID,
		Order:          parsed.Order,
		Prefixes:       nonNilStrings(parsed.Prefixes),
		Suffixes:       nonNilStrings(parsed.Suffixes),
		Type:           classification.Type,
		Classification: classification,
		Description:    item.Description,
		BaseName:       parsed.BaseName,
		PreviewPattern: parsed.PreviewPattern,
		PreviewIndex:   parsed.PreviewIndex,
		WebViewLink:    item.WebViewLink,
		ThumbnailLink:  item.ThumbnailLink,
		ModifiedTime:   item.ModifiedTime,
		IsShortcut:     item.IsShortcut(),
		TargetID:       item.ShortcutTargetID,
		Inactive:       parsed.Inactive,
		Hidden:         parsed.Hidden,
		Children:       []*models.HierarchyItem{},
		PreviewItems:   []*models.HierarchyItem{},
	}
	return node
}

// groupPreviews moves "-P<n>" items under the sibling sharing their base name.
// Only non-preview items can hold previews; previews without a base stay
// where they are.
func groupPreviews(nodes []*models.HierarchyItem) []*models.HierarchyItem {
	sortItems(nodes)

	bases := make(map[string]*models.HierarchyItem)
	for _, node := range nodes {
		if node.PreviewIndex > 0 {
			continue
		}
		if _, exists := bases[node.BaseName]; !exists {
			bases[node.BaseName] = node
		}
	}

	result := make([]*models.HierarchyItem, 0, len(nodes))
	for _, node := range nodes {
		if node.PreviewIndex > 0 {
			if base, ok := bases[node.BaseName]; ok {
				base.PreviewItems = append(base.PreviewItems, node)
				continue
			}
		}
		result = append(result, node)
	}

	for _, base := range bases {
		if len(base.PreviewItems) < 2 {
			continue
		}
		sort.SliceStable(base.PreviewItems, func(i, j int) bool {
			a, b := base.PreviewItems[i], base.PreviewItems[j]
			if a.PreviewIndex != b.PreviewIndex {
				return a.PreviewIndex < b.PreviewIndex
			}
			return a.Name < b.Name
		})
	}

	return result
}

// sortItems orders siblings by numeric order, ties broken by name
func sortItems(nodes []*models.HierarchyItem) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name); la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}

// finalizeStats counts the nodes below the root
func finalizeStats(root *models.HierarchyItem, stats *models.BuildStats) {
	root.Walk(func(item *models.HierarchyItem) bool {
		stats.PreviewCount += len(item.PreviewItems)
		if item == root {
			return true
		}
		if item.IsFolder() {
			stats.FolderCount++
		} else {
			stats.FileCount++
		}
		return true
	})
	stats.TotalItems = root.Count() - 1
	stats.DeepestLevel = root.DeepestLevel()
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
