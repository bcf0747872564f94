package hierarchy

import models "driveportal/internal/domain/models/hierarchy"

// FileAnalyzer classifies Drive items by naming convention, description keys and MIME type
type FileAnalyzer interface {
	// ParseName breaks a Drive item name into order, prefixes, suffixes and grouping keys
	ParseName(item *models.DriveItem) *models.ParsedName

	// Classify returns the semantic type and extracted metadata for an item.
	// Never fails; unrecognized items are generic.
	Classify(item *models.DriveItem, parsed *models.ParsedName) *models.Classification
}
