package hierarchy

// ItemType is the semantic type of a hierarchy item, used by the UI to pick a renderer
type ItemType string

const (
	ItemTypeButton  ItemType = "button"
	ItemTypeVideo   ItemType = "video"
	ItemTypeSlide   ItemType = "slide"
	ItemTypeForm    ItemType = "form"
	ItemTypePDF     ItemType = "pdf"
	ItemTypeImage   ItemType = "image"
	ItemTypeGeneric ItemType = "generic"
)

// ClassificationSource records which signal decided the item type
type ClassificationSource string

const (
	SourcePrefix      ClassificationSource = "prefix"
	SourceDescription ClassificationSource = "description"
	SourceMime        ClassificationSource = "mime"
	SourceFallback    ClassificationSource = "fallback"
)

// Classification is the result of analyzing a single Drive item
type Classification struct {
	Type     ItemType             `json:"type"`
	Source   ClassificationSource `json:"source"`
	EmbedURL string               `json:"embedUrl,omitempty"`
	FormURL  string               `json:"formUrl,omitempty"`
	CopyText string               `json:"copyText,omitempty"`
	LinkURL  string               `json:"linkUrl,omitempty"`
	// Metadata holds every "key: value" line found in the description
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ParsedName is the naming-convention breakdown of a Drive item name
type ParsedName struct {
	Order          int
	HasOrder       bool
	Prefixes       []string
	Suffixes       []string
	DisplayName    string
	BaseName       string // lower-cased grouping key, no extension or suffixes
	Extension      string
	PreviewIndex   int // 0 = not a preview item
	PreviewPattern string
	VideoID        string // numeric Vimeo id embedded in the name, if any
	Inactive       bool
	Hidden         bool
}

// IsPreview reports whether the name carries a -P<n> suffix
func (p *ParsedName) IsPreview() bool {
	return p.PreviewIndex > 0
}
