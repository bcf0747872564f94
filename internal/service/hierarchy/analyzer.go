package hierarchy

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	models "driveportal/internal/domain/models/hierarchy"
	hierarchySvc "driveportal/internal/domain/services/hierarchy"
)

var (
	descriptionKeyPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*:\s*(.*)$`)
	trailingDigitsPattern = regexp.MustCompile(`(\d+)/?$`)
)

// prefixTypes maps name tags to item types. Structural tags (sidebar, tab,
// section, accordion, hidden) are deliberately absent.
var prefixTypes = map[string]models.ItemType{
	"button":  models.ItemTypeButton,
	"link":    models.ItemTypeButton,
	"copy":    models.ItemTypeButton,
	"vimeo":   models.ItemTypeVideo,
	"youtube": models.ItemTypeVideo,
	"video":   models.ItemTypeVideo,
	"slide":   models.ItemTypeSlide,
	"slides":  models.ItemTypeSlide,
	"form":    models.ItemTypeForm,
	"pdf":     models.ItemTypePDF,
	"image":   models.ItemTypeImage,
	"gallery": models.ItemTypeImage,
}

type fileAnalyzer struct{}

// NewFileAnalyzer creates a new file analyzer
func NewFileAnalyzer() hierarchySvc.FileAnalyzer {
	return &fileAnalyzer{}
}

// ParseName breaks a Drive item name into order, prefixes, suffixes and grouping keys
func (a *fileAnalyzer) ParseName(item *models.DriveItem) *models.ParsedName {
	return parseName(item)
}

// Classify decides the item type.
// Precedence: name prefix > description key > MIME type > generic.
func (a *fileAnalyzer) Classify(item *models.DriveItem, parsed *models.ParsedName) *models.Classification {
	if parsed == nil {
		parsed = parseName(item)
	}

	metadata := parseDescription(item.Description)
	keys := lowerKeys(metadata)

	c := &models.Classification{
		Type:     models.ItemTypeGeneric,
		Source:   models.SourceFallback,
		CopyText: keys["copy"],
		FormURL:  keys["formurl"],
		LinkURL:  firstNonEmpty(keys["url"], keys["link"]),
		EmbedURL: keys["embedurl"],
	}
	if len(metadata) > 0 {
		c.Metadata = metadata
	}

	if t, ok := typeFromPrefixes(parsed.Prefixes); ok {
		c.Type, c.Source = t, models.SourcePrefix
	} else if t, ok := typeFromDescription(keys); ok {
		c.Type, c.Source = t, models.SourceDescription
	} else if t, ok := typeFromMime(item.EffectiveMimeType()); ok {
		c.Type, c.Source = t, models.SourceMime
	}

	a.fillURLs(c, item, parsed, keys)
	return c
}

func typeFromPrefixes(prefixes []string) (models.ItemType, bool) {
	for _, prefix := range prefixes {
		if t, ok := prefixTypes[prefix]; ok {
			return t, true
		}
	}
	return "", false
}

func typeFromDescription(keys map[string]string) (models.ItemType, bool) {
	switch {
	case keys["formurl"] != "":
		return models.ItemTypeForm, true
	case keys["copy"] != "":
		return models.ItemTypeButton, true
	case keys["vimeo"] != "" || keys["youtube"] != "":
		return models.ItemTypeVideo, true
	case keys["url"] != "" || keys["link"] != "":
		return models.ItemTypeButton, true
	}
	return "", false
}

func typeFromMime(mimeType string) (models.ItemType, bool) {
	switch {
	case mimeType == models.MimePDF:
		return models.ItemTypePDF, true
	case mimeType == models.MimePresentation:
		return models.ItemTypeSlide, true
	case mimeType == models.MimeForm:
		return models.ItemTypeForm, true
	case strings.HasPrefix(mimeType, "image/"):
		return models.ItemTypeImage, true
	case strings.HasPrefix(mimeType, "video/"):
		return models.ItemTypeVideo, true
	}
	return "", false
}

// fillURLs derives embed and form URLs that the description did not set explicitly
func (a *fileAnalyzer) fillURLs(c *models.Classification, item *models.DriveItem, parsed *models.ParsedName, keys map[string]string) {
	id := item.TraversalID()
	mimeType := item.EffectiveMimeType()

	switch c.Type {
	case models.ItemTypeVideo:
		if c.EmbedURL != "" {
			return
		}
		if vimeoID := vimeoIDFrom(firstNonEmpty(keys["vimeo"], parsed.VideoID)); vimeoID != "" {
			c.EmbedURL = "https://player.vimeo.com/video/" + vimeoID
		} else if youtubeID := youtubeIDFrom(keys["youtube"]); youtubeID != "" {
			c.EmbedURL = "https://www.youtube.com/embed/" + youtubeID
		} else if strings.HasPrefix(mimeType, "video/") {
			c.EmbedURL = drivePreviewURL(id)
		}
	case models.ItemTypeSlide:
		if c.EmbedURL == "" && mimeType == models.MimePresentation {
			c.EmbedURL = fmt.Sprintf("https://docs.google.com/presentation/d/%s/embed", id)
		} else if c.EmbedURL == "" && !item.IsFolder() {
			c.EmbedURL = drivePreviewURL(id)
		}
	case models.ItemTypeForm:
		if c.FormURL == "" && mimeType == models.MimeForm {
			c.FormURL = fmt.Sprintf("https://docs.google.com/forms/d/%s/viewform", id)
		}
	case models.ItemTypePDF:
		if c.EmbedURL == "" && !item.IsFolder() {
			c.EmbedURL = drivePreviewURL(id)
		}
	case models.ItemTypeImage:
		if c.EmbedURL == "" && !item.IsFolder() {
			c.EmbedURL = fmt.Sprintf("https://drive.google.com/thumbnail?id=%s&sz=w2000", id)
		}
	}
}

// parseDescription extracts "key: value" lines from a Drive description.
// Lines that are not key/value pairs (free text, bare URLs) are ignored.
func parseDescription(description string) map[string]string {
	metadata := make(map[string]string)
	for _, line := range strings.Split(description, "\n") {
		m := descriptionKeyPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		if value == "" || strings.HasPrefix(value, "//") {
			continue
		}
		metadata[m[1]] = value
	}
	return metadata
}

func lowerKeys(metadata map[string]string) map[string]string {
	keys := make(map[string]string, len(metadata))
	for k, v := range metadata {
		keys[strings.ToLower(k)] = v
	}
	return keys
}

// vimeoIDFrom accepts a bare id or a vimeo.com / player.vimeo.com URL
func vimeoIDFrom(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if digitsPattern.MatchString(value) {
		return value
	}
	if m := trailingDigitsPattern.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return ""
}

// youtubeIDFrom accepts a bare id, a watch?v= URL or a youtu.be / embed URL
func youtubeIDFrom(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.Contains(value, "/") {
		return value
	}
	u, err := url.Parse(value)
	if err != nil {
		return ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	id := path.Base(strings.TrimSuffix(u.Path, "/"))
	if id == "." || id == "/" {
		return ""
	}
	return id
}

func drivePreviewURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/preview", id)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
