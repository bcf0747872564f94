package hierarchy

import "strings"

// Google Drive MIME types the hierarchy cares about
const (
	MimeFolder       = "application/vnd.google-apps.folder"
	MimeShortcut     = "application/vnd.google-apps.shortcut"
	MimeDocument     = "application/vnd.google-apps.document"
	MimeSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	MimePresentation = "application/vnd.google-apps.presentation"
	MimeForm         = "application/vnd.google-apps.form"
	MimePDF          = "application/pdf"

	googleAppsPrefix = "application/vnd.google-apps."
)

// DriveType distinguishes files from folders in the hierarchy
type DriveType string

const (
	DriveTypeFile   DriveType = "file"
	DriveTypeFolder DriveType = "folder"
)

// DriveItem is a raw file or folder record as returned by the Drive client
type DriveItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	MimeType      string   `json:"mimeType"`
	Description   string   `json:"description,omitempty"`
	Parents       []string `json:"parents,omitempty"`
	WebViewLink   string   `json:"webViewLink,omitempty"`
	ThumbnailLink string   `json:"thumbnailLink,omitempty"`
	IconLink      string   `json:"iconLink,omitempty"`
	ModifiedTime  string   `json:"modifiedTime,omitempty"` // RFC3339, as reported by Drive
	Size          int64    `json:"size,omitempty"`

	// Set only for shortcuts
	ShortcutTargetID       string `json:"shortcutTargetId,omitempty"`
	ShortcutTargetMimeType string `json:"shortcutTargetMimeType,omitempty"`
}

// IsShortcut reports whether the item is a Drive shortcut
func (d *DriveItem) IsShortcut() bool {
	return d.MimeType == MimeShortcut
}

// IsFolder reports whether the item is a folder or a shortcut to one
func (d *DriveItem) IsFolder() bool {
	if d.IsShortcut() {
		return d.ShortcutTargetMimeType == MimeFolder
	}
	return d.MimeType == MimeFolder
}

// EffectiveMimeType returns the target MIME type for shortcuts
func (d *DriveItem) EffectiveMimeType() string {
	if d.IsShortcut() && d.ShortcutTargetMimeType != "" {
		return d.ShortcutTargetMimeType
	}
	return d.MimeType
}

// TraversalID is the id to list when descending into this item.
// For folder shortcuts this is the target folder, which is what makes
// cycles possible in the first place.
func (d *DriveItem) TraversalID() string {
	if d.IsShortcut() && d.ShortcutTargetID != "" {
		return d.ShortcutTargetID
	}
	return d.ID
}

// IsGoogleNative reports whether the item is a Google Docs/Sheets/Slides/etc. document,
// which has no file extension and must be exported rather than downloaded.
func (d *DriveItem) IsGoogleNative() bool {
	return strings.HasPrefix(d.EffectiveMimeType(), googleAppsPrefix)
}

// DriveType returns the hierarchy drive type for the item
func (d *DriveItem) DriveType() DriveType {
	if d.IsFolder() {
		return DriveTypeFolder
	}
	return DriveTypeFile
}
