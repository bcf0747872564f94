package hierarchy

import (
	"regexp"
	"strconv"
	"strings"

	models "driveportal/internal/domain/models/hierarchy"
)

// NoOrder is the order given to items without a numeric name prefix,
// so they sort after every explicitly ordered sibling.
const NoOrder = 9999

const (
	suffixInactive = "_inactive"
	suffixHidden   = "_hidden"
)

var (
	// "01_sidebar_Docs", "2 - Intro", "03.Overview"
	orderPattern = regexp.MustCompile(`^(\d+)[_\-. ]+(.+)$`)
	// "file-P1", "cover-p12"; P0 is not a preview
	previewPattern = regexp.MustCompile(`-[pP]([1-9]\d*)$`)
	digitsPattern  = regexp.MustCompile(`^\d+$`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// knownPrefixes are the name tags recognized by the portal renderers
var knownPrefixes = map[string]bool{
	"sidebar":   true,
	"tab":       true,
	"section":   true,
	"accordion": true,
	"button":    true,
	"vimeo":     true,
	"youtube":   true,
	"video":     true,
	"form":      true,
	"slide":     true,
	"slides":    true,
	"pdf":       true,
	"image":     true,
	"gallery":   true,
	"copy":      true,
	"link":      true,
	"hidden":    true,
}

// parseName breaks a Drive item name into its naming-convention parts
func parseName(item *models.DriveItem) *models.ParsedName {
	parsed := &models.ParsedName{
		Order:    NoOrder,
		Prefixes: []string{},
		Suffixes: []string{},
	}

	stem := strings.TrimSpace(item.Name)
	if !item.IsFolder() && !item.IsGoogleNative() {
		stem, parsed.Extension = splitExtension(stem)
	}

	stem = stripSuffixes(stem, parsed)

	parsed.BaseName = strings.ToLower(stem)
	parsed.PreviewPattern = parsed.BaseName + "-P"

	rest := stem
	if m := orderPattern.FindStringSubmatch(stem); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			parsed.Order = n
			parsed.HasOrder = true
			rest = m[2]
		}
	}

	tokens := strings.Split(rest, "_")
	i := 0
	for ; i < len(tokens); i++ {
		tag := strings.ToLower(strings.TrimSpace(tokens[i]))
		if !knownPrefixes[tag] {
			break
		}
		parsed.Prefixes = append(parsed.Prefixes, tag)
		if tag == "hidden" {
			parsed.Hidden = true
		}
		// vimeo_123456789_Title carries the video id right after the tag
		if tag == "vimeo" && i+1 < len(tokens) && digitsPattern.MatchString(tokens[i+1]) {
			parsed.VideoID = tokens[i+1]
			i++
		}
	}

	parsed.DisplayName = humanize(strings.Join(tokens[i:], " "))
	if parsed.DisplayName == "" {
		parsed.DisplayName = humanize(rest)
	}
	if parsed.DisplayName == "" {
		parsed.DisplayName = item.Name
	}

	return parsed
}

// splitExtension separates a short trailing ".ext" from a file name
func splitExtension(name string) (string, string) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return name, ""
	}
	ext := name[dot+1:]
	if len(ext) > 5 || strings.ContainsAny(ext, " _-") {
		return name, ""
	}
	return name[:dot], strings.ToLower(ext)
}

// stripSuffixes removes _inactive, _hidden and -P<n> markers from the end of
// a name, in any order. Only one preview marker is recognized.
func stripSuffixes(stem string, parsed *models.ParsedName) string {
	for {
		lower := strings.ToLower(stem)
		switch {
		case strings.HasSuffix(lower, suffixInactive) && len(stem) > len(suffixInactive):
			stem = stem[:len(stem)-len(suffixInactive)]
			parsed.Inactive = true
			parsed.Suffixes = append([]string{"inactive"}, parsed.Suffixes...)
		case strings.HasSuffix(lower, suffixHidden) && len(stem) > len(suffixHidden):
			stem = stem[:len(stem)-len(suffixHidden)]
			parsed.Hidden = true
			parsed.Suffixes = append([]string{"hidden"}, parsed.Suffixes...)
		default:
			if parsed.IsPreview() {
				return stem
			}
			loc := previewPattern.FindStringSubmatchIndex(stem)
			if loc == nil || loc[0] == 0 {
				return stem
			}
			n, err := strconv.Atoi(stem[loc[2]:loc[3]])
			if err != nil {
				return stem
			}
			parsed.PreviewIndex = n
			parsed.Suffixes = append([]string{"P" + strconv.Itoa(n)}, parsed.Suffixes...)
			stem = stem[:loc[0]]
		}
	}
}

// humanize turns "Spring_Launch-Deck" into "Spring Launch Deck"
func humanize(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
