package alarm

import (
	"regexp"
	"strings"
)

// slugStripPattern collapses every run of non-word characters into a single
// separator. Unicode letters and digits count as word characters so that
// names like "Łukasz" keep their letters.
var slugStripPattern = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Slugify derives the stable internal key from a person's display name.
func Slugify(text string) string {
	slug := slugStripPattern.ReplaceAllString(text, "_")
	slug = strings.Trim(slug, "_")

	return strings.ToLower(slug)
}
