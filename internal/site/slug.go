package site

import (
	"fmt"
	"regexp"
)

var slugPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Slug derives the filename fragment for a detail page from its record
// title: every character outside [A-Za-z0-9] is replaced one-for-one with a
// dash. The rule is lossy on purpose and must not change; published URLs
// depend on it. Two titles that normalize alike, on the same ordinal,
// collide; the last one written wins, as in prior releases.
func Slug(title string) string {
	return slugPattern.ReplaceAllString(title, "-")
}

// DetailFileName returns the output filename for a detail page:
// <slug>-<ordinal>.html.
func DetailFileName(title string, ordinal int) string {
	return fmt.Sprintf("%s-%d.html", Slug(title), ordinal)
}
