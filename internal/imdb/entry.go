package imdb

import (
	"regexp"
	"strings"
)

// idPattern matches an IMDb title identifier anywhere in a URL or cell.
var idPattern = regexp.MustCompile(`tt\d+`)

// Entry is one row of an IMDb list, constructed once when the list is
// read and never mutated. Year stays a string: exports carry it as text
// and some rows (unreleased titles) have none.
type Entry struct {
	Title         string
	Year          string
	OriginalTitle string
	IMDBID        string
}

// ExtractID pulls an IMDb title identifier out of a URL. Returns "" when
// none is present.
func ExtractID(rawURL string) string {
	return idPattern.FindString(rawURL)
}

// Display renders the entry for logs and status lines.
func (e Entry) Display() string {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = "(untitled)"
	}
	if e.Year == "" {
		return title
	}
	return title + " (" + e.Year + ")"
}
