package plex

import "strings"

// Item is the read-only snapshot of one library entry. The full item set
// is fetched once per run and never refreshed mid-run.
type Item struct {
	RatingKey  string
	SectionKey string
	Title      string
	Year       int
	IMDBID     string
}

// Section describes one Plex library section.
type Section struct {
	Key   string
	Title string
	Type  string
}

// Collection describes one named collection within a section.
type Collection struct {
	RatingKey string
	Title     string
	Count     int
}

// imdbIDFromGUID extracts an IMDb identifier from a Plex guid value such
// as "com.plexapp.agents.imdb://tt0133093?lang=en" or "imdb://tt0133093".
// Returns "" when the guid carries no IMDb reference.
func imdbIDFromGUID(guid string) string {
	const marker = "imdb://"
	idx := strings.Index(guid, marker)
	if idx < 0 {
		return ""
	}
	id := guid[idx+len(marker):]
	if cut := strings.IndexAny(id, "?&"); cut >= 0 {
		id = id[:cut]
	}
	return strings.TrimSpace(id)
}
