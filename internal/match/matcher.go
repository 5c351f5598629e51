package match

import (
	"strconv"
	"strings"

	"reelist/internal/imdb"
	"reelist/internal/services/plex"
)

// Method names how a match was found. The strings appear verbatim in
// reports and logs.
type Method string

const (
	MethodIMDBID    Method = "IMDB ID"
	MethodTitleYear Method = "Title + Year Fuzzy Match"
	MethodTitleOnly Method = "Title Only Fuzzy Match"
)

const (
	// TitleYearMatchRatio is the minimum similarity when the candidate's
	// year already matches the entry's.
	TitleYearMatchRatio = 85
	// TitleOnlyMatchRatio is the minimum similarity with no year filter.
	TitleOnlyMatchRatio = 90
	// YearVetoWindow is the largest year difference a title-only match
	// tolerates when the entry states a year.
	YearVetoWindow = 2
)

// Match is a successful resolution of an entry to a library item.
// Identifier matches carry no similarity score.
type Match struct {
	Item   plex.Item
	Method Method
	Score  int
}

// Library indexes an immutable library snapshot for matching. Normalized
// title keys and the IMDb ID map are computed once at construction; the
// snapshot is never mutated afterwards.
type Library struct {
	items    []plex.Item
	keys     []string
	byIMDBID map[string]int
}

// NewLibrary builds the matching index. When two items share an IMDb ID
// the first one seen wins, keeping lookups stable for the run.
func NewLibrary(items []plex.Item) *Library {
	lib := &Library{
		items:    items,
		keys:     make([]string, len(items)),
		byIMDBID: make(map[string]int, len(items)),
	}
	for i, item := range items {
		lib.keys[i] = NormalizeTitle(item.Title)
		if item.IMDBID != "" {
			if _, seen := lib.byIMDBID[item.IMDBID]; !seen {
				lib.byIMDBID[item.IMDBID] = i
			}
		}
	}
	return lib
}

// Len reports the snapshot size.
func (l *Library) Len() int { return len(l.items) }

// Find runs the matcher cascade for one entry, terminal on first hit.
// No match is a nil result, never an error.
func (l *Library) Find(entry imdb.Entry) *Match {
	if m := l.byID(entry); m != nil {
		return m
	}
	if m := l.byTitleYear(entry); m != nil {
		return m
	}
	return l.byTitleOnly(entry)
}

// byID resolves via exact IMDb ID lookup. An identifier hit short-circuits
// the fuzzy tiers even when a higher-scoring title exists elsewhere.
func (l *Library) byID(entry imdb.Entry) *Match {
	if entry.IMDBID == "" {
		return nil
	}
	idx, ok := l.byIMDBID[entry.IMDBID]
	if !ok {
		return nil
	}
	return &Match{Item: l.items[idx], Method: MethodIMDBID}
}

// byTitleYear matches among candidates whose year equals the entry's:
// first an exact title comparison, then similarity scoring with ties
// broken by first-seen library order.
func (l *Library) byTitleYear(entry imdb.Entry) *Match {
	for i := range l.items {
		if !yearEquals(l.items[i].Year, entry.Year) {
			continue
		}
		if titleEquals(l.items[i].Title, entry) {
			return &Match{Item: l.items[i], Method: MethodTitleYear, Score: 100}
		}
	}

	entryKey := NormalizeTitle(entry.Title)
	origKey := NormalizeTitle(entry.OriginalTitle)
	best, bestScore := -1, 0
	for i := range l.items {
		if !yearEquals(l.items[i].Year, entry.Year) {
			continue
		}
		if score := scoreKeys(l.keys[i], entryKey, origKey); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore < TitleYearMatchRatio {
		return nil
	}
	return &Match{Item: l.items[best], Method: MethodTitleYear, Score: bestScore}
}

// byTitleOnly matches with no year filter at the higher threshold, then
// vetoes the winner if its year strays more than YearVetoWindow from the
// entry's stated year. Entries without a parseable year skip the veto.
func (l *Library) byTitleOnly(entry imdb.Entry) *Match {
	entryKey := NormalizeTitle(entry.Title)
	origKey := NormalizeTitle(entry.OriginalTitle)
	best, bestScore := -1, 0
	for i := range l.items {
		if score := scoreKeys(l.keys[i], entryKey, origKey); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore < TitleOnlyMatchRatio {
		return nil
	}
	if year, err := strconv.Atoi(strings.TrimSpace(entry.Year)); err == nil {
		diff := l.items[best].Year - year
		if diff < 0 {
			diff = -diff
		}
		if diff > YearVetoWindow {
			return nil
		}
	}
	return &Match{Item: l.items[best], Method: MethodTitleOnly, Score: bestScore}
}

// titleEquals never treats two empty titles as equal; an entry with no
// title resolves to no match.
func titleEquals(candidate string, entry imdb.Entry) bool {
	if entry.Title != "" && strings.EqualFold(candidate, entry.Title) {
		return true
	}
	return entry.OriginalTitle != "" && strings.EqualFold(candidate, entry.OriginalTitle)
}

func yearEquals(itemYear int, entryYear string) bool {
	entryYear = strings.TrimSpace(entryYear)
	if entryYear == "" {
		return false
	}
	return strconv.Itoa(itemYear) == entryYear
}

func scoreKeys(candidateKey, entryKey, origKey string) int {
	if candidateKey == "" {
		return 0
	}
	score := 0
	if entryKey != "" {
		score = Ratio(candidateKey, entryKey)
	}
	if origKey != "" {
		if s := Ratio(candidateKey, origKey); s > score {
			score = s
		}
	}
	return score
}
