package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"reelist/internal/imdb"
	"reelist/internal/match"
)

// Status is the terminal outcome for one source entry.
type Status string

const (
	StatusAdded         Status = "ADDED"
	StatusAlreadyMember Status = "SKIPPED"
	StatusMissing       Status = "MISSING"
	StatusError         Status = "ERROR"
)

// Record captures the outcome of one source entry.
type Record struct {
	Entry        imdb.Entry
	Status       Status
	Method       match.Method
	MatchedTitle string
	MatchedYear  int
	Score        int
	Note         string
}

// Summary aggregates a run's outcomes. The four counters always sum to
// the number of classified entries.
type Summary struct {
	Added         int
	AlreadyMember int
	Missing       int
	Failed        int
}

// Total returns the number of entries the summary covers.
func (s Summary) Total() int {
	return s.Added + s.AlreadyMember + s.Missing + s.Failed
}

// Report accumulates one record per source entry. Slots are indexed by
// list position so finalization is always in source order, no matter
// which pass produced each record.
type Report struct {
	records []Record
	filled  []bool
}

// NewReport sizes a report for a list of n entries.
func NewReport(n int) *Report {
	return &Report{
		records: make([]Record, n),
		filled:  make([]bool, n),
	}
}

// Set stores the record for the entry at the given list position.
func (r *Report) Set(position int, rec Record) {
	if position < 0 || position >= len(r.records) {
		return
	}
	r.records[position] = rec
	r.filled[position] = true
}

// Records returns the finalized records in source-list order. On an
// aborted run only the entries processed so far are present.
func (r *Report) Records() []Record {
	out := make([]Record, 0, len(r.records))
	for i, rec := range r.records {
		if r.filled[i] {
			out = append(out, rec)
		}
	}
	return out
}

// Summary tallies the finalized records.
func (r *Report) Summary() Summary {
	var s Summary
	for i, rec := range r.records {
		if !r.filled[i] {
			continue
		}
		switch rec.Status {
		case StatusAdded:
			s.Added++
		case StatusAlreadyMember:
			s.AlreadyMember++
		case StatusMissing:
			s.Missing++
		case StatusError:
			s.Failed++
		}
	}
	return s
}

// reportHeader matches the audit CSV layout of the original tooling
// around this workflow, so downstream spreadsheets keep working.
var reportHeader = []string{
	"Title", "Year", "Original Title", "IMDB_ID",
	"Status", "Match_Method", "Plex_Title", "Plex_Year", "Notes",
}

// WriteCSV exports the report in source-list order.
func (r *Report) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, rec := range r.Records() {
		matchedYear := ""
		if rec.MatchedYear != 0 {
			matchedYear = strconv.Itoa(rec.MatchedYear)
		}
		row := []string{
			rec.Entry.Title,
			rec.Entry.Year,
			rec.Entry.OriginalTitle,
			rec.Entry.IMDBID,
			string(rec.Status),
			string(rec.Method),
			rec.MatchedTitle,
			matchedYear,
			rec.Note,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
