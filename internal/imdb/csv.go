package imdb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseCSV reads an IMDb list export. Columns are located by header name
// so the export's column order does not matter; Title is required, the
// rest are optional. The IMDb ID comes from the URL column, falling back
// to the Const column when the URL yields nothing.
func ParseCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	titleCol, ok := columns["title"]
	if !ok {
		return nil, errors.New("csv has no Title column")
	}
	urlCol, hasURL := columns["url"]
	constCol, hasConst := columns["const"]
	yearCol, hasYear := columns["year"]
	origCol, hasOrig := columns["original title"]

	var entries []Entry
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(entries)+2, err)
		}

		entry := Entry{Title: field(row, titleCol)}
		if hasYear {
			entry.Year = field(row, yearCol)
		}
		if hasOrig {
			entry.OriginalTitle = field(row, origCol)
		}
		if hasURL {
			entry.IMDBID = ExtractID(field(row, urlCol))
		}
		if entry.IMDBID == "" && hasConst {
			entry.IMDBID = ExtractID(field(row, constCol))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ParseCSVFile opens and parses an export on disk.
func ParseCSVFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list csv: %w", err)
	}
	defer file.Close()
	return ParseCSV(file)
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
