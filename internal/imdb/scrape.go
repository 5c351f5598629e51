package imdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var yearPattern = regexp.MustCompile(`\((\d{4})`)

// FetchList downloads an IMDb list page and parses its entries. Scraping
// exists so a plain list URL works without the export step; the CSV path
// stays the authoritative one (it carries original titles).
func FetchList(ctx context.Context, listURL string) ([]Entry, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; reelist/0.1)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch list page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("list page returned %d", resp.StatusCode)
	}
	return ParseListPage(resp.Body)
}

// ParseListPage extracts entries from IMDb list page HTML. It is a pure
// function of the document so tests can feed fixture HTML.
func ParseListPage(r io.Reader) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse list html: %w", err)
	}

	var entries []Entry
	doc.Find(".lister-item").Each(func(_ int, item *goquery.Selection) {
		link := item.Find(".lister-item-header a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		entry := Entry{Title: title}
		if href, ok := link.Attr("href"); ok {
			entry.IMDBID = ExtractID(href)
		}
		yearText := item.Find(".lister-item-year").First().Text()
		if m := yearPattern.FindStringSubmatch(yearText); m != nil {
			entry.Year = m[1]
		}
		entries = append(entries, entry)
	})

	if len(entries) == 0 {
		return nil, errors.New("no list entries found in page")
	}
	return entries, nil
}
