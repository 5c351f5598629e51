package plex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const userAgent = "reelist/0.1.0"

var (
	// ErrUnauthorized indicates the server rejected the configured token.
	ErrUnauthorized = errors.New("plex: unauthorized")
	// ErrNotFound indicates a section or collection does not exist.
	ErrNotFound = errors.New("plex: not found")
)

// Client talks to a single Plex Media Server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a client for the given server. The base URL is
// trimmed of trailing slashes; a zero timeout defaults to 15 seconds.
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	token = strings.TrimSpace(token)
	if baseURL == "" {
		return nil, errors.New("plex: base URL is required")
	}
	if token == "" {
		return nil, errors.New("plex: token is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// CheckConnection verifies the server is reachable and the token valid.
func (c *Client) CheckConnection(ctx context.Context) error {
	_, err := c.get(ctx, "/identity", nil)
	return err
}

// Sections returns the server's library sections.
func (c *Client) Sections(ctx context.Context) ([]Section, error) {
	body, err := c.get(ctx, "/library/sections", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch sections: %w", err)
	}

	var container struct {
		Directories []struct {
			Key   string `xml:"key,attr"`
			Title string `xml:"title,attr"`
			Type  string `xml:"type,attr"`
		} `xml:"Directory"`
	}
	if err := xml.Unmarshal(body, &container); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}

	sections := make([]Section, 0, len(container.Directories))
	for _, dir := range container.Directories {
		if dir.Key == "" || dir.Title == "" {
			continue
		}
		sections = append(sections, Section{Key: dir.Key, Title: dir.Title, Type: dir.Type})
	}
	return sections, nil
}

// SectionByTitle resolves a section by case-insensitive title. On a miss
// it returns ErrNotFound along with every section found, so callers can
// list the available libraries.
func (c *Client) SectionByTitle(ctx context.Context, title string) (Section, []Section, error) {
	sections, err := c.Sections(ctx)
	if err != nil {
		return Section{}, nil, err
	}
	for _, section := range sections {
		if strings.EqualFold(section.Title, title) {
			return section, sections, nil
		}
	}
	return Section{}, sections, fmt.Errorf("%w: library %q", ErrNotFound, title)
}

// SectionItems fetches every movie in a section as an immutable snapshot.
func (c *Client) SectionItems(ctx context.Context, sectionKey string) ([]Item, error) {
	body, err := c.get(ctx, "/library/sections/"+url.PathEscape(sectionKey)+"/all", url.Values{"type": {"1"}})
	if err != nil {
		return nil, fmt.Errorf("fetch library items: %w", err)
	}
	items, err := decodeItems(body)
	if err != nil {
		return nil, fmt.Errorf("decode library items: %w", err)
	}
	for i := range items {
		if items[i].SectionKey == "" {
			items[i].SectionKey = sectionKey
		}
	}
	return items, nil
}

// Collections lists the collections defined within a section.
func (c *Client) Collections(ctx context.Context, sectionKey string) ([]Collection, error) {
	body, err := c.get(ctx, "/library/sections/"+url.PathEscape(sectionKey)+"/collections", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch collections: %w", err)
	}

	var container struct {
		Directories []struct {
			RatingKey string `xml:"ratingKey,attr"`
			Title     string `xml:"title,attr"`
			Count     int    `xml:"childCount,attr"`
		} `xml:"Directory"`
	}
	if err := xml.Unmarshal(body, &container); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}

	collections := make([]Collection, 0, len(container.Directories))
	for _, dir := range container.Directories {
		if dir.RatingKey == "" || dir.Title == "" {
			continue
		}
		collections = append(collections, Collection{
			RatingKey: dir.RatingKey,
			Title:     dir.Title,
			Count:     dir.Count,
		})
	}
	return collections, nil
}

// CollectionByTitle resolves a collection within a section by
// case-insensitive title. A missing collection is not an error shape the
// sync run treats as fatal, so the bool reports existence.
func (c *Client) CollectionByTitle(ctx context.Context, sectionKey, title string) (Collection, bool, error) {
	collections, err := c.Collections(ctx, sectionKey)
	if err != nil {
		return Collection{}, false, err
	}
	for _, collection := range collections {
		if strings.EqualFold(collection.Title, title) {
			return collection, true, nil
		}
	}
	return Collection{}, false, nil
}

// CollectionItems fetches the current members of a collection.
func (c *Client) CollectionItems(ctx context.Context, collectionKey string) ([]Item, error) {
	body, err := c.get(ctx, "/library/collections/"+url.PathEscape(collectionKey)+"/children", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch collection members: %w", err)
	}
	items, err := decodeItems(body)
	if err != nil {
		return nil, fmt.Errorf("decode collection members: %w", err)
	}
	return items, nil
}

// AddToCollection tags one library item into the named collection. Plex
// appends the item to the collection; ordering is controlled purely by
// when this call is made.
func (c *Client) AddToCollection(ctx context.Context, sectionKey, ratingKey, collection string) error {
	params := url.Values{
		"type":                  {"1"},
		"id":                    {ratingKey},
		"collection[0].tag.tag": {collection},
		"collection.locked":     {"1"},
	}
	endpoint := c.baseURL + "/library/sections/" + url.PathEscape(sectionKey) + "/all?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build add request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("add to collection: %w", err)
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return fmt.Errorf("add to collection: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", userAgent)
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func decodeItems(body []byte) ([]Item, error) {
	var container struct {
		Videos []struct {
			RatingKey  string `xml:"ratingKey,attr"`
			SectionKey string `xml:"librarySectionID,attr"`
			Title      string `xml:"title,attr"`
			Year       string `xml:"year,attr"`
			GUID       string `xml:"guid,attr"`
			GUIDs      []struct {
				ID string `xml:"id,attr"`
			} `xml:"Guid"`
		} `xml:"Video"`
	}
	if err := xml.Unmarshal(body, &container); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(container.Videos))
	for _, video := range container.Videos {
		if video.RatingKey == "" {
			continue
		}
		item := Item{
			RatingKey:  video.RatingKey,
			SectionKey: video.SectionKey,
			Title:      video.Title,
			IMDBID:     imdbIDFromGUID(video.GUID),
		}
		if year, err := strconv.Atoi(strings.TrimSpace(video.Year)); err == nil {
			item.Year = year
		}
		if item.IMDBID == "" {
			for _, guid := range video.GUIDs {
				if id := imdbIDFromGUID(guid.ID); id != "" {
					item.IMDBID = id
					break
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}
