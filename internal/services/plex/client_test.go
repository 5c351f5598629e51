package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sectionsXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="2">
  <Directory key="1" type="movie" title="Movies"/>
  <Directory key="2" type="show" title="TV Shows"/>
</MediaContainer>`

const itemsXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="2">
  <Video ratingKey="42" librarySectionID="1" title="Arrival" year="2016" guid="plex://movie/5d776b59ad5437001f79c6f8">
    <Guid id="imdb://tt2543164"/>
    <Guid id="tmdb://329865"/>
  </Video>
  <Video ratingKey="77" librarySectionID="1" title="Heat" year="1995" guid="com.plexapp.agents.imdb://tt0113277?lang=en"/>
</MediaContainer>`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL, "token", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestSectionItemsDecodesGuids(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/sections/1/all" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Plex-Token"); got != "token" {
			t.Errorf("missing token header, got %q", got)
		}
		if got := r.URL.Query().Get("type"); got != "1" {
			t.Errorf("expected type=1 filter, got %q", got)
		}
		w.Write([]byte(itemsXML))
	}))

	items, err := client.SectionItems(context.Background(), "1")
	if err != nil {
		t.Fatalf("section items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].IMDBID != "tt2543164" {
		t.Errorf("expected Guid child IMDb ID, got %q", items[0].IMDBID)
	}
	if items[0].Year != 2016 || items[0].RatingKey != "42" {
		t.Errorf("unexpected item %+v", items[0])
	}
	if items[1].IMDBID != "tt0113277" {
		t.Errorf("expected guid attr IMDb ID, got %q", items[1].IMDBID)
	}
}

func TestSectionByTitleIsCaseInsensitive(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sectionsXML))
	}))

	section, _, err := client.SectionByTitle(context.Background(), "movies")
	if err != nil {
		t.Fatalf("section by title: %v", err)
	}
	if section.Key != "1" {
		t.Errorf("expected key 1, got %q", section.Key)
	}

	_, available, err := client.SectionByTitle(context.Background(), "Anime")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(available) != 2 {
		t.Errorf("expected available sections alongside miss, got %d", len(available))
	}
}

func TestAddToCollectionSendsTagParams(t *testing.T) {
	var method, path string
	var query map[string][]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		query = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.AddToCollection(context.Background(), "1", "42", "Best of 2016"); err != nil {
		t.Fatalf("add to collection: %v", err)
	}
	if method != http.MethodPut {
		t.Errorf("expected PUT, got %s", method)
	}
	if path != "/library/sections/1/all" {
		t.Errorf("unexpected path %s", path)
	}
	if got := query["collection[0].tag.tag"]; len(got) != 1 || got[0] != "Best of 2016" {
		t.Errorf("unexpected collection tag param %v", got)
	}
	if got := query["id"]; len(got) != 1 || got[0] != "42" {
		t.Errorf("unexpected id param %v", got)
	}
	if got := query["collection.locked"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("unexpected locked param %v", got)
	}
}

func TestStatusErrors(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := client.CheckConnection(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestIMDBIDFromGUID(t *testing.T) {
	cases := []struct {
		guid string
		want string
	}{
		{"com.plexapp.agents.imdb://tt0113277?lang=en", "tt0113277"},
		{"imdb://tt2543164", "tt2543164"},
		{"tmdb://329865", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := imdbIDFromGUID(tc.guid); got != tc.want {
			t.Errorf("imdbIDFromGUID(%q) = %q, want %q", tc.guid, got, tc.want)
		}
	}
}
