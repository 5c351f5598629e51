package reconcile

import (
	"context"
	"errors"
	"testing"

	"reelist/internal/imdb"
	"reelist/internal/match"
	"reelist/internal/services/plex"
)

type fakeService struct {
	added  []string
	failOn map[string]error
}

func (f *fakeService) AddToCollection(_ context.Context, _, ratingKey, _ string) error {
	if err, ok := f.failOn[ratingKey]; ok {
		return err
	}
	f.added = append(f.added, ratingKey)
	return nil
}

func movie(key, title string, year int, imdbID string) plex.Item {
	return plex.Item{RatingKey: key, SectionKey: "1", Title: title, Year: year, IMDBID: imdbID}
}

func newReconciler(items, members []plex.Item, svc Service) *Reconciler {
	return &Reconciler{
		Library:    match.NewLibrary(items),
		Members:    NewMembershipIndex(members),
		Service:    svc,
		Collection: "Test Collection",
	}
}

func TestRunProducesOneRecordPerEntryInOrder(t *testing.T) {
	items := []plex.Item{
		movie("1", "Arrival", 2016, "tt2543164"),
		movie("2", "Heat", 1995, "tt0113277"),
	}
	entries := []imdb.Entry{
		{Title: "Arrival", Year: "2016", IMDBID: "tt2543164"},
		{Title: "Nowhere Man", Year: "1990", IMDBID: "tt9999999"},
		{Title: "Heat", Year: "1995", IMDBID: "tt0113277"},
		{Title: "No Identifier Here"},
	}

	svc := &fakeService{}
	report, err := newReconciler(items, nil, svc).Run(context.Background(), entries)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	records := report.Records()
	if len(records) != len(entries) {
		t.Fatalf("expected %d records, got %d", len(entries), len(records))
	}
	for i, rec := range records {
		if rec.Entry.Title != entries[i].Title {
			t.Errorf("record %d out of order: %q", i, rec.Entry.Title)
		}
	}

	wantStatus := []Status{StatusAdded, StatusMissing, StatusAdded, StatusError}
	for i, want := range wantStatus {
		if records[i].Status != want {
			t.Errorf("record %d status = %s, want %s", i, records[i].Status, want)
		}
	}

	summary := report.Summary()
	if summary.Total() != len(entries) {
		t.Errorf("summary total %d != %d entries", summary.Total(), len(entries))
	}
	if summary.Added != 2 || summary.Missing != 1 || summary.Failed != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestCommitOrderFollowsSourceOrder(t *testing.T) {
	items := []plex.Item{
		movie("c", "Gamma", 2003, "tt3"),
		movie("a", "Alpha", 2001, "tt1"),
		movie("b", "Beta", 2002, "tt2"),
	}
	entries := []imdb.Entry{
		{Title: "Alpha", Year: "2001", IMDBID: "tt1"},
		{Title: "Beta", Year: "2002", IMDBID: "tt2"},
		{Title: "Gamma", Year: "2003", IMDBID: "tt3"},
	}

	svc := &fakeService{}
	if _, err := newReconciler(items, nil, svc).Run(context.Background(), entries); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(svc.added) != len(want) {
		t.Fatalf("expected %d adds, got %v", len(want), svc.added)
	}
	for i, key := range want {
		if svc.added[i] != key {
			t.Errorf("add %d = %s, want %s (full order %v)", i, svc.added[i], key, svc.added)
		}
	}
}

func TestSecondRunIsIdempotent(t *testing.T) {
	items := []plex.Item{
		movie("1", "Arrival", 2016, "tt2543164"),
		movie("2", "Heat", 1995, "tt0113277"),
	}
	entries := []imdb.Entry{
		{Title: "Arrival", Year: "2016", IMDBID: "tt2543164"},
		{Title: "Heat", Year: "1995", IMDBID: "tt0113277"},
	}

	first := &fakeService{}
	if _, err := newReconciler(items, nil, first).Run(context.Background(), entries); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.added) != 2 {
		t.Fatalf("first run added %v", first.added)
	}

	// Second run: the collection now contains what the first run added.
	second := &fakeService{}
	report, err := newReconciler(items, items, second).Run(context.Background(), entries)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.added) != 0 {
		t.Fatalf("second run performed mutations: %v", second.added)
	}
	for i, rec := range report.Records() {
		if rec.Status != StatusAlreadyMember {
			t.Errorf("record %d status = %s, want %s", i, rec.Status, StatusAlreadyMember)
		}
	}
}

func TestMutationFailureRecordsErrorAndContinues(t *testing.T) {
	items := []plex.Item{
		movie("a", "Alpha", 2001, "tt1"),
		movie("b", "Beta", 2002, "tt2"),
		movie("c", "Gamma", 2003, "tt3"),
	}
	entries := []imdb.Entry{
		{Title: "Alpha", Year: "2001", IMDBID: "tt1"},
		{Title: "Beta", Year: "2002", IMDBID: "tt2"},
		{Title: "Gamma", Year: "2003", IMDBID: "tt3"},
	}

	svc := &fakeService{failOn: map[string]error{"b": errors.New("server went away")}}
	report, err := newReconciler(items, nil, svc).Run(context.Background(), entries)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	records := report.Records()
	if records[1].Status != StatusError || records[1].Note == "" {
		t.Errorf("expected noted error for failed add, got %+v", records[1])
	}
	if records[2].Status != StatusAdded {
		t.Errorf("expected run to continue past failure, got %+v", records[2])
	}
	if len(svc.added) != 2 {
		t.Errorf("expected 2 successful adds, got %v", svc.added)
	}
}

func TestMembershipMatchesByEitherKey(t *testing.T) {
	items := []plex.Item{movie("1", "Arrival", 2016, "tt2543164")}
	entries := []imdb.Entry{{Title: "Arrival", Year: "2016", IMDBID: "tt2543164"}}

	// Member recorded with a rating key but no discoverable IMDb ID.
	byRatingKey := []plex.Item{{RatingKey: "1", Title: "Arrival", Year: 2016}}
	svc := &fakeService{}
	report, err := newReconciler(items, byRatingKey, svc).Run(context.Background(), entries)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Records()[0].Status != StatusAlreadyMember {
		t.Errorf("rating-key membership missed: %+v", report.Records()[0])
	}

	// Member recorded under a different rating key but the same IMDb ID.
	byIMDBID := []plex.Item{{RatingKey: "other", Title: "Arrival", Year: 2016, IMDBID: "tt2543164"}}
	svc = &fakeService{}
	report, err = newReconciler(items, byIMDBID, svc).Run(context.Background(), entries)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Records()[0].Status != StatusAlreadyMember {
		t.Errorf("imdb-id membership missed: %+v", report.Records()[0])
	}
	if len(svc.added) != 0 {
		t.Errorf("membership hit still mutated: %v", svc.added)
	}
}

func TestAbortKeepsPartialReport(t *testing.T) {
	items := []plex.Item{
		movie("a", "Alpha", 2001, "tt1"),
		movie("b", "Beta", 2002, "tt2"),
	}
	entries := []imdb.Entry{
		{Title: "Alpha", Year: "2001", IMDBID: "tt1"},
		{Title: "Beta", Year: "2002", IMDBID: "tt2"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := newReconciler(items, items, &fakeService{})
	count := 0
	r.OnRecord = func(int, Record) {
		count++
		if count == 1 {
			cancel()
		}
	}

	report, err := r.Run(ctx, entries)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := len(report.Records()); got != 1 {
		t.Errorf("expected 1 partial record, got %d", got)
	}
}

func TestIdentifierPrecedenceProducesIDMethod(t *testing.T) {
	items := []plex.Item{movie("42", "Arrival", 2016, "tt2543164")}
	entries := []imdb.Entry{{Title: "Arrival", Year: "2016", IMDBID: "tt2543164"}}

	svc := &fakeService{}
	report, err := newReconciler(items, nil, svc).Run(context.Background(), entries)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	rec := report.Records()[0]
	if rec.Status != StatusAdded || rec.Method != match.MethodIMDBID {
		t.Errorf("expected ADDED via IMDB ID, got %+v", rec)
	}
	if rec.MatchedTitle != "Arrival" || rec.MatchedYear != 2016 {
		t.Errorf("matched item fields not carried: %+v", rec)
	}
}
