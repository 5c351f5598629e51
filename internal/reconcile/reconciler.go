package reconcile

import (
	"context"
	"log/slog"

	"reelist/internal/imdb"
	"reelist/internal/match"
)

// Service is the mutation capability the commit pass needs. The Plex
// client satisfies it; tests substitute fakes.
type Service interface {
	AddToCollection(ctx context.Context, sectionKey, ratingKey, collection string) error
}

// Reconciler runs the two-phase sync of a source list into a collection.
// The library snapshot and membership index are read-only for the whole
// run; all mutation goes through Service during the commit pass.
type Reconciler struct {
	Library    *match.Library
	Members    *MembershipIndex
	Service    Service
	Collection string
	Logger     *slog.Logger

	// OnRecord, when set, is called as each entry reaches its terminal
	// state. Positions are source-list indexes.
	OnRecord func(position int, rec Record)
}

type pendingAdd struct {
	position int
	entry    imdb.Entry
	match    *match.Match
}

// Run classifies every entry in list order, then commits the queued
// additions in that same order. Per-entry failures are recorded and
// never stop the run; the only error returned is context cancellation,
// and the partially filled report remains valid.
func (r *Reconciler) Run(ctx context.Context, entries []imdb.Entry) (*Report, error) {
	report := NewReport(len(entries))
	logger := r.logger()

	var queue []pendingAdd
	for position, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		m := r.Library.Find(entry)
		if m == nil {
			rec := r.missingRecord(entry)
			r.emit(report, position, rec)
			logger.Warn("no library match", "title", entry.Display(), "imdb_id", entry.IMDBID)
			continue
		}

		if r.Members.Contains(m.Item, entry.IMDBID) {
			r.emit(report, position, Record{
				Entry:        entry,
				Status:       StatusAlreadyMember,
				Method:       m.Method,
				MatchedTitle: m.Item.Title,
				MatchedYear:  m.Item.Year,
				Score:        m.Score,
			})
			logger.Info("already in collection", "title", m.Item.Title, "year", m.Item.Year)
			continue
		}

		queue = append(queue, pendingAdd{position: position, entry: entry, match: m})
	}

	for _, p := range queue {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		err := r.Service.AddToCollection(ctx, p.match.Item.SectionKey, p.match.Item.RatingKey, r.Collection)
		if err != nil {
			r.emit(report, p.position, Record{
				Entry:        p.entry,
				Status:       StatusError,
				Method:       p.match.Method,
				MatchedTitle: p.match.Item.Title,
				MatchedYear:  p.match.Item.Year,
				Score:        p.match.Score,
				Note:         "add to collection failed: " + err.Error(),
			})
			logger.Error("add to collection failed", "title", p.match.Item.Title, "error", err)
			continue
		}

		r.emit(report, p.position, Record{
			Entry:        p.entry,
			Status:       StatusAdded,
			Method:       p.match.Method,
			MatchedTitle: p.match.Item.Title,
			MatchedYear:  p.match.Item.Year,
			Score:        p.match.Score,
		})
		logger.Info("added to collection",
			"title", p.match.Item.Title, "year", p.match.Item.Year, "method", string(p.match.Method))
	}

	return report, nil
}

// missingRecord distinguishes an entry with no recognizable identifier
// from one that simply has no library match; both are terminal for the
// entry and never abort the run.
func (r *Reconciler) missingRecord(entry imdb.Entry) Record {
	if entry.IMDBID == "" {
		return Record{
			Entry:  entry,
			Status: StatusError,
			Note:   "no IMDb identifier in source row and no title match",
		}
	}
	return Record{
		Entry:  entry,
		Status: StatusMissing,
		Note:   "no match by IMDb ID, title+year, or title only",
	}
}

func (r *Reconciler) emit(report *Report, position int, rec Record) {
	report.Set(position, rec)
	if r.OnRecord != nil {
		r.OnRecord(position, rec)
	}
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
