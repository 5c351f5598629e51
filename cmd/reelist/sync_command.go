package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reelist/internal/config"
	"reelist/internal/history"
	"reelist/internal/imdb"
	"reelist/internal/logging"
	"reelist/internal/match"
	"reelist/internal/reconcile"
	"reelist/internal/services/plex"
)

func newSyncCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		csvPath    string
		listURL    string
		collection string
		library    string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile an IMDb list into a Plex collection",
		Long: `Sync classifies every entry of an IMDb list against the configured
Plex movie library, then adds the missing matches to the named
collection in list order. Entries already in the collection are
skipped, so repeated runs converge without duplicating work.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if err := validateSourceFlags(csvPath, listURL); err != nil {
				return err
			}
			if strings.TrimSpace(collection) == "" {
				return errors.New("--collection is required")
			}
			if strings.TrimSpace(library) == "" {
				library = cfg.Plex.Library
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSync(ctx, cmd.OutOrStdout(), cfg, syncOptions{
				CSVPath:    csvPath,
				ListURL:    listURL,
				Collection: collection,
				Library:    library,
				ReportPath: reportPath,
			})
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Path to an IMDb list export CSV")
	cmd.Flags().StringVar(&listURL, "list-url", "", "URL of a public IMDb list page")
	cmd.Flags().StringVar(&collection, "collection", "", "Plex collection to sync into")
	cmd.Flags().StringVar(&library, "library", "", "Plex movie library (defaults to plex.library)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Report CSV destination (defaults to the report directory)")

	return cmd
}

type syncOptions struct {
	CSVPath    string
	ListURL    string
	Collection string
	Library    string
	ReportPath string
}

func (o syncOptions) sourceLabel() string {
	if o.CSVPath != "" {
		return o.CSVPath
	}
	return o.ListURL
}

func validateSourceFlags(csvPath, listURL string) error {
	hasCSV := strings.TrimSpace(csvPath) != ""
	hasURL := strings.TrimSpace(listURL) != ""
	switch {
	case hasCSV && hasURL:
		return errors.New("--csv and --list-url are mutually exclusive")
	case !hasCSV && !hasURL:
		return errors.New("one of --csv or --list-url is required")
	}
	return nil
}

func runSync(ctx context.Context, out io.Writer, cfg *config.Config, opts syncOptions) error {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	logger = logger.With("component", "sync")

	// One sync at a time per state dir. Concurrent runs would race on
	// the membership snapshot and interleave collection ordering.
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another sync is already running (lock %s)", cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	entries, err := loadEntries(ctx, opts)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("source list contains no entries")
	}
	logger.Info("source list loaded", "entries", len(entries), "source", opts.sourceLabel())

	client, err := plex.NewClient(cfg.Plex.URL, cfg.Plex.Token, cfg.PlexTimeout())
	if err != nil {
		return err
	}
	if err := client.CheckConnection(ctx); err != nil {
		return fmt.Errorf("connect to plex: %w", err)
	}

	section, sections, err := client.SectionByTitle(ctx, opts.Library)
	if err != nil {
		if errors.Is(err, plex.ErrNotFound) {
			return fmt.Errorf("%w\n%s", err, renderSectionList(sections))
		}
		return err
	}

	items, err := client.SectionItems(ctx, section.Key)
	if err != nil {
		return err
	}
	logger.Info("library snapshot fetched", "library", section.Title, "items", len(items))

	members, err := collectionMembers(ctx, client, section.Key, opts.Collection, logger)
	if err != nil {
		return err
	}

	total := len(entries)
	colorize := shouldColorize(out)
	reconciler := &reconcile.Reconciler{
		Library:    match.NewLibrary(items),
		Members:    reconcile.NewMembershipIndex(members),
		Service:    client,
		Collection: opts.Collection,
		Logger:     logger,
		OnRecord: func(position int, rec reconcile.Record) {
			fmt.Fprintln(out, renderRecordLine(position, total, rec, colorize))
		},
	}

	runID := uuid.NewString()
	startedAt := time.Now()
	report, runErr := reconciler.Run(ctx, entries)
	finishedAt := time.Now()

	// The report and history row are written even when the run was
	// cancelled, so a partial pass remains auditable.
	reportPath, reportErr := writeReport(cfg, opts, report)
	if reportErr != nil {
		logger.Error("write report failed", "error", reportErr)
	}
	if err := saveRunHistory(cfg, opts, runID, startedAt, finishedAt, report); err != nil {
		logger.Error("record run history failed", "error", err)
	}

	summary := report.Summary()
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSummaryTable(opts.Collection, summary))
	if reportPath != "" {
		fmt.Fprintf(out, "Report written to %s\n", reportPath)
	}
	logger.Info("sync finished",
		"run_id", runID,
		"added", summary.Added,
		"skipped", summary.AlreadyMember,
		"missing", summary.Missing,
		"failed", summary.Failed)

	if runErr != nil {
		return runErr
	}
	return reportErr
}

func loadEntries(ctx context.Context, opts syncOptions) ([]imdb.Entry, error) {
	if opts.CSVPath != "" {
		path, err := config.ExpandPath(opts.CSVPath)
		if err != nil {
			return nil, err
		}
		return imdb.ParseCSVFile(path)
	}
	return imdb.FetchList(ctx, opts.ListURL)
}

func collectionMembers(ctx context.Context, client *plex.Client, sectionKey, name string, logger *slog.Logger) ([]plex.Item, error) {
	collection, found, err := client.CollectionByTitle(ctx, sectionKey, name)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Info("collection does not exist yet", "collection", name)
		return nil, nil
	}
	members, err := client.CollectionItems(ctx, collection.RatingKey)
	if err != nil {
		return nil, err
	}
	logger.Info("collection members fetched", "collection", collection.Title, "members", len(members))
	return members, nil
}

func writeReport(cfg *config.Config, opts syncOptions, report *reconcile.Report) (string, error) {
	path := strings.TrimSpace(opts.ReportPath)
	if path == "" {
		path = filepath.Join(cfg.Paths.ReportDir, reportFileName(opts.Collection, time.Now()))
	} else {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return "", err
		}
		path = expanded
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create report directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer file.Close()

	if err := report.WriteCSV(file); err != nil {
		return "", err
	}
	return path, nil
}

// reportFileName builds names like noir_essentials_20260301-120500.csv.
func reportFileName(collection string, at time.Time) string {
	token := strings.ToLower(strings.TrimSpace(collection))
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, token)
	mapped = strings.Trim(mapped, "_")
	if mapped == "" {
		mapped = "sync"
	}
	return mapped + "_" + at.Format("20060102-150405") + ".csv"
}

func saveRunHistory(cfg *config.Config, opts syncOptions, runID string, startedAt, finishedAt time.Time, report *reconcile.Report) error {
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()

	summary := report.Summary()
	run := history.Run{
		ID:         runID,
		Collection: opts.Collection,
		Library:    opts.Library,
		Source:     opts.sourceLabel(),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Added:      summary.Added,
		Skipped:    summary.AlreadyMember,
		Missing:    summary.Missing,
		Failed:     summary.Failed,
	}
	// History writes use a fresh context so a cancelled run still lands.
	return store.SaveRun(context.Background(), run, report.Records())
}

func renderSummaryTable(collection string, summary reconcile.Summary) string {
	return renderTable(
		[]string{"Collection", "Added", "Skipped", "Missing", "Failed", "Total"},
		[][]string{{
			collection,
			fmt.Sprintf("%d", summary.Added),
			fmt.Sprintf("%d", summary.AlreadyMember),
			fmt.Sprintf("%d", summary.Missing),
			fmt.Sprintf("%d", summary.Failed),
			fmt.Sprintf("%d", summary.Total()),
		}},
		1,
	)
}

func renderSectionList(sections []plex.Section) string {
	if len(sections) == 0 {
		return "No libraries are visible with the configured token."
	}
	var sb strings.Builder
	sb.WriteString("Available libraries:")
	for _, section := range sections {
		sb.WriteString("\n  - ")
		sb.WriteString(section.Title)
		if section.Type != "" {
			sb.WriteString(" (")
			sb.WriteString(section.Type)
			sb.WriteByte(')')
		}
	}
	return sb.String()
}
