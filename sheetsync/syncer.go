package sheetsync

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/use-agent/pricetag/cleaner"
	"github.com/use-agent/pricetag/config"
	"github.com/use-agent/pricetag/models"
	"github.com/use-agent/pricetag/sheets"
	"github.com/use-agent/pricetag/webhook"
	"golang.org/x/sync/errgroup"
)

// Store is the spreadsheet the sync reads URLs from and writes results to.
type Store interface {
	ReadColumn(ctx context.Context, rng string) ([]string, error)
	WriteRows(ctx context.Context, rng string, rows [][]string) error
}

// Scraper extracts one product.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (*models.Product, error)
}

// Syncer refreshes the title/price columns of the spreadsheet.
type Syncer struct {
	store   Store
	scraper Scraper

	readRange     string
	writeColumn   string
	titleMaxLen   int
	concurrency   int
	webhookURL    string
	webhookSecret string
}

// New creates a Syncer from cfg.
func New(store Store, scraper Scraper, cfg *config.Config) *Syncer {
	return &Syncer{
		store:         store,
		scraper:       scraper,
		readRange:     cfg.Sheets.ReadRange,
		writeColumn:   cfg.Sheets.WriteColumn,
		titleMaxLen:   cfg.Title.MaxLen,
		concurrency:   cfg.Sync.Concurrency,
		webhookURL:    cfg.Sync.WebhookURL,
		webhookSecret: cfg.Sync.WebhookSecret,
	}
}

// Run reads every URL, scrapes them concurrently and writes one
// [short title, price] row back per URL. It returns the number of rows
// written.
//
// A failed scrape leaves that row's cells empty and does not fail the run.
// Spreadsheet errors fail the whole run.
func (s *Syncer) Run(ctx context.Context) (int, error) {
	start := time.Now()
	syncID := randomID()

	rows, failed, err := s.run(ctx)
	summary := webhook.SyncSummary{
		Rows:       len(rows),
		Failed:     failed,
		DurationMs: time.Since(start).Milliseconds(),
	}

	if err != nil {
		summary.Error = err.Error()
		slog.Error("sync failed", "sync_id", syncID, "error", err)
		s.notify(webhook.EventSyncFailed, syncID, summary)
		return 0, err
	}

	slog.Info("sync completed",
		"sync_id", syncID,
		"rows", len(rows),
		"failed", failed,
		"durationMs", summary.DurationMs,
	)
	s.notify(webhook.EventSyncCompleted, syncID, summary)
	return len(rows), nil
}

func (s *Syncer) run(ctx context.Context) ([][]string, int, error) {
	urls, err := s.store.ReadColumn(ctx, s.readRange)
	if err != nil {
		return nil, 0, err
	}
	if len(urls) == 0 {
		return nil, 0, nil
	}

	rows := make([][]string, len(urls))
	failures := make([]bool, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, rawURL := range urls {
		if rawURL == "" {
			rows[i] = []string{"", ""}
			continue
		}
		g.Go(func() error {
			rows[i], failures[i] = s.scrapeRow(gctx, rawURL)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, f := range failures {
		if f {
			failed++
		}
	}

	rng, err := sheets.WriteRange(s.readRange, s.writeColumn, len(rows))
	if err != nil {
		return nil, failed, models.NewExtractionError(models.KindUpstreamAPI, "invalid sheet range", err)
	}
	if err := s.store.WriteRows(ctx, rng, rows); err != nil {
		return nil, failed, err
	}
	return rows, failed, nil
}

// scrapeRow returns the output cells for one URL and whether it failed.
func (s *Syncer) scrapeRow(ctx context.Context, rawURL string) ([]string, bool) {
	product, err := s.scraper.Scrape(ctx, rawURL)
	if err != nil {
		slog.Warn("sync row failed", "url", rawURL, "error", err)
		return []string{"", ""}, true
	}
	return []string{cleaner.Shorten(product.Title, s.titleMaxLen), product.Price}, false
}

func (s *Syncer) notify(eventType, syncID string, summary webhook.SyncSummary) {
	if s.webhookURL == "" {
		return
	}
	webhook.DeliverAsync(s.webhookURL, s.webhookSecret, &webhook.Event{
		Type:      eventType,
		SyncID:    syncID,
		Timestamp: time.Now().Unix(),
		Data:      summary,
	})
}

// randomID generates a short random hex string for sync IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
