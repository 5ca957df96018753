package sheetsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/use-agent/pricetag/config"
	"github.com/use-agent/pricetag/models"
	"github.com/use-agent/pricetag/webhook"
)

type fakeStore struct {
	urls     []string
	readErr  error
	writeErr error

	wroteRange string
	wroteRows  [][]string
	writes     int
}

func (f *fakeStore) ReadColumn(context.Context, string) ([]string, error) {
	return f.urls, f.readErr
}

func (f *fakeStore) WriteRows(_ context.Context, rng string, rows [][]string) error {
	f.writes++
	f.wroteRange = rng
	f.wroteRows = rows
	return f.writeErr
}

type fakeScraper struct {
	mu       sync.Mutex
	products map[string]*models.Product
	seen     []string
}

func (f *fakeScraper) Scrape(_ context.Context, rawURL string) (*models.Product, error) {
	f.mu.Lock()
	f.seen = append(f.seen, rawURL)
	f.mu.Unlock()
	if p, ok := f.products[rawURL]; ok {
		return p, nil
	}
	return nil, models.NewExtractionError(models.KindCaptcha, "bot challenge page detected", nil)
}

func testConfig() *config.Config {
	return &config.Config{
		Sheets: config.SheetsConfig{ReadRange: "Sheet1!A2:A", WriteColumn: "B"},
		Title:  config.TitleConfig{MaxLen: 60},
	}
}

func TestRun_WritesShortenedRows(t *testing.T) {
	store := &fakeStore{urls: []string{
		"https://a.test/1",
		"",
		"https://a.test/3",
		"https://a.test/blocked",
	}}
	scraper := &fakeScraper{products: map[string]*models.Product{
		"https://a.test/1": {Title: "Amazon.com: Logitech M185 Wireless Mouse (Grey) by Logitech", Price: "$19.99"},
		"https://a.test/3": {Title: "USB-C Cable | 2m | Braided", Price: ""},
	}}

	n, err := New(store, scraper, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 4 {
		t.Errorf("rows = %d, want 4", n)
	}
	if store.wroteRange != "Sheet1!B2:C5" {
		t.Errorf("write range = %q", store.wroteRange)
	}

	want := [][]string{
		{"Logitech M185 Wireless Mouse", "$19.99"},
		{"", ""},
		{"USB-C Cable", ""},
		{"", ""},
	}
	for i := range want {
		if strings.Join(store.wroteRows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %q, want %q", i, store.wroteRows[i], want[i])
		}
	}
	if len(scraper.seen) != 3 {
		t.Errorf("scraped %d urls, want 3 (blank rows skipped)", len(scraper.seen))
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	store := &fakeStore{urls: []string{"https://a.test/1", "https://a.test/2"}}
	scraper := &fakeScraper{products: map[string]*models.Product{
		"https://a.test/1": {Title: "One"},
		"https://a.test/2": {Title: "Two"},
	}}
	cfg := testConfig()
	cfg.Sync.Concurrency = 1

	if _, err := New(store, scraper, cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.wroteRows[0][0] != "One" || store.wroteRows[1][0] != "Two" {
		t.Errorf("rows = %v", store.wroteRows)
	}
}

func TestRun_EmptySheetWritesNothing(t *testing.T) {
	store := &fakeStore{}
	n, err := New(store, &fakeScraper{}, testConfig()).Run(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, want 0", store.writes)
	}
}

func TestRun_StoreErrorsFailTheSync(t *testing.T) {
	upstream := models.NewExtractionError(models.KindUpstreamAPI, "failed to read range", errors.New("403"))

	store := &fakeStore{readErr: upstream}
	if _, err := New(store, &fakeScraper{}, testConfig()).Run(context.Background()); !errors.Is(err, upstream) {
		t.Errorf("read failure: err = %v", err)
	}
	if store.writes != 0 {
		t.Error("wrote after read failure")
	}

	store = &fakeStore{urls: []string{"https://a.test/1"}, writeErr: upstream}
	if _, err := New(store, &fakeScraper{}, testConfig()).Run(context.Background()); !errors.Is(err, upstream) {
		t.Errorf("write failure: err = %v", err)
	}
}

func TestRun_WebhookEvents(t *testing.T) {
	events := make(chan webhook.Event, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(webhook.SignatureHeader) == "" {
			t.Error("webhook not signed")
		}
		var ev webhook.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		events <- ev
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Sync.WebhookURL = srv.URL
	cfg.Sync.WebhookSecret = "s3cret"

	store := &fakeStore{urls: []string{"https://a.test/1"}}
	scraper := &fakeScraper{products: map[string]*models.Product{"https://a.test/1": {Title: "One"}}}
	if _, err := New(store, scraper, cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectEvent(t, events, webhook.EventSyncCompleted)

	store.readErr = errors.New("quota exceeded")
	_, _ = New(store, scraper, cfg).Run(context.Background())
	expectEvent(t, events, webhook.EventSyncFailed)
}

func expectEvent(t *testing.T, events <-chan webhook.Event, want string) {
	t.Helper()
	select {
	case ev := <-events:
		if ev.Type != want || ev.SyncID == "" {
			t.Errorf("event = %+v, want type %s", ev, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no %s event delivered", want)
	}
}
