package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/pricetag/api"
	"github.com/use-agent/pricetag/api/handler"
	"github.com/use-agent/pricetag/config"
	"github.com/use-agent/pricetag/engine"
	"github.com/use-agent/pricetag/scraper"
	"github.com/use-agent/pricetag/sheets"
	"github.com/use-agent/pricetag/sheetsync"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("pricetag starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"runtime", cfg.Browser.Mode,
	)

	// ── 3. Build the strategy chain ─────────────────────────────────
	// The renderer is handed to the rod engine as a callback so engine/
	// never imports scraper/.
	renderer := scraper.NewRenderer(
		scraper.NewRodLauncher(cfg.Browser, cfg.Scraper),
		cfg.Scraper,
		cfg.Retry,
	)
	dispatcher := engine.NewDispatcher(
		engine.NewHTTPEngine(cfg.Scraper),
		engine.NewRodEngine(renderer.Render),
	)

	// ── 4. Spreadsheet sync (optional) ──────────────────────────────
	var syncer handler.Syncer
	if cfg.Sheets.SpreadsheetID != "" {
		store, err := sheets.New(context.Background(), cfg.Sheets)
		if err != nil {
			slog.Error("failed to initialise sheets client", "error", err)
			os.Exit(1)
		}
		client := sheetsync.NewScrapeClient(cfg.Sync.ScrapeBaseURL, cfg.Sync.RequestTimeout)
		syncer = sheetsync.New(store, client, cfg)
		slog.Info("spreadsheet sync enabled",
			"readRange", cfg.Sheets.ReadRange,
			"writeColumn", cfg.Sheets.WriteColumn,
		)
	} else {
		slog.Warn("PRICETAG_SHEET_ID not set, POST /sync will fail")
	}

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(dispatcher, syncer, cfg)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Renders own their browser and close it themselves; give them time.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("pricetag stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
