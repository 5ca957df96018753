package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pricetag/models"
)

// Extractor runs the extraction pipeline for one URL.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*models.Product, error)
}

// Scrape returns a handler for GET /scrape?url=.
//
// Flow:
//  1. Read ?url=; absent or blank → 400.
//  2. Extractor.Extract → lightweight fetch, falling back to rendering.
//  3. 200 {title, price}, or 500 with the pipeline error as details.
func Scrape(ex Extractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// ── 1. Parse query ──────────────────────────────────────────
		var q models.ScrapeQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			slog.Debug("scrape query rejected", "query", c.Request.URL.RawQuery, "error", err)
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing ?url="})
			return
		}
		if strings.TrimSpace(q.URL) == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing ?url="})
			return
		}

		// ── 2. Extract ──────────────────────────────────────────────
		product, err := ex.Extract(c.Request.Context(), q.URL)
		if err != nil {
			if models.KindOf(err) == models.KindMissingURL {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing ?url="})
				return
			}
			slog.Warn("scrape failed",
				"url", q.URL,
				"kind", models.KindOf(err),
				"durationMs", time.Since(start).Milliseconds(),
				"error", err,
			)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Scraping failed",
				Details: err.Error(),
			})
			return
		}

		// ── 3. Respond ──────────────────────────────────────────────
		slog.Info("scrape succeeded",
			"url", q.URL,
			"durationMs", time.Since(start).Milliseconds(),
		)
		c.JSON(http.StatusOK, product)
	}
}
