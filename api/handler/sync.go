package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pricetag/models"
)

// Syncer refreshes the spreadsheet and reports how many rows it wrote.
type Syncer interface {
	Run(ctx context.Context) (int, error)
}

var errSyncDisabled = errors.New("spreadsheet sync is not configured")

// Sync returns a handler for POST /sync.
func Sync(s Syncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s == nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "sync_failed",
				Details: errSyncDisabled.Error(),
			})
			return
		}

		rows, err := s.Run(c.Request.Context())
		if err != nil {
			slog.Error("sync failed", "error", err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "sync_failed",
				Details: err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, models.SyncResponse{OK: true, Rows: rows})
	}
}
