package api

import (
	"github.com/gin-gonic/gin"
	"github.com/use-agent/pricetag/api/handler"
	"github.com/use-agent/pricetag/api/middleware"
	"github.com/use-agent/pricetag/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	/scrape: RateLimit (if enabled)
//	/sync:   Auth (no-op without API keys)
//
// The liveness probe is outside every guard so monitoring always works.
// syncer may be nil when no spreadsheet is configured.
func NewRouter(ex handler.Extractor, syncer handler.Syncer, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/", handler.Health())

	scrape := []gin.HandlerFunc{}
	if cfg.RateLimit.Enabled {
		scrape = append(scrape, middleware.RateLimit(cfg.RateLimit))
	}
	scrape = append(scrape, handler.Scrape(ex))
	r.GET("/scrape", scrape...)

	r.POST("/sync", middleware.Auth(cfg.Auth.APIKeys), handler.Sync(syncer))

	return r
}
