package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pricetag/models"
)

// Health returns a handler for GET /. It never touches the pipeline.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.StatusResponse{
			Status:  "ok",
			Message: "pricetag scraper is running",
		})
	}
}
