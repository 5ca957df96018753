package models

// ScrapeQuery is the query string for GET /scrape.
type ScrapeQuery struct {
	// URL is the product page to extract.
	URL string `form:"url" binding:"required"`
}
