package engine

import (
	"context"

	"github.com/use-agent/pricetag/models"
)

// Engine is the interface that all fetch strategies must implement.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "rod").
	Name() string

	// Fetch extracts the product at req.URL.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a product page.
type FetchRequest struct {
	URL string
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	Title      string
	Price      string
	StatusCode int
	FinalURL   string
	EngineName string
}

// Product returns the caller-facing view of the result.
func (r *FetchResult) Product() *models.Product {
	return &models.Product{Title: r.Title, Price: r.Price}
}
