package engine

import (
	"context"
	"fmt"

	"github.com/use-agent/pricetag/models"
)

// RenderFunc is the callback type that wraps the browser renderer.
// It is injected from main.go to avoid a circular import (engine/ -> scraper/).
type RenderFunc func(ctx context.Context, rawURL string) (*models.Product, error)

// RodEngine is the browser-based engine. It delegates to the rod renderer
// via a callback.
type RodEngine struct {
	render RenderFunc
}

// NewRodEngine creates a RodEngine around render.
func NewRodEngine(render RenderFunc) *RodEngine {
	return &RodEngine{render: render}
}

func (e *RodEngine) Name() string { return "rod" }

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.render == nil {
		return nil, fmt.Errorf("%s: render func not configured", e.Name())
	}

	product, err := e.render(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Title:      product.Title,
		Price:      product.Price,
		FinalURL:   req.URL,
		EngineName: e.Name(),
	}, nil
}
