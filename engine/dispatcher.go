package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/use-agent/pricetag/models"
)

// Dispatcher runs engines strictly in order and returns the first success.
//
// Any failure moves on to the next engine without looking at the error
// kind; the last engine's error is returned unchanged. Engines never run
// concurrently for the same request and nothing is remembered between calls.
type Dispatcher struct {
	engines []Engine
}

// NewDispatcher creates a Dispatcher that tries engines in the given order.
func NewDispatcher(engines ...Engine) *Dispatcher {
	return &Dispatcher{engines: engines}
}

// Dispatch runs the fallback chain for req.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if req == nil || strings.TrimSpace(req.URL) == "" {
		return nil, models.NewExtractionError(models.KindMissingURL, "Missing ?url=", nil)
	}
	if len(d.engines) == 0 {
		return nil, fmt.Errorf("dispatcher: no engines configured")
	}

	var lastErr error
	for i, eng := range d.engines {
		slog.Debug("engine starting", "engine", eng.Name(), "url", req.URL)

		result, err := eng.Fetch(ctx, req)
		if err == nil {
			slog.Info("engine succeeded", "engine", result.EngineName, "url", req.URL)
			return result, nil
		}
		lastErr = err

		if i+1 < len(d.engines) {
			slog.Info("engine failed, falling back",
				"engine", eng.Name(),
				"next", d.engines[i+1].Name(),
				"url", req.URL,
				"error", err,
			)
		} else {
			slog.Warn("all engines failed", "url", req.URL, "error", err)
		}
	}
	return nil, lastErr
}

// Extract is Dispatch for a bare URL, returning only the product.
func (d *Dispatcher) Extract(ctx context.Context, rawURL string) (*models.Product, error) {
	result, err := d.Dispatch(ctx, &FetchRequest{URL: rawURL})
	if err != nil {
		return nil, err
	}
	return result.Product(), nil
}
