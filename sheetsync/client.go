package sheetsync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/pricetag/models"
)

// ScrapeClient calls the GET /scrape endpoint of a running pricetag server.
type ScrapeClient struct {
	baseURL string
	client  *http.Client
}

// NewScrapeClient creates a client for the API at baseURL.
func NewScrapeClient(baseURL string, timeout time.Duration) *ScrapeClient {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &ScrapeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Scrape extracts the product at rawURL through the API.
func (s *ScrapeClient) Scrape(ctx context.Context, rawURL string) (*models.Product, error) {
	endpoint := s.baseURL + "/scrape?url=" + url.QueryEscape(rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call scrape endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr models.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("scrape endpoint error (status %d): %s: %s", resp.StatusCode, apiErr.Error, apiErr.Details)
		}
		return nil, fmt.Errorf("scrape endpoint error (status %d): %s", resp.StatusCode, string(body))
	}

	var product models.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &product, nil
}
