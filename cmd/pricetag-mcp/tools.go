package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/use-agent/pricetag/cleaner"
	"github.com/use-agent/pricetag/models"
	"github.com/use-agent/pricetag/sheetsync"
)

// toolset holds what the tool handlers need to reach the pricetag API.
type toolset struct {
	apiURL string
	apiKey string
	client *http.Client
	scrape *sheetsync.ScrapeClient
}

func newToolset(apiURL, apiKey string, timeout time.Duration) *toolset {
	return &toolset{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		scrape: sheetsync.NewScrapeClient(apiURL, timeout),
	}
}

func (t *toolset) scrapeProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	product, err := t.scrape.Scrape(ctx, url)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	price := product.Price
	if price == "" {
		price = "(not shown)"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Title: %s\nPrice: %s", product.Title, price)), nil
}

func (t *toolset) shortenTitle(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required"), nil
	}
	maxLen := int(request.GetFloat("max_len", 0))

	return mcp.NewToolResultText(cleaner.Shorten(title, maxLen)), nil
}

func (t *toolset) syncSheet(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL+"/sync", nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
	}
	if t.apiKey != "" {
		req.Header.Set("X-API-Key", t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr models.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", apiErr.Error, apiErr.Details)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("sync failed with status %d", resp.StatusCode)), nil
	}

	var syncResp models.SyncResponse
	if err := json.Unmarshal(body, &syncResp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Synced %d rows.", syncResp.Rows)), nil
}
