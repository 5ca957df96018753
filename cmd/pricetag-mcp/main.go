package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("PRICETAG_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}
	apiKey := os.Getenv("PRICETAG_API_KEY")

	s := server.NewMCPServer(
		"pricetag",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	tools := newToolset(apiURL, apiKey, 180*time.Second)

	scrapeProductTool := mcp.NewTool("scrape_product",
		mcp.WithDescription("Extract the title and price of a retailer product page. Tries a plain HTTP fetch first and falls back to a headless browser."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The product page URL"),
		),
	)
	s.AddTool(scrapeProductTool, tools.scrapeProduct)

	shortenTitleTool := mcp.NewTool("shorten_title",
		mcp.WithDescription("Shorten a product title the way the spreadsheet sync does: drops retailer prefixes, 'by <brand>' suffixes, bracketed notes and everything after '|', then truncates."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The raw product title"),
		),
		mcp.WithNumber("max_len",
			mcp.Description("Maximum length in characters (default: 60)"),
		),
	)
	s.AddTool(shortenTitleTool, tools.shortenTitle)

	syncSheetTool := mcp.NewTool("sync_sheet",
		mcp.WithDescription("Re-scrape every product URL in the configured spreadsheet and write titles and prices back."),
	)
	s.AddTool(syncSheetTool, tools.syncSheet)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
