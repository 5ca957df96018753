package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func TestShortenTitle(t *testing.T) {
	tools := newToolset("http://unused.test", "", time.Second)

	res, err := tools.shortenTitle(context.Background(), callTool(map[string]any{
		"title":   "Amazon.com: Logitech M185 Wireless Mouse (Grey) | Compact",
		"max_len": float64(15),
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got := resultText(t, res); got != "Logitech M185 …" {
		t.Errorf("got %q", got)
	}

	res, _ = tools.shortenTitle(context.Background(), callTool(map[string]any{}))
	if !res.IsError {
		t.Error("missing title should be a tool error")
	}
}

func TestScrapeProductAndSync(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scrape":
			_, _ = w.Write([]byte(`{"title":"Wireless Mouse","price":"$19.99"}`))
		case "/sync":
			gotKey = r.Header.Get("X-API-Key")
			_, _ = w.Write([]byte(`{"ok":true,"rows":12}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tools := newToolset(srv.URL, "k1", 5*time.Second)

	res, err := tools.scrapeProduct(context.Background(), callTool(map[string]any{"url": "https://a.test/p"}))
	if err != nil {
		t.Fatal(err)
	}
	if got := resultText(t, res); !strings.Contains(got, "Wireless Mouse") || !strings.Contains(got, "$19.99") {
		t.Errorf("scrape_product = %q", got)
	}

	res, err = tools.syncSheet(context.Background(), callTool(nil))
	if err != nil {
		t.Fatal(err)
	}
	if got := resultText(t, res); got != "Synced 12 rows." {
		t.Errorf("sync_sheet = %q", got)
	}
	if gotKey != "k1" {
		t.Errorf("X-API-Key = %q", gotKey)
	}
}

func TestSyncSheet_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"sync_failed","details":"UPSTREAM_API_ERROR: failed to read range"}`))
	}))
	defer srv.Close()

	res, _ := newToolset(srv.URL, "", 5*time.Second).syncSheet(context.Background(), callTool(nil))
	if !res.IsError || !strings.Contains(resultText(t, res), "sync_failed") {
		t.Errorf("got %+v", res)
	}
}
