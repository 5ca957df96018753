package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RuntimeMode selects which browser binary the rendering strategy launches.
type RuntimeMode string

const (
	// RuntimeLocal uses a browser installed on the host.
	RuntimeLocal RuntimeMode = "local"

	// RuntimeManaged uses the rod-managed browser download with flags
	// suited to serverless/container hosts.
	RuntimeManaged RuntimeMode = "managed"
)

// DefaultTitleMaxLen is the spreadsheet title length used when none is configured.
const DefaultTitleMaxLen = 60

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Retry     RetryConfig
	Title     TitleConfig
	Sheets    SheetsConfig
	Sync      SyncConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: $PORT, then 3000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the headless browser launched per render.
type BrowserConfig struct {
	// Mode selects between a locally installed and a managed browser binary.
	Mode RuntimeMode // default: "local"

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path in local mode.
	BrowserBin string

	// ViewportWidth and ViewportHeight fix the desktop viewport.
	ViewportWidth  int // default: 1366
	ViewportHeight int // default: 768
}

// ScraperConfig controls both fetch strategies.
type ScraperConfig struct {
	// HTTPTimeout is the deadline for the lightweight GET.
	HTTPTimeout time.Duration // default: 15s

	// NavigationTimeout bounds navigation until DOMContentLoaded.
	NavigationTimeout time.Duration // default: 30s

	// TitleWaitTimeout bounds polling for the title element.
	TitleWaitTimeout time.Duration // default: 8s

	// TitlePollInterval is the gap between title presence checks.
	TitlePollInterval time.Duration // default: 250ms

	// ConsentWait is how long to wait after clicking a consent button.
	ConsentWait time.Duration // default: 1s

	// RecoveryWait is how long to wait after the recovery scroll.
	RecoveryWait time.Duration // default: 1.5s

	// Locale is injected as the language query parameter when absent.
	Locale string // default: "en_US"

	// UserAgent is sent by both strategies.
	UserAgent string

	// AcceptLanguage is sent by both strategies.
	AcceptLanguage string // default: "en-US,en;q=0.9"

	// BlockedResourceTypes lists resource types the browser never loads.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// RetryConfig controls the browser launch retry policy.
type RetryConfig struct {
	// LaunchAttempts bounds total launch tries.
	LaunchAttempts int // default: 4

	// LaunchBaseDelay is multiplied by the attempt number between tries.
	LaunchBaseDelay time.Duration // default: 700ms
}

// TitleConfig controls title shortening for spreadsheet output.
type TitleConfig struct {
	MaxLen int // default: 60
}

// SheetsConfig locates the spreadsheet used by POST /sync.
type SheetsConfig struct {
	// SpreadsheetID is the Google Sheets document ID.
	SpreadsheetID string

	// ReadRange is the A1 range holding the product URLs.
	ReadRange string // default: "Sheet1!A2:A"

	// WriteColumn is the first of the two output columns (title, price).
	WriteColumn string // default: "B"

	// CredentialsFile is a path to a service account JSON key.
	CredentialsFile string

	// CredentialsJSON is an inline service account JSON key.
	CredentialsJSON string
}

// SyncConfig controls the batch sync collaborator.
type SyncConfig struct {
	// ScrapeBaseURL is where the sync loop reaches GET /scrape.
	ScrapeBaseURL string // default: http://127.0.0.1:<port>

	// Concurrency caps in-flight scrapes; 0 means unbounded.
	Concurrency int // default: 0

	// RequestTimeout bounds each scrape call made by the sync loop.
	RequestTimeout time.Duration // default: 120s

	// WebhookURL receives sync.completed / sync.failed events when set.
	WebhookURL string

	// WebhookSecret signs webhook bodies with HMAC-SHA256 when set.
	WebhookSecret string
}

// AuthConfig controls API key authentication of POST /sync.
type AuthConfig struct {
	// APIKeys is the list of valid API keys. Empty means open access.
	APIKeys []string
}

// RateLimitConfig controls per-IP rate limiting of GET /scrape.
type RateLimitConfig struct {
	// Enabled toggles the limiter.
	Enabled bool // default: false

	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per client.
	Burst int // default: 10

	// ExemptLoopback lets 127.0.0.1/::1 callers (the sync loop) bypass the limiter.
	ExemptLoopback bool // default: true
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	port := envIntOr("PRICETAG_PORT", envIntOr("PORT", 3000))

	return &Config{
		Server: ServerConfig{
			Host: envOr("PRICETAG_HOST", "0.0.0.0"),
			Port: port,
			Mode: envOr("PRICETAG_MODE", "release"),
		},
		Browser: BrowserConfig{
			Mode:           ParseRuntimeMode(os.Getenv("PRICETAG_RUNTIME_MODE")),
			Headless:       envBoolOr("PRICETAG_HEADLESS", true),
			NoSandbox:      envBoolOr("PRICETAG_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("PRICETAG_BROWSER_BIN"),
			ViewportWidth:  envIntOr("PRICETAG_VIEWPORT_WIDTH", 1366),
			ViewportHeight: envIntOr("PRICETAG_VIEWPORT_HEIGHT", 768),
		},
		Scraper: ScraperConfig{
			HTTPTimeout:       envDurationOr("PRICETAG_HTTP_TIMEOUT", 15*time.Second),
			NavigationTimeout: envDurationOr("PRICETAG_NAV_TIMEOUT", 30*time.Second),
			TitleWaitTimeout:  envDurationOr("PRICETAG_TITLE_WAIT_TIMEOUT", 8*time.Second),
			TitlePollInterval: envDurationOr("PRICETAG_TITLE_POLL_INTERVAL", 250*time.Millisecond),
			ConsentWait:       envDurationOr("PRICETAG_CONSENT_WAIT", time.Second),
			RecoveryWait:      envDurationOr("PRICETAG_RECOVERY_WAIT", 1500*time.Millisecond),
			Locale:            envOr("PRICETAG_LOCALE", "en_US"),
			UserAgent: envOr("PRICETAG_USER_AGENT",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),
			AcceptLanguage: envOr("PRICETAG_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			BlockedResourceTypes: envSliceOr("PRICETAG_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Retry: RetryConfig{
			LaunchAttempts:  envIntOr("PRICETAG_LAUNCH_ATTEMPTS", 4),
			LaunchBaseDelay: envDurationOr("PRICETAG_LAUNCH_BASE_DELAY", 700*time.Millisecond),
		},
		Title: TitleConfig{
			MaxLen: envIntOr("PRICETAG_TITLE_MAX_LEN", DefaultTitleMaxLen),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   os.Getenv("PRICETAG_SHEET_ID"),
			ReadRange:       envOr("PRICETAG_SHEET_READ_RANGE", "Sheet1!A2:A"),
			WriteColumn:     envOr("PRICETAG_SHEET_WRITE_COLUMN", "B"),
			CredentialsFile: os.Getenv("PRICETAG_SHEET_CREDENTIALS_FILE"),
			CredentialsJSON: os.Getenv("PRICETAG_SHEET_CREDENTIALS_JSON"),
		},
		Sync: SyncConfig{
			ScrapeBaseURL:  envOr("PRICETAG_SCRAPE_BASE_URL", "http://127.0.0.1:"+strconv.Itoa(port)),
			Concurrency:    envIntOr("PRICETAG_SYNC_CONCURRENCY", 0),
			RequestTimeout: envDurationOr("PRICETAG_SYNC_REQUEST_TIMEOUT", 120*time.Second),
			WebhookURL:     os.Getenv("PRICETAG_SYNC_WEBHOOK_URL"),
			WebhookSecret:  os.Getenv("PRICETAG_SYNC_WEBHOOK_SECRET"),
		},
		Auth: AuthConfig{
			APIKeys: envSliceOr("PRICETAG_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			Enabled:           envBoolOr("PRICETAG_RATE_LIMIT", false),
			RequestsPerSecond: envFloatOr("PRICETAG_RATE_RPS", 5.0),
			Burst:             envIntOr("PRICETAG_RATE_BURST", 10),
			ExemptLoopback:    envBoolOr("PRICETAG_RATE_EXEMPT_LOOPBACK", true),
		},
		Log: LogConfig{
			Level:  envOr("PRICETAG_LOG_LEVEL", "info"),
			Format: envOr("PRICETAG_LOG_FORMAT", "json"),
		},
	}
}

// ParseRuntimeMode maps a config string to a RuntimeMode, defaulting to local.
func ParseRuntimeMode(s string) RuntimeMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RuntimeManaged), "serverless":
		return RuntimeManaged
	default:
		return RuntimeLocal
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDurationOr accepts Go durations ("700ms") or bare integers, which are
// read as milliseconds.
func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if ms, err := strconv.Atoi(v); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
