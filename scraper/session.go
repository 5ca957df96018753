package scraper

import "context"

// Session is one browser process with one page, owned by a single Render
// call. Implementations need not be safe for concurrent use.
type Session interface {
	// Configure applies stealth, headers, user-agent, viewport and resource
	// blocking. It must run before Navigate.
	Configure(ctx context.Context) error

	// Navigate loads url and returns once DOMContentLoaded fires or ctx ends.
	Navigate(ctx context.Context, url string) error

	// Exists reports whether selector currently matches an element.
	Exists(ctx context.Context, selector string) (bool, error)

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// TextOf returns the rendered text of the first element matching
	// selector, or "" when nothing matches.
	TextOf(ctx context.Context, selector string) (string, error)

	// Scroll moves the page down by fraction of its total height.
	Scroll(ctx context.Context, fraction float64) error

	// Close tears down the page and the browser process.
	Close() error
}

// LaunchFunc starts a fresh Session.
type LaunchFunc func(ctx context.Context) (Session, error)
