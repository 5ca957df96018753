package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/pricetag/cleaner"
	"github.com/use-agent/pricetag/config"
	"github.com/use-agent/pricetag/engine"
	"github.com/use-agent/pricetag/models"
)

// ConsentSelectors are cookie/consent accept buttons, tried in order. Only
// the first one present is clicked.
var ConsentSelectors = []string{
	"#sp-cc-accept",
	`input[name="accept"]`,
	"#onetrust-accept-btn-handler",
	`button[data-action="sp-cc-accept"]`,
	`form[action*="cookieprefs"] input[type="submit"]`,
}

// CaptchaSelectors mark a bot-challenge page.
var CaptchaSelectors = []string{
	`form[action*="validateCaptcha"]`,
	"#captchacharacters",
	`img[src*="captcha"]`,
	`iframe[src*="recaptcha"]`,
	"#cf-challenge-running",
}

// recoveryScrollFraction is how far down the page the recovery scroll goes
// when the title never showed up.
const recoveryScrollFraction = 0.4

// wait pauses for d or until ctx ends.
var wait = func(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Renderer extracts products from a live browser page.
//
// Each Render call launches its own Session and closes it before returning,
// whatever the outcome. Nothing is pooled or shared between calls.
type Renderer struct {
	launch LaunchFunc
	cfg    config.ScraperConfig
	retry  config.RetryConfig
}

// NewRenderer creates a Renderer that starts sessions with launch.
func NewRenderer(launch LaunchFunc, scraperCfg config.ScraperConfig, retryCfg config.RetryConfig) *Renderer {
	return &Renderer{launch: launch, cfg: scraperCfg, retry: retryCfg}
}

// Render runs the full browser flow for rawURL.
//
// Lifecycle:
//
//  1. Launch          – retried on transient failures only
//  2. DEFER: close    – runs on every exit path below
//  3. Configure       – stealth, UA, headers, viewport, blocking (before navigation!)
//  4. Navigate        – locale-forced URL, bounded by NavigationTimeout
//  5. Consent         – click the first accept button present
//  6. Captcha         – hard stop, never polled further
//  7. Title poll      – on timeout, scroll and wait once, then carry on
//  8. Extract         – title and price from the live DOM
func (r *Renderer) Render(ctx context.Context, rawURL string) (*models.Product, error) {
	// ── 1. Launch ────────────────────────────────────────────────────
	sess, err := engine.WithRetry[Session](ctx, r.retry.LaunchAttempts, r.retry.LaunchBaseDelay, r.launch)
	if err != nil {
		return nil, models.NewExtractionError(models.KindLaunch, "failed to launch browser", err)
	}

	// ── 2. CRITICAL DEFER: never leak a browser process ──────────────
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("browser session close failed", "url", rawURL, "error", closeErr)
		}
	}()

	// ── 3. Configure ─────────────────────────────────────────────────
	if err := sess.Configure(ctx); err != nil {
		return nil, models.NewExtractionError(models.KindLaunch, "failed to configure browser page", err)
	}

	// ── 4. Navigate ──────────────────────────────────────────────────
	target := WithLocale(rawURL, r.cfg.Locale)
	if err := r.navigate(ctx, sess, target); err != nil {
		return nil, models.NewExtractionError(models.KindNavigation, "navigation to target URL failed", err)
	}

	// ── 5. Consent ───────────────────────────────────────────────────
	r.dismissConsent(ctx, sess)

	// ── 6. Captcha ───────────────────────────────────────────────────
	if sel, found := detectCaptcha(ctx, sess); found {
		slog.Warn("bot challenge detected", "url", rawURL, "selector", sel)
		return nil, models.NewExtractionError(models.KindCaptcha,
			fmt.Sprintf("bot challenge page detected (%s)", sel), nil)
	}

	// ── 7. Title poll ────────────────────────────────────────────────
	if !r.waitForTitle(ctx, sess) {
		slog.Info("title not rendered in time, scrolling to recover",
			"url", rawURL,
			"timeout", r.cfg.TitleWaitTimeout,
		)
		if err := sess.Scroll(ctx, recoveryScrollFraction); err != nil {
			slog.Debug("recovery scroll failed", "url", rawURL, "error", err)
		}
		wait(ctx, r.cfg.RecoveryWait)
	}

	// ── 8. Extract ───────────────────────────────────────────────────
	return extractFromSession(ctx, sess)
}

func (r *Renderer) navigate(ctx context.Context, sess Session, target string) error {
	if r.cfg.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.NavigationTimeout)
		defer cancel()
	}
	if err := sess.Navigate(ctx, target); err != nil {
		return err
	}
	return ctx.Err()
}

// dismissConsent clicks the first consent button present. A missing banner or
// a failed click is not an error.
func (r *Renderer) dismissConsent(ctx context.Context, sess Session) {
	for _, sel := range ConsentSelectors {
		found, err := sess.Exists(ctx, sel)
		if err != nil || !found {
			continue
		}
		if err := sess.Click(ctx, sel); err != nil {
			slog.Debug("consent click failed", "selector", sel, "error", err)
			return
		}
		slog.Debug("consent dismissed", "selector", sel)
		wait(ctx, r.cfg.ConsentWait)
		return
	}
}

// detectCaptcha returns the first captcha selector present on the page.
func detectCaptcha(ctx context.Context, sess Session) (string, bool) {
	for _, sel := range CaptchaSelectors {
		if found, err := sess.Exists(ctx, sel); err == nil && found {
			return sel, true
		}
	}
	return "", false
}

// waitForTitle polls for the title element until it appears or
// TitleWaitTimeout passes.
func (r *Renderer) waitForTitle(ctx context.Context, sess Session) bool {
	interval := r.cfg.TitlePollInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	if r.cfg.TitleWaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.TitleWaitTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if found, err := sess.Exists(ctx, cleaner.TitleSelector); err == nil && found {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// extractFromSession reads the title and the first non-empty price from the
// live DOM, using the same selectors as the markup extractor.
func extractFromSession(ctx context.Context, sess Session) (*models.Product, error) {
	rawTitle, err := sess.TextOf(ctx, cleaner.TitleSelector)
	if err != nil {
		slog.Debug("reading title failed", "error", err)
	}
	title := cleaner.NormalizeSpace(rawTitle)
	if title == "" {
		return nil, models.NewExtractionError(models.KindNoTitle, "no title found on page", nil)
	}

	var price string
	for _, sel := range cleaner.PriceSelectors {
		text, err := sess.TextOf(ctx, sel)
		if err != nil {
			continue
		}
		if price = cleaner.NormalizeSpace(text); price != "" {
			break
		}
	}

	return &models.Product{Title: title, Price: price}, nil
}
