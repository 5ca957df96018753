package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/pricetag/config"
	"github.com/ysmood/gson"
)

// searchReferer is sent on every navigation so the visit looks like it came
// from a search result.
const searchReferer = "https://www.google.com/"

// rodSession is a Session backed by a dedicated Chromium process.
type rodSession struct {
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	router     *rod.HijackRouter
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
}

// NewRodLauncher returns a LaunchFunc that starts a new browser per call.
// browserCfg.Mode picks between a local binary and the managed download.
func NewRodLauncher(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) LaunchFunc {
	return func(ctx context.Context) (Session, error) {
		l, err := newLauncher(browserCfg)
		if err != nil {
			return nil, err
		}

		controlURL, err := l.Context(ctx).Launch()
		if err != nil {
			l.Kill()
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		slog.Debug("browser launched", "controlURL", controlURL, "mode", browserCfg.Mode)

		browser := rod.New().ControlURL(controlURL)
		if err := browser.Connect(); err != nil {
			l.Kill()
			l.Cleanup()
			return nil, fmt.Errorf("connect to browser: %w", err)
		}

		page, err := browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			_ = browser.Close()
			l.Kill()
			l.Cleanup()
			return nil, fmt.Errorf("open page: %w", err)
		}

		return &rodSession{
			launcher:   l,
			browser:    browser,
			page:       page,
			browserCfg: browserCfg,
			scraperCfg: scraperCfg,
		}, nil
	}
}

// newLauncher builds the launcher for the configured runtime mode.
func newLauncher(cfg config.BrowserConfig) (*launcher.Launcher, error) {
	l := launcher.New()

	switch cfg.Mode {
	case config.RuntimeManaged:
		// Leaving Bin unset makes rod fetch its pinned Chromium build.
		l = l.Headless(true).NoSandbox(true)
		l.Set(flags.Flag("single-process"))
		l.Set(flags.Flag("disable-gpu"))
		l.Set(flags.Flag("no-zygote"))
	default:
		bin := cfg.BrowserBin
		if bin == "" {
			path, ok := launcher.LookPath()
			if !ok {
				return nil, errors.New("no local Chromium found; set PRICETAG_BROWSER_BIN or use managed mode")
			}
			bin = path
		}
		l = l.Bin(bin).Headless(cfg.Headless).NoSandbox(cfg.NoSandbox)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("no-first-run"))

	return l, nil
}

func (s *rodSession) Configure(ctx context.Context) error {
	p := s.page.Context(ctx)

	if _, err := p.EvalOnNewDocument(stealth.JS); err != nil {
		return fmt.Errorf("inject stealth: %w", err)
	}

	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      s.scraperCfg.UserAgent,
		AcceptLanguage: s.scraperCfg.AcceptLanguage,
	}).Call(p); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}

	if err := (proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": s.scraperCfg.AcceptLanguage,
			"Referer":         searchReferer,
		}),
	}).Call(p); err != nil {
		return fmt.Errorf("set extra headers: %w", err)
	}

	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.browserCfg.ViewportWidth,
		Height:            s.browserCfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	s.router = setupHijack(s.page, s.scraperCfg.BlockedResourceTypes)
	return nil
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)

	// Register the waiter before navigating so the event is not missed.
	waitDOM := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return err
	}
	waitDOM()
	return ctx.Err()
}

func (s *rodSession) Exists(ctx context.Context, selector string) (bool, error) {
	has, _, err := s.page.Context(ctx).Has(selector)
	return has, err
}

func (s *rodSession) Click(ctx context.Context, selector string) error {
	has, el, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return err
	}
	if !has {
		return fmt.Errorf("element %q not found", selector)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (s *rodSession) TextOf(ctx context.Context, selector string) (string, error) {
	has, el, err := s.page.Context(ctx).Has(selector)
	if err != nil || !has {
		return "", err
	}
	return el.Text()
}

func (s *rodSession) Scroll(ctx context.Context, fraction float64) error {
	p := s.page.Context(ctx)

	res, err := p.Eval(`() => document.body ? document.body.scrollHeight : 0`)
	if err != nil {
		return fmt.Errorf("failed to get page height: %w", err)
	}
	delta := float64(res.Value.Int()) * fraction
	if delta <= 0 {
		return nil
	}
	return p.Mouse.Scroll(0, delta, 0)
}

func (s *rodSession) Close() error {
	if s.router != nil {
		_ = s.router.Stop()
	}
	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
	return err
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
