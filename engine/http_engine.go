package engine

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/pricetag/cleaner"
	"github.com/use-agent/pricetag/config"
	"github.com/use-agent/pricetag/models"
	"golang.org/x/net/html/charset"
)

// maxBody caps how much of a response body is read.
const maxBody = 10 << 20

// HTTPEngine is the lightweight engine: one GET with browser-like headers,
// parsed with the markup extractor. It performs no anti-bot handling; such
// pages fail over to the browser engine.
type HTTPEngine struct {
	client  *http.Client
	header  http.Header
	timeout time.Duration
	rootCAs *x509.CertPool // nil means the host's roots
}

// HTTPOption configures an HTTPEngine.
type HTTPOption func(*HTTPEngine)

// WithTransport replaces the Chrome-fingerprinted transport.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(e *HTTPEngine) { e.client.Transport = rt }
}

// WithRootCAs trusts pool instead of the host's root certificates on the
// fingerprinted transport.
func WithRootCAs(pool *x509.CertPool) HTTPOption {
	return func(e *HTTPEngine) { e.rootCAs = pool }
}

// chromeH1Spec returns a Chrome-like TLS ClientHello with ALPN forced to
// http/1.1 only. A spec carries per-handshake key material once applied, so
// every connection needs its own.
func chromeH1Spec() (*tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return nil, err
	}
	// Go's http.Transport cannot speak h2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return &spec, nil
}

// NewHTTPEngine creates an HTTPEngine with a Chrome-like TLS fingerprint.
func NewHTTPEngine(cfg config.ScraperConfig, opts ...HTTPOption) *HTTPEngine {
	e := &HTTPEngine{
		header:  browserHeaders(cfg),
		timeout: cfg.HTTPTimeout,
	}
	e.client = &http.Client{
		Transport: &http.Transport{
			DialTLSContext:    e.dialTLSChrome,
			ForceAttemptHTTP2: false,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// browserHeaders mimics a desktop Chrome navigation arriving from a search engine.
func browserHeaders(cfg config.ScraperConfig) http.Header {
	h := http.Header{}
	h.Set("User-Agent", cfg.UserAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Accept-Language", cfg.AcceptLanguage)
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Cache-Control", "no-cache")
	h.Set("Referer", "https://www.google.com/")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

func (e *HTTPEngine) dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	spec, err := chromeH1Spec()
	if err != nil {
		return nil, fmt.Errorf("http_engine: build tls spec: %w", err)
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host, RootCAs: e.rootCAs}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("http_engine: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

func (e *HTTPEngine) Name() string { return "http" }

func (e *HTTPEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, models.NewExtractionError(models.KindNetwork, "failed to build request", err)
	}
	httpReq.Header = e.header.Clone()

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, models.NewExtractionError(models.KindNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, models.NewExtractionError(models.KindNetwork,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, models.NewExtractionError(models.KindNetwork, "failed to read body", err)
	}

	product, err := cleaner.ExtractProduct(body)
	if err != nil {
		return nil, err
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &FetchResult{
		Title:      product.Title,
		Price:      product.Price,
		StatusCode: resp.StatusCode,
		FinalURL:   finalURL,
		EngineName: e.Name(),
	}, nil
}

// readBody undoes the Content-Encoding we asked for and transcodes the
// body to UTF-8 based on the Content-Type charset or a meta tag.
func readBody(resp *http.Response) (string, error) {
	var r io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("deflate: %w", err)
		}
		defer zr.Close()
		r = zr
	case "br":
		r = brotli.NewReader(resp.Body)
	}

	utf8Reader, err := charset.NewReader(io.LimitReader(r, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("charset: %w", err)
	}

	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
