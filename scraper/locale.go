package scraper

import (
	"net/url"
	"strings"
)

// localeParam is the query parameter the retailer reads the display language from.
const localeParam = "language"

// WithLocale returns rawURL with language=<locale> appended when the URL has
// no language parameter yet. Everything else in the URL is left as is, and
// unparseable or relative URLs are returned unchanged.
func WithLocale(rawURL, locale string) string {
	if locale == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	if u.Query().Has(localeParam) {
		return rawURL
	}

	param := localeParam + "=" + url.QueryEscape(locale)
	if strings.TrimSpace(u.RawQuery) == "" {
		u.RawQuery = param
	} else {
		u.RawQuery += "&" + param
	}
	return u.String()
}
