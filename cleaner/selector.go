package cleaner

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// TitleSelector locates the product title on a product page.
const TitleSelector = "#productTitle"

// PriceSelectors is probed in order; the first non-empty match wins. The
// core-price regions come first, then the first generic price node on the page.
var PriceSelectors = []string{
	"#corePrice_feature_div span.a-offscreen",
	"#corePriceDisplay_desktop_feature_div span.a-offscreen",
	"#apex_desktop span.a-offscreen",
	"span.a-offscreen",
}

var (
	titleMatcher  = cascadia.MustCompile(TitleSelector)
	priceMatchers = compileAll(PriceSelectors)
)

func compileAll(selectors []string) []cascadia.Selector {
	out := make([]cascadia.Selector, len(selectors))
	for i, s := range selectors {
		out[i] = cascadia.MustCompile(s)
	}
	return out
}

// firstText walks the matchers in priority order and returns the normalized
// text of the first match that is non-empty.
func firstText(doc *goquery.Document, matchers []cascadia.Selector) string {
	for _, m := range matchers {
		if text := NormalizeSpace(doc.FindMatcher(m).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
