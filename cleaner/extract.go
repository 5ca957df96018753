package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/pricetag/models"
)

// ExtractProduct parses raw product-page HTML and returns its title and price.
//
// A missing price is not an error. A missing or blank title yields a
// KindNoTitle ExtractionError.
func ExtractProduct(rawHTML string) (*models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewExtractionError(models.KindNoTitle, "failed to parse page markup", err)
	}

	title := NormalizeSpace(doc.FindMatcher(titleMatcher).First().Text())
	if title == "" {
		return nil, models.NewExtractionError(models.KindNoTitle, "no title found on page", nil)
	}

	return &models.Product{
		Title: title,
		Price: firstText(doc, priceMatchers),
	}, nil
}
