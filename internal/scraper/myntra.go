package scraper

import (
	"context"
	"net/http"
	"strings"
)

// MyntraScraper handles myntra.com product pages.
type MyntraScraper struct {
	client *http.Client
}

// NewMyntraScraper creates a new Myntra scraper.
func NewMyntraScraper(client *http.Client) *MyntraScraper {
	return &MyntraScraper{client: client}
}

// CanHandle matches myntra.com and its subdomains.
func (m *MyntraScraper) CanHandle(host string) bool {
	return host == "myntra.com" || strings.HasSuffix(host, ".myntra.com")
}

// Extract fetches the page and pulls the product title and current price.
// Myntra splits the title across brand and product name nodes.
func (m *MyntraScraper) Extract(ctx context.Context, url string) (*Result, error) {
	doc, err := fetchDocument(ctx, m.client, url)
	if err != nil {
		return nil, err
	}

	brand := firstText(doc, []string{".pdp-title"})
	name := firstText(doc, []string{".pdp-name"})
	title := strings.TrimSpace(brand + " " + name)
	if title == "" {
		return nil, &ParseError{URL: url, Missing: "title"}
	}

	priceText := firstText(doc, []string{".pdp-price strong", ".pdp-price", ".pdp-discount-container .pdp-price"})
	price, ok := parsePrice(priceText)
	if !ok {
		return nil, &ParseError{URL: url, Missing: "price"}
	}

	return &Result{Title: title, Price: price}, nil
}
