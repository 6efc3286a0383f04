package scraper

import (
	"context"
	"net/http"
	"strings"
)

// AmazonScraper handles amazon.* product pages.
type AmazonScraper struct {
	client *http.Client
}

// NewAmazonScraper creates a new Amazon scraper.
func NewAmazonScraper(client *http.Client) *AmazonScraper {
	return &AmazonScraper{client: client}
}

// CanHandle matches amazon.in, amazon.com, www.amazon.* and friends.
func (a *AmazonScraper) CanHandle(host string) bool {
	return strings.Contains(host, "amazon.")
}

// Extract fetches the page and pulls the product title and current price.
func (a *AmazonScraper) Extract(ctx context.Context, url string) (*Result, error) {
	return extract(ctx, a.client, url,
		[]string{
			"#productTitle",
			"h1.product-title",
			"span#title",
		},
		[]string{
			".a-price .a-offscreen",
			".a-price-whole",
			".a-offscreen",
			"#priceblock_ourprice",
			"#priceblock_dealprice",
		},
	)
}
