package scraper

import (
	"context"
	"net/http"
	"strings"
)

// FlipkartScraper handles flipkart.com product pages.
type FlipkartScraper struct {
	client *http.Client
}

// NewFlipkartScraper creates a new Flipkart scraper.
func NewFlipkartScraper(client *http.Client) *FlipkartScraper {
	return &FlipkartScraper{client: client}
}

// CanHandle matches flipkart.com and its subdomains.
func (f *FlipkartScraper) CanHandle(host string) bool {
	return host == "flipkart.com" || strings.HasSuffix(host, ".flipkart.com")
}

// Extract fetches the page and pulls the product title and current price.
// Flipkart rotates its class names, so both the older and newer sets are tried.
func (f *FlipkartScraper) Extract(ctx context.Context, url string) (*Result, error) {
	return extract(ctx, f.client, url,
		[]string{
			".B_NuCI",
			".VU-ZEz",
			"h1 span",
		},
		[]string{
			"._30jeq3",
			".Nx9bqj",
			"span.price",
			".product-price",
		},
	)
}
