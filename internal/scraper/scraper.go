package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Result is the outcome of one successful extraction.
type Result struct {
	Title string
	Price float64
}

// Scraper extracts title and price from a product page of one retailer family.
type Scraper interface {
	CanHandle(host string) bool
	Extract(ctx context.Context, url string) (*Result, error)
}

// Registry holds all available scrapers.
type Registry struct {
	scrapers []Scraper
}

// NewRegistry creates a registry with the built-in retailer scrapers,
// sharing one HTTP client with the given timeout.
func NewRegistry(fetchTimeout time.Duration) *Registry {
	client := &http.Client{Timeout: fetchTimeout}
	return &Registry{
		scrapers: []Scraper{
			NewAmazonScraper(client),
			NewFlipkartScraper(client),
			NewMyntraScraper(client),
		},
	}
}

// Register adds a scraper. Later registrations win ties, which lets tests
// front their own fakes.
func (r *Registry) Register(s Scraper) {
	r.scrapers = append([]Scraper{s}, r.scrapers...)
}

// Find returns the scraper for a URL's host, or ErrUnsupportedSite.
func (r *Registry) Find(rawURL string) (Scraper, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, ErrUnsupportedSite
	}
	host := strings.ToLower(u.Hostname())
	for _, s := range r.scrapers {
		if s.CanHandle(host) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSite, host)
}

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Connection":      "keep-alive",
}

// fetchDocument fetches a product page and parses it. Network and status
// failures come back as *FetchError.
func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	return doc, nil
}

// firstText returns the trimmed text of the first selector that matches
// a non-empty node.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

var priceCleanRe = regexp.MustCompile(`[^0-9.]`)

// parsePrice normalizes price text like "₹1,23,456.00" to its magnitude.
func parsePrice(text string) (float64, bool) {
	cleaned := priceCleanRe.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// extract is the shared title+price flow every retailer scraper delegates to.
func extract(ctx context.Context, client *http.Client, pageURL string, titleSelectors, priceSelectors []string) (*Result, error) {
	doc, err := fetchDocument(ctx, client, pageURL)
	if err != nil {
		return nil, err
	}

	title := firstText(doc, titleSelectors)
	if title == "" {
		return nil, &ParseError{URL: pageURL, Missing: "title"}
	}

	priceText := firstText(doc, priceSelectors)
	price, ok := parsePrice(priceText)
	if !ok {
		return nil, &ParseError{URL: pageURL, Missing: "price"}
	}

	return &Result{Title: title, Price: price}, nil
}
