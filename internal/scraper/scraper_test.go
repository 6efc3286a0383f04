package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const amazonPage = `<html><body>
<span id="productTitle"> Acme Wireless Headphones </span>
<span class="a-price"><span class="a-offscreen">₹2,499.00</span></span>
</body></html>`

const flipkartPage = `<html><body>
<span class="B_NuCI">Acme Phone Case</span>
<div class="_30jeq3">₹399</div>
</body></html>`

const myntraPage = `<html><body>
<h1 class="pdp-title">Acme</h1>
<h1 class="pdp-name">Running Shoes</h1>
<span class="pdp-price"><strong>₹1,299</strong></span>
</body></html>`

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestAmazonExtract(t *testing.T) {
	ts := servePage(t, amazonPage)
	s := NewAmazonScraper(ts.Client())

	result, err := s.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Title != "Acme Wireless Headphones" {
		t.Errorf("title = %q", result.Title)
	}
	if result.Price != 2499 {
		t.Errorf("price = %v, want 2499", result.Price)
	}
}

func TestFlipkartExtract(t *testing.T) {
	ts := servePage(t, flipkartPage)
	s := NewFlipkartScraper(ts.Client())

	result, err := s.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Title != "Acme Phone Case" {
		t.Errorf("title = %q", result.Title)
	}
	if result.Price != 399 {
		t.Errorf("price = %v, want 399", result.Price)
	}
}

func TestMyntraExtractJoinsBrandAndName(t *testing.T) {
	ts := servePage(t, myntraPage)
	s := NewMyntraScraper(ts.Client())

	result, err := s.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Title != "Acme Running Shoes" {
		t.Errorf("title = %q, want %q", result.Title, "Acme Running Shoes")
	}
	if result.Price != 1299 {
		t.Errorf("price = %v, want 1299", result.Price)
	}
}

func TestExtractMissingPriceIsParseError(t *testing.T) {
	ts := servePage(t, `<html><body><span id="productTitle">No Price Here</span></body></html>`)
	s := NewAmazonScraper(ts.Client())

	_, err := s.Extract(context.Background(), ts.URL)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if parseErr.Missing != "price" {
		t.Errorf("Missing = %q, want %q", parseErr.Missing, "price")
	}
}

func TestExtractMissingTitleIsParseError(t *testing.T) {
	ts := servePage(t, `<html><body><span class="a-offscreen">₹100</span></body></html>`)
	s := NewAmazonScraper(ts.Client())

	_, err := s.Extract(context.Background(), ts.URL)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if parseErr.Missing != "title" {
		t.Errorf("Missing = %q, want %q", parseErr.Missing, "title")
	}
}

func TestExtractBadStatusIsFetchError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()
	s := NewAmazonScraper(ts.Client())

	_, err := s.Extract(context.Background(), ts.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("want *FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestExtractTimeoutIsFetchError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()
	s := NewAmazonScraper(&http.Client{Timeout: 20 * time.Millisecond})

	_, err := s.Extract(context.Background(), ts.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("want *FetchError, got %v", err)
	}
}

func TestRegistryFind(t *testing.T) {
	r := NewRegistry(10 * time.Second)

	tests := []struct {
		url  string
		want any
	}{
		{"https://www.amazon.in/dp/B0TEST", &AmazonScraper{}},
		{"https://amazon.com/dp/B0TEST", &AmazonScraper{}},
		{"https://www.flipkart.com/p/test", &FlipkartScraper{}},
		{"https://www.myntra.com/shoes/test", &MyntraScraper{}},
	}
	for _, tt := range tests {
		s, err := r.Find(tt.url)
		if err != nil {
			t.Errorf("Find(%q) failed: %v", tt.url, err)
			continue
		}
		switch tt.want.(type) {
		case *AmazonScraper:
			if _, ok := s.(*AmazonScraper); !ok {
				t.Errorf("Find(%q) = %T, want *AmazonScraper", tt.url, s)
			}
		case *FlipkartScraper:
			if _, ok := s.(*FlipkartScraper); !ok {
				t.Errorf("Find(%q) = %T, want *FlipkartScraper", tt.url, s)
			}
		case *MyntraScraper:
			if _, ok := s.(*MyntraScraper); !ok {
				t.Errorf("Find(%q) = %T, want *MyntraScraper", tt.url, s)
			}
		}
	}
}

func TestRegistryRejectsUnknownHost(t *testing.T) {
	r := NewRegistry(10 * time.Second)
	for _, url := range []string{"https://example.com/product/1", "not a url", "https://notflipkart.com/p"} {
		if _, err := r.Find(url); !errors.Is(err, ErrUnsupportedSite) {
			t.Errorf("Find(%q) err = %v, want ErrUnsupportedSite", url, err)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"₹2,499.00", 2499, true},
		{"₹1,23,456.50", 123456.5, true},
		{"Rs 399", 399, true},
		{"1299", 1299, true},
		{"free", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePrice(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parsePrice(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
