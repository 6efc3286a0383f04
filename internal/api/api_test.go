package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"price-monitor-bot/internal/alert"
	"price-monitor-bot/internal/database"
	"price-monitor-bot/internal/models"
	"price-monitor-bot/internal/monitor"
	"price-monitor-bot/internal/scraper"
)

type noopNotifier struct{}

func (noopNotifier) Notify(int64, models.TrackedItem, alert.Decision, float64, float64) error {
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := monitor.New(db, scraper.NewRegistry(time.Second), noopNotifier{}, time.Hour, 5, 1)
	ts := httptest.NewServer(NewRouter(m))
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCycleTrigger(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/cycle", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/cycle failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Checked int    `json:"checked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "ok" || body.Checked != 0 {
		t.Errorf("body = %+v", body)
	}
}
