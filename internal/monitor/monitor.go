// Package monitor runs the recurring price-check cycle and exposes the
// tracking operations the chat and HTTP layers call into.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"price-monitor-bot/internal/alert"
	"price-monitor-bot/internal/database"
	"price-monitor-bot/internal/models"
	"price-monitor-bot/internal/notify"
	"price-monitor-bot/internal/scraper"
)

// ErrCycleRunning is returned when a cycle trigger fires while the
// previous cycle is still draining. The trigger is skipped, not queued.
var ErrCycleRunning = errors.New("a check cycle is already running")

// parseFailureLimit is how many consecutive parse failures it takes before
// an item is flagged as a probable site layout change.
const parseFailureLimit = 3

// CycleStats summarizes one completed cycle.
type CycleStats struct {
	Checked  int
	Failed   int
	Notified int
}

// Monitor owns the poll loop. One instance is built at startup and shared
// by the bot handlers and the HTTP trigger.
type Monitor struct {
	store     database.Store
	registry  *scraper.Registry
	notifier  notify.Notifier
	interval  time.Duration
	threshold float64
	workers   int

	cycleMu sync.Mutex
}

// New creates a monitor.
func New(store database.Store, registry *scraper.Registry, notifier notify.Notifier, interval time.Duration, thresholdPercent float64, maxConcurrent int) *Monitor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Monitor{
		store:     store,
		registry:  registry,
		notifier:  notifier,
		interval:  interval,
		threshold: thresholdPercent,
		workers:   maxConcurrent,
	}
}

// Start runs the recurring poll loop until the context is cancelled.
// The first cycle runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	log.Printf("Monitor started: checking every %v, threshold %.1f%%", m.interval, m.threshold)

	if _, err := m.RunCycleOnce(ctx); err != nil && !errors.Is(err, ErrCycleRunning) {
		log.Printf("Check cycle failed: %v", err)
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Monitor stopped")
			return
		case <-ticker.C:
			if _, err := m.RunCycleOnce(ctx); err != nil {
				if errors.Is(err, ErrCycleRunning) {
					log.Println("Previous cycle still running, skipping this tick")
				} else {
					log.Printf("Check cycle failed: %v", err)
				}
			}
		}
	}
}

// RunCycleOnce checks every tracked item once. Per-item failures are
// recorded and never abort the cycle; only a store read failure is fatal.
// At most one cycle runs at a time.
func (m *Monitor) RunCycleOnce(ctx context.Context) (CycleStats, error) {
	if !m.cycleMu.TryLock() {
		return CycleStats{}, ErrCycleRunning
	}
	defer m.cycleMu.Unlock()

	items, err := m.store.ListAll()
	if err != nil {
		return CycleStats{}, fmt.Errorf("list tracked items: %w", err)
	}

	var (
		mu    sync.Mutex
		stats CycleStats
		wg    sync.WaitGroup
		sem   = make(chan struct{}, m.workers)
	)

	for _, item := range items {
		select {
		case <-ctx.Done():
			wg.Wait()
			return stats, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(item models.TrackedItem) {
			defer wg.Done()
			defer func() { <-sem }()

			notified, err := m.checkItem(ctx, item)
			mu.Lock()
			stats.Checked++
			if err != nil {
				stats.Failed++
			}
			if notified {
				stats.Notified++
			}
			mu.Unlock()
		}(item)
	}
	wg.Wait()

	log.Printf("Cycle done: %d checked, %d failed, %d notified", stats.Checked, stats.Failed, stats.Notified)
	return stats, nil
}

// checkItem runs one extraction and commits the outcome. The returned bool
// reports whether a notification was sent.
func (m *Monitor) checkItem(ctx context.Context, item models.TrackedItem) (bool, error) {
	result, err := m.extract(ctx, item.URL)
	now := time.Now()
	if err != nil {
		if dbErr := m.store.RecordCheckFailure(item.ID, err.Error(), now); dbErr != nil {
			log.Printf("Failed to record check failure for item %d: %v", item.ID, dbErr)
		}
		m.reportRepeatedFailure(item, err)
		return false, err
	}

	decision := alert.Decide(item.CurrentPrice, result.Price, item.TargetPrice, m.threshold)

	if err := m.store.RecordCheckSuccess(item.ID, result.Title, result.Price, now); err != nil {
		return false, fmt.Errorf("record check for item %d: %w", item.ID, err)
	}

	if decision == alert.None {
		return false, nil
	}

	oldPrice := 0.0
	if item.CurrentPrice != nil {
		oldPrice = *item.CurrentPrice
	}
	item.Title = result.Title
	if err := m.notifier.Notify(item.UserID, item, decision, oldPrice, result.Price); err != nil {
		// The price change is already committed; delivery is best effort.
		log.Printf("Notification for item %d failed: %v", item.ID, err)
		return false, nil
	}
	log.Printf("Notified user %d: %s on item %d (%.2f -> %.2f)", item.UserID, decision, item.ID, oldPrice, result.Price)
	return true, nil
}

func (m *Monitor) extract(ctx context.Context, url string) (*scraper.Result, error) {
	s, err := m.registry.Find(url)
	if err != nil {
		return nil, err
	}
	return s.Extract(ctx, url)
}

// reportRepeatedFailure surfaces a probable layout change to the operator
// once an item keeps failing to parse.
func (m *Monitor) reportRepeatedFailure(item models.TrackedItem, err error) {
	var parseErr *scraper.ParseError
	if !errors.As(err, &parseErr) {
		return
	}
	// ConsecutiveFailures was read before this failure was recorded.
	if item.ConsecutiveFailures+1 >= parseFailureLimit {
		log.Printf("MAINTENANCE: item %d (%s) failed to parse %d times in a row, selectors may be stale",
			item.ID, item.URL, item.ConsecutiveFailures+1)
	}
}

// Track starts tracking a URL for a user, running the first extraction
// immediately so the stored row carries a title and baseline price. The
// baseline never produces an alert. Re-tracking an already tracked URL
// refreshes the existing row instead of duplicating it.
func (m *Monitor) Track(ctx context.Context, userID int64, url string) (*models.TrackedItem, error) {
	result, err := m.extract(ctx, url)
	if err != nil {
		return nil, err
	}

	item, _, err := m.store.Upsert(userID, url)
	if err != nil {
		return nil, fmt.Errorf("upsert tracked item: %w", err)
	}
	if err := m.store.RecordCheckSuccess(item.ID, result.Title, result.Price, time.Now()); err != nil {
		return nil, fmt.Errorf("record first check: %w", err)
	}
	return m.store.GetByID(item.ID)
}

// List returns the user's tracked items in insertion order.
func (m *Monitor) List(userID int64) ([]models.TrackedItem, error) {
	return m.store.ListForUser(userID)
}

// StopTracking removes the item at the given 1-based index.
func (m *Monitor) StopTracking(userID int64, index int) (*models.TrackedItem, error) {
	return m.store.RemoveAt(userID, index)
}

// SetTargetPrice sets an absolute alert target on the item at the given
// 1-based index.
func (m *Monitor) SetTargetPrice(userID int64, index int, price float64) (*models.TrackedItem, error) {
	return m.store.SetTargetPriceAt(userID, index, price)
}

// History returns recent recorded prices for the item at the given
// 1-based index in the user's list.
func (m *Monitor) History(userID int64, index int, limit int) (*models.TrackedItem, []models.PricePoint, error) {
	items, err := m.store.ListForUser(userID)
	if err != nil {
		return nil, nil, err
	}
	if index < 1 || index > len(items) {
		return nil, nil, database.ErrNotFound
	}
	item := items[index-1]
	points, err := m.store.History(item.ID, limit)
	if err != nil {
		return nil, nil, err
	}
	return &item, points, nil
}
