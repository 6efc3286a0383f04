package database

import (
	"errors"
	"time"

	"price-monitor-bot/internal/models"
)

// ErrNotFound is returned when an item id or list index does not resolve
// to a tracked item owned by the given user.
var ErrNotFound = errors.New("tracked item not found")

// Store defines the operations the monitor and the bot need from storage.
// The SQLite-backed DB satisfies it; tests use a fake.
type Store interface {
	Close() error

	// Upsert returns the existing item for (userID, url) or creates an
	// empty one. The bool reports whether a new row was created.
	Upsert(userID int64, url string) (*models.TrackedItem, bool, error)

	// ListForUser returns the user's items in insertion order, so that
	// 1-based indices shown by /list stay stable for /stop and /target.
	ListForUser(userID int64) ([]models.TrackedItem, error)

	// ListAll returns every tracked item across all users.
	ListAll() ([]models.TrackedItem, error)

	GetByID(id int64) (*models.TrackedItem, error)

	// RemoveAt deletes the item at the 1-based index in ListForUser order,
	// together with its price history. Returns the removed item.
	RemoveAt(userID int64, index int) (*models.TrackedItem, error)

	// SetTargetPriceAt sets the target price on the item at the 1-based
	// index in ListForUser order. Returns the updated item.
	SetTargetPriceAt(userID int64, index int, price float64) (*models.TrackedItem, error)

	// RecordCheckSuccess commits the result of a successful extraction:
	// title, price, check timestamp, a history row, and clears the error.
	RecordCheckSuccess(id int64, title string, price float64, at time.Time) error

	// RecordCheckFailure commits a failed extraction: the failure reason
	// and check timestamp. Price and title are left untouched.
	RecordCheckFailure(id int64, reason string, at time.Time) error

	// History returns up to limit recorded prices for an item, newest first.
	History(id int64, limit int) ([]models.PricePoint, error)
}
