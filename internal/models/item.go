package models

import "time"

// TrackedItem is a product URL being watched for one user.
type TrackedItem struct {
	ID                  int64
	UserID              int64
	URL                 string
	Title               string
	CurrentPrice        *float64 // nil until the first successful check
	TargetPrice         *float64 // nil unless the user set one
	LastChecked         time.Time
	LastError           string
	ConsecutiveFailures int
	CreatedAt           time.Time
}

// PricePoint is one recorded price for an item.
type PricePoint struct {
	ID        int64
	ItemID    int64
	Price     float64
	CheckedAt time.Time
}
