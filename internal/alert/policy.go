// Package alert decides whether a price check warrants a notification.
package alert

import "math"

// Decision classifies one price check.
type Decision int

const (
	None Decision = iota
	PriceDrop
	PriceRise
	TargetReached
)

func (d Decision) String() string {
	switch d {
	case PriceDrop:
		return "price drop"
	case PriceRise:
		return "price rise"
	case TargetReached:
		return "target reached"
	default:
		return "none"
	}
}

// Decide applies the alert policy to one check.
//
// The first successful check (oldPrice nil) only establishes a baseline.
// A price at or below the target always wins over the relative-change rule.
// Otherwise the relative change against the old price must reach
// thresholdPercent; equal prices never alert.
func Decide(oldPrice *float64, newPrice float64, targetPrice *float64, thresholdPercent float64) Decision {
	if oldPrice == nil {
		return None
	}
	if targetPrice != nil && newPrice <= *targetPrice {
		return TargetReached
	}
	if *oldPrice <= 0 || newPrice == *oldPrice {
		return None
	}

	change := (newPrice - *oldPrice) / *oldPrice * 100
	if math.Abs(change) < thresholdPercent {
		return None
	}
	if change < 0 {
		return PriceDrop
	}
	return PriceRise
}

// ChangePercent is the relative change from old to new price, in percent.
func ChangePercent(oldPrice, newPrice float64) float64 {
	if oldPrice == 0 {
		return 0
	}
	return (newPrice - oldPrice) / oldPrice * 100
}
