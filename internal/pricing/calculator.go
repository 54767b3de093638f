// Package pricing computes quotation price breakdowns. All functions are
// pure: no I/O, no clock reads beyond the supplied trip dates.
package pricing

import (
	"time"

	"github.com/horizon-travel/horizon/internal/shared"
)

// Reference rates for catalog pricing when no override is supplied.
const (
	dailyAdultRate  = 100.0
	childRateFactor = 0.7
	deluxeDailyRate = 50.0
	luxuryDailyRate = 100.0
	peakMultiplier  = 1.2
)

// Input carries the trip parameters a price breakdown is derived from.
// BasePriceOverride switches the calculation into flat-rate mode; its meaning
// depends on the service type (per adult for tours, per day for vehicles,
// per night per room for hotels, the full total otherwise).
type Input struct {
	ServiceType       shared.ServiceType
	BasePriceOverride *float64
	DurationDays      int
	Adults            int
	Children          int
	Infants           int
	NumRooms          int
	Tier              shared.AccommodationTier
	StartDate         time.Time
}

// Breakdown is the priced result. Every amount is rounded to two decimals.
type Breakdown struct {
	BasePrice            float64 `json:"base_price"`
	AccommodationUpgrade float64 `json:"accommodation_upgrade"`
	DiscountAmount       float64 `json:"discount_amount"`
	DiscountPercentage   float64 `json:"discount_percentage"`
	Subtotal             float64 `json:"subtotal"`
	Total                float64 `json:"total"`
}

// Calculate produces the price breakdown for validated input. Callers never
// need to know which mode executed: an override price selects flat-rate
// pricing, otherwise the catalog model applies.
func Calculate(in Input) Breakdown {
	if in.BasePriceOverride != nil {
		return calculateFlat(in, *in.BasePriceOverride)
	}
	return calculateCatalog(in)
}

func calculateFlat(in Input, override float64) Breakdown {
	var base float64
	switch in.ServiceType {
	case shared.ServiceTour:
		base = override*float64(in.Adults) + override*float64(in.Children)*childRateFactor
	case shared.ServiceVehicle:
		base = override * float64(in.DurationDays)
	case shared.ServiceHotel:
		rooms := in.NumRooms
		if rooms < 1 {
			rooms = 1
		}
		base = override * float64(in.DurationDays) * float64(rooms)
	default:
		base = override
	}

	rounded := shared.Round2(base)
	return Breakdown{
		BasePrice: rounded,
		Subtotal:  rounded,
		Total:     rounded,
	}
}

func calculateCatalog(in Input) Breakdown {
	days := float64(in.DurationDays)
	base := dailyAdultRate*days*float64(in.Adults) +
		dailyAdultRate*days*float64(in.Children)*childRateFactor

	var upgrade float64
	switch in.Tier {
	case shared.TierDeluxe:
		upgrade = deluxeDailyRate * days * float64(in.Adults)
	case shared.TierLuxury:
		upgrade = luxuryDailyRate * days * float64(in.Adults)
	}

	if peakSeason(in.StartDate) {
		base *= peakMultiplier
	}

	subtotal := base + upgrade
	pct := GroupDiscountPercent(in.Adults + in.Children)
	discount := subtotal * pct / 100

	return Breakdown{
		BasePrice:            shared.Round2(base),
		AccommodationUpgrade: shared.Round2(upgrade),
		DiscountAmount:       shared.Round2(discount),
		DiscountPercentage:   pct,
		Subtotal:             shared.Round2(subtotal),
		Total:                shared.Round2(subtotal - discount),
	}
}

// GroupDiscountPercent returns the tiered discount for a travelling party.
// Infants never count toward the group size.
func GroupDiscountPercent(groupSize int) float64 {
	switch {
	case groupSize >= 7:
		return 15
	case groupSize >= 4:
		return 10
	case groupSize >= 2:
		return 5
	default:
		return 0
	}
}

// peakSeason reports whether the trip starts in the December-March window,
// wrapping the year boundary.
func peakSeason(start time.Time) bool {
	switch start.Month() {
	case time.December, time.January, time.February, time.March:
		return true
	}
	return false
}
