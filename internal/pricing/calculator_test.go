package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/horizon-travel/horizon/internal/shared"
)

func date(year int, month time.Month) time.Time {
	return time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
}

func override(v float64) *float64 { return &v }

func TestCalculateFlatMode(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Breakdown
	}{
		{
			// Scenario: negotiated per-adult tour rate, children at 70%.
			name: "tour per adult with child",
			in: Input{
				ServiceType:       shared.ServiceTour,
				BasePriceOverride: override(200),
				DurationDays:      5,
				Adults:            2,
				Children:          1,
				StartDate:         date(2026, time.June),
			},
			want: Breakdown{BasePrice: 540, Subtotal: 540, Total: 540},
		},
		{
			name: "tour infants are free",
			in: Input{
				ServiceType:       shared.ServiceTour,
				BasePriceOverride: override(150),
				DurationDays:      3,
				Adults:            1,
				Infants:           2,
				StartDate:         date(2026, time.June),
			},
			want: Breakdown{BasePrice: 150, Subtotal: 150, Total: 150},
		},
		{
			name: "vehicle per day",
			in: Input{
				ServiceType:       shared.ServiceVehicle,
				BasePriceOverride: override(45),
				DurationDays:      6,
				Adults:            2,
				StartDate:         date(2026, time.January),
			},
			want: Breakdown{BasePrice: 270, Subtotal: 270, Total: 270},
		},
		{
			name: "hotel per night per room",
			in: Input{
				ServiceType:       shared.ServiceHotel,
				BasePriceOverride: override(80),
				DurationDays:      4,
				Adults:            2,
				NumRooms:          2,
				StartDate:         date(2026, time.June),
			},
			want: Breakdown{BasePrice: 640, Subtotal: 640, Total: 640},
		},
		{
			name: "hotel rooms default to one",
			in: Input{
				ServiceType:       shared.ServiceHotel,
				BasePriceOverride: override(80),
				DurationDays:      4,
				Adults:            2,
				StartDate:         date(2026, time.June),
			},
			want: Breakdown{BasePrice: 320, Subtotal: 320, Total: 320},
		},
		{
			name: "other service passes through",
			in: Input{
				ServiceType:       shared.ServiceOther,
				BasePriceOverride: override(999.99),
				DurationDays:      10,
				Adults:            4,
				StartDate:         date(2026, time.December),
			},
			want: Breakdown{BasePrice: 999.99, Subtotal: 999.99, Total: 999.99},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, got.DiscountAmount, "flat mode never discounts")
			assert.Zero(t, got.AccommodationUpgrade, "flat mode never upgrades")
		})
	}
}

func TestCalculateCatalogMode(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Breakdown
	}{
		{
			// 100*4*3 = 1200, January peak *1.2 = 1440, party of 3 -> 5%.
			name: "january peak with small group discount",
			in: Input{
				ServiceType:  shared.ServiceTour,
				DurationDays: 4,
				Adults:       3,
				Tier:         shared.TierStandard,
				StartDate:    date(2026, time.January),
			},
			want: Breakdown{
				BasePrice:          1440,
				DiscountAmount:     72,
				DiscountPercentage: 5,
				Subtotal:           1440,
				Total:              1368,
			},
		},
		{
			name: "off season single adult no discount",
			in: Input{
				ServiceType:  shared.ServiceTour,
				DurationDays: 5,
				Adults:       1,
				Tier:         shared.TierStandard,
				StartDate:    date(2026, time.July),
			},
			want: Breakdown{BasePrice: 500, Subtotal: 500, Total: 500},
		},
		{
			name: "deluxe upgrade added after seasonal base",
			in: Input{
				ServiceType:  shared.ServiceTour,
				DurationDays: 3,
				Adults:       2,
				Tier:         shared.TierDeluxe,
				StartDate:    date(2026, time.December),
			},
			// base 600*1.2=720, upgrade 50*3*2=300, subtotal 1020, 5% -> 51.
			want: Breakdown{
				BasePrice:            720,
				AccommodationUpgrade: 300,
				DiscountAmount:       51,
				DiscountPercentage:   5,
				Subtotal:             1020,
				Total:                969,
			},
		},
		{
			name: "luxury upgrade large group",
			in: Input{
				ServiceType:  shared.ServiceTour,
				DurationDays: 2,
				Adults:       5,
				Children:     2,
				Tier:         shared.TierLuxury,
				StartDate:    date(2026, time.August),
			},
			// base 100*2*5 + 100*2*2*0.7 = 1280, upgrade 100*2*5 = 1000,
			// subtotal 2280, party of 7 -> 15% = 342.
			want: Breakdown{
				BasePrice:            1280,
				AccommodationUpgrade: 1000,
				DiscountAmount:       342,
				DiscountPercentage:   15,
				Subtotal:             2280,
				Total:                1938,
			},
		},
		{
			name: "children priced at seventy percent",
			in: Input{
				ServiceType:  shared.ServiceTour,
				DurationDays: 1,
				Adults:       1,
				Children:     1,
				Tier:         shared.TierStandard,
				StartDate:    date(2026, time.June),
			},
			// 100 + 70 = 170, party of 2 -> 5% = 8.5.
			want: Breakdown{
				BasePrice:          170,
				DiscountAmount:     8.5,
				DiscountPercentage: 5,
				Subtotal:           170,
				Total:              161.5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.in))
		})
	}
}

func TestTotalInvariant(t *testing.T) {
	// total == subtotal - discount within one minor currency unit, across a
	// sweep of party sizes, durations and months.
	for adults := 1; adults <= 9; adults++ {
		for children := 0; children <= 4; children++ {
			for month := time.January; month <= time.December; month++ {
				in := Input{
					ServiceType:  shared.ServiceTour,
					DurationDays: 3,
					Adults:       adults,
					Children:     children,
					Tier:         shared.TierDeluxe,
					StartDate:    date(2026, month),
				}
				got := Calculate(in)
				assert.InDelta(t, got.Subtotal-got.DiscountAmount, got.Total, 0.01)
			}
		}
	}
}

func TestGroupDiscountPercent(t *testing.T) {
	tests := []struct {
		size int
		want float64
	}{
		{1, 0}, {2, 5}, {3, 5}, {4, 10}, {6, 10}, {7, 15}, {12, 15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GroupDiscountPercent(tt.size), "size %d", tt.size)
	}
}

func TestPeakSeasonBoundaries(t *testing.T) {
	peak := []time.Month{time.December, time.January, time.February, time.March}
	for month := time.January; month <= time.December; month++ {
		in := Input{
			ServiceType:  shared.ServiceTour,
			DurationDays: 1,
			Adults:       1,
			Tier:         shared.TierStandard,
			StartDate:    date(2026, month),
		}
		got := Calculate(in)
		expectPeak := false
		for _, m := range peak {
			if month == m {
				expectPeak = true
			}
		}
		if expectPeak {
			assert.Equal(t, 120.0, got.BasePrice, "month %s", month)
		} else {
			assert.Equal(t, 100.0, got.BasePrice, "month %s", month)
		}
	}
}
