package catalog

import (
	"fmt"
	"strings"

	"github.com/horizon-travel/horizon/internal/shared"
)

// defaultInclusions is the generic tour list used when nothing better is
// available for the service.
var defaultInclusions = []string{
	"Private vehicle with English-speaking chauffeur",
	"Accommodation as per itinerary",
	"Daily breakfast",
	"Airport pick-up and drop-off",
	"Fuel, parking fees and highway tolls",
	"Chauffeur's accommodation and meals",
	"All government taxes",
}

// IncludedServices resolves the ordered line items shown on a quotation.
// Precedence is strict: an explicit list wins, then the catalog-derived list
// for the service type, then the generic fallback. The result is frozen onto
// the quotation at creation time and never recomputed.
func IncludedServices(explicit []string, serviceType shared.ServiceType, rec *ServiceRecord) []string {
	if len(explicit) > 0 {
		return explicit
	}

	switch serviceType {
	case shared.ServiceTour:
		if rec != nil {
			if items := splitList(rec.Includings); len(items) > 0 {
				return items
			}
		}
	case shared.ServiceVehicle:
		if rec != nil {
			return vehicleInclusions(rec)
		}
	case shared.ServiceHotel:
		if rec != nil {
			if items := splitList(rec.Facilities); len(items) > 0 {
				return append([]string{"Daily Housekeeping", "Complimentary Breakfast"}, items...)
			}
		}
	}

	out := make([]string, len(defaultInclusions))
	copy(out, defaultInclusions)
	return out
}

func vehicleInclusions(rec *ServiceRecord) []string {
	name := strings.TrimSpace(rec.Name + " " + rec.VehicleType)
	items := []string{
		name,
		"Comprehensive insurance coverage",
		"Unlimited mileage",
		"24/7 roadside assistance",
		"Additional driver included",
		"GPS navigation",
		"Child seat on request",
		"Airport transfer",
	}
	if rec.AvailableFor != "" {
		items = append(items, fmt.Sprintf("Available for: %s", rec.AvailableFor))
	}
	return items
}

// splitList breaks a free-text catalog field on commas and newlines,
// trimming whitespace and dropping empty entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
