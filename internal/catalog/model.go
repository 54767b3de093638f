// Package catalog exposes read access to the tour, vehicle and hotel
// catalogs consumed by the booking core. Catalog administration lives
// elsewhere; this package only looks records up.
package catalog

import (
	"errors"

	"github.com/horizon-travel/horizon/internal/shared"
)

// ErrNotFound indicates the referenced catalog record does not exist.
var ErrNotFound = errors.New("catalog: record not found")

// ServiceRecord is the structured catalog record behind a quoted service.
// Only the fields matching the record's type are populated.
type ServiceRecord struct {
	ID   int64              `json:"id"`
	Type shared.ServiceType `json:"type"`
	Name string             `json:"name"`

	// Tour packages.
	DurationDays int    `json:"duration_days,omitempty"`
	Includings   string `json:"includings,omitempty"`
	Exclusions   string `json:"exclusions,omitempty"`

	// Vehicles.
	VehicleType  string `json:"vehicle_type,omitempty"`
	Capacity     int    `json:"capacity,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	FuelType     string `json:"fuel_type,omitempty"`
	AvailableFor string `json:"available_for,omitempty"`

	// Hotels.
	Location   string `json:"location,omitempty"`
	StarRating int    `json:"star_rating,omitempty"`
	Facilities string `json:"facilities,omitempty"`

	PricePerDay float64 `json:"price_per_day,omitempty"`
}

// Snapshot freezes the record's descriptive fields for embedding into a
// financial document. The snapshot is never re-derived from the catalog.
func (r *ServiceRecord) Snapshot() map[string]any {
	if r == nil {
		return nil
	}
	snap := map[string]any{
		"id":   r.ID,
		"type": r.Type,
		"name": r.Name,
	}
	switch r.Type {
	case shared.ServiceTour:
		snap["duration_days"] = r.DurationDays
		snap["includings"] = r.Includings
		snap["exclusions"] = r.Exclusions
	case shared.ServiceVehicle:
		snap["vehicle_type"] = r.VehicleType
		snap["capacity"] = r.Capacity
		snap["transmission"] = r.Transmission
		snap["fuel_type"] = r.FuelType
		snap["available_for"] = r.AvailableFor
	case shared.ServiceHotel:
		snap["location"] = r.Location
		snap["star_rating"] = r.StarRating
		snap["facilities"] = r.Facilities
	}
	if r.PricePerDay > 0 {
		snap["price_per_day"] = r.PricePerDay
	}
	return snap
}
