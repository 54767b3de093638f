// Package shared holds domain types used across booking modules.
package shared

// ServiceType identifies which catalog a quoted service belongs to.
type ServiceType string

const (
	ServiceTour    ServiceType = "tour"
	ServiceVehicle ServiceType = "vehicle"
	ServiceHotel   ServiceType = "hotel"
	ServiceOther   ServiceType = "other"
)

// Valid reports whether the service type is one of the known catalogs.
func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTour, ServiceVehicle, ServiceHotel, ServiceOther:
		return true
	}
	return false
}

// AccommodationTier selects the lodging class priced into a tour.
type AccommodationTier string

const (
	TierStandard AccommodationTier = "standard"
	TierDeluxe   AccommodationTier = "deluxe"
	TierLuxury   AccommodationTier = "luxury"
)

// Valid reports whether the tier is a known accommodation class.
func (t AccommodationTier) Valid() bool {
	switch t {
	case TierStandard, TierDeluxe, TierLuxury:
		return true
	}
	return false
}
