package quotations

import (
	"time"

	"github.com/horizon-travel/horizon/internal/shared"
)

// CreateQuotationRequest is the payload for creating a quotation. BasePrice
// is the optional negotiated flat rate; omitting it selects catalog pricing.
type CreateQuotationRequest struct {
	CustomerName    string `json:"customer_name" validate:"required,max=120"`
	CustomerEmail   string `json:"customer_email" validate:"required,email"`
	CustomerPhone   string `json:"customer_phone" validate:"omitempty,max=32"`
	CustomerCountry string `json:"customer_country" validate:"omitempty,max=64"`

	ServiceType    shared.ServiceType `json:"service_type" validate:"required"`
	ServiceID      int64              `json:"service_id" validate:"omitempty,gt=0"`
	ServiceDetails map[string]any     `json:"service_details,omitempty"`

	StartDate         time.Time                `json:"start_date" validate:"required"`
	EndDate           time.Time                `json:"end_date" validate:"required"`
	DurationDays      int                      `json:"duration_days" validate:"omitempty,gt=0"`
	Adults            int                      `json:"adults" validate:"required,gte=1"`
	Children          int                      `json:"children" validate:"gte=0"`
	Infants           int                      `json:"infants" validate:"gte=0"`
	NumRooms          int                      `json:"num_rooms" validate:"gte=0"`
	AccommodationTier shared.AccommodationTier `json:"accommodation_tier" validate:"omitempty,oneof=standard deluxe luxury"`

	BasePrice         *float64 `json:"base_price" validate:"omitempty,gte=0"`
	DepositPercentage *float64 `json:"deposit_percentage" validate:"omitempty,gte=0,lte=100"`

	IncludedServices []string `json:"included_services,omitempty"`
	AdminNotes       *string  `json:"admin_notes,omitempty"`
}

// UpdateQuotationRequest is the bounded staff correction payload. Only the
// fields listed here may change; anything else requires going through the
// lifecycle actions.
type UpdateQuotationRequest struct {
	CustomerName    *string `json:"customer_name,omitempty" validate:"omitempty,max=120"`
	CustomerEmail   *string `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone   *string `json:"customer_phone,omitempty" validate:"omitempty,max=32"`
	CustomerCountry *string `json:"customer_country,omitempty" validate:"omitempty,max=64"`

	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	DurationDays *int       `json:"duration_days,omitempty" validate:"omitempty,gt=0"`
	Adults       *int       `json:"adults,omitempty" validate:"omitempty,gte=1"`
	Children     *int       `json:"children,omitempty" validate:"omitempty,gte=0"`
	Infants      *int       `json:"infants,omitempty" validate:"omitempty,gte=0"`

	BasePrice            *float64 `json:"base_price,omitempty" validate:"omitempty,gte=0"`
	AccommodationUpgrade *float64 `json:"accommodation_upgrade,omitempty" validate:"omitempty,gte=0"`
	DiscountAmount       *float64 `json:"discount_amount,omitempty" validate:"omitempty,gte=0"`
	DiscountPercentage   *float64 `json:"discount_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	Subtotal             *float64 `json:"subtotal,omitempty" validate:"omitempty,gte=0"`
	TotalAmount          *float64 `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
	DepositPercentage    *float64 `json:"deposit_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`

	Status           *Status    `json:"status,omitempty"`
	ValidUntil       *time.Time `json:"valid_until,omitempty"`
	IncludedServices *[]string  `json:"included_services,omitempty"`
	AdminNotes       *string    `json:"admin_notes,omitempty"`
}

// ListQuotationsRequest filters the quotation listing.
type ListQuotationsRequest struct {
	Status      *Status             `json:"status,omitempty"`
	ServiceType *shared.ServiceType `json:"service_type,omitempty"`
	Email       *string             `json:"email,omitempty"`
	DateFrom    *time.Time          `json:"date_from,omitempty"`
	DateTo      *time.Time          `json:"date_to,omitempty"`
	Limit       int                 `json:"limit" validate:"gte=0,lte=500"`
	Offset      int                 `json:"offset" validate:"gte=0"`
}
