// Package quotations implements the quotation pricing and lifecycle engine:
// creation with a computed price breakdown, the draft/sent/viewed/accepted/
// rejected state machine, and the bounded staff update path.
package quotations

import (
	"time"

	"github.com/horizon-travel/horizon/internal/shared"
)

// Status is a quotation's lifecycle state.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusViewed   Status = "viewed"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ValidityDays is how long a quotation stays open after creation.
const ValidityDays = 14

// Quotation is one priced, time-bound offer to a customer.
type Quotation struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`

	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	CustomerCountry string `json:"customer_country,omitempty"`

	ServiceType    shared.ServiceType `json:"service_type"`
	ServiceID      int64              `json:"service_id,omitempty"`
	ServiceDetails map[string]any     `json:"service_details,omitempty"`

	StartDate         time.Time                `json:"start_date"`
	EndDate           time.Time                `json:"end_date"`
	DurationDays      int                      `json:"duration_days"`
	Adults            int                      `json:"adults"`
	Children          int                      `json:"children"`
	Infants           int                      `json:"infants"`
	NumRooms          int                      `json:"num_rooms,omitempty"`
	AccommodationTier shared.AccommodationTier `json:"accommodation_tier"`

	BasePrice            float64 `json:"base_price"`
	AccommodationUpgrade float64 `json:"accommodation_upgrade"`
	DiscountAmount       float64 `json:"discount_amount"`
	DiscountPercentage   float64 `json:"discount_percentage"`
	Subtotal             float64 `json:"subtotal"`
	TotalAmount          float64 `json:"total_amount"`
	DepositPercentage    float64 `json:"deposit_percentage"`
	DepositAmount        float64 `json:"deposit_amount"`
	BalanceAmount        float64 `json:"balance_amount"`

	IncludedServices []string `json:"included_services"`
	AdminNotes       *string  `json:"admin_notes,omitempty"`

	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	FirstViewedAt *time.Time `json:"first_viewed_at,omitempty"`
	ViewedAt      *time.Time `json:"viewed_at,omitempty"`
	ViewCount     int        `json:"view_count"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	ValidUntil    time.Time  `json:"valid_until"`
}
