package invoices

import (
	"time"

	"github.com/horizon-travel/horizon/internal/shared"
)

// Status classifies how a payment relates to the deposit and the total.
type Status string

const (
	// StatusPartial covers payments at or above the deposit but below the total.
	StatusPartial Status = "partial"
	// StatusPaid covers payments that settle the full amount.
	StatusPaid Status = "paid"
	// StatusUnderpaid covers payments below the required deposit.
	StatusUnderpaid Status = "underpaid"
)

// Valid reports whether s is a known invoice status.
func (s Status) Valid() bool {
	switch s {
	case StatusPartial, StatusPaid, StatusUnderpaid:
		return true
	}
	return false
}

// Invoice is a financial record of one payment event against a quotation.
// Customer and service fields are snapshots taken at creation time; they are
// never re-derived from the quotation or the catalog afterwards.
type Invoice struct {
	ID              int64  `json:"id"`
	Number          string `json:"invoice_number"`
	QuotationID     int64  `json:"quotation_id"`
	QuotationNumber string `json:"quotation_number"`

	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	CustomerCountry string `json:"customer_country,omitempty"`

	ServiceType     shared.ServiceType `json:"service_type"`
	ServiceSnapshot map[string]any     `json:"service_snapshot,omitempty"`

	PaymentType       string  `json:"payment_type"`
	PaymentReference  string  `json:"payment_reference,omitempty"`
	PaidAmount        float64 `json:"paid_amount"`
	TotalAmount       float64 `json:"total_amount"`
	DepositPercentage float64 `json:"deposit_percentage"`
	DepositAmount     float64 `json:"deposit_amount"`
	RemainingAmount   float64 `json:"remaining_amount"`
	Status            Status  `json:"invoice_status"`

	Notes string `json:"notes,omitempty"`

	EmailSent   bool       `json:"email_sent"`
	EmailSentAt *time.Time `json:"email_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
