package invoices

// CreateInvoiceRequest records one payment against a quotation.
type CreateInvoiceRequest struct {
	QuotationID       int64    `json:"quotation_id" validate:"required,gt=0"`
	PaymentType       string   `json:"payment_type" validate:"required,max=60"`
	PaymentReference  string   `json:"payment_reference" validate:"omitempty,max=120"`
	PaidAmount        float64  `json:"paid_amount" validate:"gte=0"`
	DepositPercentage *float64 `json:"deposit_percentage" validate:"omitempty,gte=0,lte=100"`
	Notes             string   `json:"notes" validate:"omitempty,max=2000"`
}

// ListInvoicesRequest filters the invoice listing.
type ListInvoicesRequest struct {
	QuotationID *int64
	Status      *Status
	Limit       int
	Offset      int
}
