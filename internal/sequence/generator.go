// Package sequence allocates unique human-readable document numbers.
package sequence

import (
	"context"
	"fmt"
	"time"
)

// Document types with their own counters.
const (
	DocQuotation = "QT"
	DocInvoice   = "INV"
)

// Generator issues unique document numbers. Implementations must guarantee
// that concurrent callers never receive the same number; the reference
// implementation relies on an atomic database-side counter.
type Generator interface {
	NextQuotationNumber(ctx context.Context, at time.Time) (string, error)
	NextInvoiceNumber(ctx context.Context, at time.Time) (string, error)
}

// FormatQuotationNumber renders QT-{YYYYMM}-{seq} with a zero-padded sequence.
func FormatQuotationNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", DocQuotation, at.Format("200601"), seq)
}

// FormatInvoiceNumber renders INV-{YYYY}-{seq}. The sequence resets per year.
func FormatInvoiceNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", DocInvoice, at.Format("2006"), seq)
}
