package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatQuotationNumber(t *testing.T) {
	at := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "QT-202603-0001", FormatQuotationNumber(at, 1))
	assert.Equal(t, "QT-202603-0142", FormatQuotationNumber(at, 142))
	assert.Equal(t, "QT-202603-10000", FormatQuotationNumber(at, 10000))
}

func TestFormatInvoiceNumber(t *testing.T) {
	at := time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "INV-2026-0007", FormatInvoiceNumber(at, 7))

	next := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-2027-0001", FormatInvoiceNumber(next, 1), "sequence is year scoped")
}
