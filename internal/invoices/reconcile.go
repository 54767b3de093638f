package invoices

import "github.com/horizon-travel/horizon/internal/shared"

// Amounts is the deposit arithmetic derived from a quotation total.
type Amounts struct {
	DepositPercentage float64
	DepositAmount     float64
	RemainingAmount   float64
}

// ResolveDepositPercentage picks the percentage for an invoice: an explicit
// override wins, then the quotation's own percentage, then the default.
func ResolveDepositPercentage(override *float64, quotationPct float64) float64 {
	if override != nil {
		return *override
	}
	if quotationPct > 0 {
		return quotationPct
	}
	return shared.DefaultDepositPercentage
}

// Reconcile computes the deposit split for a total and classifies the paid
// amount against it. A payment below the deposit is reported as underpaid
// rather than being lumped in with settled invoices.
func Reconcile(total, paid, depositPct float64) (Amounts, Status) {
	deposit, remaining := shared.SplitDeposit(total, depositPct)
	a := Amounts{
		DepositPercentage: depositPct,
		DepositAmount:     deposit,
		RemainingAmount:   remaining,
	}

	switch {
	case paid >= total:
		return a, StatusPaid
	case paid >= deposit:
		return a, StatusPartial
	default:
		return a, StatusUnderpaid
	}
}
