package shared

import "math"

// DefaultDepositPercentage applies when neither the request nor the
// quotation specifies a deposit percentage.
const DefaultDepositPercentage = 30.0

// Round2 rounds a currency amount to two decimal places. Amounts are rounded
// at the point of output only, never on intermediate terms, so fractional
// accumulation during calculation is preserved.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// SplitDeposit divides a total into deposit and balance for the given
// percentage. Both halves are rounded so that deposit+balance stays within
// one minor currency unit of the total.
func SplitDeposit(total, percentage float64) (deposit, balance float64) {
	deposit = Round2(total * percentage / 100)
	balance = Round2(total - deposit)
	return deposit, balance
}
