package invoices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name          string
		total         float64
		paid          float64
		pct           float64
		wantDeposit   float64
		wantRemaining float64
		wantStatus    Status
	}{
		{
			name:  "payment exactly at deposit is partial",
			total: 1000, paid: 300, pct: 30,
			wantDeposit: 300, wantRemaining: 700, wantStatus: StatusPartial,
		},
		{
			name:  "payment between deposit and total is partial",
			total: 1000, paid: 650, pct: 30,
			wantDeposit: 300, wantRemaining: 700, wantStatus: StatusPartial,
		},
		{
			name:  "payment at total is paid",
			total: 1000, paid: 1000, pct: 30,
			wantDeposit: 300, wantRemaining: 700, wantStatus: StatusPaid,
		},
		{
			name:  "overpayment is paid",
			total: 1000, paid: 1250, pct: 30,
			wantDeposit: 300, wantRemaining: 700, wantStatus: StatusPaid,
		},
		{
			name:  "payment below deposit is underpaid",
			total: 1000, paid: 299.99, pct: 30,
			wantDeposit: 300, wantRemaining: 700, wantStatus: StatusUnderpaid,
		},
		{
			name:  "zero payment is underpaid",
			total: 1000, paid: 0, pct: 30,
			wantDeposit: 300, wantRemaining: 700, wantStatus: StatusUnderpaid,
		},
		{
			name:  "custom percentage changes the split",
			total: 1368, paid: 684, pct: 50,
			wantDeposit: 684, wantRemaining: 684, wantStatus: StatusPartial,
		},
		{
			name:  "fractional totals round to cents",
			total: 333.33, paid: 100, pct: 30,
			wantDeposit: 100, wantRemaining: 233.33, wantStatus: StatusPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts, status := Reconcile(tt.total, tt.paid, tt.pct)
			assert.Equal(t, tt.wantStatus, status)
			assert.InDelta(t, tt.wantDeposit, amounts.DepositAmount, 0.001)
			assert.InDelta(t, tt.wantRemaining, amounts.RemainingAmount, 0.001)
			assert.InDelta(t, tt.total, amounts.DepositAmount+amounts.RemainingAmount, 0.01,
				"deposit and remaining reassemble the total")
		})
	}
}

func TestResolveDepositPercentage(t *testing.T) {
	override := 40.0

	assert.Equal(t, 40.0, ResolveDepositPercentage(&override, 25), "override wins")
	assert.Equal(t, 25.0, ResolveDepositPercentage(nil, 25), "quotation percentage next")
	assert.Equal(t, 30.0, ResolveDepositPercentage(nil, 0), "default when nothing set")
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPartial, StatusPaid, StatusUnderpaid} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("refunded").Valid())
}
