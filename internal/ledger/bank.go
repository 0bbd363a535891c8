// Package ledger provides the bank and mutual-fund accounting aggregates
// updated from the population's per-period totals.
package ledger

// Bank tracks the lender's position. Cash grows with collected
// installments and fund compensation and shrinks when new loans are
// issued; receivables mirror the population's performing plus
// non-performing debt.
type Bank struct {
	Cash        float64 `json:"cash"`
	Receivables float64 `json:"receivables"`
	Assets      float64 `json:"assets"`
}

// Setup initializes the bank against the initially issued debt.
func (b *Bank) Setup(totalDebt float64) {
	b.Cash = 0
	b.Receivables = totalDebt
	b.Assets = b.Cash + b.Receivables
}

// Update applies one period's flows. Negative cash is tolerated as a
// modeling signal; the return value lets the engine surface it as a
// diagnostic instead of failing.
func (b *Bank) Update(paidInstallments, compensation, newDebt, performing, nonPerforming float64) (cashNegative bool) {
	b.Cash += paidInstallments + compensation - newDebt
	b.Receivables = performing + nonPerforming
	b.Assets = b.Cash + b.Receivables
	return b.Cash < 0
}
