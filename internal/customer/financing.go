package customer

import "github.com/zainabsawakni-art/SCMS-Simulator/internal/entropy"

// FinancingTerms bound the random loan draw at issue time.
type FinancingTerms struct {
	MinInstallment float64
	MaxInstallment float64
	MinPeriods     int
	MaxPeriods     int
}

// IssueLoan draws a fresh installment and duration within the configured
// bounds and books the new principal. Two variates are consumed: the
// installment offset, then the duration offset.
func (c *Customer) IssueLoan(rng *entropy.Source, t FinancingTerms) {
	c.Installment = t.MinInstallment + float64(rng.IntBetween(0, int(t.MaxInstallment-t.MinInstallment)))
	c.Duration = t.MinPeriods + rng.IntBetween(0, t.MaxPeriods-t.MinPeriods)
	c.Debt = c.Installment * float64(c.Duration)
	c.GrossDebt = c.Debt
	c.CumDebt += c.Debt
	c.PerformingDebt = c.Debt
}

// Renew re-issues a matured or expelled customer a brand-new loan: flow
// fields are cleared, rating state restarts from the fixed base day, and a
// fresh financing draw is taken. Returns the new principal for bank
// accounting. Base day, peer weight, and response weights persist for the
// life of the agent.
func (c *Customer) Renew(rng *entropy.Source, t FinancingTerms) float64 {
	c.clearFlow()
	c.ResetMembership()
	c.IssueLoan(rng, t)
	c.Active = true
	c.FinancingRound++
	c.Month = 1
	return c.Debt
}

// Retire makes the customer permanently inert: all flow fields are zeroed
// and no further processing touches it, but it keeps its identity, its
// grid cell, and its cumulative counters.
func (c *Customer) Retire() {
	c.clearFlow()
}

// clearFlow zeroes every per-period and per-loan flow field. Cumulative
// counters (debt issued, paid contributions/installments, compensation,
// unresolved deficit) survive.
func (c *Customer) clearFlow() {
	c.Active = false
	c.Installment = 0
	c.Debt = 0
	c.PaidContribution = 0
	c.Deficit = 0
	c.PaidInstallment = 0
	c.CompensationReceived = 0
	c.AdditionalCompensation = 0
	c.ContributionRate = 0
	c.StdContribution = 0
	c.StdPremium = 0
	c.Day = 0
	c.BRisk = 0
	c.OnTime = 0
	c.Late = 0
}

// AmortizeDebt retires one installment's worth of principal.
func (c *Customer) AmortizeDebt() {
	if !c.Participating() {
		return
	}
	c.Debt -= c.Installment
	if c.Debt < 0 {
		c.Debt = 0
	}
	c.PerformingDebt = c.Debt
}

// Reconcile recomputes the per-period balance identity
// installment == paid_installment + deficit. The residual should be zero
// for every participant; the engine reports any deviation.
func (c *Customer) Reconcile() (residual float64, checked bool) {
	if !c.Participating() {
		return 0, false
	}
	c.Balance = c.Installment - c.PaidInstallment - c.Deficit
	return c.Balance, true
}
