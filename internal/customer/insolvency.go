package customer

import "github.com/zainabsawakni-art/SCMS-Simulator/internal/entropy"

// RollShock draws this period's insolvency shock. One integer variate in
// [1, 100] decides the shock; a shocked agent draws one more variate for
// the unpaid fraction, uniform around the configured value and clamped to
// at most 1. Non-participants are skipped and keep zeroed shock state.
func (c *Customer) RollShock(rng *entropy.Source, insolvencyRisk, unpaidFraction, randomness float64) {
	if !c.Participating() {
		return
	}
	if float64(rng.IntBetween(1, 100)) <= insolvencyRisk {
		c.Shocked = true
		f := rng.UniformAround(unpaidFraction/100, randomness/100)
		if f > 1 {
			f = 1
		}
		c.UnpaidFraction = f
	} else {
		c.Shocked = false
		c.UnpaidFraction = 0
	}
}

// PayContribution charges the fund contribution on the previous period's
// collected installment: the shock state consulted here is still last
// period's, because this period's shock is drawn afterwards. With the
// incentive system off, a flat base rate applies to everyone.
func (c *Customer) PayContribution(baseRate float64, incentives bool) {
	if !c.Participating() {
		c.PaidContribution = 0
		return
	}
	collected := (1 - c.shockFactor()) * c.Installment
	if !incentives {
		c.ContributionRate = baseRate / 100
	}
	c.PaidContribution = c.ContributionRate * collected
	c.CumInstallment += c.Installment
	c.CumPaidContribution += c.PaidContribution
}

// SettleInstallment realizes this period's deficit and paid installment
// from the shock state and accumulates the running totals.
func (c *Customer) SettleInstallment() {
	if !c.Participating() {
		c.Deficit = 0
		c.PaidInstallment = 0
		return
	}
	c.Deficit = c.shockFactor() * c.Installment
	c.CumDeficit += c.Deficit
	c.PaidInstallment = c.Installment - c.Deficit
	c.CumPaidInstallment += c.PaidInstallment
}

// ReceiveCompensation applies the fund's period-deficit coverage at the
// globally determined share, reducing the unresolved deficit backlog.
func (c *Customer) ReceiveCompensation(share float64) {
	if !c.Participating() {
		c.CompensationReceived = 0
		return
	}
	c.CompensationReceived = share * c.Deficit
	c.CumDeficit -= c.CompensationReceived
	c.CumCompensation += c.CompensationReceived
	c.NonPerformingDebt = c.CumDeficit
}

// ReceiveBacklog applies a backlog catch-up payment against the unresolved
// cumulative deficit, floored at zero.
func (c *Customer) ReceiveBacklog(amount float64) {
	c.AdditionalCompensation = amount
	c.CumDeficit -= amount
	if c.CumDeficit < 0 {
		c.CumDeficit = 0
	}
	c.CumCompensation += amount
	c.NonPerformingDebt = c.CumDeficit
}
