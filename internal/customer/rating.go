package customer

import (
	"math"

	"github.com/zainabsawakni-art/SCMS-Simulator/internal/entropy"
)

// SetupPaymentDay draws the agent's fixed base preferred day in
// [1, max_day] and seeds the behavioral risk from it. One variate.
func (c *Customer) SetupPaymentDay(rng *entropy.Source, maxDay int) {
	c.BaseDay = rng.IntBetween(1, maxDay)
	c.PrefDay = c.BaseDay
	c.Day = c.PrefDay
	c.BRisk = float64(c.Day) / 30.0
}

// SetupContribution sets the initial contribution rate from the base
// preferred day. No variates.
func (c *Customer) SetupContribution(baseRate, premiumIncrement float64) {
	lateDays := c.BaseDay - 1
	if lateDays < 1 {
		lateDays = 1
	}
	c.ContributionRate = baseRate/100 + (premiumIncrement/100)*float64(lateDays)
	if baseRate > 0 {
		c.StdContribution = (c.ContributionRate / (baseRate / 100)) / 30.0
	} else {
		c.StdContribution = 0
	}
}

// SetupPeerWeight draws the peer-influence weight lamda around the
// configured peer effect, clamped to [0, 1]. One variate.
func (c *Customer) SetupPeerWeight(rng *entropy.Source, peerEffect, randomness float64) {
	c.Lamda = rng.UniformAround(peerEffect/100, randomness/100)
	if c.Lamda < 0 {
		c.Lamda = 0
	}
	if c.Lamda > 1 {
		c.Lamda = 1
	}
}

// SetupResponses draws the adherence and premium-aversion weights around
// the configured responses. Two variates: alpha1 then alpha2.
func (c *Customer) SetupResponses(rng *entropy.Source, pDayResponse, premiumResponse, randomness float64) {
	c.Alpha1 = rng.UniformAround(pDayResponse, randomness/100)
	c.Alpha2 = rng.UniformAround(premiumResponse, randomness/100)
}

// ResetMembership restores a clean rating slate from the fixed base day.
func (c *Customer) ResetMembership() {
	c.Points = 100 - (c.BaseDay - 1)
	c.OnTime = 0
	c.Late = 0
	c.Member = true
}

// RollPreferredDay jitters the period's preferred day within one unit of
// the fixed base day, clipped to max_day + 1. One variate.
func (c *Customer) RollPreferredDay(rng *entropy.Source, maxDay int) {
	lo := c.BaseDay - 1
	if lo < 1 {
		lo = 1
	}
	hi := c.BaseDay + 1
	c.PrefDay = rng.IntBetween(lo, hi)
	if c.PrefDay > maxDay+1 {
		c.PrefDay = maxDay + 1
	}
}

// UpdateRating blends the personal risk term with the supplied peer term,
// floors the result at 1/30, realizes the payment day, and updates the
// rating counters. A payment day of max_day - 1 or earlier counts as
// on-time; the fourth late payment revokes membership. Returns true on the
// period the customer is expelled.
func (c *Customer) UpdateRating(peerTerm float64, maxDay int) (expelled bool) {
	d1 := c.Alpha1*(float64(c.PrefDay)/30.0) - c.Alpha2*c.StdPremium
	c.BRisk = (1-c.Lamda)*d1 + c.Lamda*peerTerm
	if c.BRisk < 1.0/30.0 {
		c.BRisk = 1.0 / 30.0
	}
	c.Day = int(math.Round(c.BRisk * 30))

	c.Points = 100 - (c.Day - 1)
	if c.Points >= 100-(maxDay-2) {
		c.OnTime++
	} else {
		c.Late++
	}
	if c.Late > 3 && c.Member {
		c.Member = false
		return true
	}
	return false
}

// UpdatePremium recomputes the contribution rate from the realized payment
// day and standardizes it against the base rate.
func (c *Customer) UpdatePremium(baseRate, premiumIncrement float64) {
	if !c.Participating() {
		return
	}
	c.ContributionRate = baseRate/100 + (premiumIncrement/100)*float64(c.Day-1)
	if baseRate > 0 {
		c.StdContribution = (c.ContributionRate / (baseRate / 100)) / 30.0
		c.StdPremium = c.StdContribution - 1.0/30.0
	} else {
		c.ContributionRate = 0
		c.StdContribution = 0
		c.StdPremium = 0
	}
}
