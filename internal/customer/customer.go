// Package customer provides the borrower agent: one loan lifecycle, rating
// state, and per-period ledger fields, pinned to a fixed grid cell.
package customer

import (
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/grid"
)

// RatingTier buckets the actual payment day for the grid visualization.
type RatingTier string

const (
	TierA RatingTier = "A" // day 1–10
	TierB RatingTier = "B" // day 11–19
	TierC RatingTier = "C" // day 20+
)

// Customer is one borrower in the credit insurance network. Identity and
// grid position never change; everything else cycles with the loan.
type Customer struct {
	ID  int        `json:"id"`
	Pos grid.Coord `json:"pos"`

	// Financing
	Installment    float64 `json:"installment"`
	Duration       int     `json:"duration"`        // Loan length in periods
	Month          int     `json:"month"`           // Months into the current loan
	FinancingRound int     `json:"financing_round"` // 1 on first loan, +1 per renewal
	Debt           float64 `json:"debt"`            // Outstanding
	GrossDebt      float64 `json:"gross_debt"`      // Original principal of the current loan
	CumDebt        float64 `json:"cum_debt"`        // All debt ever issued
	PerformingDebt float64 `json:"performing_debt"`

	// Payment behavior. BaseDay is drawn once at setup; PrefDay jitters
	// around it each period; Day is the realized payment day.
	BaseDay int     `json:"base_day"`
	PrefDay int     `json:"pref_day"`
	Day     int     `json:"day"`
	BRisk   float64 `json:"b_risk"` // Behavioral risk in [1/30, 1]
	Lamda   float64 `json:"lamda"`  // Peer-influence weight
	Alpha1  float64 `json:"alpha1"` // Preferred-day adherence
	Alpha2  float64 `json:"alpha2"` // Premium aversion

	// Contribution
	ContributionRate    float64 `json:"contribution_rate"` // Fraction of installment
	StdContribution     float64 `json:"std_contribution"`
	StdPremium          float64 `json:"std_premium"`
	PaidContribution    float64 `json:"paid_contribution"`
	CumPaidContribution float64 `json:"cum_paid_contribution"`
	CumInstallment      float64 `json:"cum_installment"` // Installments charged, all time

	// Insolvency
	Shocked            bool    `json:"shocked"`
	UnpaidFraction     float64 `json:"unpaid_fraction"`
	Deficit            float64 `json:"deficit"`
	CumDeficit         float64 `json:"cum_deficit"` // Unresolved deficit backlog
	PaidInstallment    float64 `json:"paid_installment"`
	CumPaidInstallment float64 `json:"cum_paid_installment"`

	// Compensation
	CompensationReceived   float64 `json:"compensation_received"`
	AdditionalCompensation float64 `json:"additional_compensation"`
	CumCompensation        float64 `json:"cum_compensation"`
	NonPerformingDebt      float64 `json:"non_performing_debt"` // == CumDeficit after payouts

	// Membership and rating
	Member bool `json:"member"`
	OnTime int  `json:"on_time"`
	Late   int  `json:"late"` // Cumulative, never reset within a loan
	Points int  `json:"points"`
	Active bool `json:"active"` // False once permanently retired

	// Reconciliation residual, recomputed every period for participants.
	Balance float64 `json:"balance"`
}

// New creates an idle customer at a fixed grid cell. Financing and
// incentive state are drawn separately so the setup draw order stays
// explicit in the engine.
func New(id int, pos grid.Coord) *Customer {
	return &Customer{
		ID:             id,
		Pos:            pos,
		FinancingRound: 1,
		Member:         true,
		Month:          1,
	}
}

// Participating reports whether the customer is processed this period: the
// loan has not matured and membership has not been revoked.
func (c *Customer) Participating() bool {
	return c.Month <= c.Duration && c.Member
}

// Tier returns the rating bucket for the current payment day.
func (c *Customer) Tier() RatingTier {
	switch {
	case c.Day >= 1 && c.Day < 11:
		return TierA
	case c.Day >= 11 && c.Day < 20:
		return TierB
	default:
		return TierC
	}
}

// shockFactor is the unpaid fraction of the installment implied by the
// currently stored shock state.
func (c *Customer) shockFactor() float64 {
	if !c.Shocked {
		return 0
	}
	return c.UnpaidFraction
}
