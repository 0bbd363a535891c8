package engine

import (
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/customer"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/grid"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/ledger"
)

// CustomerCounts aggregates the population by status and rating tier.
type CustomerCounts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Expelled  int `json:"expelled"`
	ARated    int `json:"a_rated"`
	BRated    int `json:"b_rated"`
	CRated    int `json:"c_rated"`
	Insolvent int `json:"insolvent"`
}

// Totals carries the period's population-level flows.
type Totals struct {
	Contribution       float64 `json:"contribution"`
	Deficit            float64 `json:"deficit"`
	Compensation       float64 `json:"compensation"`
	PaidInstallment    float64 `json:"paid_installment"`
	NewDebt            float64 `json:"new_debt"`
	CumDeficit         float64 `json:"cum_deficit"`
	CumPaidInstallment float64 `json:"cum_paid_installment"`
}

// Metrics carries derived population metrics for dashboards.
type Metrics struct {
	AvgPaymentDay       float64 `json:"avg_payment_day"`
	AvgContributionPct  float64 `json:"avg_contribution_pct"`
	AvgPoints           float64 `json:"avg_points"`
	MeanDay             float64 `json:"mean_day"`
	MaxDay              int     `json:"max_day"`
	MeanDeficit         float64 `json:"mean_deficit"`
	MeanCompensation    float64 `json:"mean_compensation"`
	MeanAdditionalComp  float64 `json:"mean_additional_compensation"`
	PerformingDebt      float64 `json:"performing_debt"`
	NonPerformingDebt   float64 `json:"non_performing_debt"`
	ZeroRiskPeriod      int     `json:"zero_risk_period"`
	FinancingRounds     int     `json:"financing_rounds"`
	CompensationShare   float64 `json:"compensation_share"`
}

// Snapshot is the aggregate view of one period, everything a host needs
// for charts and summary panels.
type Snapshot struct {
	Month      int            `json:"month"`
	Seed       int64          `json:"seed"`
	Terminated bool           `json:"terminated"`
	Bank       ledger.Bank    `json:"bank"`
	Fund       ledger.Fund    `json:"fund"`
	Customers  CustomerCounts `json:"customers"`
	Totals     Totals         `json:"totals"`
	Metrics    Metrics        `json:"metrics"`
}

// Cell is the per-customer detail backing the grid visualization.
type Cell struct {
	ID       int                 `json:"id"`
	Pos      grid.Coord          `json:"pos"`
	Tier     customer.RatingTier `json:"tier"`
	Member   bool                `json:"member"`
	Active   bool                `json:"active"`
	Shocked  bool                `json:"shocked"`
	Day      int                 `json:"day"`
	Points   int                 `json:"points"`
	Month    int                 `json:"month"`
	Duration int                 `json:"duration"`
	Round    int                 `json:"round"`
	Deficit  float64             `json:"deficit"`
}

// Snapshot computes the aggregate view of the current period.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Month:      w.Month,
		Seed:       w.Seed,
		Terminated: w.Terminated(),
		Bank:       w.Bank,
		Fund:       w.Fund,
		Totals: Totals{
			Contribution:       w.TotalContribution,
			Deficit:            w.TotalDeficit,
			Compensation:       w.TotalCompensation,
			PaidInstallment:    w.TotalPaidInstallment,
			NewDebt:            w.TotalNewDebt,
			CumDeficit:         w.CumTotalDeficit,
			CumPaidInstallment: w.CumTotalPaidInstallment,
		},
	}

	n := len(w.Customers)
	s.Customers.Total = n
	s.Customers.Expelled = w.ExpelledAgents
	s.Metrics.ZeroRiskPeriod = w.ZeroRiskPeriod
	s.Metrics.CompensationShare = w.Share
	if n == 0 {
		return s
	}

	var (
		sumDay, sumPoints, sumDeficit, sumComp, sumAddComp float64
		sumActiveDay, sumActiveRate                        float64
		performing, nonPerforming                          float64
		activeCount, maxDay, maxRound                      int
	)
	for _, c := range w.Customers {
		sumDay += float64(c.Day)
		sumPoints += float64(c.Points)
		sumDeficit += c.Deficit
		sumComp += c.CompensationReceived
		sumAddComp += c.AdditionalCompensation
		performing += c.PerformingDebt
		nonPerforming += c.NonPerformingDebt
		if c.Day > maxDay {
			maxDay = c.Day
		}
		if c.FinancingRound > maxRound {
			maxRound = c.FinancingRound
		}
		if c.Shocked {
			s.Customers.Insolvent++
		}
		if c.Member {
			activeCount++
			sumActiveDay += float64(c.Day)
			sumActiveRate += c.ContributionRate
			switch c.Tier() {
			case customer.TierA:
				s.Customers.ARated++
			case customer.TierB:
				s.Customers.BRated++
			default:
				s.Customers.CRated++
			}
		}
	}

	s.Customers.Active = activeCount
	s.Metrics.MeanDay = sumDay / float64(n)
	s.Metrics.AvgPoints = sumPoints / float64(n)
	s.Metrics.MeanDeficit = sumDeficit / float64(n)
	s.Metrics.MeanCompensation = sumComp / float64(n)
	s.Metrics.MeanAdditionalComp = sumAddComp / float64(n)
	s.Metrics.PerformingDebt = performing
	s.Metrics.NonPerformingDebt = nonPerforming
	s.Metrics.MaxDay = maxDay
	s.Metrics.FinancingRounds = maxRound
	if activeCount > 0 {
		s.Metrics.AvgPaymentDay = sumActiveDay / float64(activeCount)
		s.Metrics.AvgContributionPct = sumActiveRate * 100 / float64(activeCount)
	}
	return s
}

// GridView returns the per-customer detail for every cell on the lattice.
func (w *World) GridView() []Cell {
	cells := make([]Cell, 0, len(w.Customers))
	for _, c := range w.Customers {
		cells = append(cells, Cell{
			ID:       c.ID,
			Pos:      c.Pos,
			Tier:     c.Tier(),
			Member:   c.Member,
			Active:   c.Active,
			Shocked:  c.Shocked,
			Day:      c.Day,
			Points:   c.Points,
			Month:    c.Month,
			Duration: c.Duration,
			Round:    c.FinancingRound,
			Deficit:  c.Deficit,
		})
	}
	return cells
}
