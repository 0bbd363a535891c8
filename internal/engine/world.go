// Package engine orchestrates the per-period update cycle of the credit
// insurance network: financing lifecycle, rating and incentives,
// contributions, insolvency shocks, fund compensation, and the bank and
// fund ledgers, with strict reconciliation across all three.
package engine

import (
	"log/slog"
	"math"

	"github.com/zainabsawakni-art/SCMS-Simulator/internal/customer"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/entropy"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/grid"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/ledger"
)

// World owns the full simulation state: the customer population on its
// lattice, both ledgers, the random stream, and the period totals. All
// state is explicit; there are no process-wide singletons.
type World struct {
	Params Params
	Seed   int64 // Actual seed in use, reported for reproducibility

	Grid      *grid.Grid
	Customers []*customer.Customer
	Bank      ledger.Bank
	Fund      ledger.Fund

	Month int
	Share float64 // This period's compensation share, one scalar for everyone

	// Period totals, recomputed every step.
	TotalContribution    float64
	TotalDeficit         float64
	TotalCompensation    float64
	TotalPaidInstallment float64
	TotalNewDebt         float64

	// Running totals.
	CumTotalDeficit         float64
	CumTotalPaidInstallment float64

	ZeroRiskPeriod int // Last month with positive mean non-performing debt
	ExpelledAgents int

	Diagnostics []Diagnostic

	rng          *entropy.Source
	riskSnapshot []float64 // Scratch buffer for simultaneous peer semantics
}

// NewWorld validates the parameters and builds the initial population.
//
// Setup draw order (row-major over the grid): per customer, the financing
// draws (installment, duration); then, with the incentive system enabled, a
// second row-major pass drawing payment day, peer weight, and the two
// response weights per customer.
func NewWorld(p Params) (*World, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.PeerSemantics == "" {
		p.PeerSemantics = PeerSimultaneous
	}

	seed := p.Seed
	if !p.FixSeed || seed == 0 {
		seed = entropy.RandomSeed()
	}

	w := &World{
		Params: p,
		Seed:   seed,
		Grid:   grid.New(p.WorldSize),
		rng:    entropy.NewSource(seed),
	}
	w.setupCustomers()
	if p.IncentiveSystem {
		w.setupIncentives()
	}

	totalDebt := 0.0
	for _, c := range w.Customers {
		totalDebt += c.Debt
	}
	w.Bank.Setup(totalDebt)
	w.Fund.Setup()

	slog.Info("world initialized",
		"customers", len(w.Customers),
		"grid_side", w.Grid.Side,
		"seed", w.Seed,
		"incentives", p.IncentiveSystem,
		"renewal", p.RenewFinancing,
	)
	return w, nil
}

func (w *World) setupCustomers() {
	n := w.Grid.Cells()
	w.Customers = make([]*customer.Customer, 0, n)
	w.riskSnapshot = make([]float64, n)
	for i := 0; i < n; i++ {
		c := customer.New(i, w.Grid.CoordOf(i))
		c.IssueLoan(w.rng, w.financingTerms())
		c.Active = true
		w.Customers = append(w.Customers, c)
	}
}

func (w *World) setupIncentives() {
	for _, c := range w.Customers {
		c.SetupPaymentDay(w.rng, w.Params.MaxDay)
		c.SetupContribution(w.Params.BaseRate, w.Params.PremiumIncrement)
		c.SetupPeerWeight(w.rng, w.Params.PeerEffect, w.Params.Randomness)
		c.SetupResponses(w.rng, w.Params.PDayResponse, w.Params.PremiumResponse, w.Params.Randomness)
		c.ResetMembership()
	}
}

func (w *World) financingTerms() customer.FinancingTerms {
	return customer.FinancingTerms{
		MinInstallment: w.Params.MinInstallment,
		MaxInstallment: w.Params.MaxInstallment,
		MinPeriods:     w.Params.MinPeriods,
		MaxPeriods:     w.Params.MaxPeriods,
	}
}

// Step advances the world by one period. The phase order is fixed:
// renewal/exit, rating and incentives, contributions, insolvency shocks,
// compensation allocation, debt amortization, fund and bank ledgers,
// reconciliation, zero-risk tracking.
//
// Per-period draw order (population in row-major order throughout):
// renewal draws (installment, duration) for each renewed customer; then one
// preferred-day jitter per rated customer; then the shock draw, plus the
// unpaid-fraction draw for shocked customers. No other phase consumes
// variates.
func (w *World) Step() {
	if w.Terminated() {
		return
	}
	w.Month++
	for _, c := range w.Customers {
		c.Month++
	}

	w.renewFinancing()
	if w.Params.IncentiveSystem {
		w.applyIncentives()
	}
	w.collectContributions()
	w.applyInsolvency()
	w.distributeCompensation()
	w.amortizeDebt()
	w.updateFund()
	w.updateBank()
	w.reconcile()
	w.trackZeroRisk()
}

// Terminated reports whether the configured horizon has been reached:
// max_periods without renewal, no_of_periods with it.
func (w *World) Terminated() bool {
	if !w.Params.RenewFinancing {
		return w.Month >= w.Params.MaxPeriods
	}
	return w.Month >= w.Params.Periods
}

// renewFinancing resolves the lifecycle state machine before anything else
// touches the period: matured or expelled customers either get a fresh
// loan or become permanently inert.
func (w *World) renewFinancing() {
	w.TotalNewDebt = 0
	for _, c := range w.Customers {
		if c.Month <= c.Duration && c.Member {
			continue
		}
		if w.Params.RenewFinancing {
			w.TotalNewDebt += c.Renew(w.rng, w.financingTerms())
		} else {
			c.Retire()
		}
	}
}

// applyIncentives runs the rating pass and then the premium pass. Under
// simultaneous semantics every agent's peer term is the mean of its
// neighbors' prior-period risk scores; under sequential semantics agents
// earlier in row-major order feed already-updated scores to later ones.
func (w *World) applyIncentives() {
	snapshot := w.riskSnapshot
	if w.Params.PeerSemantics == PeerSimultaneous {
		for i, c := range w.Customers {
			snapshot[i] = c.BRisk
		}
	}

	for _, c := range w.Customers {
		if !c.Participating() {
			continue
		}
		c.RollPreferredDay(w.rng, w.Params.MaxDay)
		if c.UpdateRating(w.peerTerm(c, snapshot), w.Params.MaxDay) {
			w.ExpelledAgents++
		}
	}

	for _, c := range w.Customers {
		c.UpdatePremium(w.Params.BaseRate, w.Params.PremiumIncrement)
	}
}

// peerTerm is the mean behavioral risk over the agent's Moore
// neighborhood. Only members contribute to the sum, but the divisor is the
// full neighbor count; an agent with no neighbors echoes its own score.
func (w *World) peerTerm(c *customer.Customer, snapshot []float64) float64 {
	adj := w.Grid.Neighbors(c.ID)
	if len(adj) == 0 {
		return c.BRisk
	}
	sum := 0.0
	for _, j := range adj {
		n := w.Customers[j]
		if !n.Member {
			continue
		}
		if w.Params.PeerSemantics == PeerSimultaneous {
			sum += snapshot[j]
		} else {
			sum += n.BRisk
		}
	}
	return sum / float64(len(adj))
}

func (w *World) collectContributions() {
	w.TotalContribution = 0
	for _, c := range w.Customers {
		c.PayContribution(w.Params.BaseRate, w.Params.IncentiveSystem)
		w.TotalContribution += c.PaidContribution
	}
}

// applyInsolvency draws all shocks first, then settles every installment,
// so the totals the allocator sees are complete.
func (w *World) applyInsolvency() {
	for _, c := range w.Customers {
		c.RollShock(w.rng, w.Params.InsolvencyRisk, w.Params.UnpaidFraction, w.Params.Randomness)
	}

	w.TotalDeficit = 0
	w.TotalPaidInstallment = 0
	for _, c := range w.Customers {
		c.SettleInstallment()
		w.TotalDeficit += c.Deficit
		w.TotalPaidInstallment += c.PaidInstallment
	}
	w.CumTotalDeficit += w.TotalDeficit
	w.CumTotalPaidInstallment += w.TotalPaidInstallment

	if w.TotalDeficit < 0 {
		w.warn(DiagAllocator, "total deficit is negative: %g", w.TotalDeficit)
	}
}

func (w *World) amortizeDebt() {
	for _, c := range w.Customers {
		c.AmortizeDebt()
	}
}

func (w *World) updateFund() {
	if w.Fund.Update(w.TotalContribution, w.TotalCompensation, w.Params.ReserveRatio) {
		w.warn(DiagFund, "gross assets %g below cumulative compensation %g",
			w.Fund.GrossAssets, w.Fund.CumCompensation)
	}
}

func (w *World) updateBank() {
	performing, nonPerforming := 0.0, 0.0
	for _, c := range w.Customers {
		performing += c.PerformingDebt
		nonPerforming += c.NonPerformingDebt
	}
	if w.Bank.Update(w.TotalPaidInstallment, w.TotalCompensation, w.TotalNewDebt, performing, nonPerforming) {
		w.warn(DiagBank, "bank cash is negative: %g", w.Bank.Cash)
	}
}

// reconcileTolerance absorbs float rounding in the balance identity.
// Installments are in the thousands, so anything above this is a real
// bookkeeping defect, not noise.
const reconcileTolerance = 1e-6

// reconcile verifies installment == paid_installment + deficit for every
// participant. Any residual is a defect signal, reported and carried on.
func (w *World) reconcile() {
	for _, c := range w.Customers {
		if residual, checked := c.Reconcile(); checked && math.Abs(residual) > reconcileTolerance {
			w.warn(DiagConsistency, "customer %d balance residual %g", c.ID, residual)
		}
	}
}

// trackZeroRisk records the most recent period at which mean
// non-performing debt across the population was still positive.
func (w *World) trackZeroRisk() {
	if len(w.Customers) == 0 {
		return
	}
	total := 0.0
	for _, c := range w.Customers {
		total += c.NonPerformingDebt
	}
	if total/float64(len(w.Customers)) > 0 {
		w.ZeroRiskPeriod = w.Month
	}
}
