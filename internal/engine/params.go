package engine

import "fmt"

// PeerSemantics selects how the rating pass reads neighbors' behavioral
// risk. The legacy model iterated in place, so later agents saw already
// updated scores; snapshot semantics give every agent the prior period's
// values. The choice changes numerical outcomes, so it is explicit.
type PeerSemantics string

const (
	// PeerSimultaneous snapshots all risk scores before the rating pass.
	PeerSimultaneous PeerSemantics = "simultaneous"
	// PeerSequential reads neighbors' live scores during the pass,
	// replicating the legacy in-place behavior.
	PeerSequential PeerSemantics = "sequential"
)

// Params is the complete configuration of a run. Rate-like values are
// percentages, matching the host-facing parameter convention.
type Params struct {
	WorldSize int `yaml:"world_size" json:"world_size"` // Requested population; rounded to a perfect square

	BaseRate         float64 `yaml:"base_rate" json:"base_rate"`                 // Contribution base rate, percent of installment
	PremiumIncrement float64 `yaml:"premium_increment" json:"premium_increment"` // Premium percent per day of lateness

	MinInstallment float64 `yaml:"min_installment" json:"min_installment"`
	MaxInstallment float64 `yaml:"max_installment" json:"max_installment"`
	MinPeriods     int     `yaml:"min_periods" json:"min_periods"`
	MaxPeriods     int     `yaml:"max_periods" json:"max_periods"`
	Periods        int     `yaml:"no_of_periods" json:"no_of_periods"` // Horizon in renewal mode

	InsolvencyRisk float64 `yaml:"insolvency_risk" json:"insolvency_risk"` // Shock probability, percent
	UnpaidFraction float64 `yaml:"unpaid_fraction" json:"unpaid_fraction"` // Mean unpaid fraction when shocked, percent

	MaxDay          int     `yaml:"max_day" json:"max_day"`
	PeerEffect      float64 `yaml:"peer_effect" json:"peer_effect"` // Percent
	PDayResponse    float64 `yaml:"p_day_response" json:"p_day_response"`
	PremiumResponse float64 `yaml:"premium_response" json:"premium_response"`

	ReserveRatio      float64 `yaml:"reserve_ratio" json:"reserve_ratio"`           // Percent of gross assets held back
	CompensationRatio float64 `yaml:"compensation_ratio" json:"compensation_ratio"` // Percent
	Randomness        float64 `yaml:"randomness" json:"randomness"`                 // Percent spread around configured means

	IncentiveSystem    bool `yaml:"incentive_system" json:"incentive_system"`
	AdjustCompensation bool `yaml:"adjust_compensation" json:"adjust_compensation"`
	RenewFinancing     bool `yaml:"renew_financing" json:"renew_financing"`

	FixSeed bool  `yaml:"fix_random_seed" json:"fix_random_seed"`
	Seed    int64 `yaml:"seed" json:"seed"`

	PeerSemantics PeerSemantics `yaml:"peer_semantics" json:"peer_semantics"`
}

// DefaultParams returns the reference parameterization of the model.
func DefaultParams() Params {
	return Params{
		WorldSize:          1225,
		BaseRate:           0.2,
		PremiumIncrement:   0.1,
		MinInstallment:     4200,
		MaxInstallment:     5400,
		MinPeriods:         20,
		MaxPeriods:         60,
		Periods:            90,
		InsolvencyRisk:     3,
		UnpaidFraction:     70,
		MaxDay:             25,
		PDayResponse:       1,
		PremiumResponse:    1,
		PeerEffect:         40,
		ReserveRatio:       0,
		CompensationRatio:  70,
		Randomness:         25,
		IncentiveSystem:    true,
		AdjustCompensation: true,
		RenewFinancing:     true,
		PeerSemantics:      PeerSimultaneous,
	}
}

// Validate fails fast on out-of-range or inconsistent parameters, before a
// run can start. Mid-run anomalies are diagnostics, never errors; a
// malformed configuration is the only hard failure.
func (p Params) Validate() error {
	if p.WorldSize < 1 {
		return fmt.Errorf("world_size must be at least 1, got %d", p.WorldSize)
	}
	if p.MinInstallment <= 0 {
		return fmt.Errorf("min_installment must be positive, got %g", p.MinInstallment)
	}
	if p.MinInstallment > p.MaxInstallment {
		return fmt.Errorf("min_installment %g exceeds max_installment %g", p.MinInstallment, p.MaxInstallment)
	}
	if p.MinPeriods < 1 {
		return fmt.Errorf("min_periods must be at least 1, got %d", p.MinPeriods)
	}
	if p.MinPeriods > p.MaxPeriods {
		return fmt.Errorf("min_periods %d exceeds max_periods %d", p.MinPeriods, p.MaxPeriods)
	}
	if p.Periods < 1 {
		return fmt.Errorf("no_of_periods must be at least 1, got %d", p.Periods)
	}
	if p.BaseRate < 0 {
		return fmt.Errorf("base_rate must not be negative, got %g", p.BaseRate)
	}
	if p.PremiumIncrement < 0 {
		return fmt.Errorf("premium_increment must not be negative, got %g", p.PremiumIncrement)
	}
	if p.InsolvencyRisk < 0 || p.InsolvencyRisk > 100 {
		return fmt.Errorf("insolvency_risk must be within [0, 100], got %g", p.InsolvencyRisk)
	}
	if p.UnpaidFraction < 0 || p.UnpaidFraction > 100 {
		return fmt.Errorf("unpaid_fraction must be within [0, 100], got %g", p.UnpaidFraction)
	}
	if p.MaxDay < 1 || p.MaxDay > 30 {
		return fmt.Errorf("max_day must be within [1, 30], got %d", p.MaxDay)
	}
	if p.PeerEffect < 0 || p.PeerEffect > 100 {
		return fmt.Errorf("peer_effect must be within [0, 100], got %g", p.PeerEffect)
	}
	if p.ReserveRatio < 0 || p.ReserveRatio > 100 {
		return fmt.Errorf("reserve_ratio must be within [0, 100], got %g", p.ReserveRatio)
	}
	if p.CompensationRatio < 0 || p.CompensationRatio > 100 {
		return fmt.Errorf("compensation_ratio must be within [0, 100], got %g", p.CompensationRatio)
	}
	if p.Randomness < 0 || p.Randomness > 100 {
		return fmt.Errorf("randomness must be within [0, 100], got %g", p.Randomness)
	}
	switch p.PeerSemantics {
	case PeerSimultaneous, PeerSequential:
	case "":
		// Defaulted by NewWorld.
	default:
		return fmt.Errorf("peer_semantics must be %q or %q, got %q", PeerSimultaneous, PeerSequential, p.PeerSemantics)
	}
	return nil
}
