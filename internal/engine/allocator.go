package engine

// Compensation allocation runs in two ordered stages. Stage A covers the
// current period's deficits at one global share; Stage B, when enabled,
// distributes any fund surplus against the accumulated backlog of
// unresolved deficits.

// periodShare computes the Stage A coverage share. Full coverage when the
// fund comfortably exceeds the period deficit (deficit/net below the
// configured ratio), the flat configured ratio when it is stretched, and
// nothing when net assets do not exceed the deficit.
func periodShare(totalDeficit, netAssets, compensationRatio float64) float64 {
	if netAssets <= totalDeficit {
		return 0
	}
	if totalDeficit/netAssets < compensationRatio/100 {
		return 1
	}
	return compensationRatio / 100
}

// distributeCompensation applies both stages and books the period's total
// payout for the ledgers.
func (w *World) distributeCompensation() {
	w.Share = periodShare(w.TotalDeficit, w.Fund.NetAssets, w.Params.CompensationRatio)
	if w.Share < 0 || w.Share > 1 {
		w.warn(DiagAllocator, "compensation share %g outside [0, 1]", w.Share)
	}

	for _, c := range w.Customers {
		c.ReceiveCompensation(w.Share)
	}

	w.adjustBacklog()

	total := 0.0
	for _, c := range w.Customers {
		total += c.CompensationReceived + c.AdditionalCompensation
		if c.CumDeficit < 0 {
			w.warn(DiagAllocator, "customer %d cumulative deficit negative: %g", c.ID, c.CumDeficit)
		}
	}
	w.TotalCompensation = total
}

// adjustBacklog is Stage B: if net assets exceed the remaining backlog S,
// the surplus is split proportionally by each agent's share of the
// backlog. The divisor is S+1, a deliberate small bias that also keeps the
// division defined at S == 0, and each payout is capped by the agent's own
// backlog.
func (w *World) adjustBacklog() {
	if !w.Params.AdjustCompensation {
		for _, c := range w.Customers {
			c.AdditionalCompensation = 0
		}
		return
	}

	backlog := 0.0
	for _, c := range w.Customers {
		backlog += c.CumDeficit
	}
	if w.Fund.NetAssets <= backlog {
		for _, c := range w.Customers {
			c.AdditionalCompensation = 0
		}
		return
	}

	surplus := w.Fund.NetAssets - backlog
	for _, c := range w.Customers {
		if !c.Participating() || backlog <= 0 {
			c.AdditionalCompensation = 0
			continue
		}
		share := c.CumDeficit / (backlog + 1)
		amount := share * surplus
		if amount > c.CumDeficit {
			amount = c.CumDeficit
		}
		c.ReceiveBacklog(amount)
	}
}
