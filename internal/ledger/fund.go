package ledger

// SeedCapital is the fund's opening balance before any contributions.
const SeedCapital = 100.0

// Fund tracks the mutual insurance fund. Gross assets only ever grow with
// contributions; net assets subtract the reserve set-aside and everything
// paid out so far, floored at zero so the allocator can never overdraw.
type Fund struct {
	GrossAssets     float64 `json:"gross_assets"`
	NetAssets       float64 `json:"net_assets"`
	CumCompensation float64 `json:"cum_compensation"`
}

// Setup initializes the fund with its seed capital.
func (f *Fund) Setup() {
	f.GrossAssets = SeedCapital
	f.NetAssets = SeedCapital
	f.CumCompensation = 0
}

// Update books one period's contributions and payouts. reserveRatio is a
// percentage. The return value reports the insolvency signal (all-time
// payouts exceeding gross assets), which the engine emits as a non-fatal
// diagnostic.
func (f *Fund) Update(contribution, compensation, reserveRatio float64) (undercapitalized bool) {
	f.GrossAssets += contribution
	f.CumCompensation += compensation
	f.NetAssets = (1-reserveRatio/100)*f.GrossAssets - f.CumCompensation
	if f.NetAssets < 0 {
		f.NetAssets = 0
	}
	return f.GrossAssets < f.CumCompensation
}
