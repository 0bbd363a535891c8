package ledger

import (
	"math"
	"testing"
)

func TestBankSetup(t *testing.T) {
	var b Bank
	b.Setup(250000)
	if b.Cash != 0 || b.Receivables != 250000 || b.Assets != 250000 {
		t.Errorf("unexpected opening position: %+v", b)
	}
}

func TestBankUpdate(t *testing.T) {
	var b Bank
	b.Setup(100000)

	neg := b.Update(5000, 200, 0, 94000, 1000)
	if neg {
		t.Error("positive cash flagged as negative")
	}
	if b.Cash != 5200 {
		t.Errorf("cash = %g, want 5200", b.Cash)
	}
	if b.Receivables != 95000 {
		t.Errorf("receivables = %g, want 95000", b.Receivables)
	}
	if b.Assets != b.Cash+b.Receivables {
		t.Errorf("assets = %g, want cash+receivables = %g", b.Assets, b.Cash+b.Receivables)
	}

	// A large renewal wave can push cash below zero; that is a signal,
	// not an error.
	neg = b.Update(1000, 0, 50000, 140000, 1000)
	if !neg {
		t.Error("negative cash not flagged")
	}
	if b.Cash >= 0 {
		t.Errorf("cash = %g, want negative", b.Cash)
	}
}

func TestFundSetup(t *testing.T) {
	var f Fund
	f.Setup()
	if f.GrossAssets != SeedCapital || f.NetAssets != SeedCapital || f.CumCompensation != 0 {
		t.Errorf("unexpected opening position: %+v", f)
	}
}

func TestFundUpdate(t *testing.T) {
	var f Fund
	f.Setup()

	under := f.Update(900, 200, 25)
	if under {
		t.Error("solvent fund flagged undercapitalized")
	}
	want := (1-0.25)*(SeedCapital+900) - 200
	if math.Abs(f.NetAssets-want) > 1e-9 {
		t.Errorf("net assets = %g, want %g", f.NetAssets, want)
	}

	// Payouts past the reserve-adjusted gross floor net assets at zero.
	under = f.Update(0, 700, 25)
	if f.NetAssets != 0 {
		t.Errorf("net assets = %g, want floor 0", f.NetAssets)
	}
	if under {
		t.Error("gross still covers payouts, must not be flagged")
	}

	// All-time payouts exceeding gross assets is the insolvency signal.
	under = f.Update(0, 500, 25)
	if !under {
		t.Error("undercapitalized fund not flagged")
	}
}

func TestFundNetUsesCumulativeCompensation(t *testing.T) {
	var f Fund
	f.Setup()
	f.Update(1000, 300, 0)
	f.Update(0, 0, 0)

	// A quiet period must not forget past payouts.
	want := SeedCapital + 1000 - 300
	if math.Abs(f.NetAssets-float64(want)) > 1e-9 {
		t.Errorf("net assets = %g, want %g", f.NetAssets, float64(want))
	}
}
