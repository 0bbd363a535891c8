package customer

import (
	"math"
	"testing"

	"github.com/zainabsawakni-art/SCMS-Simulator/internal/entropy"
	"github.com/zainabsawakni-art/SCMS-Simulator/internal/grid"
)

var testTerms = FinancingTerms{
	MinInstallment: 4200,
	MaxInstallment: 5400,
	MinPeriods:     20,
	MaxPeriods:     60,
}

func newTestCustomer(seed int64) (*Customer, *entropy.Source) {
	rng := entropy.NewSource(seed)
	c := New(0, grid.Coord{X: 0, Y: 0})
	return c, rng
}

func TestIssueLoanBounds(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		c, rng := newTestCustomer(seed)
		c.IssueLoan(rng, testTerms)

		if c.Installment < testTerms.MinInstallment || c.Installment > testTerms.MaxInstallment {
			t.Fatalf("seed %d: installment %g outside [%g, %g]",
				seed, c.Installment, testTerms.MinInstallment, testTerms.MaxInstallment)
		}
		if c.Duration < testTerms.MinPeriods || c.Duration > testTerms.MaxPeriods {
			t.Fatalf("seed %d: duration %d outside [%d, %d]",
				seed, c.Duration, testTerms.MinPeriods, testTerms.MaxPeriods)
		}
		if want := c.Installment * float64(c.Duration); c.Debt != want {
			t.Fatalf("seed %d: debt %g, want installment*duration = %g", seed, c.Debt, want)
		}
		if c.CumDebt != c.Debt || c.GrossDebt != c.Debt || c.PerformingDebt != c.Debt {
			t.Fatalf("seed %d: first-loan debt fields not aligned", seed)
		}
	}
}

func TestRenewStartsFreshLoan(t *testing.T) {
	c, rng := newTestCustomer(3)
	c.IssueLoan(rng, testTerms)
	c.SetupPaymentDay(rng, 3)
	firstDebt := c.Debt

	// Simulate some life on the first loan.
	c.Month = c.Duration + 1
	c.Late = 4
	c.Member = false
	c.Deficit = 120
	c.CumDeficit = 300
	c.CumPaidInstallment = 9000
	c.CumCompensation = 75
	baseDay := c.BaseDay

	principal := c.Renew(rng, testTerms)

	if c.FinancingRound != 2 {
		t.Errorf("financing round = %d, want 2", c.FinancingRound)
	}
	if c.Month != 1 {
		t.Errorf("month = %d, want 1", c.Month)
	}
	if !c.Member || !c.Active {
		t.Error("renewed customer should be an active member")
	}
	if c.Late != 0 || c.OnTime != 0 {
		t.Errorf("rating counters not reset: late=%d on_time=%d", c.Late, c.OnTime)
	}
	if c.Points != 100-(baseDay-1) {
		t.Errorf("points = %d, want %d", c.Points, 100-(baseDay-1))
	}
	if c.BaseDay != baseDay {
		t.Errorf("base day changed on renewal: %d -> %d", baseDay, c.BaseDay)
	}
	if principal != c.Debt || principal <= 0 {
		t.Errorf("returned principal %g does not match new debt %g", principal, c.Debt)
	}
	if c.Deficit != 0 {
		t.Errorf("period deficit = %g, want 0 after renewal", c.Deficit)
	}
	if c.CumDebt != firstDebt+c.Debt {
		t.Errorf("cum debt = %g, want %g", c.CumDebt, firstDebt+c.Debt)
	}
	// Cumulative history survives renewal.
	if c.CumDeficit != 300 || c.CumPaidInstallment != 9000 || c.CumCompensation != 75 {
		t.Error("cumulative counters must survive renewal")
	}
}

func TestRetireIsInert(t *testing.T) {
	c, rng := newTestCustomer(4)
	c.IssueLoan(rng, testTerms)
	c.SetupPaymentDay(rng, 3)
	c.Month = c.Duration + 1
	c.CumPaidInstallment = 5000

	c.Retire()

	if c.Active {
		t.Error("retired customer still active")
	}
	if c.Installment != 0 || c.Debt != 0 || c.Day != 0 || c.BRisk != 0 {
		t.Error("retired customer keeps flow state")
	}
	if c.CumPaidInstallment != 5000 {
		t.Error("cumulative counters must survive retirement")
	}
	if c.Participating() {
		t.Error("matured customer reports as participating")
	}

	// Further processing must be a no-op.
	c.PayContribution(0.2, true)
	c.SettleInstallment()
	c.ReceiveCompensation(1)
	c.AmortizeDebt()
	if c.PaidContribution != 0 || c.Deficit != 0 || c.CompensationReceived != 0 {
		t.Error("inert customer produced flows")
	}
}

func TestUpdateRatingExpelsOnFourthLate(t *testing.T) {
	c, _ := newTestCustomer(5)
	c.BaseDay = 1
	c.ResetMembership()
	c.Duration = 60
	c.Month = 1

	// Force a late day every period: high adherence, a late preferred
	// day, and no peer pull.
	c.Alpha1 = 1
	c.Alpha2 = 0
	c.Lamda = 0
	c.PrefDay = 20
	maxDay := 3

	for i := 1; i <= 3; i++ {
		if expelled := c.UpdateRating(0, maxDay); expelled {
			t.Fatalf("expelled on late payment %d, want 4", i)
		}
	}
	if !c.Member || c.Late != 3 {
		t.Fatalf("after 3 late payments: member=%v late=%d", c.Member, c.Late)
	}
	if expelled := c.UpdateRating(0, maxDay); !expelled {
		t.Fatal("fourth late payment did not expel")
	}
	if c.Member {
		t.Error("expelled customer still a member")
	}
	// Once expelled, further rating updates never report expulsion again.
	if expelled := c.UpdateRating(0, maxDay); expelled {
		t.Error("expulsion reported twice")
	}
}

func TestUpdateRatingOnTimeBoundary(t *testing.T) {
	// With max_day 3, day 2 is the last on-time day and day 3 is late.
	tests := []struct {
		prefDay  int
		wantDay  int
		wantLate int
	}{
		{2, 2, 0},
		{3, 3, 1},
	}
	for _, tt := range tests {
		c, _ := newTestCustomer(1)
		c.BaseDay = 1
		c.ResetMembership()
		c.Alpha1 = 1
		c.Alpha2 = 0
		c.Lamda = 0
		c.PrefDay = tt.prefDay

		c.UpdateRating(0, 3)
		if c.Day != tt.wantDay {
			t.Errorf("pref day %d: realized day = %d, want %d", tt.prefDay, c.Day, tt.wantDay)
		}
		if c.Late != tt.wantLate {
			t.Errorf("pref day %d: late = %d, want %d", tt.prefDay, c.Late, tt.wantLate)
		}
	}
}

func TestUpdateRatingFloorsRisk(t *testing.T) {
	c, _ := newTestCustomer(1)
	c.BaseDay = 1
	c.ResetMembership()
	c.Alpha1 = 0
	c.Alpha2 = 5
	c.Lamda = 0
	c.StdPremium = 1 // drives d1 far negative
	c.PrefDay = 1

	c.UpdateRating(0, 3)
	if c.BRisk != 1.0/30.0 {
		t.Errorf("behavioral risk = %g, want floor 1/30", c.BRisk)
	}
	if c.Day != 1 {
		t.Errorf("day = %d, want 1", c.Day)
	}
}

func TestUpdatePremiumStandardization(t *testing.T) {
	c, rng := newTestCustomer(6)
	c.IssueLoan(rng, testTerms)
	c.Day = 4

	c.UpdatePremium(0.2, 0.1)

	wantRate := 0.2/100 + (0.1/100)*3
	if math.Abs(c.ContributionRate-wantRate) > 1e-12 {
		t.Errorf("contribution rate = %g, want %g", c.ContributionRate, wantRate)
	}
	wantStd := (wantRate / (0.2 / 100)) / 30.0
	if math.Abs(c.StdContribution-wantStd) > 1e-12 {
		t.Errorf("std contribution = %g, want %g", c.StdContribution, wantStd)
	}
	if math.Abs(c.StdPremium-(wantStd-1.0/30.0)) > 1e-12 {
		t.Errorf("std premium = %g, want %g", c.StdPremium, wantStd-1.0/30.0)
	}
}

func TestUpdatePremiumZeroBaseRate(t *testing.T) {
	c, rng := newTestCustomer(7)
	c.IssueLoan(rng, testTerms)
	c.Day = 10

	c.UpdatePremium(0, 0.1)
	if c.ContributionRate != 0 || c.StdContribution != 0 || c.StdPremium != 0 {
		t.Error("zero base rate must zero all premium fields")
	}
}

func TestPayContributionUsesPriorShock(t *testing.T) {
	c, _ := newTestCustomer(8)
	c.Installment = 1000
	c.Duration = 10
	c.Month = 2
	c.ContributionRate = 0.005

	// Shock state left over from the previous period halves the collected
	// installment the contribution is charged on.
	c.Shocked = true
	c.UnpaidFraction = 0.5

	c.PayContribution(0.2, true)
	if want := 0.005 * 500.0; math.Abs(c.PaidContribution-want) > 1e-12 {
		t.Errorf("paid contribution = %g, want %g", c.PaidContribution, want)
	}
	if c.CumInstallment != 1000 {
		t.Errorf("cum installment = %g, want 1000", c.CumInstallment)
	}
}

func TestPayContributionFlatRateWithoutIncentives(t *testing.T) {
	c, _ := newTestCustomer(9)
	c.Installment = 1000
	c.Duration = 10
	c.Month = 2
	c.ContributionRate = 0.009 // stale incentive rate, must be overridden

	c.PayContribution(0.2, false)
	if c.ContributionRate != 0.002 {
		t.Errorf("contribution rate = %g, want flat 0.002", c.ContributionRate)
	}
	if want := 0.002 * 1000.0; math.Abs(c.PaidContribution-want) > 1e-12 {
		t.Errorf("paid contribution = %g, want %g", c.PaidContribution, want)
	}
}

func TestSettleAndCompensate(t *testing.T) {
	c, _ := newTestCustomer(10)
	c.Installment = 1000
	c.Duration = 10
	c.Month = 2
	c.Shocked = true
	c.UnpaidFraction = 0.3

	c.SettleInstallment()
	if c.Deficit != 300 || c.PaidInstallment != 700 {
		t.Fatalf("deficit=%g paid=%g, want 300/700", c.Deficit, c.PaidInstallment)
	}
	if residual, checked := c.Reconcile(); !checked || residual != 0 {
		t.Fatalf("reconciliation residual = %g (checked=%v), want 0", residual, checked)
	}

	c.ReceiveCompensation(0.5)
	if c.CompensationReceived != 150 {
		t.Errorf("compensation = %g, want 150", c.CompensationReceived)
	}
	if c.CumDeficit != 150 || c.NonPerformingDebt != 150 {
		t.Errorf("backlog = %g / npl = %g, want 150", c.CumDeficit, c.NonPerformingDebt)
	}

	c.ReceiveBacklog(200) // more than the backlog, floors at zero
	if c.CumDeficit != 0 || c.NonPerformingDebt != 0 {
		t.Errorf("backlog = %g after overpayment, want 0", c.CumDeficit)
	}
	if c.CumCompensation != 350 {
		t.Errorf("cum compensation = %g, want 350", c.CumCompensation)
	}
}

func TestAmortizeDebtFloorsAtZero(t *testing.T) {
	c, _ := newTestCustomer(11)
	c.Installment = 1000
	c.Duration = 10
	c.Month = 2
	c.Debt = 700

	c.AmortizeDebt()
	if c.Debt != 0 {
		t.Errorf("debt = %g, want floor 0", c.Debt)
	}
	if c.PerformingDebt != 0 {
		t.Errorf("performing debt = %g, want 0", c.PerformingDebt)
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		day  int
		want RatingTier
	}{
		{1, TierA},
		{10, TierA},
		{11, TierB},
		{19, TierB},
		{20, TierC},
		{30, TierC},
	}
	for _, tt := range tests {
		c := &Customer{Day: tt.day}
		if got := c.Tier(); got != tt.want {
			t.Errorf("day %d: tier %s, want %s", tt.day, got, tt.want)
		}
	}
}

func TestRollShockBounds(t *testing.T) {
	rng := entropy.NewSource(12)
	shocked := 0
	for i := 0; i < 500; i++ {
		c := New(i, grid.Coord{})
		c.Installment = 1000
		c.Duration = 10
		c.RollShock(rng, 50, 90, 25)
		if c.Shocked {
			shocked++
			if c.UnpaidFraction <= 0 || c.UnpaidFraction > 1 {
				t.Fatalf("unpaid fraction %g outside (0, 1]", c.UnpaidFraction)
			}
		} else if c.UnpaidFraction != 0 {
			t.Fatal("unshocked customer has a nonzero unpaid fraction")
		}
	}
	// 50% risk over 500 draws; a band this wide will not flake.
	if shocked < 150 || shocked > 350 {
		t.Errorf("shock count %d implausible for 50%% risk", shocked)
	}
}
