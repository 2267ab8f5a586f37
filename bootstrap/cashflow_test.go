package bootstrap

import (
	"math"
	"testing"
)

func TestFixedBondCashflowsDropsCouponAtMaturity(t *testing.T) {
	t.Parallel()

	cfs := fixedBondCashflows(364, 8.0)
	if len(cfs) != 2 {
		t.Fatalf("expected 2 cash flows, got %d", len(cfs))
	}

	coupon := 0.08 * (182.0 / 360.0) * 100.0
	if math.Abs(cfs[0].Amount-coupon) > 1e-12 || cfs[0].Time != 182 {
		t.Fatalf("interim coupon mismatch: %+v", cfs[0])
	}
	// final accrual runs from the 182d coupon to maturity
	want := 100.0 + 0.08*(182.0/360.0)*100.0
	if math.Abs(cfs[1].Amount-want) > 1e-12 || cfs[1].Time != 364 {
		t.Fatalf("final cash flow mismatch: %+v", cfs[1])
	}
}

func TestFixedBondCashflowsShortStub(t *testing.T) {
	t.Parallel()

	// maturity inside the first coupon period: single payment with stub accrual
	cfs := fixedBondCashflows(91, 8.0)
	if len(cfs) != 1 {
		t.Fatalf("expected 1 cash flow, got %d", len(cfs))
	}
	want := 100.0 + 0.08*(91.0/360.0)*100.0
	if math.Abs(cfs[0].Amount-want) > 1e-12 || cfs[0].Time != 91 {
		t.Fatalf("stub cash flow mismatch: %+v", cfs[0])
	}
}

func TestFixedBondCashflowsLongSchedule(t *testing.T) {
	t.Parallel()

	cfs := fixedBondCashflows(546, 8.0)
	if len(cfs) != 3 {
		t.Fatalf("expected 3 cash flows, got %d", len(cfs))
	}
	if cfs[0].Time != 182 || cfs[1].Time != 364 || cfs[2].Time != 546 {
		t.Fatalf("schedule times mismatch: %+v", cfs)
	}
}

func TestFRNCouponParamsOnCycle(t *testing.T) {
	t.Parallel()

	// maturity exactly one period out: no accrued days, first equals regular
	pr := frnCouponParams(28, 10.5, 0)
	if pr.k != 1 {
		t.Fatalf("expected k=1, got %d", pr.k)
	}
	if pr.accruedDays != 0 || pr.remDays != 28 {
		t.Fatalf("period split mismatch: %+v", pr)
	}
	if math.Abs(pr.firstCoupon-pr.coupon) > 1e-12 {
		t.Fatalf("on-cycle first coupon must equal regular: %+v", pr)
	}

	want := 100.0 * (math.Pow(1.0+10.5/36000.0, 28) - 1.0)
	if math.Abs(pr.coupon-want) > 1e-12 {
		t.Fatalf("coupon mismatch: got %.15f want %.15f", pr.coupon, want)
	}
}

func TestFRNCouponParamsMidCycle(t *testing.T) {
	t.Parallel()

	pr := frnCouponParams(40, 10.5, 0.15)
	if pr.k != 2 {
		t.Fatalf("expected k=2, got %d", pr.k)
	}
	if pr.remDays != 12 || pr.accruedDays != 16 {
		t.Fatalf("period split mismatch: %+v", pr)
	}

	cfs := frnCashflows(40, pr)
	if len(cfs) != 2 {
		t.Fatalf("expected 2 cash flows, got %d", len(cfs))
	}
	if cfs[0].Time != 12 || math.Abs(cfs[0].Amount-pr.firstCoupon) > 1e-12 {
		t.Fatalf("first coupon mismatch: %+v", cfs[0])
	}
	if cfs[1].Time != 40 || math.Abs(cfs[1].Amount-(100.0+pr.coupon)) > 1e-12 {
		t.Fatalf("final cash flow mismatch: %+v", cfs[1])
	}
}

func TestFRNCashflowsSinglePeriod(t *testing.T) {
	t.Parallel()

	pr := frnCouponParams(28, 10.5, 0)
	cfs := frnCashflows(28, pr)
	if len(cfs) != 1 {
		t.Fatalf("expected 1 cash flow, got %d", len(cfs))
	}
	if math.Abs(cfs[0].Amount-(100.0+pr.firstCoupon)) > 1e-12 {
		t.Fatalf("single-period amount mismatch: %+v", cfs[0])
	}
}

func TestFRNAccruedInterest(t *testing.T) {
	t.Parallel()

	if got := frnAccruedInterest(10.5, 0); got != 0 {
		t.Fatalf("zero accrued days must yield 0, got %g", got)
	}
	want := 100.0 * (math.Pow(1.0+10.5/36000.0, 16) - 1.0)
	if got := frnAccruedInterest(10.5, 16); math.Abs(got-want) > 1e-12 {
		t.Fatalf("accrued interest mismatch: got %.15f want %.15f", got, want)
	}
}

func TestNormalizeSpreadPct(t *testing.T) {
	t.Parallel()

	if got := normalizeSpreadPct(nil); got != 0 {
		t.Fatalf("nil spread must yield 0, got %g", got)
	}
	pp := 0.15
	if got := normalizeSpreadPct(&pp); got != 0.15 {
		t.Fatalf("percentage-point spread must pass through, got %g", got)
	}
	bps := 25.0
	if got := normalizeSpreadPct(&bps); math.Abs(got-0.25) > 1e-15 {
		t.Fatalf("basis-point spread must rescale, got %g", got)
	}
	neg := -30.0
	if got := normalizeSpreadPct(&neg); math.Abs(got+0.30) > 1e-15 {
		t.Fatalf("negative basis-point spread must rescale, got %g", got)
	}
}
