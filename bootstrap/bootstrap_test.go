package bootstrap

import (
	"errors"
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

// fiveRowFixture is a minimal valid cross-section: the overnight anchor plus
// four CETES buckets.
func fiveRowFixture() []Row {
	return []Row{
		{Type: FamilyOvernight, TenorDays: 1, DirtyPrice: ptr(0.105)},
		{Type: FamilyZeroCoupon, TenorDays: 28, DirtyPrice: ptr(9.9187)},
		{Type: FamilyZeroCoupon, TenorDays: 91, DirtyPrice: ptr(9.75)},
		{Type: FamilyZeroCoupon, TenorDays: 182, DirtyPrice: ptr(9.4921)},
		{Type: FamilyZeroCoupon, TenorDays: 364, DirtyPrice: ptr(9.0220)},
	}
}

func TestRunOvernightAndZeroCouponRoundTrip(t *testing.T) {
	t.Parallel()

	res, err := New(nil).Run(fiveRowFixture())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(res.Points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(res.Points))
	}

	// overnight: DF(1) = 1/(1+rate/360) means the 1d zero rate is the rate
	// itself in percent
	if res.Points[0].DaysToMaturity != 1 {
		t.Fatalf("first point must be the 1d pillar: %+v", res.Points[0])
	}
	if math.Abs(res.Points[0].ZeroRate-10.5) > 1e-9 {
		t.Fatalf("1d zero rate mismatch: got %.12f want 10.5", res.Points[0].ZeroRate)
	}

	// zero coupon: DF = price/10, rate from the exact money-market formula
	df := 9.75 / 10.0
	want := ((1.0/df)-1.0)*(360.0/91.0)*100.0
	var got float64
	for _, p := range res.Points {
		if p.DaysToMaturity == 91 {
			got = p.ZeroRate
		}
	}
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("91d zero rate mismatch: got %.12f want %.12f", got, want)
	}
}

func TestRunOvernightToleratesPercentQuote(t *testing.T) {
	t.Parallel()

	rows := fiveRowFixture()
	rows[0].DirtyPrice = ptr(10.5) // percent instead of decimal

	b := New(nil)
	res, err := b.Run(rows)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if math.Abs(res.Points[0].ZeroRate-10.5) > 1e-9 {
		t.Fatalf("1d zero rate mismatch: got %.12f want 10.5", res.Points[0].ZeroRate)
	}
	if pct, ok := b.OvernightRatePct(); !ok || pct != 10.5 {
		t.Fatalf("cached overnight rate mismatch: got %g, %v", pct, ok)
	}
}

func TestRunOrderInvariant(t *testing.T) {
	t.Parallel()

	rows := fiveRowFixture()
	shuffled := []Row{rows[3], rows[0], rows[4], rows[2], rows[1]}

	a, err := New(nil).Run(rows)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	b, err := New(nil).Run(shuffled)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(a.Points) != len(b.Points) {
		t.Fatalf("point count mismatch: %d vs %d", len(a.Points), len(b.Points))
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("point %d mismatch: %+v vs %+v", i, a.Points[i], b.Points[i])
		}
	}
}

func TestRunRepeatable(t *testing.T) {
	t.Parallel()

	rows := fiveRowFixture()
	a, err := New(nil).Run(rows)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	b, err := New(nil).Run(rows)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("repeat run diverged at %d: %+v vs %+v", i, a.Points[i], b.Points[i])
		}
	}
}

func TestRunSkipsThinCrossSection(t *testing.T) {
	t.Parallel()

	res, err := New(nil).Run(fiveRowFixture()[:4])
	if err != nil {
		t.Fatalf("thin cross-section must not error: %v", err)
	}
	if len(res.Points) != 0 {
		t.Fatalf("thin cross-section must yield no points, got %d", len(res.Points))
	}
}

func TestRunSkipsMissingOvernight(t *testing.T) {
	t.Parallel()

	rows := fiveRowFixture()
	rows[0] = Row{Type: FamilyZeroCoupon, TenorDays: 7, DirtyPrice: ptr(9.98)}

	res, err := New(nil).Run(rows)
	if err != nil {
		t.Fatalf("missing overnight must not error: %v", err)
	}
	if len(res.Points) != 0 {
		t.Fatalf("missing overnight must yield no points, got %d", len(res.Points))
	}
}

func TestRunUnknownFamilyFatal(t *testing.T) {
	t.Parallel()

	rows := fiveRowFixture()
	rows[2].Type = Family("structured_note")

	if _, err := New(nil).Run(rows); !errors.Is(err, ErrUnknownFamily) {
		t.Fatalf("expected ErrUnknownFamily, got %v", err)
	}
}

func TestRunMissingPriceFatal(t *testing.T) {
	t.Parallel()

	rows := fiveRowFixture()
	rows[2] = Row{Type: FamilyZeroCoupon, TenorDays: 91}

	if _, err := New(nil).Run(rows); !errors.Is(err, ErrMissingPrice) {
		t.Fatalf("expected ErrMissingPrice, got %v", err)
	}
}

func TestRunFRNPricedAtParRecoversCompoundedDF(t *testing.T) {
	t.Parallel()

	// a spreadless single-period FRN at par implies pure 28d compounding of
	// the overnight rate
	rows := []Row{
		{Type: FamilyOvernight, TenorDays: 1, DirtyPrice: ptr(0.105)},
		{Type: FamilyBondesF, TenorDays: 28, Coupon: ptr(0.0), DirtyPrice: ptr(100.0)},
		{Type: FamilyZeroCoupon, TenorDays: 91, DirtyPrice: ptr(9.75)},
		{Type: FamilyZeroCoupon, TenorDays: 182, DirtyPrice: ptr(9.4921)},
		{Type: FamilyZeroCoupon, TenorDays: 364, DirtyPrice: ptr(9.0220)},
	}

	res, err := New(nil).Run(rows)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.SolverFallbacks != 0 {
		t.Fatalf("par FRN must bracket cleanly, got %d fallbacks", res.SolverFallbacks)
	}

	wantDF := math.Pow(1.0+10.5/36000.0, -28)
	wantZero := ((1.0/wantDF)-1.0)*(360.0/28.0)*100.0
	var got float64
	for _, p := range res.Points {
		if p.DaysToMaturity == 28 {
			got = p.ZeroRate
		}
	}
	if math.Abs(got-wantZero) > 1e-8 {
		t.Fatalf("28d FRN zero rate mismatch: got %.12f want %.12f", got, wantZero)
	}
}

func TestRunZeroCouponCleanPriceFallback(t *testing.T) {
	t.Parallel()

	rows := fiveRowFixture()
	rows[2] = Row{Type: FamilyZeroCoupon, TenorDays: 91, CleanPrice: ptr(9.75)}

	res, err := New(nil).Run(rows)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	df := 9.75 / 10.0
	want := ((1.0/df)-1.0)*(360.0/91.0)*100.0
	var got float64
	for _, p := range res.Points {
		if p.DaysToMaturity == 91 {
			got = p.ZeroRate
		}
	}
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("clean-only 91d zero rate mismatch: got %.12f want %.12f", got, want)
	}
}

func TestRunFRNCleanPriceAddsAccrued(t *testing.T) {
	t.Parallel()

	// a mid-cycle FRN (tenor 40: 16 days accrued) quoted clean must solve to
	// the same pillar as the equivalent dirty quote
	dirty := 100.05
	clean := dirty - frnAccruedInterest(10.5, 16)

	mkRows := func(frn Row) []Row {
		return []Row{
			{Type: FamilyOvernight, TenorDays: 1, DirtyPrice: ptr(0.105)},
			frn,
			{Type: FamilyZeroCoupon, TenorDays: 91, DirtyPrice: ptr(9.75)},
			{Type: FamilyZeroCoupon, TenorDays: 182, DirtyPrice: ptr(9.4921)},
			{Type: FamilyZeroCoupon, TenorDays: 364, DirtyPrice: ptr(9.0220)},
		}
	}

	fromDirty, err := New(nil).Run(mkRows(Row{
		Type: FamilyBondesF, TenorDays: 40, Coupon: ptr(0.15), DirtyPrice: ptr(dirty),
	}))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	fromClean, err := New(nil).Run(mkRows(Row{
		Type: FamilyBondesF, TenorDays: 40, Coupon: ptr(0.15), CleanPrice: ptr(clean),
	}))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	pick := func(res Result) float64 {
		for _, p := range res.Points {
			if p.DaysToMaturity == 40 {
				return p.ZeroRate
			}
		}
		t.Fatal("40d pillar missing")
		return 0
	}
	if d, c := pick(fromDirty), pick(fromClean); math.Abs(d-c) > 1e-9 {
		t.Fatalf("clean and dirty quotes diverge: dirty=%.12f clean=%.12f", d, c)
	}
}

func TestRunFRNBeforeOvernightPillarFails(t *testing.T) {
	t.Parallel()

	// the FRN sorts ahead of everything else, before any overnight pillar
	rows := []Row{
		{Type: FamilyBondesD, TenorDays: 0.5, Coupon: ptr(0.0), DirtyPrice: ptr(100.0)},
		{Type: FamilyOvernight, TenorDays: 1, DirtyPrice: ptr(0.105)},
		{Type: FamilyZeroCoupon, TenorDays: 91, DirtyPrice: ptr(9.75)},
		{Type: FamilyZeroCoupon, TenorDays: 182, DirtyPrice: ptr(9.4921)},
		{Type: FamilyZeroCoupon, TenorDays: 364, DirtyPrice: ptr(9.0220)},
	}
	if _, err := New(nil).Run(rows); !errors.Is(err, ErrMissingAnchorRate) {
		t.Fatalf("expected ErrMissingAnchorRate, got %v", err)
	}
}

func TestRunFixedBondOnFlatCurve(t *testing.T) {
	t.Parallel()

	// with all quotes generated from a flat continuously compounded curve,
	// log-linear interpolation is exact and the bond solve must recover the
	// flat discount factor at maturity
	const r = 0.0003 // per day
	disc := func(days float64) float64 { return math.Exp(-r * days) }

	onRate := 360.0 * (math.Exp(r) - 1.0)

	couponPct := 8.0
	bondT := 1092.0
	price := 0.0
	for _, cf := range fixedBondCashflows(bondT, couponPct) {
		price += cf.Amount * disc(cf.Time)
	}

	rows := []Row{
		{Type: FamilyOvernight, TenorDays: 1, DirtyPrice: ptr(onRate)},
		{Type: FamilyZeroCoupon, TenorDays: 91, DirtyPrice: ptr(10.0 * disc(91))},
		{Type: FamilyZeroCoupon, TenorDays: 182, DirtyPrice: ptr(10.0 * disc(182))},
		{Type: FamilyZeroCoupon, TenorDays: 364, DirtyPrice: ptr(10.0 * disc(364))},
		{Type: FamilyFixedBond, TenorDays: bondT, Coupon: ptr(couponPct), DirtyPrice: ptr(price)},
	}

	res, err := New(nil).Run(rows)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.SolverFallbacks != 0 {
		t.Fatalf("flat-curve bond must bracket cleanly, got %d fallbacks", res.SolverFallbacks)
	}

	wantZero := ((1.0/disc(bondT))-1.0)*(360.0/bondT)*100.0
	var got float64
	for _, p := range res.Points {
		if p.DaysToMaturity == int(bondT) {
			got = p.ZeroRate
		}
	}
	if math.Abs(got-wantZero) > 1e-6 {
		t.Fatalf("bond zero rate mismatch: got %.9f want %.9f", got, wantZero)
	}
}

func TestParseFamily(t *testing.T) {
	t.Parallel()

	f, err := ParseFamily(" Fixed_Bond ")
	if err != nil || f != FamilyFixedBond {
		t.Fatalf("ParseFamily mismatch: %v, %v", f, err)
	}
	if _, err := ParseFamily("swap"); !errors.Is(err, ErrUnknownFamily) {
		t.Fatalf("expected ErrUnknownFamily, got %v", err)
	}
	if !FamilyBondesD.IsFloating() || FamilyFixedBond.IsFloating() {
		t.Fatal("IsFloating classification mismatch")
	}
}
