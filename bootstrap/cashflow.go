package bootstrap

import "math"

// Cashflow is a single dated cash payment on the tenor axis, with Time in
// days from the valuation date and Amount per 100 face.
type Cashflow struct {
	Time   float64
	Amount float64
}

const (
	face      = 100.0
	cetesFace = 10.0

	fixedCouponStepDays = 182.0
	frnCouponStepDays   = 28.0

	dayCountBasis = 360.0
	mmBasis       = 36000.0 // percent rate over an Act/360 basis

	timeEps = 1e-12
)

// fixedBondCashflows builds the MBONO schedule: semiannual 182-day coupons
// counted backward from maturity, plus principal and a stub coupon sized by
// the residual accrual period at T.
func fixedBondCashflows(T, couponPct float64) []Cashflow {
	rate := couponPct / 100.0

	k := int(math.Floor(T / fixedCouponStepDays))
	times := make([]float64, 0, k)
	for i := 1; i <= k; i++ {
		times = append(times, fixedCouponStepDays*float64(i))
	}
	if len(times) > 0 && math.Abs(times[len(times)-1]-T) < 1e-9 {
		times = times[:len(times)-1]
	}

	lastCouponTime := 0.0
	if len(times) > 0 {
		lastCouponTime = times[len(times)-1]
	}
	alpha := fixedCouponStepDays / dayCountBasis
	alphaT := (T - lastCouponTime) / dayCountBasis
	couponAmt := rate * alpha * face

	cfs := make([]Cashflow, 0, len(times)+1)
	for _, t := range times {
		cfs = append(cfs, Cashflow{Time: t, Amount: couponAmt})
	}
	cfs = append(cfs, Cashflow{Time: T, Amount: face + rate*alphaT*face})
	return cfs
}

// frnParams is the 28-day FRN coupon decomposition for one row.
type frnParams struct {
	k           int     // number of 28d coupons up to and including maturity
	accruedDays float64 // days already accrued in the current coupon
	remDays     float64 // days from today to the next payment
	firstCoupon float64 // first coupon amount, face 100
	coupon      float64 // regular 28d coupon amount, face 100
}

// frnCouponParams computes the BONDES coupon amounts. The first coupon blends
// the realized leg (accrued days at the plain overnight rate, no spread) with
// the forward leg (remaining days at overnight+spread); regular coupons use
// the full 28-day overnight+spread compounding. Rates are in percent.
func frnCouponParams(T, onRatePct, spreadPct float64) frnParams {
	if T <= 0 {
		return frnParams{}
	}
	step := frnCouponStepDays
	k := int(math.Ceil(T / step))

	rem := T - step*float64(k-1)
	d := 0.0
	if rem > 0 {
		d = step - rem
	}

	tcDev := 0.0
	if d > 0 {
		tcDev = (math.Pow(1.0+onRatePct/mmBasis, d) - 1.0) * mmBasis / d
	}

	rEff := onRatePct + spreadPct
	tc1 := ((1.0+tcDev/mmBasis)*math.Pow(1.0+rEff/mmBasis, step-d) - 1.0) * mmBasis / step
	tc := (math.Pow(1.0+rEff/mmBasis, step) - 1.0) * mmBasis / step

	return frnParams{
		k:           k,
		accruedDays: d,
		remDays:     rem,
		firstCoupon: face * step * tc1 / mmBasis,
		coupon:      face * step * tc / mmBasis,
	}
}

// frnAccruedInterest is the clean-to-dirty adjustment: accrued days at the
// plain overnight rate, without spread.
func frnAccruedInterest(onRatePct, accruedDays float64) float64 {
	if accruedDays <= 0 {
		return 0
	}
	tcDev := (math.Pow(1.0+onRatePct/mmBasis, accruedDays) - 1.0) * mmBasis / accruedDays
	return face * accruedDays * tcDev / mmBasis
}

// frnCashflows assembles the payment schedule: k-1 pre-final coupons at
// rem + 28j, then principal plus the last coupon at T.
func frnCashflows(T float64, pr frnParams) []Cashflow {
	n := pr.k - 1
	cfs := make([]Cashflow, 0, n+1)

	lastCouponAtT := pr.firstCoupon // k == 1: the only coupon at T is the first
	if n > 0 {
		cfs = append(cfs, Cashflow{Time: pr.remDays, Amount: pr.firstCoupon})
		for j := 1; j < n; j++ {
			cfs = append(cfs, Cashflow{Time: pr.remDays + frnCouponStepDays*float64(j), Amount: pr.coupon})
		}
		lastCouponAtT = pr.coupon
	}

	cfs = append(cfs, Cashflow{Time: T, Amount: face + lastCouponAtT})
	return cfs
}

// normalizeSpreadPct returns the FRN spread in percentage points. A magnitude
// above 5 means the feed quoted basis points.
func normalizeSpreadPct(raw *float64) float64 {
	if raw == nil {
		return 0
	}
	s := *raw
	if math.Abs(s) > 5.0 {
		s /= 100.0
	}
	return s
}
