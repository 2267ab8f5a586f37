package bootstrap

import (
	"math"

	"github.com/quantmex/mxlib/bootstrap/config"
	"github.com/quantmex/mxlib/utils"
)

const machineEpsilon = 2.220446049250313e-16

// ImpliedDFInput describes one implied-discount-factor problem: the latest
// known pillar S, a new maturity T > S, the target price, the present value
// already pinned by cash flows at or before S, and the cash flows strictly
// after S (ascending, with the final one exactly at T).
type ImpliedDFInput struct {
	Price       float64
	PreKnownSum float64
	DFS         float64 // discount factor at S
	S           float64 // latest pillar tenor, days
	T           float64 // new maturity, days
	Cashflows   []Cashflow
}

// ImpliedDFResult carries the solved discount factor at T. UsedFallback is
// set when the bracket showed no sign change and the forward-flat
// approximation was used instead; callers should surface it as a
// degraded-precision event.
type ImpliedDFResult struct {
	DF           float64
	UsedFallback bool
	Iterations   int
}

// SolveImpliedDF finds DF(T) in (0, DF(S)] such that the instrument's present
// value equals the target price. Cash flows between S and T are discounted by
// log-linear interpolation between DF(S) and the candidate DF(T), so the
// unknown also parameterizes the interpolation, keeping the price-to-DF map
// monotone and smooth.
//
// A degenerate call with T <= S returns DF(S) unchanged.
func SolveImpliedDF(in ImpliedDFInput) ImpliedDFResult {
	cfg := config.GetConfig()

	if in.T <= in.S+timeEps {
		return ImpliedDFResult{DF: in.DFS}
	}

	lnDFS := math.Log(in.DFS)
	pv := func(dfT float64) float64 {
		if dfT <= 0 {
			// avoid log underflow; PV tends to the pre-known sum
			return in.PreKnownSum
		}
		lnDFT := math.Log(dfT)
		sum := in.PreKnownSum
		for _, cf := range in.Cashflows {
			var df float64
			if cf.Time < in.T-timeEps {
				w := (cf.Time - in.S) / (in.T - in.S)
				df = math.Exp((1.0-w)*lnDFS + w*lnDFT)
			} else {
				df = dfT
			}
			sum += cf.Amount * df
		}
		return sum
	}

	f := func(x float64) float64 { return pv(x) - in.Price }

	lo, hi := cfg.BracketFloor, in.DFS
	fLo, fHi := f(lo), f(hi)
	if fLo*fHi > 0 {
		return ImpliedDFResult{DF: forwardFlatFallback(in, cfg), UsedFallback: true}
	}

	root, iters := brent(f, lo, hi, fLo, fHi, cfg.SolverTolerance, cfg.MaxSolverIterations)
	return ImpliedDFResult{DF: root, Iterations: iters}
}

// forwardFlatFallback approximates the unknown cash flows by extending the
// log-slope at S forward-flat, then isolates DF(T) algebraically from the
// final cash flow. It assumes the last listed cash flow occurs exactly at T
// and absorbs the whole residual; with several unknown cash flows in the gap
// this is a known precision risk, which is why the result is flagged.
func forwardFlatFallback(in ImpliedDFInput, cfg config.Config) float64 {
	m := math.Log(in.DFS) / math.Max(in.S, 1.0) // conservative slope if S ~ 0
	if m > -1e-12 {
		m = -1e-12
	}
	sumUnknown := 0.0
	for _, cf := range in.Cashflows {
		sumUnknown += cf.Amount * in.DFS * math.Exp(m*(cf.Time-in.S))
	}
	last := in.Cashflows[len(in.Cashflows)-1]
	dfT := (in.Price - in.PreKnownSum - sumUnknown) / last.Amount
	return utils.Clamp(dfT, cfg.BracketFloor, in.DFS)
}

// brent finds a root of f within [a, b] given fa = f(a) and fb = f(b) with
// opposite signs, combining bisection with inverse quadratic interpolation
// and the secant method.
func brent(f func(float64) float64, a, b, fa, fb, tol float64, maxIter int) (float64, int) {
	c, fc := a, fa
	d := b - a
	e := d

	for iter := 1; iter <= maxIter; iter++ {
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 2.0*machineEpsilon*math.Abs(b) + 0.5*tol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, iter
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// attempt inverse quadratic interpolation / secant
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2.0 * xm * s
				q = 1.0 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2.0*xm*q*(q-r) - (b-a)*(r-1.0))
				q = (q - 1.0) * (r - 1.0) * (s - 1.0)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2.0*p < math.Min(3.0*xm*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				// interpolation rejected, bisect
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		switch {
		case math.Abs(d) > tol1:
			b += d
		case xm > 0:
			b += tol1
		default:
			b -= tol1
		}
		fb = f(b)

		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
	}
	return b, maxIter
}
