package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidPillars is returned when a pillar set carries a non-positive
// discount factor. The condition is fatal to the run that supplied it.
var ErrInvalidPillars = errors.New("curve: non-positive discount factor in pillars")

// maxLogSlope caps the log-DF slope used for right extrapolation so that
// discount factors never increase with tenor beyond the last pillar.
const maxLogSlope = -1e-12

// Pillars is the ordered tenor (days) -> discount factor store accumulated
// during one bootstrap run. The zero-tenor pillar is always (0, 1.0).
type Pillars struct {
	tenors []float64
	dfs    []float64
}

// NewPillars returns a store seeded with the artificial (0, 1.0) pillar.
func NewPillars() *Pillars {
	return &Pillars{tenors: []float64{0}, dfs: []float64{1}}
}

// Insert adds a pillar, replacing any existing pillar at the same tenor.
func (p *Pillars) Insert(tenor, df float64) {
	i := sort.SearchFloat64s(p.tenors, tenor)
	if i < len(p.tenors) && p.tenors[i] == tenor {
		p.dfs[i] = df
		return
	}
	p.tenors = append(p.tenors, 0)
	p.dfs = append(p.dfs, 0)
	copy(p.tenors[i+1:], p.tenors[i:])
	copy(p.dfs[i+1:], p.dfs[i:])
	p.tenors[i] = tenor
	p.dfs[i] = df
}

// Len returns the number of pillars, including the zero-tenor anchor.
func (p *Pillars) Len() int {
	return len(p.tenors)
}

// Last returns the longest pillar's tenor and discount factor.
func (p *Pillars) Last() (tenor, df float64) {
	n := len(p.tenors)
	return p.tenors[n-1], p.dfs[n-1]
}

// At returns the discount factor stored exactly at tenor, if present.
func (p *Pillars) At(tenor float64) (float64, bool) {
	i := sort.SearchFloat64s(p.tenors, tenor)
	if i < len(p.tenors) && p.tenors[i] == tenor {
		return p.dfs[i], true
	}
	return 0, false
}

// Tenors returns a copy of the pillar tenors in ascending order.
func (p *Pillars) Tenors() []float64 {
	out := make([]float64, len(p.tenors))
	copy(out, p.tenors)
	return out
}

// DiscountFunc evaluates a discount factor at any non-negative tenor in days.
type DiscountFunc func(t float64) float64

// DiscountFunc snapshots the store into a callable discount-factor function:
// log-linear interpolation between bracketing pillars, left extrapolation on
// the first slope, right extrapolation on the last slope capped so DFs stay
// non-increasing beyond the final pillar.
func (p *Pillars) DiscountFunc() (DiscountFunc, error) {
	n := len(p.tenors)
	xs := make([]float64, n)
	ys := make([]float64, n)
	logys := make([]float64, n)
	copy(xs, p.tenors)
	copy(ys, p.dfs)
	for i, y := range ys {
		if y <= 0 {
			return nil, fmt.Errorf("%w: df=%g at tenor %g", ErrInvalidPillars, y, xs[i])
		}
		logys[i] = math.Log(y)
	}

	return func(t float64) float64 {
		switch {
		case t <= xs[0]:
			if n == 1 {
				return ys[0]
			}
			m := (logys[1] - logys[0]) / (xs[1] - xs[0])
			return math.Exp(logys[0] + m*(t-xs[0]))
		case t >= xs[n-1]:
			if n == 1 {
				return ys[0]
			}
			m := (logys[n-1] - logys[n-2]) / (xs[n-1] - xs[n-2])
			if m > maxLogSlope {
				m = maxLogSlope
			}
			return math.Exp(logys[n-1] + m*(t-xs[n-1]))
		default:
			j := sort.SearchFloat64s(xs, t) - 1
			if j < 0 {
				j = 0
			}
			if j > n-2 {
				j = n - 2
			}
			w := (t - xs[j]) / (xs[j+1] - xs[j])
			return math.Exp(logys[j]*(1-w) + logys[j+1]*w)
		}
	}, nil
}
