package bootstrap

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/quantmex/mxlib/bootstrap/config"
	"github.com/quantmex/mxlib/curve"
	"github.com/quantmex/mxlib/utils"
)

// Bootstrapper runs the sequential bootstrap for a single valuation date.
// It owns its pillar store and overnight-rate cache; one instance must not
// be reused or shared across dates.
type Bootstrapper struct {
	pillars   *curve.Pillars
	onRatePct *float64 // cached overnight rate, percent, 2 decimals
	fallbacks int
	logger    logrus.FieldLogger
}

// New returns a fresh Bootstrapper. A nil logger disables logging.
func New(logger logrus.FieldLogger) *Bootstrapper {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Bootstrapper{pillars: curve.NewPillars(), logger: logger}
}

// Result is the outcome of one per-date run. SolverFallbacks counts the
// degraded-precision forward-flat solves that occurred.
type Result struct {
	Points          []curve.ZeroPoint
	SolverFallbacks int
}

// Run processes the date's instrument rows in ascending tenor order (stable
// on ties), extending the pillar store one instrument at a time, and converts
// the pillars into zero-curve points.
//
// Policy: a cross-section thinner than the configured minimum, or one without
// an overnight_rate row, yields an empty Result without error.
func (b *Bootstrapper) Run(rows []Row) (Result, error) {
	cfg := config.GetConfig()

	if len(rows) < cfg.MinRowsPerDate {
		b.logger.WithField("rows", len(rows)).Debug("skipping date with insufficient instrument rows")
		return Result{}, nil
	}

	hasOvernight := false
	for _, r := range rows {
		if r.Type == FamilyOvernight {
			hasOvernight = true
			break
		}
	}
	if !hasOvernight {
		b.logger.Warn("no overnight_rate row in cross-section; producing empty curve")
		return Result{}, nil
	}

	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TenorDays < sorted[j].TenorDays
	})

	for _, r := range sorted {
		if err := b.step(r); err != nil {
			return Result{}, err
		}
	}

	return Result{Points: b.pillars.ZeroCurve(), SolverFallbacks: b.fallbacks}, nil
}

// OvernightRatePct returns the cached overnight funding rate in percent.
func (b *Bootstrapper) OvernightRatePct() (float64, bool) {
	if b.onRatePct == nil {
		return 0, false
	}
	return *b.onRatePct, true
}

func (b *Bootstrapper) step(r Row) error {
	switch r.Type {
	case FamilyOvernight:
		return b.stepOvernight(r)
	case FamilyZeroCoupon:
		return b.stepZeroCoupon(r)
	case FamilyFixedBond:
		return b.stepFixedBond(r)
	case FamilyBondesD, FamilyBondesF, FamilyBondesG:
		return b.stepFloating(r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFamily, string(r.Type))
	}
}

// stepOvernight sets the 1-day pillar directly and seeds the overnight cache.
func (b *Bootstrapper) stepOvernight(r Row) error {
	if r.DirtyPrice == nil {
		return fmt.Errorf("%w: overnight row must carry the rate in dirty_price", ErrMissingPrice)
	}
	rate := *r.DirtyPrice
	if rate > 1.0 {
		// tolerate percent input
		rate /= 100.0
	}
	b.pillars.Insert(r.TenorDays, 1.0/(1.0+rate/dayCountBasis))

	pct := utils.RoundTo(rate*100.0, 2)
	b.onRatePct = &pct
	return nil
}

// stepZeroCoupon prices CETES off face 10, no solving.
func (b *Bootstrapper) stepZeroCoupon(r Row) error {
	price, err := pickPrice(r)
	if err != nil {
		return err
	}
	b.pillars.Insert(r.TenorDays, price/cetesFace)
	return nil
}

func (b *Bootstrapper) stepFixedBond(r Row) error {
	price, err := pickPrice(r)
	if err != nil {
		return err
	}
	couponPct := 0.0
	if r.Coupon != nil {
		couponPct = *r.Coupon
	}
	return b.solveAndInsert(r, price, fixedBondCashflows(r.TenorDays, couponPct))
}

func (b *Bootstrapper) stepFloating(r Row) error {
	onPct, err := b.anchorRatePct()
	if err != nil {
		return err
	}
	spread := normalizeSpreadPct(r.Coupon)

	pr := frnCouponParams(r.TenorDays, onPct, spread)
	if pr.k <= 0 {
		_, last := b.pillars.Last()
		b.pillars.Insert(r.TenorDays, last)
		return nil
	}

	var price float64
	switch {
	case r.DirtyPrice != nil:
		price = *r.DirtyPrice
	case r.CleanPrice != nil:
		price = *r.CleanPrice + frnAccruedInterest(onPct, pr.accruedDays)
	default:
		return fmt.Errorf("%w (type=%s tenor=%g)", ErrMissingPrice, r.Type, r.TenorDays)
	}

	return b.solveAndInsert(r, price, frnCashflows(r.TenorDays, pr))
}

// anchorRatePct returns the cached overnight rate, deriving it from the
// 1-day pillar when the cache is cold.
func (b *Bootstrapper) anchorRatePct() (float64, error) {
	if b.onRatePct != nil {
		return *b.onRatePct, nil
	}
	if df1, ok := b.pillars.At(1.0); ok {
		pct := utils.RoundTo(((1.0/df1)-1.0)*dayCountBasis*100.0, 2)
		b.onRatePct = &pct
		return pct, nil
	}
	return 0, ErrMissingAnchorRate
}

// solveAndInsert partitions the schedule around the latest pillar S, solves
// for DF at the row's maturity, caps it against DF(S) so pillars stay
// non-increasing, and inserts the new pillar.
func (b *Bootstrapper) solveAndInsert(r Row, price float64, cfs []Cashflow) error {
	cfg := config.GetConfig()

	df, err := b.pillars.DiscountFunc()
	if err != nil {
		return err
	}
	S, _ := b.pillars.Last()
	T := r.TenorDays

	preKnown := 0.0
	future := make([]Cashflow, 0, len(cfs))
	for _, cf := range cfs {
		if cf.Time <= S+timeEps {
			preKnown += cf.Amount * df(cf.Time)
		} else {
			future = append(future, cf)
		}
	}

	var dfT float64
	if T <= S+timeEps {
		dfT = df(T)
	} else {
		res := SolveImpliedDF(ImpliedDFInput{
			Price:       price,
			PreKnownSum: preKnown,
			DFS:         df(S),
			S:           S,
			T:           T,
			Cashflows:   future,
		})
		if res.UsedFallback {
			b.fallbacks++
			b.logger.WithFields(logrus.Fields{
				"type":       string(r.Type),
				"tenor_days": T,
			}).Warn("implied DF bracket failed; forward-flat fallback used")
		}
		dfT = res.DF
	}

	b.pillars.Insert(T, utils.Clamp(dfT, cfg.MinDiscountFactor, df(S)))
	return nil
}
