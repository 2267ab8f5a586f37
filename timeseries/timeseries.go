package timeseries

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/quantmex/mxlib/curve"
)

// ErrSchema means a required input column is absent. It aborts the whole
// batch before any date is processed.
var ErrSchema = errors.New("timeseries: required input column missing")

// RequiredColumns is the schema of the raw snapshot table feeding the
// orchestrator.
var RequiredColumns = []string{
	"time_index", "type", "tenor_days", "clean_price", "dirty_price", "coupon",
}

// ValidateColumns checks the raw table columns against RequiredColumns.
func ValidateColumns(cols []string) error {
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c] = true
	}
	for _, c := range RequiredColumns {
		if !have[c] {
			return fmt.Errorf("%w: %s", ErrSchema, c)
		}
	}
	return nil
}

// CurveRow is one long-form output row keyed by (time_index, tenor).
type CurveRow struct {
	TimeIndex      time.Time `json:"time_index"`
	DaysToMaturity int       `json:"days_to_maturity"`
	ZeroRate       float64   `json:"zero_rate"`
}

// CurveTimeSeries is the multi-date deliverable: one bootstrapped zero curve
// per valuation date, for a single curve identifier.
type CurveTimeSeries struct {
	UniqueIdentifier string

	dates  []time.Time // ascending, only dates with non-empty output
	byDate map[time.Time][]curve.ZeroPoint
}

func newCurveTimeSeries(uid string) *CurveTimeSeries {
	return &CurveTimeSeries{
		UniqueIdentifier: uid,
		byDate:           make(map[time.Time][]curve.ZeroPoint),
	}
}

func (ts *CurveTimeSeries) add(date time.Time, points []curve.ZeroPoint) {
	ts.dates = append(ts.dates, date)
	ts.byDate[date] = points
}

// Len returns the number of dates carrying a curve.
func (ts *CurveTimeSeries) Len() int {
	return len(ts.dates)
}

// Dates returns the valuation dates in ascending order.
func (ts *CurveTimeSeries) Dates() []time.Time {
	out := make([]time.Time, len(ts.dates))
	copy(out, ts.dates)
	return out
}

// Points returns the zero-curve points for one date.
func (ts *CurveTimeSeries) Points(date time.Time) []curve.ZeroPoint {
	return ts.byDate[date]
}

// Curves pivots the series into valuation date -> {tenor_days -> zero_rate},
// the shape downstream curve-interpolation consumers expect.
func (ts *CurveTimeSeries) Curves() map[time.Time]map[int]float64 {
	out := make(map[time.Time]map[int]float64, len(ts.dates))
	for _, d := range ts.dates {
		m := make(map[int]float64, len(ts.byDate[d]))
		for _, p := range ts.byDate[d] {
			m[p.DaysToMaturity] = p.ZeroRate
		}
		out[d] = m
	}
	return out
}

// Rows flattens the series into long form, dates ascending, tenors ascending
// within each date.
func (ts *CurveTimeSeries) Rows() []CurveRow {
	var out []CurveRow
	for _, d := range ts.dates {
		for _, p := range ts.byDate[d] {
			out = append(out, CurveRow{
				TimeIndex:      d,
				DaysToMaturity: p.DaysToMaturity,
				ZeroRate:       p.ZeroRate,
			})
		}
	}
	return out
}

func sortDatesAscending(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
