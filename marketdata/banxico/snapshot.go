package banxico

import (
	"sort"
	"time"

	"github.com/quantmex/mxlib/bootstrap"
	"github.com/quantmex/mxlib/timeseries"
)

type familyCatalog struct {
	name   string
	family bootstrap.Family
	tenors []string
	series map[string]SeriesIDs
}

// familyCatalogs enumerates the instrument universe in a fixed order with
// tenor keys sorted, so downstream output is deterministic.
func familyCatalogs() []familyCatalog {
	cats := []familyCatalog{
		{name: "Cetes", family: bootstrap.FamilyZeroCoupon, series: CETESSeries},
		{name: "Bonos", family: bootstrap.FamilyFixedBond, series: BonosSeries},
		{name: "Bondes_D", family: bootstrap.FamilyBondesD, series: BondesDSeries},
		{name: "Bondes_F", family: bootstrap.FamilyBondesF, series: BondesFSeries},
		{name: "Bondes_G", family: bootstrap.FamilyBondesG, series: BondesGSeries},
	}
	for i := range cats {
		for tenor := range cats[i].series {
			cats[i].tenors = append(cats[i].tenors, tenor)
		}
		sort.Strings(cats[i].tenors)
	}
	return cats
}

// SnapshotRows pivots flattened SIE points into per-date instrument rows
// ready for bootstrapping.
//
// Each (date, family, tenor bucket) with a published days_to_maturity value
// becomes one observation; buckets whose maturity is missing or non-positive
// are dropped since some SIE series carry bad prints. The overnight target
// rate becomes a 1-day overnight_rate row with the rate rescaled from percent
// to decimal in dirty_price. Output is ordered by date, then catalog order.
func SnapshotRows(points []Point) []timeseries.Observation {
	byKey := make(map[time.Time]map[string]float64)
	var dates []time.Time
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		if _, ok := byKey[p.Date]; !ok {
			byKey[p.Date] = make(map[string]float64)
			dates = append(dates, p.Date)
		}
		byKey[p.Date][p.SeriesID] = *p.Value
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	cats := familyCatalogs()
	var out []timeseries.Observation
	for _, d := range dates {
		vals := byKey[d]

		if v, ok := vals[TargetRateSeries]; ok {
			rate := v / 100.0
			out = append(out, timeseries.Observation{
				TimeIndex: d,
				Row: bootstrap.Row{
					Type:       bootstrap.FamilyOvernight,
					TenorDays:  1,
					DirtyPrice: &rate,
				},
			})
		}

		for _, cat := range cats {
			for _, tenor := range cat.tenors {
				ids := cat.series[tenor]
				days, ok := vals[ids.DaysToMaturity]
				if !ok || days <= 0 {
					continue
				}
				row := bootstrap.Row{Type: cat.family, TenorDays: days}
				if v, ok := vals[ids.CleanPrice]; ok {
					row.CleanPrice = ptr(v)
				}
				if v, ok := vals[ids.DirtyPrice]; ok {
					row.DirtyPrice = ptr(v)
				}
				if ids.CurrentCoupon != "" {
					if v, ok := vals[ids.CurrentCoupon]; ok {
						row.Coupon = ptr(v)
					}
				}
				out = append(out, timeseries.Observation{TimeIndex: d, Row: row})
			}
		}
	}
	return out
}

func ptr(v float64) *float64 { return &v }
