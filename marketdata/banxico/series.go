// Package banxico pulls the Mexican government bond vector from the Banxico
// SIE REST API and reshapes it into per-date instrument snapshots.
package banxico

// SeriesIDs groups the SIE series carrying one on-the-run bucket's fields.
// Buckets without a published coupon series leave CurrentCoupon empty.
type SeriesIDs struct {
	DaysToMaturity string
	CleanPrice     string
	DirtyPrice     string
	CurrentCoupon  string
}

// TargetRateSeries is the Banxico overnight target rate, published in percent.
const TargetRateSeries = "SF61745"

// CETESSeries are the on-the-run CETES buckets (zero coupon, face 10).
var CETESSeries = map[string]SeriesIDs{
	"28d":  {DaysToMaturity: "SF45422", CleanPrice: "SF45438", DirtyPrice: "SF45439"},
	"91d":  {DaysToMaturity: "SF45423", CleanPrice: "SF45440", DirtyPrice: "SF45441"},
	"182d": {DaysToMaturity: "SF45424", CleanPrice: "SF45442", DirtyPrice: "SF45443"},
	"364d": {DaysToMaturity: "SF45425", CleanPrice: "SF45444", DirtyPrice: "SF45445"},
	"2y":   {DaysToMaturity: "SF349886", CleanPrice: "SF349887", DirtyPrice: "SF349888"},
}

// BonosSeries are the on-the-run MBONO buckets (fixed 182-day coupons).
var BonosSeries = map[string]SeriesIDs{
	"0-3y":   {DaysToMaturity: "SF45427", CleanPrice: "SF45448", DirtyPrice: "SF45449", CurrentCoupon: "SF45475"},
	"3-5y":   {DaysToMaturity: "SF45428", CleanPrice: "SF45450", DirtyPrice: "SF45451", CurrentCoupon: "SF45476"},
	"5-7y":   {DaysToMaturity: "SF45429", CleanPrice: "SF45452", DirtyPrice: "SF45453", CurrentCoupon: "SF45477"},
	"7-10y":  {DaysToMaturity: "SF45430", CleanPrice: "SF45454", DirtyPrice: "SF45455", CurrentCoupon: "SF45478"},
	"10-20y": {DaysToMaturity: "SF45431", CleanPrice: "SF45456", DirtyPrice: "SF45457", CurrentCoupon: "SF45479"},
	"20-30y": {DaysToMaturity: "SF60720", CleanPrice: "SF60721", DirtyPrice: "SF60722", CurrentCoupon: "SF60723"},
}

// BondesDSeries are the on-the-run BONDES D buckets (28-day FRN).
var BondesDSeries = map[string]SeriesIDs{
	"1y": {DaysToMaturity: "SF59767", CleanPrice: "SF59773", DirtyPrice: "SF59774", CurrentCoupon: "SF59770"},
	"2y": {DaysToMaturity: "SF339752", CleanPrice: "SF339753", DirtyPrice: "SF339754", CurrentCoupon: "SF339755"},
	"3y": {DaysToMaturity: "SF59768", CleanPrice: "SF59775", DirtyPrice: "SF59776", CurrentCoupon: "SF59771"},
	"5y": {DaysToMaturity: "SF59769", CleanPrice: "SF59777", DirtyPrice: "SF59778", CurrentCoupon: "SF59772"},
}

// BondesFSeries are the on-the-run BONDES F buckets (28-day FRN).
var BondesFSeries = map[string]SeriesIDs{
	"1y": {DaysToMaturity: "SF343403", CleanPrice: "SF343391", DirtyPrice: "SF343395", CurrentCoupon: "SF343399"},
	"2y": {DaysToMaturity: "SF343404", CleanPrice: "SF343392", DirtyPrice: "SF343396", CurrentCoupon: "SF343400"},
	"3y": {DaysToMaturity: "SF343405", CleanPrice: "SF343393", DirtyPrice: "SF343397", CurrentCoupon: "SF343401"},
	"5y": {DaysToMaturity: "SF343406", CleanPrice: "SF343394", DirtyPrice: "SF343398", CurrentCoupon: "SF343402"},
	"7y": {DaysToMaturity: "SF345944", CleanPrice: "SF345941", DirtyPrice: "SF345942", CurrentCoupon: "SF345943"},
}

// BondesGSeries are the on-the-run BONDES G buckets (28-day FRN).
var BondesGSeries = map[string]SeriesIDs{
	"2y":  {DaysToMaturity: "SF347149", CleanPrice: "SF347134", DirtyPrice: "SF347139", CurrentCoupon: "SF347144"},
	"4y":  {DaysToMaturity: "SF347150", CleanPrice: "SF347135", DirtyPrice: "SF347140", CurrentCoupon: "SF347145"},
	"6y":  {DaysToMaturity: "SF347151", CleanPrice: "SF347136", DirtyPrice: "SF347141", CurrentCoupon: "SF347146"},
	"8y":  {DaysToMaturity: "SF347152", CleanPrice: "SF347137", DirtyPrice: "SF347142", CurrentCoupon: "SF347147"},
	"10y": {DaysToMaturity: "SF347153", CleanPrice: "SF347138", DirtyPrice: "SF347143", CurrentCoupon: "SF347148"},
}

// ids returns the bucket's non-empty series ids.
func (s SeriesIDs) ids() []string {
	out := make([]string, 0, 4)
	for _, id := range []string{s.DaysToMaturity, s.CleanPrice, s.DirtyPrice, s.CurrentCoupon} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// AllSeriesIDs lists every series id in the instrument universe, target rate
// included, deduplicated and in catalog order.
func AllSeriesIDs() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(ids []string) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	for _, fam := range familyCatalogs() {
		for _, tenor := range fam.tenors {
			add(fam.series[tenor].ids())
		}
	}
	add([]string{TargetRateSeries})
	return out
}
