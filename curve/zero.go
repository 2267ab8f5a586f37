package curve

// ZeroPoint is one output row of a bootstrapped curve: the money-market
// simple Act/360 zero rate (percent) at an integer day tenor.
type ZeroPoint struct {
	DaysToMaturity int     `json:"days_to_maturity"`
	ZeroRate       float64 `json:"zero_rate"`
}

// MoneyMarketZeroRate converts a discount factor at the given tenor (days)
// to the simple Act/360 annualized rate in percent.
func MoneyMarketZeroRate(df, days float64) float64 {
	return ((1.0 / df) - 1.0) * (360.0 / days) * 100.0
}

// ZeroCurve converts every pillar with tenor > 0 into a ZeroPoint, ascending.
func (p *Pillars) ZeroCurve() []ZeroPoint {
	pts := make([]ZeroPoint, 0, len(p.tenors))
	for i, t := range p.tenors {
		if t <= 0 {
			continue
		}
		pts = append(pts, ZeroPoint{
			DaysToMaturity: int(t),
			ZeroRate:       MoneyMarketZeroRate(p.dfs[i], t),
		})
	}
	return pts
}
