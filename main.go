package main

import (
	"fmt"

	"github.com/quantmex/mxlib/bootstrap"
)

func ptr(v float64) *float64 { return &v }

func main() {
	rows := []bootstrap.Row{
		{Type: bootstrap.FamilyOvernight, TenorDays: 1, DirtyPrice: ptr(0.105)},
		{Type: bootstrap.FamilyZeroCoupon, TenorDays: 28, DirtyPrice: ptr(9.9187)},
		{Type: bootstrap.FamilyZeroCoupon, TenorDays: 91, DirtyPrice: ptr(9.7401)},
		{Type: bootstrap.FamilyZeroCoupon, TenorDays: 182, DirtyPrice: ptr(9.4921)},
		{Type: bootstrap.FamilyZeroCoupon, TenorDays: 364, DirtyPrice: ptr(9.0220)},
		{Type: bootstrap.FamilyFixedBond, TenorDays: 1092, Coupon: ptr(8.0), CleanPrice: ptr(99.35), DirtyPrice: ptr(100.12)},
		{Type: bootstrap.FamilyBondesF, TenorDays: 728, Coupon: ptr(0.15), CleanPrice: ptr(99.92), DirtyPrice: ptr(100.05)},
	}

	b := bootstrap.New(nil)
	res, err := b.Run(rows)
	if err != nil {
		fmt.Println("bootstrap failed:", err)
		return
	}

	fmt.Println("days  zero_rate")
	for _, p := range res.Points {
		fmt.Printf("%4d  %9.4f\n", p.DaysToMaturity, p.ZeroRate)
	}
	if res.SolverFallbacks > 0 {
		fmt.Printf("solver fallbacks: %d\n", res.SolverFallbacks)
	}
}
