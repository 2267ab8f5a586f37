package bootstrap

import (
	"errors"
	"fmt"
	"strings"
)

// Family identifies one of the modeled instrument families.
type Family string

const (
	// FamilyOvernight is the Banxico target rate carried as a 1-day anchor.
	FamilyOvernight Family = "overnight_rate"
	// FamilyZeroCoupon is a CETES zero-coupon note, face 10.
	FamilyZeroCoupon Family = "zero_coupon"
	// FamilyFixedBond is an MBONO with semiannual 182-day coupons, face 100.
	FamilyFixedBond Family = "fixed_bond"
	// FamilyBondesD, FamilyBondesF and FamilyBondesG are 28-day FRNs on the
	// overnight funding rate plus a spread.
	FamilyBondesD Family = "floating_bondes_d"
	FamilyBondesF Family = "floating_bondes_f"
	FamilyBondesG Family = "floating_bondes_g"
)

var (
	// ErrMissingPrice means neither clean nor dirty price was present where
	// one was required.
	ErrMissingPrice = errors.New("bootstrap: instrument has neither dirty nor clean price")
	// ErrUnknownFamily means the row's type tag is not one of the modeled
	// families. The whole per-date run aborts.
	ErrUnknownFamily = errors.New("bootstrap: unknown instrument type")
	// ErrMissingAnchorRate means an FRN row was processed before any
	// overnight pillar existed.
	ErrMissingAnchorRate = errors.New("bootstrap: overnight anchor rate required before floating BONDES rows")
)

// ParseFamily maps a raw type tag onto the closed Family set.
func ParseFamily(s string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FamilyOvernight, FamilyZeroCoupon, FamilyFixedBond,
		FamilyBondesD, FamilyBondesF, FamilyBondesG:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}

// IsFloating reports whether the family is one of the 28-day BONDES FRNs.
func (f Family) IsFloating() bool {
	switch f {
	case FamilyBondesD, FamilyBondesF, FamilyBondesG:
		return true
	}
	return false
}

// Row is one instrument observation for a single valuation date.
//
// Prices are nullable: priced instruments must carry at least one of
// clean/dirty. Overnight rows carry the annual rate in DirtyPrice as a
// decimal (percent values > 1.0 are tolerated and rescaled). Coupon holds
// the annual coupon rate in percent for fixed bonds and the floating spread
// (percentage points, or basis points when |value| > 5) for FRNs.
type Row struct {
	Type       Family   `json:"type"`
	TenorDays  float64  `json:"tenor_days"`
	CleanPrice *float64 `json:"clean_price"`
	DirtyPrice *float64 `json:"dirty_price"`
	Coupon     *float64 `json:"coupon"`
}

// pickPrice prefers dirty over clean.
func pickPrice(r Row) (float64, error) {
	if r.DirtyPrice != nil {
		return *r.DirtyPrice, nil
	}
	if r.CleanPrice != nil {
		return *r.CleanPrice, nil
	}
	return 0, fmt.Errorf("%w (type=%s tenor=%g)", ErrMissingPrice, r.Type, r.TenorDays)
}
