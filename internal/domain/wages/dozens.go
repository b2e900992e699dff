package wages

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"capworks/internal/domain/validation"
)

const UnitsPerDozen = 12

// MaxDozens is the largest entry whose unit count fits in an int.
const MaxDozens = math.MaxInt / UnitsPerDozen

// UnitsFromDozens converts a whole-dozen entry into stored units.
// Negative entries and entries above MaxDozens count as zero.
func UnitsFromDozens(dozens int) int {
	if dozens <= 0 || dozens > MaxDozens {
		return 0
	}
	return dozens * UnitsPerDozen
}

// DozensFromUnits returns the number of complete dozens in units.
func DozensFromUnits(units int) int {
	if units <= 0 {
		return 0
	}
	return units / UnitsPerDozen
}

// LooseUnits returns the remainder below the next dozen; it earns nothing.
func LooseUnits(units int) int {
	if units <= 0 {
		return 0
	}
	return units % UnitsPerDozen
}

// PairAmount is the wage earned for one (worker, cap type) pair.
func PairAmount(units int, ratePerDozen decimal.Decimal) decimal.Decimal {
	return ratePerDozen.Mul(decimal.NewFromInt(int64(DozensFromUnits(units))))
}

// ParseRate reads a rate per dozen typed by a user.
func ParseRate(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, validation.New("ratePerDozen")
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		return decimal.Zero, validation.New("ratePerDozen")
	}
	return rate, nil
}
