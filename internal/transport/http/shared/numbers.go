package shared

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"capworks/internal/domain/validation"
)

func rawText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return strings.TrimSpace(strings.Trim(text, `"`))
}

// ParseAmount reads a non-negative money amount sent as a JSON number or a
// numeric string.
func ParseAmount(field string, raw json.RawMessage) (decimal.Decimal, error) {
	text := rawText(raw)
	if text == "" {
		return decimal.Zero, validation.New(field)
	}
	amount, err := decimal.NewFromString(text)
	if err != nil || amount.IsNegative() {
		return decimal.Zero, validation.New(field)
	}
	return amount, nil
}

// ParseCount reads a whole count. Anything that is not a finite number, or
// whose magnitude exceeds math.MaxInt32, counts as 0. Fractions are truncated.
func ParseCount(raw json.RawMessage) int {
	text := rawText(raw)
	if text == "" {
		return 0
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if n > math.MaxInt32 || n < -math.MaxInt32 {
			return 0
		}
		return int(n)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// Number renders a decimal as a bare JSON number.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
