// Package money converts between user-entered decimal amounts and the integer
// minor units used everywhere inside the ledger.
package money

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorDigits is the number of fractional digits of the reference currency.
const MinorDigits = 2

var (
	// ErrInvalidAmount is returned for amounts that cannot be represented.
	ErrInvalidAmount = errors.New("invalid amount")

	hundred  = decimal.New(1, MinorDigits)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// ParseDecimal parses a user-entered amount. A comma is the decimal mark
// when the string has no "."; otherwise commas are thousands separators,
// so "12,34" and "1,234.50" both parse.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// ParseCents parses an amount as ParseDecimal does and converts it to minor
// units. A third fractional digit is rounded half away from zero. Negative
// values are rejected.
func ParseCents(s string) (int64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	return FromDecimal(d)
}

// FromDecimal rounds d to minor units.
func FromDecimal(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d)
	}
	cents := d.Mul(hundred).Round(0)
	if cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d)
	}
	return cents.IntPart(), nil
}

// ToDecimal returns cents as a decimal in major units.
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -MinorDigits)
}

// Format renders cents with exactly two fractional digits, e.g. "-12.50".
func Format(cents int64) string {
	return ToDecimal(cents).StringFixed(MinorDigits)
}

// ParseRate parses an exchange rate. Rates must be positive.
func ParseRate(s string) (decimal.Decimal, error) {
	r, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing rate %q: %w", s, err)
	}
	if !r.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate %s must be positive", r)
	}
	return r, nil
}

// Convert multiplies a foreign amount by rate and rounds to reference minor units.
func Convert(amount, rate decimal.Decimal) (int64, error) {
	return FromDecimal(amount.Mul(rate))
}

// ConvertSplit converts the parts of a foreign total so that they add up to
// the converted total exactly. Each part gets the floor of its converted
// value and the leftover minor units go, one each, to the parts with the
// largest fractional remainders (earlier parts first on ties). When the parts
// do not add up to the total in the original currency, each part is
// converted on its own and the mismatch is left for validation to report.
func ConvertSplit(total decimal.Decimal, parts []decimal.Decimal, rate decimal.Decimal) ([]int64, error) {
	out := make([]int64, len(parts))

	sum := decimal.Zero
	for _, p := range parts {
		sum = sum.Add(p)
	}
	if !sum.Equal(total) {
		for i, p := range parts {
			c, err := Convert(p, rate)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}

	want, err := Convert(total, rate)
	if err != nil {
		return nil, err
	}

	fracs := make([]decimal.Decimal, len(parts))
	var floored int64
	for i, p := range parts {
		exact := p.Mul(rate).Mul(hundred)
		if exact.IsNegative() {
			return nil, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, p)
		}
		if exact.GreaterThan(maxCents) {
			return nil, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, p)
		}
		fl := exact.Floor()
		out[i] = fl.IntPart()
		fracs[i] = exact.Sub(fl)
		floored += out[i]
	}

	order := make([]int, len(parts))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return fracs[b].Cmp(fracs[a])
	})
	for k := int64(0); k < want-floored && len(order) > 0; k++ {
		out[order[k%int64(len(order))]]++
	}
	return out, nil
}
