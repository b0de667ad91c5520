package domain

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Money is an amount in minor units (cents) of the single currency the service quotes in.
type Money int64

func Cents(c int64) Money { return Money(c) }

func (m Money) Cents() int64 { return int64(m) }

// MaxMoney is the largest amount that survives a round trip through cents.
const MaxMoney = Money(math.MaxInt64)

var ErrMoneyOverflow = errors.New("amount out of range")

// Times multiplies m by a non-negative count, failing instead of wrapping.
func (m Money) Times(n int) (Money, error) {
	if n < 0 {
		return 0, errors.Newf("negative multiplier %d", n)
	}
	if n != 0 && (m > MaxMoney/Money(n) || m < -MaxMoney/Money(n)) {
		return 0, errors.Wrapf(ErrMoneyOverflow, "%s x %d", m.Decimal(), n)
	}
	return m * Money(n), nil
}

// FromFloat converts a decimal amount in major units, rounding to the cent.
func FromFloat(v float64) (Money, error) {
	c := math.Round(v * 100)
	if math.IsNaN(c) || c >= math.MaxInt64 || c <= math.MinInt64 {
		return 0, errors.Wrapf(ErrMoneyOverflow, "%g", v)
	}
	return Money(int64(c)), nil
}

// Decimal renders the amount with exactly two fraction digits and no symbol.
func (m Money) Decimal() string {
	sign := ""
	c := int64(m)
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.Decimal()), nil }

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "null" || s == "" {
		*m = 0
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMoney parses a decimal amount such as "120", "99.5" or "99.95".
// More than two fraction digits is rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, errors.Newf("amount %q has more than two decimals", s)
	}
	if !digits(whole) || !digits(frac) {
		return 0, errors.Newf("parse amount %q: not a decimal number", s)
	}
	frac += strings.Repeat("0", 2-len(frac))
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse amount %q", s)
	}
	f, _ := strconv.ParseInt(frac, 10, 64)
	if w > (int64(MaxMoney)-f)/100 {
		return 0, errors.Wrapf(ErrMoneyOverflow, "parse amount %q", s)
	}
	c := w*100 + f
	if neg {
		c = -c
	}
	return Money(c), nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
