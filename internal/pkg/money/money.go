// Package money represents currency amounts as integer cents.
package money

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Amount is a monetary value in cents. It is stored as BIGINT and rendered in
// JSON as a decimal number with two fractional digits.
type Amount int64

// FromFloat converts a decimal amount (e.g. 12.5) into cents, rounding half away from zero.
func FromFloat(v float64) Amount {
	return Amount(math.Round(v * 100))
}

// Float64 returns the amount as a decimal value.
func (a Amount) Float64() float64 {
	return float64(a) / 100
}

// Format renders the amount as "123.45".
func (a Amount) Format() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Times multiplies the amount by n.
func (a Amount) Times(n int64) Amount {
	return a * Amount(n)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Format()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", data, err)
	}
	*a = FromFloat(f)
	return nil
}
