package domain

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in euro cents.
type Money int64

var ErrMoneyOverflow = errors.New("amount out of range")

func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(2).Round(0).IntPart())
}

// ParseMoney parses a euro amount such as "13", "13.5" or "13,50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
	if err != nil {
		return 0, err
	}
	return NewMoneyFromDecimal(d), nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Mul returns m multiplied by q, rounded half away from zero to the cent.
// Products that do not fit in int64 cents return ErrMoneyOverflow.
func (m Money) Mul(q decimal.Decimal) (Money, error) {
	d := q.Mul(decimal.NewFromInt(int64(m))).Round(0)
	if !d.BigInt().IsInt64() {
		return 0, ErrMoneyOverflow
	}
	return Money(d.IntPart()), nil
}

// Add returns m+n, or ErrMoneyOverflow when the sum leaves the int64 range.
func (m Money) Add(n Money) (Money, error) {
	sum := m + n
	if (n > 0 && sum < m) || (n < 0 && sum > m) {
		return 0, ErrMoneyOverflow
	}
	return sum, nil
}

// Amount renders the value with two decimals and a decimal comma, without
// thousands separators: 1234,50.
func (m Money) Amount() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := strconv.FormatInt(v%100, 10)
	if len(cents) == 1 {
		cents = "0" + cents
	}
	return sign + strconv.FormatInt(v/100, 10) + "," + cents
}

func (m Money) String() string {
	return m.Amount() + " €"
}
