package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// NumericToDecimal converts a pgtype.Numeric to a decimal.Decimal. Invalid
// (NULL) values become zero.
func NumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// DecimalToNumeric converts a decimal.Decimal to pgtype.Numeric at 2 dp.
func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

// MaxMoney is the largest value a NUMERIC(10,2) money column holds.
var MaxMoney = decimal.RequireFromString("99999999.99")

var errMoneyPrecision = errors.New("at most 2 decimal places")

// ParseMoney parses a client-supplied amount. Empty input is zero. Values
// with more than 2 decimal places or beyond MaxMoney in magnitude are rejected.
func ParseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, errMoneyPrecision
	}
	if d.Abs().GreaterThan(MaxMoney) {
		return decimal.Zero, fmt.Errorf("%s exceeds %s", d, MaxMoney.StringFixed(2))
	}
	return d, nil
}
