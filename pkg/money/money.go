package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Amounts travel as int64 minor units. exponents maps ISO codes to their minor-unit scale.
var exponents = map[string]int32{
	"VND": 0,
	"JPY": 0,
	"USD": 2,
	"EUR": 2,
}

// Exponent returns the number of minor-unit digits for code, defaulting to 2.
func Exponent(code string) int32 {
	if exp, ok := exponents[strings.ToUpper(code)]; ok {
		return exp
	}
	return 2
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(unitPrice int64, quantity int) int64 {
	return decimal.NewFromInt(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).IntPart()
}

// Sum adds amounts.
func Sum(amounts ...int64) int64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromInt(a))
	}
	return total.IntPart()
}

// ToDecimal converts minor units to a major-unit decimal for display or export.
func ToDecimal(amount int64, code string) decimal.Decimal {
	return decimal.NewFromInt(amount).Shift(-Exponent(code))
}

// Parse reads a major-unit string ("30000", "12.50") into minor units.
func Parse(value, code string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	minor := d.Shift(Exponent(code))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more precision than %s allows", value, code)
	}
	return minor.IntPart(), nil
}

// Format renders amount with locale-aware grouping followed by the currency code.
func Format(tag language.Tag, amount int64, code string) string {
	exp := Exponent(code)
	value, _ := ToDecimal(amount, code).Float64()
	p := message.NewPrinter(tag)
	return p.Sprintf("%v %s", number.Decimal(value, number.Scale(int(exp))), strings.ToUpper(code))
}
