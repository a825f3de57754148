// Package money parses, rounds and formats currency amounts.
//
// Balances are computed in float64 by package calculator. Amounts entering the
// system are parsed and rounded to cents here, and amounts leaving it are
// formatted here, using decimal arithmetic so that display never shows binary
// floating point artifacts.
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not finite positive numbers.
var ErrInvalidAmount = errors.New("invalid amount")

// centPlaces is the number of decimal places in a currency minor unit.
const centPlaces = 2

// Currency describes a supported group currency.
type Currency struct {
	Code   string
	Name   string
	Symbol string
}

// Currencies lists the currencies groups can be created with.
var Currencies = []Currency{
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "ARS", Name: "Argentine Peso", Symbol: "$"},
}

// Lookup returns the currency with the given code.
func Lookup(code string) (Currency, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// Symbol returns the currency symbol, or the code itself for unknown currencies.
func Symbol(code string) string {
	if c, ok := Lookup(code); ok {
		return c.Symbol
	}
	return code
}

// Name returns the currency name, or the code itself for unknown currencies.
func Name(code string) string {
	if c, ok := Lookup(code); ok {
		return c.Name
	}
	return code
}

// FormatAmount renders amount in the conventional style of the currency:
//
//	FormatAmount(12.5, "USD") -> "$12.50"
//	FormatAmount(12.5, "EUR") -> "12,50 €"
//	FormatAmount(12.5, "GBP") -> "12.50 GBP"
func FormatAmount(amount float64, code string) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(centPlaces)

	c, ok := Lookup(code)
	if !ok {
		return fixed + " " + code
	}

	switch c.Code {
	case "EUR":
		return strings.Replace(fixed, ".", ",", 1) + " " + c.Symbol
	default:
		if strings.HasPrefix(fixed, "-") {
			return "-" + c.Symbol + fixed[1:]
		}
		return c.Symbol + fixed
	}
}

// ParseAmount converts user input such as "12.34" or "12,34" into a positive
// amount rounded to cents.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	d = d.Round(centPlaces)
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// ValidateAmount checks that amount is finite and strictly positive.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// RoundToCents rounds amount half away from zero to two decimal places.
func RoundToCents(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(centPlaces).InexactFloat64()
}
