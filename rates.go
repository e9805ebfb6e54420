package ledger

import (
	"maps"

	"github.com/shopspring/decimal"
)

// Rates maps a currency to how many units of BaseCurrency one unit of it is worth.
type Rates map[Currency]decimal.Decimal

// DefaultRates returns the built-in rate table.
func DefaultRates() Rates {
	return Rates{
		PKR: decimal.NewFromInt(1),
		USD: decimal.RequireFromString("278.5"),
		AED: decimal.RequireFromString("75.8"),
		MYR: decimal.RequireFromString("62.0"),
	}
}

// RatesFor returns the rates to use under the given settings: the defaults, with matching
// entries replaced by the custom ones when UseCustomRates is set.
func RatesFor(s UserSettings) Rates {
	rates := DefaultRates()
	if s.UseCustomRates {
		maps.Copy(rates, s.CustomRates)
	}
	return rates
}

// Rate returns the rate to base for c.
func (r Rates) Rate(c Currency) (decimal.Decimal, error) {
	if !c.Valid() {
		return decimal.Zero, invalidf("unsupported currency %q", c)
	}
	rate, ok := r[c]
	if !ok {
		return decimal.Zero, invalidf("no conversion rate for %s", c)
	}
	if !rate.IsPositive() {
		return decimal.Zero, invalidf("conversion rate for %s must be positive, got %s", c, rate)
	}
	return rate, nil
}

// Convert converts amount from one currency to another, pivoting through BaseCurrency.
//
// Same-currency conversion returns amount unchanged. Nothing is rounded here: rounding is a
// formatting concern.
func Convert(amount decimal.Decimal, from, to Currency, rates Rates) (decimal.Decimal, error) {
	if from == to {
		if !from.Valid() {
			return decimal.Zero, invalidf("unsupported currency %q", from)
		}
		return amount, nil
	}
	fromRate, err := rates.Rate(from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := rates.Rate(to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(fromRate).Div(toRate), nil
}

// Convert is a shortcut for Convert(amount, from, to, r).
func (r Rates) Convert(amount decimal.Decimal, from, to Currency) (decimal.Decimal, error) {
	return Convert(amount, from, to, r)
}
