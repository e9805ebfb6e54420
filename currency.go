package ledger

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code from the fixed set the ledger supports.
type Currency string

const (
	PKR Currency = "PKR"
	USD Currency = "USD"
	AED Currency = "AED"
	MYR Currency = "MYR"
)

// BaseCurrency is the pivot all conversions route through.
const BaseCurrency = PKR

// Currencies returns the supported currencies in display order.
func Currencies() []Currency { return []Currency{PKR, USD, AED, MYR} }

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	switch c {
	case PKR, USD, AED, MYR:
		return true
	}
	return false
}

func (c Currency) String() string { return string(c) }

// ParseCurrency parses a currency code, case-insensitively.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", invalidf("unsupported currency %q", s)
	}
	return c, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Currency) MarshalText() ([]byte, error) { return []byte(c), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Currency) UnmarshalText(b []byte) error {
	v, err := ParseCurrency(string(b))
	if err != nil {
		return fmt.Errorf("cannot decode currency: %w", err)
	}
	*c = v
	return nil
}
