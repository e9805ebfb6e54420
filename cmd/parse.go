package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/shopspring/decimal"
)

// parseAmount reads a decimal amount, ignoring thousands separators.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(",", "", "_", "").Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// parseDay reads a date flag as the local midnight of that day. An empty flag is the zero time.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.In(time.Local), nil
}

// findTransaction returns the transaction whose ID is, or starts with, ref.
func findTransaction(ctx context.Context, e *ledger.Engine, ref string) (ledger.Transaction, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ledger.Transaction{}, fmt.Errorf("missing transaction id")
	}
	list, err := e.Transactions(ctx, ledger.Filter{})
	if err != nil {
		return ledger.Transaction{}, err
	}
	var found []ledger.Transaction
	for _, t := range list {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return ledger.Transaction{}, &ledger.NotFoundError{Kind: ledger.KindTransaction, ID: ref}
	case 1:
		return found[0], nil
	default:
		return ledger.Transaction{}, fmt.Errorf("transaction id %q is ambiguous: %d matches", ref, len(found))
	}
}

// visited returns the names of the flags actually set on the command line.
func visited(f *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}
