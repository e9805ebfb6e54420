package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Discrepancy reports an account whose stored balance differs from the one recomputed from
// the transaction log.
type Discrepancy struct {
	Account  Account
	Expected decimal.Decimal
}

// Difference is the stored balance minus the expected one.
func (d Discrepancy) Difference() decimal.Decimal { return d.Account.Balance.Sub(d.Expected) }

// Audit recomputes every balance as InitialBalance plus the effects of the stored transactions
// and returns the accounts that disagree. It is read-only.
//
// Effects are recomputed with the rates in effect now: after a change of custom rates,
// accounts touched by cross-currency transactions show up here too.
func (e *Engine) Audit(ctx context.Context) (found []Discrepancy, err error) {
	err = view(ctx, e.store, "audit", func(tx Tx) error {
		settings, err := readSettings(tx)
		if err != nil {
			return err
		}
		rates := settings.Rates()
		accounts, err := tx.Accounts()
		if err != nil {
			return err
		}
		txs, err := tx.Transactions(Filter{})
		if err != nil {
			return err
		}

		byID := make(map[string]Account, len(accounts))
		expected := make(map[string]decimal.Decimal, len(accounts))
		for _, a := range accounts {
			byID[a.ID] = a
			expected[a.ID] = a.InitialBalance
		}
		for _, t := range txs {
			effects, err := Effects(t, byID, rates)
			if err != nil {
				return err
			}
			for _, eff := range effects {
				expected[eff.AccountID] = expected[eff.AccountID].Add(eff.Delta)
			}
		}
		for _, a := range accounts {
			if !a.Balance.Equal(expected[a.ID]) {
				found = append(found, Discrepancy{Account: a, Expected: expected[a.ID]})
			}
		}
		return nil
	})
	return found, err
}
