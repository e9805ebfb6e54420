package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Effect is the signed balance change a transaction applies to one account, in that account's
// currency.
type Effect struct {
	AccountID string
	Delta     decimal.Decimal
}

// sourceEffect computes the change on the source account a of transaction t.
//
//	Income:            +amount - fee
//	Expense, Transfer: -amount - fee
func sourceEffect(t Transaction, a Account, rates Rates) (decimal.Decimal, error) {
	delta, err := Convert(t.Amount, t.Currency, a.Currency, rates)
	if err != nil {
		return decimal.Zero, err
	}
	fee := decimal.Zero
	if !t.Fee.IsZero() {
		if fee, err = Convert(t.Fee, t.Currency, a.Currency, rates); err != nil {
			return decimal.Zero, err
		}
	}
	if t.Type == Income {
		return delta.Sub(fee), nil
	}
	return delta.Neg().Sub(fee), nil
}

// destinationEffect computes the change on the destination account of a transfer. The fee is
// borne by the source only.
func destinationEffect(t Transaction, to Account, rates Rates) (decimal.Decimal, error) {
	return Convert(t.Amount, t.Currency, to.Currency, rates)
}

// Effects returns the balance changes t applies given the current accounts.
func Effects(t Transaction, accounts map[string]Account, rates Rates) ([]Effect, error) {
	src, ok := accounts[t.AccountID]
	if !ok {
		return nil, &NotFoundError{Kind: KindAccount, ID: t.AccountID}
	}
	d, err := sourceEffect(t, src, rates)
	if err != nil {
		return nil, err
	}
	effects := []Effect{{AccountID: src.ID, Delta: d}}
	if t.Type != Transfer {
		return effects, nil
	}
	dst, ok := accounts[t.ToAccountID]
	if !ok {
		return nil, &NotFoundError{Kind: KindDestinationAccount, ID: t.ToAccountID}
	}
	if d, err = destinationEffect(t, dst, rates); err != nil {
		return nil, err
	}
	return append(effects, Effect{AccountID: dst.ID, Delta: d}), nil
}

// sign selects whether an effect is applied or reverted.
type sign int

const (
	applied  sign = 1
	reverted sign = -1
)

// post applies (or reverts) the effect of t inside the atomic unit.
//
// Each account is read right before it is written, so a later post in the same unit always
// sees the balance left by an earlier one. The account named by skip is neither read nor
// written; that is how a cascade leaves the account being deleted alone.
func post(tx Tx, t Transaction, rates Rates, s sign, skip string) error {
	if t.AccountID != skip {
		src, err := loadAccount(tx, t.AccountID, KindAccount)
		if err != nil {
			return err
		}
		d, err := sourceEffect(t, src, rates)
		if err != nil {
			return err
		}
		src.Balance = src.Balance.Add(d.Mul(decimal.NewFromInt(int64(s))))
		if err := tx.PutAccount(src); err != nil {
			return fmt.Errorf("cannot update balance of %q: %w", src.ID, err)
		}
	}
	if t.Type != Transfer || t.ToAccountID == skip {
		return nil
	}
	dst, err := loadAccount(tx, t.ToAccountID, KindDestinationAccount)
	if err != nil {
		return err
	}
	d, err := destinationEffect(t, dst, rates)
	if err != nil {
		return err
	}
	dst.Balance = dst.Balance.Add(d.Mul(decimal.NewFromInt(int64(s))))
	if err := tx.PutAccount(dst); err != nil {
		return fmt.Errorf("cannot update balance of %q: %w", dst.ID, err)
	}
	return nil
}

// loadAccount reads an account, turning a missing record into a *NotFoundError of kind.
func loadAccount(tx Tx, id string, kind EntityKind) (Account, error) {
	a, err := tx.Account(id)
	if errors.Is(err, ErrNotFound) {
		return Account{}, &NotFoundError{Kind: kind, ID: id}
	}
	if err != nil {
		return Account{}, fmt.Errorf("cannot read account %q: %w", id, err)
	}
	return a, nil
}

func loadCategory(tx Tx, id string) (Category, error) {
	c, err := tx.Category(id)
	if errors.Is(err, ErrNotFound) {
		return Category{}, &NotFoundError{Kind: KindCategory, ID: id}
	}
	if err != nil {
		return Category{}, fmt.Errorf("cannot read category %q: %w", id, err)
	}
	return c, nil
}

func loadTransaction(tx Tx, id string) (Transaction, error) {
	t, err := tx.Transaction(id)
	if errors.Is(err, ErrNotFound) {
		return Transaction{}, &NotFoundError{Kind: KindTransaction, ID: id}
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("cannot read transaction %q: %w", id, err)
	}
	return t, nil
}
