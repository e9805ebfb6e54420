package ledger

import (
	"context"
	"fmt"
	"strings"
)

// CreateAccount stores a new account. Its balance starts at InitialBalance; any Balance or ID
// set by the caller is ignored.
func (e *Engine) CreateAccount(ctx context.Context, a Account) (Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.ID = e.newID()
	a.Balance = a.InitialBalance
	if err := validateStruct("account", a); err != nil {
		return Account{}, err
	}
	err := e.write(ctx, "create account", AccountsChanged, func(tx Tx) error {
		if err := uniqueAccountName(tx, a); err != nil {
			return err
		}
		return tx.PutAccount(a)
	})
	if err != nil {
		return Account{}, err
	}
	e.log.Info("account created", "id", a.ID, "name", a.Name, "currency", a.Currency, "balance", a.Balance.String())
	return a, nil
}

// UpdateAccount changes the descriptive fields of an account. The balance is untouched.
func (e *Engine) UpdateAccount(ctx context.Context, id string, u AccountUpdate) (Account, error) {
	var a Account
	err := e.write(ctx, "update account", AccountsChanged, func(tx Tx) error {
		old, err := loadAccount(tx, id, KindAccount)
		if err != nil {
			return err
		}
		a = u.apply(old)
		if err := validateStruct("account", a); err != nil {
			return err
		}
		if err := uniqueAccountName(tx, a); err != nil {
			return err
		}
		return tx.PutAccount(a)
	})
	if err != nil {
		return Account{}, err
	}
	e.log.Info("account updated", "id", a.ID, "name", a.Name)
	return a, nil
}

// DeleteAccount removes an account together with every transaction that references it, as
// source or as destination. This loses data: callers are expected to confirm with the user.
//
// The effect of each removed transfer is reverted on the other account, so that account's
// balance keeps matching its remaining transactions. It returns the removed transactions.
func (e *Engine) DeleteAccount(ctx context.Context, id string) ([]Transaction, error) {
	var removed []Transaction
	err := e.write(ctx, "delete account", AccountsChanged|TransactionsChanged, func(tx Tx) error {
		if _, err := loadAccount(tx, id, KindAccount); err != nil {
			return err
		}
		settings, err := readSettings(tx)
		if err != nil {
			return err
		}
		rates := settings.Rates()
		if removed, err = tx.Transactions(Filter{AccountID: id}); err != nil {
			return fmt.Errorf("cannot list transactions of account %q: %w", id, err)
		}
		for _, t := range removed {
			if err := post(tx, t, rates, reverted, id); err != nil {
				return err
			}
			if err := tx.DeleteTransaction(t.ID); err != nil {
				return fmt.Errorf("cannot delete transaction %q: %w", t.ID, err)
			}
		}
		return tx.DeleteAccount(id)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("account deleted", "id", id, "transactions", len(removed))
	return removed, nil
}

// Account returns the account id.
func (e *Engine) Account(ctx context.Context, id string) (a Account, err error) {
	err = view(ctx, e.store, "read account", func(tx Tx) error {
		a, err = loadAccount(tx, id, KindAccount)
		return err
	})
	return a, err
}

// Accounts returns every account ordered by name.
func (e *Engine) Accounts(ctx context.Context) (list []Account, err error) {
	err = view(ctx, e.store, "list accounts", func(tx Tx) error {
		list, err = tx.Accounts()
		return err
	})
	return list, err
}

// AccountByName finds an account by name, case-insensitively.
func (e *Engine) AccountByName(ctx context.Context, name string) (Account, error) {
	list, err := e.Accounts(ctx)
	if err != nil {
		return Account{}, err
	}
	if a, ok := findAccount(list, name); ok {
		return a, nil
	}
	return Account{}, &NotFoundError{Kind: KindAccount, ID: name}
}

func findAccount(list []Account, name string) (Account, bool) {
	for _, a := range list {
		if sameName(a.Name, name) {
			return a, true
		}
	}
	return Account{}, false
}

func uniqueAccountName(tx Tx, a Account) error {
	list, err := tx.Accounts()
	if err != nil {
		return fmt.Errorf("cannot list accounts: %w", err)
	}
	if other, ok := findAccount(list, a.Name); ok && other.ID != a.ID {
		return invalidf("an account named %q already exists", other.Name)
	}
	return nil
}
