package ledger

import "context"

// Store persists the ledger records.
//
// RunAtomic runs fn against a Tx. Either every write fn performs is durably applied, or, when
// fn returns an error (or panics), none is. Stores do not enforce referential integrity: the
// Engine validates references itself.
type Store interface {
	RunAtomic(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// Tx is the handle on the records inside an atomic unit.
//
// Getters return an error wrapping ErrNotFound when the record does not exist. Put methods
// insert or replace by ID.
type Tx interface {
	Account(id string) (Account, error)
	Accounts() ([]Account, error) // ordered by name
	PutAccount(a Account) error
	DeleteAccount(id string) error

	Category(id string) (Category, error)
	Categories() ([]Category, error) // ordered by type then name
	PutCategory(c Category) error
	DeleteCategory(id string) error

	Transaction(id string) (Transaction, error)
	Transactions(f Filter) ([]Transaction, error) // most recent first
	PutTransaction(t Transaction) error
	DeleteTransaction(id string) error

	Setting(key string) (string, error)
	PutSetting(key, value string) error
}

// view runs a read-only function inside an atomic unit.
func view(ctx context.Context, s Store, op string, fn func(Tx) error) error {
	return classify(op, s.RunAtomic(ctx, fn))
}
