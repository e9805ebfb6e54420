// Package memstore implements an in-memory ledger.Store.
//
// Each atomic unit works on a copy of the records and replaces them only when it succeeds, so
// a failed or panicking unit leaves nothing behind. Units are serialized.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/etnz/ledger"
)

// Store is an in-memory ledger.Store. Its zero value is not usable, call New.
type Store struct {
	mu   sync.Mutex
	data *records
}

type records struct {
	accounts     map[string]ledger.Account
	categories   map[string]ledger.Category
	transactions map[string]ledger.Transaction
	settings     map[string]string
}

func (r *records) clone() *records {
	return &records{
		accounts:     maps.Clone(r.accounts),
		categories:   maps.Clone(r.categories),
		transactions: maps.Clone(r.transactions),
		settings:     maps.Clone(r.settings),
	}
}

// New returns an empty store.
func New() *Store {
	return &Store{data: &records{
		accounts:     map[string]ledger.Account{},
		categories:   map[string]ledger.Category{},
		transactions: map[string]ledger.Transaction{},
		settings:     map[string]string{},
	}}
}

// RunAtomic runs fn on a private copy of the records and publishes it if fn succeeds.
func (s *Store) RunAtomic(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return fmt.Errorf("memstore: store is closed")
	}
	work := s.data.clone()
	if err := fn(&tx{work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Close releases the records. Later units fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

type tx struct{ r *records }

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ledger.ErrNotFound)
}

func (t *tx) Account(id string) (ledger.Account, error) {
	a, ok := t.r.accounts[id]
	if !ok {
		return a, notFound("account", id)
	}
	return a, nil
}

func (t *tx) Accounts() ([]ledger.Account, error) {
	list := slices.Collect(maps.Values(t.r.accounts))
	slices.SortFunc(list, func(a, b ledger.Account) int {
		return cmp.Or(cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), cmp.Compare(a.ID, b.ID))
	})
	return list, nil
}

func (t *tx) PutAccount(a ledger.Account) error {
	t.r.accounts[a.ID] = a
	return nil
}

func (t *tx) DeleteAccount(id string) error {
	if _, ok := t.r.accounts[id]; !ok {
		return notFound("account", id)
	}
	delete(t.r.accounts, id)
	return nil
}

func (t *tx) Category(id string) (ledger.Category, error) {
	c, ok := t.r.categories[id]
	if !ok {
		return c, notFound("category", id)
	}
	return c, nil
}

func (t *tx) Categories() ([]ledger.Category, error) {
	list := slices.Collect(maps.Values(t.r.categories))
	slices.SortFunc(list, func(a, b ledger.Category) int {
		return cmp.Or(
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return list, nil
}

func (t *tx) PutCategory(c ledger.Category) error {
	t.r.categories[c.ID] = c
	return nil
}

func (t *tx) DeleteCategory(id string) error {
	if _, ok := t.r.categories[id]; !ok {
		return notFound("category", id)
	}
	delete(t.r.categories, id)
	return nil
}

func (t *tx) Transaction(id string) (ledger.Transaction, error) {
	x, ok := t.r.transactions[id]
	if !ok {
		return x, notFound("transaction", id)
	}
	return x, nil
}

func (t *tx) Transactions(f ledger.Filter) ([]ledger.Transaction, error) {
	var list []ledger.Transaction
	for _, x := range t.r.transactions {
		if f.Match(x) {
			list = append(list, x)
		}
	}
	slices.SortFunc(list, func(a, b ledger.Transaction) int {
		return cmp.Or(b.Date.Compare(a.Date), cmp.Compare(b.ID, a.ID))
	})
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}

func (t *tx) PutTransaction(x ledger.Transaction) error {
	t.r.transactions[x.ID] = x
	return nil
}

func (t *tx) DeleteTransaction(id string) error {
	if _, ok := t.r.transactions[id]; !ok {
		return notFound("transaction", id)
	}
	delete(t.r.transactions, id)
	return nil
}

func (t *tx) Setting(key string) (string, error) {
	v, ok := t.r.settings[key]
	if !ok {
		return "", notFound("setting", key)
	}
	return v, nil
}

func (t *tx) PutSetting(key, value string) error {
	t.r.settings[key] = value
	return nil
}
