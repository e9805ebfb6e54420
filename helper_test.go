package ledger_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/memstore"
	"github.com/shopspring/decimal"
)

// testDay is the clock of test engines.
var testDay = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// newEngine returns an engine on an empty memory store, with sequential IDs and a fixed clock.
func newEngine(t *testing.T, opts ...ledger.Option) *ledger.Engine {
	t.Helper()
	return newEngineOn(t, memstore.New(), opts...)
}

func newEngineOn(t *testing.T, store ledger.Store, opts ...ledger.Option) *ledger.Engine {
	t.Helper()
	n := 0
	base := []ledger.Option{
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ledger.WithIDs(func() string { n++; return fmt.Sprintf("id-%03d", n) }),
		ledger.WithClock(func() time.Time { return testDay }),
	}
	e := ledger.New(store, append(base, opts...)...)
	t.Cleanup(func() { store.Close() })
	return e
}

// D parses a decimal constant.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustAccount(t *testing.T, e *ledger.Engine, name string, cur ledger.Currency, balance string) ledger.Account {
	t.Helper()
	a, err := e.CreateAccount(context.Background(), ledger.Account{Name: name, Type: ledger.Bank, Currency: cur, InitialBalance: D(balance)})
	if err != nil {
		t.Fatalf("CreateAccount(%q) failed: %v", name, err)
	}
	return a
}

func mustCategory(t *testing.T, e *ledger.Engine, name string, typ ledger.TransactionType) ledger.Category {
	t.Helper()
	c, err := e.CreateCategory(context.Background(), ledger.Category{Name: name, Type: typ})
	if err != nil {
		t.Fatalf("CreateCategory(%q) failed: %v", name, err)
	}
	return c
}

func mustCreate(t *testing.T, e *ledger.Engine, tx ledger.Transaction) ledger.Transaction {
	t.Helper()
	tx, err := e.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}
	return tx
}

// balance reads the current balance of account id.
func balance(t *testing.T, e *ledger.Engine, id string) decimal.Decimal {
	t.Helper()
	a, err := e.Account(context.Background(), id)
	if err != nil {
		t.Fatalf("Account(%q) failed: %v", id, err)
	}
	return a.Balance
}

func assertBalance(t *testing.T, e *ledger.Engine, id string, want decimal.Decimal) {
	t.Helper()
	if got := balance(t, e, id); !got.Equal(want) {
		t.Errorf("balance of %q = %s, want %s", id, got, want)
	}
}

// assertConsistent fails when any stored balance disagrees with the transaction log.
func assertConsistent(t *testing.T, e *ledger.Engine) {
	t.Helper()
	found, err := e.Audit(context.Background())
	if err != nil {
		t.Fatalf("Audit() failed: %v", err)
	}
	for _, d := range found {
		t.Errorf("account %q has balance %s, transactions say %s", d.Account.Name, d.Account.Balance, d.Expected)
	}
}

// failingStore wraps a store so that, while err is set, writing a transaction row fails after
// the balances of the unit were already written.
type failingStore struct {
	ledger.Store
	err error
}

func (s *failingStore) RunAtomic(ctx context.Context, fn func(ledger.Tx) error) error {
	return s.Store.RunAtomic(ctx, func(tx ledger.Tx) error { return fn(&failingTx{Tx: tx, err: s.err}) })
}

type failingTx struct {
	ledger.Tx
	err error
}

func (tx *failingTx) PutTransaction(t ledger.Transaction) error {
	if tx.err != nil {
		return tx.err
	}
	return tx.Tx.PutTransaction(t)
}

func (tx *failingTx) DeleteTransaction(id string) error {
	if tx.err != nil {
		return tx.err
	}
	return tx.Tx.DeleteTransaction(id)
}
