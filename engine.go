package ledger

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine owns the write path of the ledger: transaction rows and account balances change only
// through it, each operation inside a single atomic unit of the Store.
//
// Create one Engine per store and share it; its methods are safe for concurrent use and
// writers are serialized.
type Engine struct {
	store Store
	log   *slog.Logger
	newID func() string
	now   func() time.Time

	mu sync.Mutex // one writer at a time

	obsMu        sync.Mutex
	observers    map[int]Observer
	nextObserver int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithIDs sets the record ID generator. The default generates random UUIDs.
func WithIDs(f func() string) Option { return func(e *Engine) { e.newID = f } }

// WithClock sets the clock used to date transactions created without a date.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New returns an engine writing to store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		log:       slog.Default(),
		newID:     uuid.NewString,
		now:       time.Now,
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying store.
func (e *Engine) Store() Store { return e.store }

// write runs fn as one atomic unit under the writer lock and notifies observers of changes
// once it committed.
func (e *Engine) write(ctx context.Context, op string, changes Changes, fn func(Tx) error) error {
	e.mu.Lock()
	err := classify(op, e.store.RunAtomic(ctx, fn))
	e.mu.Unlock()
	if err != nil {
		e.log.Debug("operation rejected", "op", op, "error", err)
		return err
	}
	e.notify(changes)
	return nil
}

// CreateTransaction validates t, applies its effect to the account balances and stores it.
// The returned transaction carries the generated ID. A zero Date is set to now.
func (e *Engine) CreateTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	t.Note = strings.TrimSpace(t.Note)
	if t.Date.IsZero() {
		t.Date = e.now()
	}
	if err := t.check(); err != nil {
		return Transaction{}, err
	}
	t.ID = e.newID()

	err := e.write(ctx, "create transaction", AccountsChanged|TransactionsChanged, func(tx Tx) error {
		settings, err := readSettings(tx)
		if err != nil {
			return err
		}
		if err := checkReferences(tx, t); err != nil {
			return err
		}
		if err := post(tx, t, settings.Rates(), applied, ""); err != nil {
			return err
		}
		return tx.PutTransaction(t)
	})
	if err != nil {
		return Transaction{}, err
	}
	e.log.Info("transaction created", "id", t.ID, "type", t.Type, "amount", t.Amount.String(), "currency", t.Currency, "account", t.AccountID)
	return t, nil
}

// DeleteTransaction reverts the effect of the stored transaction id and removes it. It returns
// the removed transaction.
func (e *Engine) DeleteTransaction(ctx context.Context, id string) (Transaction, error) {
	var old Transaction
	err := e.write(ctx, "delete transaction", AccountsChanged|TransactionsChanged, func(tx Tx) error {
		var err error
		if old, err = loadTransaction(tx, id); err != nil {
			return err
		}
		settings, err := readSettings(tx)
		if err != nil {
			return err
		}
		if err := post(tx, old, settings.Rates(), reverted, ""); err != nil {
			return err
		}
		return tx.DeleteTransaction(id)
	})
	if err != nil {
		return Transaction{}, err
	}
	e.log.Info("transaction deleted", "id", id, "type", old.Type, "amount", old.Amount.String(), "currency", old.Currency)
	return old, nil
}

// UpdateTransaction replaces the stored transaction id by next: the old effect is reverted,
// then the new one applied, in the same atomic unit. Balances are re-read between both steps
// so a shared account is never double counted. A zero Date keeps the old date.
func (e *Engine) UpdateTransaction(ctx context.Context, id string, next Transaction) (Transaction, error) {
	next.ID = id
	next.Note = strings.TrimSpace(next.Note)
	// the date is checked once known, the rest can be rejected before any read.
	probe := next
	if probe.Date.IsZero() {
		probe.Date = e.now()
	}
	if err := probe.check(); err != nil {
		return Transaction{}, err
	}

	err := e.write(ctx, "update transaction", AccountsChanged|TransactionsChanged, func(tx Tx) error {
		old, err := loadTransaction(tx, id)
		if err != nil {
			return err
		}
		if next.Date.IsZero() {
			next.Date = old.Date
		}
		settings, err := readSettings(tx)
		if err != nil {
			return err
		}
		rates := settings.Rates()
		if err := post(tx, old, rates, reverted, ""); err != nil {
			return err
		}
		if err := checkReferences(tx, next); err != nil {
			return err
		}
		if err := post(tx, next, rates, applied, ""); err != nil {
			return err
		}
		return tx.PutTransaction(next)
	})
	if err != nil {
		return Transaction{}, err
	}
	e.log.Info("transaction updated", "id", id, "type", next.Type, "amount", next.Amount.String(), "currency", next.Currency)
	return next, nil
}

// checkReferences verifies that every record t refers to exists and fits.
func checkReferences(tx Tx, t Transaction) error {
	if _, err := loadAccount(tx, t.AccountID, KindAccount); err != nil {
		return err
	}
	switch t.Type {
	case Transfer:
		if _, err := loadAccount(tx, t.ToAccountID, KindDestinationAccount); err != nil {
			return err
		}
	case Income, Expense:
		c, err := loadCategory(tx, t.CategoryID)
		if err != nil {
			return err
		}
		if c.Type != t.Type {
			return mismatchf("category %q is an %s category, not %s", c.Name, c.Type, t.Type)
		}
	}
	return nil
}

// Transaction returns the stored transaction id.
func (e *Engine) Transaction(ctx context.Context, id string) (t Transaction, err error) {
	err = view(ctx, e.store, "read transaction", func(tx Tx) error {
		t, err = loadTransaction(tx, id)
		return err
	})
	return t, err
}

// Transactions returns the transactions selected by f, most recent first.
func (e *Engine) Transactions(ctx context.Context, f Filter) (list []Transaction, err error) {
	err = view(ctx, e.store, "list transactions", func(tx Tx) error {
		list, err = tx.Transactions(f)
		return err
	})
	return list, err
}

// Settings returns the user settings.
func (e *Engine) Settings(ctx context.Context) (UserSettings, error) {
	return LoadSettings(ctx, e.store)
}

// SaveSettings validates and writes the user settings. Stored balances are not recomputed
// when the rates change.
func (e *Engine) SaveSettings(ctx context.Context, s UserSettings) error {
	if s.CustomRates == nil {
		s.CustomRates = Rates{}
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if err := e.write(ctx, "save settings", SettingsChanged, func(tx Tx) error { return writeSettings(tx, s) }); err != nil {
		return err
	}
	e.log.Info("settings saved", "mainCurrency", s.MainCurrency, "monthStartDay", s.MonthStartDay, "customRates", s.UseCustomRates)
	return nil
}
