package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// ProposedTransaction is a candidate transaction produced from free text, typically by a
// language model. Every field may be missing: strings are then empty and Amount nil.
// Accounts and categories are referred to by name.
type ProposedTransaction struct {
	Type        string           `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Currency    string           `json:"currency"`
	Category    string           `json:"category"`
	Account     string           `json:"account"`
	FromAccount string           `json:"fromAccount"`
	ToAccount   string           `json:"toAccount"`
	Note        string           `json:"note"`
}

// Resolve turns a proposal into a transaction ready for CreateTransaction.
//
// Names are matched case-insensitively against the current accounts and categories; nothing
// is guessed. A missing currency defaults to the main currency. A proposal missing a field its
// type requires is rejected with a *ValidationError, an unknown name with a *NotFoundError.
func (e *Engine) Resolve(ctx context.Context, p ProposedTransaction) (t Transaction, err error) {
	if strings.TrimSpace(p.Type) == "" {
		return t, invalidf("transaction type is required")
	}
	if t.Type, err = ParseTransactionType(p.Type); err != nil {
		return t, err
	}
	if p.Amount == nil {
		return t, invalidAmountf("amount is required")
	}
	if !p.Amount.IsPositive() {
		return t, invalidAmountf("amount must be positive, got %s", p.Amount)
	}
	t.Amount = *p.Amount
	t.Note = strings.TrimSpace(p.Note)

	err = view(ctx, e.store, "resolve proposal", func(tx Tx) error {
		settings, err := readSettings(tx)
		if err != nil {
			return err
		}
		if strings.TrimSpace(p.Currency) == "" {
			t.Currency = settings.MainCurrency
		} else if t.Currency, err = ParseCurrency(p.Currency); err != nil {
			return err
		}
		accounts, err := tx.Accounts()
		if err != nil {
			return err
		}

		if t.Type == Transfer {
			from := firstNonEmpty(p.FromAccount, p.Account)
			if from == "" {
				return mismatchf("transfer requires a source account")
			}
			if p.ToAccount == "" {
				return mismatchf("transfer requires a destination account")
			}
			src, ok := findAccount(accounts, from)
			if !ok {
				return &NotFoundError{Kind: KindAccount, ID: from}
			}
			dst, ok := findAccount(accounts, p.ToAccount)
			if !ok {
				return &NotFoundError{Kind: KindDestinationAccount, ID: p.ToAccount}
			}
			t.AccountID, t.ToAccountID = src.ID, dst.ID
			return nil
		}

		name := firstNonEmpty(p.Account, p.FromAccount)
		if name == "" {
			return invalidf("%s transaction requires an account", t.Type)
		}
		if strings.TrimSpace(p.Category) == "" {
			return mismatchf("%s transaction requires a category", t.Type)
		}
		a, ok := findAccount(accounts, name)
		if !ok {
			return &NotFoundError{Kind: KindAccount, ID: name}
		}
		categories, err := tx.Categories()
		if err != nil {
			return err
		}
		c, ok := findCategory(categories, t.Type, p.Category)
		if !ok {
			return &NotFoundError{Kind: KindCategory, ID: p.Category}
		}
		t.AccountID, t.CategoryID = a.ID, c.ID
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Record resolves a proposal and creates the resulting transaction.
func (e *Engine) Record(ctx context.Context, p ProposedTransaction) (Transaction, error) {
	t, err := e.Resolve(ctx, p)
	if err != nil {
		return Transaction{}, err
	}
	return e.CreateTransaction(ctx, t)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
