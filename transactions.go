package ledger

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of a transaction.
type TransactionType string

// Transaction types. Income and Expense are also the two category types.
const (
	Income   TransactionType = "Income"
	Expense  TransactionType = "Expense"
	Transfer TransactionType = "Transfer"
)

// ParseTransactionType parses a transaction type, case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	for _, t := range []TransactionType{Income, Expense, Transfer} {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", invalidf("unknown transaction type %q", s)
}

// Transaction moves money in, out of, or between accounts.
//
// Income and Expense transactions carry a CategoryID and no ToAccountID; Transfers carry a
// ToAccountID and no CategoryID. Fee is charged to the source account only and is zero when
// there is no fee.
type Transaction struct {
	ID          string          // ID is generated by the engine on creation.
	Type        TransactionType // Type selects how the amount affects balances.
	Amount      decimal.Decimal // Amount is always positive, expressed in Currency.
	Currency    Currency        // Currency of Amount and Fee.
	AccountID   string          // AccountID is the source account.
	ToAccountID string          // ToAccountID is the destination of a Transfer.
	CategoryID  string          // CategoryID labels Income and Expense.
	Date        time.Time       // Date is when the transaction happened.
	Note        string          // Note is free text.
	Fee         decimal.Decimal // Fee is an optional charge on the source account.
}

// Money returns the amount with its currency.
func (t Transaction) Money() Money { return M(t.Amount, t.Currency) }

// FeeMoney returns the fee with its currency.
func (t Transaction) FeeMoney() Money { return M(t.Fee, t.Currency) }

// Touches reports whether the transaction affects the given account.
func (t Transaction) Touches(accountID string) bool {
	return t.AccountID == accountID || (t.Type == Transfer && t.ToAccountID == accountID)
}

// check validates the fields of t that do not depend on other records.
func (t Transaction) check() error {
	switch t.Type {
	case Income, Expense:
		if t.CategoryID == "" {
			return mismatchf("%s transaction requires a category", t.Type)
		}
		if t.ToAccountID != "" {
			return mismatchf("%s transaction cannot have a destination account", t.Type)
		}
	case Transfer:
		if t.ToAccountID == "" {
			return mismatchf("transfer requires a destination account")
		}
		if t.CategoryID != "" {
			return mismatchf("transfer cannot have a category")
		}
		if t.ToAccountID == t.AccountID {
			return mismatchf("transfer source and destination must differ")
		}
	default:
		return invalidf("unknown transaction type %q", t.Type)
	}
	if t.AccountID == "" {
		return invalidf("%s transaction requires an account", t.Type)
	}
	if !t.Amount.IsPositive() {
		return invalidAmountf("amount must be positive, got %s", t.Amount)
	}
	if t.Fee.IsNegative() {
		return invalidAmountf("fee cannot be negative, got %s", t.Fee)
	}
	if !t.Currency.Valid() {
		return invalidf("unsupported currency %q", t.Currency)
	}
	return nil
}

// Equal reports whether both transactions hold the same values.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID && t.Type == o.Type && t.Amount.Equal(o.Amount) && t.Currency == o.Currency &&
		t.AccountID == o.AccountID && t.ToAccountID == o.ToAccountID && t.CategoryID == o.CategoryID &&
		t.Date.Equal(o.Date) && t.Note == o.Note && t.Fee.Equal(o.Fee)
}

// MarshalJSON writes the transaction with a stable field order, omitting absent fields.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("type", t.Type)
	w.Append("date", t.Date.UTC().Format(time.RFC3339Nano))
	w.Append("amount", t.Amount)
	w.Append("currency", t.Currency)
	w.Append("accountId", t.AccountID)
	w.Optional("toAccountId", t.ToAccountID)
	w.Optional("categoryId", t.CategoryID)
	w.Optional("fee", t.Fee)
	w.Optional("note", t.Note)
	return w.MarshalJSON()
}

// UnmarshalJSON reads what MarshalJSON writes.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Currency    Currency        `json:"currency"`
		AccountID   string          `json:"accountId"`
		ToAccountID string          `json:"toAccountId"`
		CategoryID  string          `json:"categoryId"`
		Date        time.Time       `json:"date"`
		Note        string          `json:"note"`
		Fee         decimal.Decimal `json:"fee"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*t = Transaction(temp)
	return nil
}

// Filter selects transactions in Tx.Transactions. Zero fields do not filter.
type Filter struct {
	AccountID  string    // source or destination
	CategoryID string    //
	Since      time.Time // inclusive
	Until      time.Time // exclusive
	Limit      int       // most recent first
}

// Match reports whether t passes the filter, ignoring Limit.
func (f Filter) Match(t Transaction) bool {
	if f.AccountID != "" && !t.Touches(f.AccountID) {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if !f.Since.IsZero() && t.Date.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !t.Date.Before(f.Until) {
		return false
	}
	return true
}
