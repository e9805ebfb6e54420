package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/ledger"
	"github.com/shopspring/decimal"
)

// dateFormat is fixed width so that dates sort as text.
const dateFormat = "2006-01-02T15:04:05.000000000Z"

func formatDate(t time.Time) string { return t.UTC().Format(dateFormat) }

// recordTx is the ledger.Tx of one database transaction.
type recordTx struct {
	ctx context.Context
	tx  *sql.Tx
}

type scanner interface {
	Scan(dest ...any) error
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", kind, id, ledger.ErrNotFound)
	}
	return fmt.Errorf("failed to read %s %q: %w", kind, id, err)
}

// mustAffect turns a delete that matched no row into a not found error.
func mustAffect(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s %q: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, ledger.ErrNotFound)
	}
	return nil
}

// accounts

const accountColumns = `id, name, type, currency, balance, initial_balance, color, icon`

func scanAccount(row scanner) (a ledger.Account, err error) {
	var balance, initial string
	if err = row.Scan(&a.ID, &a.Name, &a.Type, &a.Currency, &balance, &initial, &a.Color, &a.Icon); err != nil {
		return a, err
	}
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return a, fmt.Errorf("invalid balance %q for account %q: %w", balance, a.ID, err)
	}
	if a.InitialBalance, err = decimal.NewFromString(initial); err != nil {
		return a, fmt.Errorf("invalid initial balance %q for account %q: %w", initial, a.ID, err)
	}
	return a, nil
}

func (r *recordTx) Account(id string) (ledger.Account, error) {
	a, err := scanAccount(r.tx.QueryRowContext(r.ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if err != nil {
		return a, notFound("account", id, err)
	}
	return a, nil
}

func (r *recordTx) Accounts() ([]ledger.Account, error) {
	rows, err := r.tx.QueryContext(r.ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()
	var list []ledger.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *recordTx) PutAccount(a ledger.Account) error {
	_, err := r.tx.ExecContext(r.ctx, `
		INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, type = excluded.type, currency = excluded.currency,
			balance = excluded.balance, initial_balance = excluded.initial_balance,
			color = excluded.color, icon = excluded.icon`,
		a.ID, a.Name, a.Type, a.Currency, a.Balance.String(), a.InitialBalance.String(), a.Color, a.Icon)
	if err != nil {
		return fmt.Errorf("failed to write account %q: %w", a.ID, err)
	}
	return nil
}

func (r *recordTx) DeleteAccount(id string) error {
	res, err := r.tx.ExecContext(r.ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account %q: %w", id, err)
	}
	return mustAffect(res, "account", id)
}

// categories

const categoryColumns = `id, name, type, color, icon`

func scanCategory(row scanner) (c ledger.Category, err error) {
	err = row.Scan(&c.ID, &c.Name, &c.Type, &c.Color, &c.Icon)
	return c, err
}

func (r *recordTx) Category(id string) (ledger.Category, error) {
	c, err := scanCategory(r.tx.QueryRowContext(r.ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err != nil {
		return c, notFound("category", id, err)
	}
	return c, nil
}

func (r *recordTx) Categories() ([]ledger.Category, error) {
	rows, err := r.tx.QueryContext(r.ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY type, name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()
	var list []ledger.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *recordTx) PutCategory(c ledger.Category) error {
	_, err := r.tx.ExecContext(r.ctx, `
		INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, type = excluded.type, color = excluded.color, icon = excluded.icon`,
		c.ID, c.Name, c.Type, c.Color, c.Icon)
	if err != nil {
		return fmt.Errorf("failed to write category %q: %w", c.ID, err)
	}
	return nil
}

func (r *recordTx) DeleteCategory(id string) error {
	res, err := r.tx.ExecContext(r.ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %q: %w", id, err)
	}
	return mustAffect(res, "category", id)
}

// transactions

const transactionColumns = `id, type, amount, currency, account_id, to_account_id, category_id, date, note, fee`

func scanTransaction(row scanner) (t ledger.Transaction, err error) {
	var amount, fee, date string
	if err = row.Scan(&t.ID, &t.Type, &amount, &t.Currency, &t.AccountID, &t.ToAccountID, &t.CategoryID, &date, &t.Note, &fee); err != nil {
		return t, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return t, fmt.Errorf("invalid amount %q for transaction %q: %w", amount, t.ID, err)
	}
	if t.Fee, err = decimal.NewFromString(fee); err != nil {
		return t, fmt.Errorf("invalid fee %q for transaction %q: %w", fee, t.ID, err)
	}
	if t.Date, err = time.Parse(dateFormat, date); err != nil {
		return t, fmt.Errorf("invalid date %q for transaction %q: %w", date, t.ID, err)
	}
	// Dates are stored in UTC and read back in local time, where the CLI records days.
	t.Date = t.Date.In(time.Local)
	return t, nil
}

func (r *recordTx) Transaction(id string) (ledger.Transaction, error) {
	t, err := scanTransaction(r.tx.QueryRowContext(r.ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err != nil {
		return t, notFound("transaction", id, err)
	}
	return t, nil
}

func (r *recordTx) Transactions(f ledger.Filter) ([]ledger.Transaction, error) {
	var where []string
	var args []any
	if f.AccountID != "" {
		where = append(where, `(account_id = ? OR to_account_id = ?)`)
		args = append(args, f.AccountID, f.AccountID)
	}
	if f.CategoryID != "" {
		where = append(where, `category_id = ?`)
		args = append(args, f.CategoryID)
	}
	if !f.Since.IsZero() {
		where = append(where, `date >= ?`)
		args = append(args, formatDate(f.Since))
	}
	if !f.Until.IsZero() {
		where = append(where, `date < ?`)
		args = append(args, formatDate(f.Until))
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY date DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.tx.QueryContext(r.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	var list []ledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *recordTx) PutTransaction(t ledger.Transaction) error {
	_, err := r.tx.ExecContext(r.ctx, `
		INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type, amount = excluded.amount, currency = excluded.currency,
			account_id = excluded.account_id, to_account_id = excluded.to_account_id,
			category_id = excluded.category_id, date = excluded.date, note = excluded.note,
			fee = excluded.fee`,
		t.ID, t.Type, t.Amount.String(), t.Currency, t.AccountID, t.ToAccountID, t.CategoryID,
		formatDate(t.Date), t.Note, t.Fee.String())
	if err != nil {
		return fmt.Errorf("failed to write transaction %q: %w", t.ID, err)
	}
	return nil
}

func (r *recordTx) DeleteTransaction(id string) error {
	res, err := r.tx.ExecContext(r.ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %q: %w", id, err)
	}
	return mustAffect(res, "transaction", id)
}

// settings

func (r *recordTx) Setting(key string) (value string, err error) {
	err = r.tx.QueryRowContext(r.ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", notFound("setting", key, err)
	}
	return value, nil
}

func (r *recordTx) PutSetting(key, value string) error {
	_, err := r.tx.ExecContext(r.ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}
