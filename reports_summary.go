package ledger

import (
	"cmp"
	"context"
	"slices"

	"github.com/etnz/ledger/date"
)

// CategoryTotal is the amount spent or earned in one category over a summary range.
type CategoryTotal struct {
	Category Category
	Total    Money
	Count    int
}

// Summary is an overview of the ledger for one budget month, every amount converted to the
// main currency.
type Summary struct {
	Range    date.Range
	Currency Currency
	NetWorth Money // total balance of all accounts, now
	Income   Money
	Expense  Money
	Fees     Money
	Count    int // transactions in the range

	// Expenses per category, largest first.
	ByCategory []CategoryTotal
}

// Net is the income minus the expense and fees of the range.
func (s Summary) Net() Money { return s.Income.Sub(s.Expense).Sub(s.Fees) }

// Summary reports on the budget month containing on, as set by the MonthStartDay setting.
// Transfers only count for their fees.
func (e *Engine) Summary(ctx context.Context, on date.Date) (s Summary, err error) {
	loc := e.now().Location()
	err = view(ctx, e.store, "summary", func(tx Tx) error {
		settings, err := readSettings(tx)
		if err != nil {
			return err
		}
		rates := settings.Rates()
		main := settings.MainCurrency
		s = Summary{
			Range:    date.BudgetMonth(on, settings.MonthStartDay),
			Currency: main,
			NetWorth: M(0, main),
			Income:   M(0, main),
			Expense:  M(0, main),
			Fees:     M(0, main),
		}

		accounts, err := tx.Accounts()
		if err != nil {
			return err
		}
		for _, a := range accounts {
			v, err := a.BalanceMoney().In(main, rates)
			if err != nil {
				return err
			}
			s.NetWorth = s.NetWorth.Add(v)
		}

		categories, err := tx.Categories()
		if err != nil {
			return err
		}
		byID := make(map[string]Category, len(categories))
		for _, c := range categories {
			byID[c.ID] = c
		}

		txs, err := tx.Transactions(Filter{
			Since: s.Range.From.In(loc),
			Until: s.Range.To.Add(1).In(loc),
		})
		if err != nil {
			return err
		}
		totals := make(map[string]*CategoryTotal)
		for _, t := range txs {
			s.Count++
			amount, err := t.Money().In(main, rates)
			if err != nil {
				return err
			}
			fee, err := t.FeeMoney().In(main, rates)
			if err != nil {
				return err
			}
			s.Fees = s.Fees.Add(fee)
			switch t.Type {
			case Income:
				s.Income = s.Income.Add(amount)
			case Expense:
				s.Expense = s.Expense.Add(amount)
				ct, ok := totals[t.CategoryID]
				if !ok {
					ct = &CategoryTotal{Category: byID[t.CategoryID], Total: M(0, main)}
					totals[t.CategoryID] = ct
				}
				ct.Total = ct.Total.Add(amount)
				ct.Count++
			}
		}
		for _, ct := range totals {
			s.ByCategory = append(s.ByCategory, *ct)
		}
		slices.SortFunc(s.ByCategory, func(a, b CategoryTotal) int {
			if c := b.Total.Value().Cmp(a.Total.Value()); c != 0 {
				return c
			}
			return cmp.Compare(a.Category.Name, b.Category.Name)
		})
		return nil
	})
	return s, err
}
