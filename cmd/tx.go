package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	account  string
	category string
	period   string
	start    string
	date     string
	limit    int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions, most recent first" }
func (*txCmd) Usage() string {
	return `lgr tx [-a <account>] [-c <category>] [-p <period> | -s <start_date>] [-d <end_date>] [-n <limit>]

  Lists transactions from the ledger, most recent first, with options for filtering and
  limiting the output.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Only transactions from or to this account.")
	f.StringVar(&c.category, "c", "", "Only transactions in this category.")
	f.StringVar(&c.period, "p", "", "Predefined period ending on -d (day, week, month, quarter, year).")
	f.StringVar(&c.start, "s", "", "The start date for a custom range. Overrides -p.")
	f.StringVar(&c.date, "d", "", "The end date for the range. Defaults to today.")
	f.IntVar(&c.limit, "n", 0, "Show only the N most recent transactions.")
}

// dateRange returns the range selected by the flags, ok is false when none is.
func (c *txCmd) dateRange() (r date.Range, ok bool, err error) {
	if c.start == "" && c.date == "" && c.period == "" {
		return r, false, nil
	}
	end := date.Today()
	if c.date != "" {
		if end, err = date.Parse(c.date); err != nil {
			return r, false, fmt.Errorf("cannot parse end date: %w", err)
		}
	}
	if c.start != "" {
		start, err := date.Parse(c.start)
		if err != nil {
			return r, false, fmt.Errorf("cannot parse start date: %w", err)
		}
		return date.Range{From: start, To: end}, true, nil
	}
	if c.period == "" {
		return date.Range{To: end}, true, nil
	}
	p, err := date.ParsePeriod(c.period)
	if err != nil {
		return r, false, err
	}
	return date.NewRange(end, p), true, nil
}

func (c *txCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, ranged, err := c.dateRange()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		filter := ledger.Filter{Limit: c.limit}
		if ranged {
			if !r.From.IsZero() {
				filter.Since = r.From.In(time.Local)
			}
			filter.Until = r.To.Add(1).In(time.Local)
		}
		if c.account != "" {
			a, err := e.AccountByName(ctx, c.account)
			if err != nil {
				return err
			}
			filter.AccountID = a.ID
		}
		if c.category != "" {
			cat, err := categoryByAnyType(ctx, e, c.category)
			if err != nil {
				return err
			}
			filter.CategoryID = cat.ID
		}
		list, err := e.Transactions(ctx, filter)
		if err != nil {
			return err
		}
		n, err := names(ctx, e)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Transactions(list, n))
		return nil
	})
}

// categoryByAnyType finds an expense category, or else an income category, by name.
func categoryByAnyType(ctx context.Context, e *ledger.Engine, name string) (ledger.Category, error) {
	c, err := e.CategoryByName(ctx, ledger.Expense, name)
	if err == nil {
		return c, nil
	}
	return e.CategoryByName(ctx, ledger.Income, name)
}

type editTxCmd struct {
	typ      string
	amount   string
	account  string
	category string
	to       string
	currency string
	fee      string
	date     string
	note     string
}

func (*editTxCmd) Name() string     { return "edit-tx" }
func (*editTxCmd) Synopsis() string { return "change a transaction" }
func (*editTxCmd) Usage() string {
	return `lgr edit-tx [-type <type>] [-amount <amount>] [-a <account>] [-c <category>] [-to <account>] [-cur <currency>] [-fee <amount>] [-d <date>] [-note <text>] <id>

  Changes a transaction, identified by its id or an unambiguous prefix of it. Only the flags
  given change. Balances are updated as if the old transaction was deleted and the new one
  created.
`
}

func (c *editTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "New type (income, expense, transfer).")
	f.StringVar(&c.amount, "amount", "", "New amount.")
	f.StringVar(&c.account, "a", "", "New account name (the source of a transfer).")
	f.StringVar(&c.category, "c", "", "New category name.")
	f.StringVar(&c.to, "to", "", "New destination account name.")
	f.StringVar(&c.currency, "cur", "", "New currency.")
	f.StringVar(&c.fee, "fee", "", "New fee, 0 to remove it.")
	f.StringVar(&c.date, "d", "", "New date.")
	f.StringVar(&c.note, "note", "", "New note.")
}

func (c *editTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: expected exactly one transaction id")
		return subcommands.ExitUsageError
	}
	set := visited(f)
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		old, err := findTransaction(ctx, e, f.Arg(0))
		if err != nil {
			return err
		}
		next, err := c.apply(ctx, e, set, old)
		if err != nil {
			return err
		}
		if next, err = e.UpdateTransaction(ctx, old.ID, next); err != nil {
			return err
		}
		n, err := names(ctx, e)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Proposal(next, n))
		fmt.Fprintf(stdout, "Updated %s.\n", next.ID)
		return nil
	})
}

// apply returns old changed by the flags in set.
func (c *editTxCmd) apply(ctx context.Context, e *ledger.Engine, set map[string]bool, old ledger.Transaction) (t ledger.Transaction, err error) {
	t = old
	if set["type"] {
		if t.Type, err = ledger.ParseTransactionType(c.typ); err != nil {
			return t, err
		}
		if t.Type == ledger.Transfer {
			t.CategoryID = ""
		} else {
			t.ToAccountID = ""
		}
		if t.Type != old.Type && old.Type != ledger.Transfer && t.Type != ledger.Transfer && !set["c"] {
			return t, fmt.Errorf("changing the type to %s requires a new category (-c)", t.Type)
		}
	}
	if set["amount"] {
		if t.Amount, err = parseAmount(c.amount); err != nil {
			return t, err
		}
	}
	if set["fee"] {
		if t.Fee, err = parseAmount(c.fee); err != nil {
			return t, err
		}
	}
	if set["cur"] {
		if t.Currency, err = ledger.ParseCurrency(c.currency); err != nil {
			return t, err
		}
	}
	if set["a"] {
		a, err := e.AccountByName(ctx, c.account)
		if err != nil {
			return t, err
		}
		t.AccountID = a.ID
	}
	if set["to"] {
		a, err := e.AccountByName(ctx, c.to)
		if err != nil {
			return t, &ledger.NotFoundError{Kind: ledger.KindDestinationAccount, ID: c.to}
		}
		t.ToAccountID = a.ID
	}
	if set["c"] {
		cat, err := e.CategoryByName(ctx, t.Type, c.category)
		if err != nil {
			return t, err
		}
		t.CategoryID = cat.ID
	}
	if set["d"] {
		if t.Date, err = parseDay(c.date); err != nil {
			return t, err
		}
	}
	if set["note"] {
		t.Note = strings.TrimSpace(c.note)
	}
	return t, nil
}

type deleteTxCmd struct{}

func (*deleteTxCmd) Name() string     { return "delete-tx" }
func (*deleteTxCmd) Synopsis() string { return "delete a transaction" }
func (*deleteTxCmd) Usage() string {
	return `lgr delete-tx <id>

  Deletes a transaction, identified by its id or an unambiguous prefix of it, and reverts its
  effect on the account balances.
`
}

func (*deleteTxCmd) SetFlags(*flag.FlagSet) {}

func (*deleteTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: expected exactly one transaction id")
		return subcommands.ExitUsageError
	}
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		t, err := findTransaction(ctx, e, f.Arg(0))
		if err != nil {
			return err
		}
		if _, err := e.DeleteTransaction(ctx, t.ID); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Deleted %s.\n", t.ID)
		return nil
	})
}
