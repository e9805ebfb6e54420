package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

// recordCmd records an income, an expense or a transfer, depending on typ.
type recordCmd struct {
	typ      ledger.TransactionType
	account  string
	category string
	to       string
	currency string
	fee      string
	date     string
	note     string
}

func (c *recordCmd) Name() string { return strings.ToLower(string(c.typ)) }
func (c *recordCmd) Synopsis() string {
	switch c.typ {
	case ledger.Income:
		return "record money received into an account"
	case ledger.Expense:
		return "record money spent from an account"
	default:
		return "record money moved between two accounts"
	}
}
func (c *recordCmd) Usage() string {
	if c.typ == ledger.Transfer {
		return `lgr transfer -a <from> -to <to> [-cur <currency>] [-fee <amount>] [-d <date>] [-note <text>] <amount>

  Moves money between two accounts. Amounts in another currency are converted to the
  currency of each account. The fee is charged to the source account only.
`
	}
	return fmt.Sprintf(`lgr %s -a <account> -c <category> [-cur <currency>] [-fee <amount>] [-d <date>] [-note <text>] <amount>

  Records an %s. The amount is converted to the account currency when -cur differs.
  The fee is always charged to the account.
`, c.Name(), c.Name())
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account name (the source of a transfer).")
	if c.typ == ledger.Transfer {
		f.StringVar(&c.to, "to", "", "Destination account name.")
	} else {
		f.StringVar(&c.category, "c", "", "Category name.")
	}
	f.StringVar(&c.currency, "cur", "", "Currency of the amount. Defaults to the main currency.")
	f.StringVar(&c.fee, "fee", "", "Fee charged to the account, in the same currency.")
	f.StringVar(&c.date, "d", "", "Transaction date. Defaults to now.")
	f.StringVar(&c.note, "note", "", "Free text note.")
}

func (c *recordCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: expected exactly one amount")
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount(f.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	when, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintln(stderr, "Error parsing date:", err)
		return subcommands.ExitUsageError
	}
	p := ledger.ProposedTransaction{
		Type:     string(c.typ),
		Amount:   &amount,
		Currency: c.currency,
		Category: c.category,
		Note:     c.note,
	}
	if c.typ == ledger.Transfer {
		p.FromAccount, p.ToAccount = c.account, c.to
	} else {
		p.Account = c.account
	}

	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		t, err := e.Resolve(ctx, p)
		if err != nil {
			return err
		}
		t.Date = when
		if c.fee != "" {
			if t.Fee, err = parseAmount(c.fee); err != nil {
				return err
			}
		}
		if t, err = e.CreateTransaction(ctx, t); err != nil {
			return err
		}
		n, err := names(ctx, e)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Proposal(t, n))
		fmt.Fprintf(stdout, "Recorded %s.\n", t.ID)
		return nil
	})
}
