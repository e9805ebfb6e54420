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

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts and their balances" }
func (*accountsCmd) Usage() string {
	return `lgr accounts

  Lists every account with its current balance.
`
}

func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		list, err := e.Accounts(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Accounts(list))
		return nil
	})
}

type addAccountCmd struct {
	typ      string
	currency string
	balance  string
	color    string
	icon     string
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "create an account" }
func (*addAccountCmd) Usage() string {
	return `lgr add-account [-type <type>] [-cur <currency>] [-balance <amount>] <name>

  Creates an account. Its currency and initial balance cannot change afterwards.
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", string(ledger.Bank), "Account type (Bank, Cash, Investment).")
	f.StringVar(&c.currency, "cur", "", "Account currency. Defaults to the main currency.")
	f.StringVar(&c.balance, "balance", "0", "Initial balance.")
	f.StringVar(&c.color, "color", "", "Display color.")
	f.StringVar(&c.icon, "icon", "", "Display icon.")
}

func (c *addAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.Join(f.Args(), " ")
	if name == "" {
		fmt.Fprintln(stderr, "Error: missing account name")
		return subcommands.ExitUsageError
	}
	typ, err := ledger.ParseAccountType(c.typ)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	balance, err := parseAmount(c.balance)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		cur := ledger.Currency(strings.ToUpper(c.currency))
		if c.currency == "" {
			s, err := e.Settings(ctx)
			if err != nil {
				return err
			}
			cur = s.MainCurrency
		}
		a, err := e.CreateAccount(ctx, ledger.Account{
			Name: name, Type: typ, Currency: cur, InitialBalance: balance, Color: c.color, Icon: c.icon,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Account %q created with %s.\n", a.Name, a.BalanceMoney())
		return nil
	})
}

type editAccountCmd struct {
	name  string
	typ   string
	color string
	icon  string
}

func (*editAccountCmd) Name() string     { return "edit-account" }
func (*editAccountCmd) Synopsis() string { return "rename or restyle an account" }
func (*editAccountCmd) Usage() string {
	return `lgr edit-account [-name <new name>] [-type <type>] [-color <color>] [-icon <icon>] <account>

  Changes the descriptive fields of an account. Only the flags given change.
`
}

func (c *editAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "New account name.")
	f.StringVar(&c.typ, "type", "", "New account type (Bank, Cash, Investment).")
	f.StringVar(&c.color, "color", "", "New display color.")
	f.StringVar(&c.icon, "icon", "", "New display icon.")
}

func (c *editAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref := strings.Join(f.Args(), " ")
	if ref == "" {
		fmt.Fprintln(stderr, "Error: missing account name")
		return subcommands.ExitUsageError
	}
	set := visited(f)
	var u ledger.AccountUpdate
	if set["name"] {
		u.Name = &c.name
	}
	if set["type"] {
		typ, err := ledger.ParseAccountType(c.typ)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
		u.Type = &typ
	}
	if set["color"] {
		u.Color = &c.color
	}
	if set["icon"] {
		u.Icon = &c.icon
	}
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		a, err := e.AccountByName(ctx, ref)
		if err != nil {
			return err
		}
		if a, err = e.UpdateAccount(ctx, a.ID, u); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Account %q updated.\n", a.Name)
		return nil
	})
}

type deleteAccountCmd struct {
	yes bool
}

func (*deleteAccountCmd) Name() string     { return "delete-account" }
func (*deleteAccountCmd) Synopsis() string { return "delete an account and its transactions" }
func (*deleteAccountCmd) Usage() string {
	return `lgr delete-account -yes <account>

  Deletes an account together with every transaction touching it. Transfers from or to
  other accounts are reverted on those accounts. This cannot be undone: -yes is required.
`
}

func (c *deleteAccountCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm the deletion.")
}

func (c *deleteAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref := strings.Join(f.Args(), " ")
	if ref == "" {
		fmt.Fprintln(stderr, "Error: missing account name")
		return subcommands.ExitUsageError
	}
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		a, err := e.AccountByName(ctx, ref)
		if err != nil {
			return err
		}
		if !c.yes {
			n, err := e.Transactions(ctx, ledger.Filter{AccountID: a.ID})
			if err != nil {
				return err
			}
			return fmt.Errorf("deleting %q also deletes %d transactions: run again with -yes to confirm", a.Name, len(n))
		}
		removed, err := e.DeleteAccount(ctx, a.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Account %q deleted with %d transactions.\n", a.Name, len(removed))
		return nil
	})
}
