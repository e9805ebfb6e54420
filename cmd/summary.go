package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	date string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the budget month summary" }
func (*summaryCmd) Usage() string {
	return `lgr summary [-d <date>]

  Displays the net worth, the income, the expenses and the fees of the budget month
  containing the date, in the main currency. Budget months start on the month start day of
  the settings.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date in the budget month to summarize.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		s, err := e.Summary(ctx, on)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Summary(s))
		return nil
	})
}

type auditCmd struct{}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "check balances against the transactions" }
func (*auditCmd) Usage() string {
	return `lgr audit

  Recomputes every balance from its initial balance and the transactions, and reports the
  accounts that disagree. It exits with a failure status when some do.
`
}

func (*auditCmd) SetFlags(*flag.FlagSet) {}

func (*auditCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var found []ledger.Discrepancy
	status := withEngine(ctx, func(ctx context.Context, e *ledger.Engine) (err error) {
		found, err = e.Audit(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Audit(found))
		return nil
	})
	if status == subcommands.ExitSuccess && len(found) > 0 {
		return subcommands.ExitFailure
	}
	return status
}
