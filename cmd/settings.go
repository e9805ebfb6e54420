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

// rateFlags collects repeated -rate CUR=value flags.
type rateFlags map[string]string

func (r rateFlags) String() string {
	var parts []string
	for c, v := range r {
		parts = append(parts, c+"="+v)
	}
	return strings.Join(parts, ",")
}

func (r rateFlags) Set(s string) error {
	cur, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("rate must be CUR=value, got %q", s)
	}
	r[strings.ToUpper(strings.TrimSpace(cur))] = strings.TrimSpace(value)
	return nil
}

type settingsCmd struct {
	currency    string
	monthStart  int
	customRates bool
	rates       rateFlags
}

func (*settingsCmd) Name() string     { return "settings" }
func (*settingsCmd) Synopsis() string { return "show or change the settings" }
func (*settingsCmd) Usage() string {
	return `lgr settings [-currency <currency>] [-month-start <day>] [-custom-rates] [-rate CUR=value]...

  Without flags, shows the settings. Rates are how many PKR one unit of the currency is
  worth. Custom rates replace the built-in ones when -custom-rates is true.
`
}

func (c *settingsCmd) SetFlags(f *flag.FlagSet) {
	c.rates = rateFlags{}
	f.StringVar(&c.currency, "currency", "", "Main currency.")
	f.IntVar(&c.monthStart, "month-start", 0, "Day of the month budget months start on (1-31).")
	f.BoolVar(&c.customRates, "custom-rates", false, "Use the custom rates.")
	f.Var(c.rates, "rate", "Custom rate as CUR=value, repeatable.")
}

func (c *settingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := visited(f)
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		s, err := e.Settings(ctx)
		if err != nil {
			return err
		}
		if len(set) > 0 {
			if s, err = c.apply(s, set); err != nil {
				return err
			}
			if err := e.SaveSettings(ctx, s); err != nil {
				return err
			}
		}
		printMarkdown(renderer.Settings(s))
		return nil
	})
}

// apply returns s changed by the flags in set.
func (c *settingsCmd) apply(s ledger.UserSettings, set map[string]bool) (ledger.UserSettings, error) {
	var err error
	if set["currency"] {
		if s.MainCurrency, err = ledger.ParseCurrency(c.currency); err != nil {
			return s, err
		}
	}
	if set["month-start"] {
		s.MonthStartDay = c.monthStart
	}
	if set["custom-rates"] {
		s.UseCustomRates = c.customRates
	}
	if len(c.rates) > 0 {
		rates := make(ledger.Rates, len(s.CustomRates)+len(c.rates))
		for cur, r := range s.CustomRates {
			rates[cur] = r
		}
		for name, value := range c.rates {
			cur, err := ledger.ParseCurrency(name)
			if err != nil {
				return s, err
			}
			if rates[cur], err = parseAmount(value); err != nil {
				return s, err
			}
		}
		s.CustomRates = rates
	}
	return s, nil
}
