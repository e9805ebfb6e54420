// Package cmd implements the CLI application to manage a personal ledger.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/ledger"
	"github.com/etnz/ledger/config"
	"github.com/etnz/ledger/memstore"
	"github.com/etnz/ledger/renderer"
	"github.com/etnz/ledger/sqlite"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dbPath  = flag.String("db", "", "Path to the ledger database, or :memory:. Defaults to $LEDGER_DB_PATH.")
	envFile = flag.String("env", "", "Path to a .env file to load. Defaults to .env when present.")
	debug   = flag.Bool("debug", false, "Log debug messages on stderr.")
)

// output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Commands lists the subcommands by group, in help order.
var Commands = []struct {
	Group    string
	Commands []subcommands.Command
}{
	{"accounts", []subcommands.Command{&accountsCmd{}, &addAccountCmd{}, &editAccountCmd{}, &deleteAccountCmd{}}},
	{"categories", []subcommands.Command{&categoriesCmd{}, &addCategoryCmd{}, &editCategoryCmd{}, &deleteCategoryCmd{}, &seedCmd{}}},
	{"transactions", []subcommands.Command{
		&recordCmd{typ: ledger.Income}, &recordCmd{typ: ledger.Expense}, &recordCmd{typ: ledger.Transfer},
		&editTxCmd{}, &deleteTxCmd{}, &txCmd{}, &assistCmd{},
	}},
	{"reports", []subcommands.Command{&summaryCmd{}, &auditCmd{}}},
	{"setup", []subcommands.Command{&settingsCmd{}, &topicCmd{}}},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, g := range Commands {
		for _, cmd := range g.Commands {
			c.Register(cmd, g.Group)
		}
	}
}

// loadConfig reads the environment, then applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return nil, err
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// newLogger logs warnings on stderr, or everything in debug mode.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// openEngine is the central function to open the ledger. Callers must call done when finished.
func openEngine() (e *ledger.Engine, cfg *config.Config, done func(), err error) {
	cfg, err = loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	var store ledger.Store
	if cfg.DBPath == config.MemoryDB {
		store = memstore.New()
	} else {
		s, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("cannot open ledger %q: %w", cfg.DBPath, err)
		}
		store = s
	}
	logger.Debug("ledger opened", "path", cfg.DBPath)
	done = func() {
		if err := store.Close(); err != nil {
			logger.Warn("cannot close ledger", "path", cfg.DBPath, "error", err)
		}
	}
	return ledger.New(store, ledger.WithLogger(logger)), cfg, done, nil
}

// withEngine opens the ledger, runs fn and reports its error on stderr.
func withEngine(ctx context.Context, fn func(ctx context.Context, e *ledger.Engine) error) subcommands.ExitStatus {
	e, _, done, err := openEngine()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer done()
	if err := fn(ctx, e); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown prints md on stdout, styled when stdout is a terminal.
func printMarkdown(md string) { renderMarkdown(stdout, md) }

func renderMarkdown(w io.Writer, md string) {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(w, out)
				return
			}
		}
	}
	fmt.Fprint(w, md)
	if !strings.HasSuffix(md, "\n") {
		fmt.Fprintln(w)
	}
}

// names loads the account and category names of the ledger.
func names(ctx context.Context, e *ledger.Engine) (renderer.Names, error) {
	accounts, err := e.Accounts(ctx)
	if err != nil {
		return renderer.Names{}, err
	}
	categories, err := e.Categories(ctx)
	if err != nil {
		return renderer.Names{}, err
	}
	return renderer.NewNames(accounts, categories), nil
}
