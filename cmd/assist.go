package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/ledger/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	model string
}

// Name returns the name of the command.
func (*assistCmd) Name() string { return "assist" }

// Synopsis returns a short-one line synopsis of the command.
func (*assistCmd) Synopsis() string { return "record transactions described in plain words" }

// Usage returns a long-form usage string.
func (*assistCmd) Usage() string {
	return `lgr assist [-model <model>] [sentence]

  Starts an interactive session: each sentence is turned into a transaction, shown, and
  recorded once confirmed. Requires GEMINI_API_KEY.
`
}

// SetFlags sets the flags for the command.
func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", "", "Gemini model. Defaults to $LEDGER_MODEL.")
}

// Execute executes the command.
func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}

	e, cfg, done, err := openEngine()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer done()
	if err := cfg.RequireAPIKey(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	model := cfg.Model
	if c.model != "" {
		model = c.model
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		fmt.Fprintln(stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	parser := agent.NewParser(model, e)
	if err := parser.Start(ctx, client); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	a := agent.New(stdout, os.Stdin, parser, e)
	a.Markdown = renderMarkdown
	if err := a.Run(ctx, prompts...); err != nil {
		fmt.Fprintln(stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
