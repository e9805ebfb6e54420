package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/renderer"
)

// TextParser extracts a proposed transaction from a sentence.
type TextParser interface {
	Parse(ctx context.Context, text string) (ledger.ProposedTransaction, error)
}

// Recorder resolves and records proposals. *ledger.Engine is a Recorder.
type Recorder interface {
	Directory
	Resolve(ctx context.Context, p ledger.ProposedTransaction) (ledger.Transaction, error)
	CreateTransaction(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error)
}

// Assistant is the interactive session recording transactions described in plain words.
// Every proposal is shown to the user and recorded only once confirmed.
type Assistant struct {
	w      io.Writer
	r      *bufio.Reader
	Parser TextParser
	Ledger Recorder
	// Markdown prints a markdown document to the output, plain text when nil.
	Markdown func(w io.Writer, md string)
}

// New creates an Assistant writing to w and reading user input from r.
func New(w io.Writer, r io.Reader, parser TextParser, l Recorder) *Assistant {
	return &Assistant{w: w, r: bufio.NewReader(r), Parser: parser, Ledger: l}
}

const prompt = "assist> "

// Run starts the interactive REPL session. Prompts are handled first, as if the user typed
// them. It returns nil when the user says bye or the input ends.
func (a *Assistant) Run(ctx context.Context, prompts ...string) error {
	fmt.Fprintln(a.w, "Describe a transaction, for instance \"paid 2500 for groceries from cash\". Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			fmt.Fprintln(a.w, input)
		} else {
			line, err := a.readLine()
			if err == io.EOF {
				fmt.Fprintln(a.w)
				return nil
			}
			if err != nil {
				return err
			}
			input = line
		}

		input = NormalizeText(input)
		switch {
		case input == "":
			continue
		case input == "bye":
			return nil
		}
		if err := a.handle(ctx, input); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(a.w, "Error:", err)
		}
	}
}

// handle proposes the transaction described by input and records it once confirmed.
func (a *Assistant) handle(ctx context.Context, input string) error {
	p, err := a.Parser.Parse(ctx, input)
	if err != nil {
		return err
	}
	t, err := a.Ledger.Resolve(ctx, p)
	if err != nil {
		return err
	}
	names, err := a.names(ctx)
	if err != nil {
		return err
	}
	a.print(renderer.Proposal(t, names))

	fmt.Fprint(a.w, "Record it? [y/N] ")
	answer, err := a.readLine()
	if err != nil && err != io.EOF {
		return err
	}
	if answer = strings.ToLower(strings.TrimSpace(answer)); answer != "y" && answer != "yes" {
		fmt.Fprintln(a.w, "Discarded.")
		return nil
	}
	t, err = a.Ledger.CreateTransaction(ctx, t)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.w, "Recorded %s.\n", t.ID)
	return nil
}

func (a *Assistant) names(ctx context.Context) (renderer.Names, error) {
	accounts, err := a.Ledger.Accounts(ctx)
	if err != nil {
		return renderer.Names{}, err
	}
	categories, err := a.Ledger.Categories(ctx)
	if err != nil {
		return renderer.Names{}, err
	}
	return renderer.NewNames(accounts, categories), nil
}

func (a *Assistant) print(md string) {
	if a.Markdown != nil {
		a.Markdown(a.w, md)
		return
	}
	fmt.Fprintln(a.w, md)
}

// readLine returns the next line without its line ending. A last line without ending is
// returned with a nil error.
func (a *Assistant) readLine() (string, error) {
	line, err := a.r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}
