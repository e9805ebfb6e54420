package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/ledger/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `lgr topic [<topic>...]

  Show documentation for the given topics, or the list of topics. Use '*' for all of them.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{docs.Index}
	}

	doc, err := docs.GetTopics(topics...)
	var unknown *docs.UnknownTopicError
	if errors.As(err, &unknown) {
		fmt.Fprintf(stderr, "Unknown topic %q. Available topics:\n", unknown.Topic)
		for _, t := range unknown.Available {
			fmt.Fprintf(stderr, "  %s\n", t)
		}
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error reading doc: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(doc)

	return subcommands.ExitSuccess
}
