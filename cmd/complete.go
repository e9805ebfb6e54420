package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the lgr command line.
func Completion() *complete.Command {
	c := &complete.Command{
		Sub: make(map[string]*complete.Command),
		Flags: map[string]complete.Predictor{
			"db":    predict.Files("*.db"),
			"env":   predict.Files("*"),
			"debug": predict.Nothing,
		},
	}
	for _, g := range Commands {
		for _, cmd := range g.Commands {
			fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
			cmd.SetFlags(fs)
			flags := make(map[string]complete.Predictor)
			fs.VisitAll(func(f *flag.Flag) { flags[f.Name] = flagPredictor(cmd.Name(), f) })
			c.Sub[cmd.Name()] = &complete.Command{Flags: flags, Args: argPredictor(cmd.Name())}
		}
	}
	return c
}

func flagPredictor(command string, f *flag.Flag) complete.Predictor {
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch f.Name {
	case "cur", "currency":
		var set predict.Set
		for _, c := range ledger.Currencies() {
			set = append(set, string(c))
		}
		return set
	case "p":
		return predict.Set{"day", "week", "month", "quarter", "year"}
	case "f":
		return predict.Files("*.yaml")
	case "type":
		switch {
		case strings.HasSuffix(command, "-account"):
			return predict.Set{string(ledger.Bank), string(ledger.Cash), string(ledger.Investment)}
		case command == "edit-tx":
			return predict.Set{"income", "expense", "transfer"}
		default:
			return predict.Set{"income", "expense"}
		}
	}
	return predict.Something
}

func argPredictor(command string) complete.Predictor {
	if command != "topic" {
		return nil
	}
	topics, err := docs.GetAllTopics()
	if err != nil {
		return nil
	}
	return predict.Set(append(topics, "*"))
}
