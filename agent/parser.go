package agent

import (
	"context"
	"fmt"

	"github.com/etnz/ledger"
	"google.golang.org/genai"
)

const parserInstruction = `
You read one sentence in which the user describes a money movement, and you answer with a single
JSON object and nothing else:

{"type": ..., "amount": ..., "currency": ..., "category": ..., "account": ..., "fromAccount": ..., "toAccount": ..., "note": ...}

- type is "income", "expense" or "transfer".
- amount is a positive number without thousands separators.
- currency is an ISO 4217 code such as "USD" or "PKR".
- category is the name of an existing category of that type, for income and expense only.
- account is the name of the account credited by an income or debited by an expense.
- fromAccount and toAccount are the accounts of a transfer.
- note is a short description, or null.

Use the Accounts and Categories tools to learn the exact names the user has.
Copy names exactly as the tools list them.
Set a field to null when the sentence does not say it. Never guess an account, a category or an amount.
`

// Parser turns a sentence into a proposed transaction using a language model.
type Parser struct {
	expert *Expert
}

// NewParser creates a parser running on model. Its tools read names from dir.
func NewParser(model string, dir Directory) *Parser {
	functions := []*Func{AccountsFunc(dir), CategoriesFunc(dir)}
	return &Parser{expert: &Expert{
		Name:      "Parser",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0),
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(functions)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: parserInstruction}}},
		},
		Library: NewLibrary(functions),
	}}
}

// Start opens the chat session with the model.
func (p *Parser) Start(ctx context.Context, client *genai.Client) error {
	return p.expert.Start(ctx, client)
}

// Parse asks the model for the transaction described in text.
func (p *Parser) Parse(ctx context.Context, text string) (ledger.ProposedTransaction, error) {
	content, err := p.expert.Ask(ctx, &genai.Part{Text: text})
	if err != nil {
		return ledger.ProposedTransaction{}, fmt.Errorf("cannot parse %q: %w", text, err)
	}
	return DecodeProposal(Text(content))
}
