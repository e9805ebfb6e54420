package agent

import (
	"context"
	"strings"

	"github.com/etnz/ledger"
	"google.golang.org/genai"
)

// Directory lists the names a proposal can refer to.
type Directory interface {
	Accounts(ctx context.Context) ([]ledger.Account, error)
	Categories(ctx context.Context) ([]ledger.Category, error)
}

// AccountsFunc lets the model look up the account names.
func AccountsFunc(dir Directory) *Func {
	const name = "Accounts"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Accounts lists the user's accounts, one per line, as `name (type, currency)`.",
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The account list.",
			},
		},
		Func: func(ctx context.Context, id string, _ map[string]any) *genai.FunctionResponse {
			list, err := dir.Accounts(ctx)
			if err != nil {
				return errorResponse(id, name, err.Error())
			}
			var b strings.Builder
			for _, a := range list {
				b.WriteString(a.Name + " (" + string(a.Type) + ", " + string(a.Currency) + ")\n")
			}
			return outputResponse(id, name, b.String())
		},
	}
}

// CategoriesFunc lets the model look up the category names of a transaction type.
func CategoriesFunc(dir Directory) *Func {
	const name = "Categories"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Categories lists the category names available for income or expense transactions, one per line.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"type": {
						Type:        genai.TypeString,
						Enum:        []string{"income", "expense"},
						Description: "The transaction type. Both types are listed when missing.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The category names, prefixed by their type.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			var typ ledger.TransactionType
			if v, ok := args["type"].(string); ok && v != "" {
				t, err := ledger.ParseTransactionType(v)
				if err != nil || t == ledger.Transfer {
					return errorResponse(id, name, "type must be income or expense, got "+v)
				}
				typ = t
			}
			list, err := dir.Categories(ctx)
			if err != nil {
				return errorResponse(id, name, err.Error())
			}
			var b strings.Builder
			for _, c := range list {
				if typ == "" || c.Type == typ {
					b.WriteString(strings.ToLower(string(c.Type)) + ": " + c.Name + "\n")
				}
			}
			return outputResponse(id, name, b.String())
		},
	}
}
