// Package renderer renders ledger records as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/ledger"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

// Names resolves account and category IDs to their names.
type Names struct {
	accounts   map[string]string
	categories map[string]string
}

// NewNames indexes the given accounts and categories.
func NewNames(accounts []ledger.Account, categories []ledger.Category) Names {
	n := Names{accounts: make(map[string]string), categories: make(map[string]string)}
	for _, a := range accounts {
		n.accounts[a.ID] = a.Name
	}
	for _, c := range categories {
		n.categories[c.ID] = c.Name
	}
	return n
}

// Account returns the name of the account id, or the id itself when unknown.
func (n Names) Account(id string) string {
	if name, ok := n.accounts[id]; ok {
		return name
	}
	return id
}

// Category returns the name of the category id, "-" when there is none.
func (n Names) Category(id string) string {
	if id == "" {
		return "-"
	}
	if name, ok := n.categories[id]; ok {
		return name
	}
	return id
}

func (n Names) funcs() template.FuncMap {
	return template.FuncMap{
		"account":  n.Account,
		"category": n.Category,
		"txaccounts": func(t ledger.Transaction) string {
			if t.Type == ledger.Transfer {
				return n.Account(t.AccountID) + " → " + n.Account(t.ToAccountID)
			}
			return n.Account(t.AccountID)
		},
	}
}

var baseFuncs = template.FuncMap{
	"money":      func(v decimal.Decimal, c ledger.Currency) string { return ledger.M(v, c).String() },
	"signed":     func(v decimal.Decimal, c ledger.Currency) string { return ledger.M(v, c).SignedString() },
	"shortid":    shortID,
	"currencies": ledger.Currencies,
	"base":       func() ledger.Currency { return ledger.BaseCurrency },
}

// shortID keeps the first block of a UUID, enough to tell records apart on screen.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// Accounts renders the account list. When all accounts share a currency the total is shown.
func Accounts(list []ledger.Account) string {
	data := struct {
		Accounts  []ledger.Account
		ShowTotal bool
		Total     ledger.Money
	}{Accounts: list}
	if len(list) > 1 {
		data.ShowTotal = true
		data.Total = ledger.M(0, list[0].Currency)
		for _, a := range list {
			if a.Currency != list[0].Currency {
				data.ShowTotal = false
				break
			}
			data.Total = data.Total.Add(a.BalanceMoney())
		}
	}
	return renderTemplate("accounts", "accounts.md", nil, nil, data)
}

// Categories renders the categories grouped by type.
func Categories(list []ledger.Category) string {
	type group struct {
		Type       ledger.TransactionType
		Categories []ledger.Category
	}
	groups := []group{{Type: ledger.Income}, {Type: ledger.Expense}}
	for _, c := range list {
		for i := range groups {
			if groups[i].Type == c.Type {
				groups[i].Categories = append(groups[i].Categories, c)
			}
		}
	}
	return renderTemplate("categories", "categories.md", nil, nil, struct{ Groups []group }{groups})
}

// Transactions renders a transaction list as a table.
func Transactions(list []ledger.Transaction, names Names) string {
	partials := map[string]string{"transaction_row": "transaction_row.md"}
	data := struct{ Transactions []ledger.Transaction }{list}
	return renderTemplate("transactions", "transactions.md", partials, names.funcs(), data)
}

// Proposal renders a transaction about to be recorded.
func Proposal(t ledger.Transaction, names Names) string {
	return renderTemplate("proposal", "proposal.md", nil, names.funcs(), t)
}

// Summary renders a monthly summary.
func Summary(s ledger.Summary) string {
	return renderTemplate("summary", "summary.md", nil, nil, s)
}

// Audit renders the discrepancies found by an audit.
func Audit(found []ledger.Discrepancy) string {
	return renderTemplate("audit", "audit.md", nil, nil, found)
}

// Settings renders the user settings and the rates they put in effect.
func Settings(s ledger.UserSettings) string {
	return renderTemplate("settings", "settings.md", nil, nil, s)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, funcs template.FuncMap, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl := template.New(templateName).Funcs(baseFuncs)
	if funcs != nil {
		tmpl = tmpl.Funcs(funcs)
	} else {
		// templates referencing names still parse, they show raw IDs.
		tmpl = tmpl.Funcs(Names{}.funcs())
	}
	if tmpl, err = tmpl.Parse(string(mainContent)); err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
