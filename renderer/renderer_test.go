package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// tableRows parses markdown and returns the number of body rows of each table it contains.
func tableRows(t *testing.T, md string) []int {
	t.Helper()
	source := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser().Parse(text.NewReader(source))
	var rows []int
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != extast.KindTable {
			return ast.WalkContinue, nil
		}
		count := 0
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if c.Kind() == extast.KindTableRow {
				count++
			}
		}
		rows = append(rows, count)
		return ast.WalkSkipChildren, nil
	})
	return rows
}

func assertContains(t *testing.T, md string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(md, p) {
			t.Errorf("output does not contain %q:\n%s", p, md)
		}
	}
}

func assertNoError(t *testing.T, md string) {
	t.Helper()
	if strings.HasPrefix(md, "error ") {
		t.Fatalf("rendering failed: %s", md)
	}
}

var (
	d       = decimal.RequireFromString
	meezan  = ledger.Account{ID: "a1", Name: "Meezan", Type: ledger.Bank, Currency: ledger.PKR, Balance: d("150000"), InitialBalance: d("100000")}
	wallet  = ledger.Account{ID: "a2", Name: "Wallet", Type: ledger.Cash, Currency: ledger.PKR, Balance: d("2500.5")}
	salary  = ledger.Category{ID: "c1", Name: "Salary", Type: ledger.Income}
	food    = ledger.Category{ID: "c2", Name: "Food", Type: ledger.Expense, Icon: "utensils"}
	names   = NewNames([]ledger.Account{meezan, wallet}, []ledger.Category{salary, food})
	workday = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
)

func TestAccounts(t *testing.T) {
	md := Accounts([]ledger.Account{meezan, wallet})
	assertNoError(t, md)
	if got := tableRows(t, md); len(got) != 1 || got[0] != 2 {
		t.Errorf("tables = %v, want one table of 2 rows:\n%s", got, md)
	}
	assertContains(t, md, "| Meezan | Bank | PKR |", "**Total**")

	if md := Accounts(nil); !strings.Contains(md, "No accounts yet.") {
		t.Errorf("Accounts(nil) = %q", md)
	}
}

func TestCategories(t *testing.T) {
	md := Categories([]ledger.Category{food, salary})
	assertNoError(t, md)
	income := strings.Index(md, "## Income")
	expense := strings.Index(md, "## Expense")
	if income < 0 || expense < income {
		t.Errorf("Categories() sections out of order:\n%s", md)
	}
	assertContains(t, md, "- Salary", "- Food (utensils)")
}

func TestTransactions(t *testing.T) {
	list := []ledger.Transaction{
		{ID: "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed", Type: ledger.Transfer, Amount: d("1000"), Fee: d("50"), Currency: ledger.PKR, AccountID: "a1", ToAccountID: "a2", Date: workday},
		{ID: "6ec0bd7f-11c0-43da-975e-2a8ad9ebae0b", Type: ledger.Expense, Amount: d("350"), Currency: ledger.PKR, AccountID: "a2", CategoryID: "c2", Date: workday, Note: "lunch"},
	}
	md := Transactions(list, names)
	assertNoError(t, md)
	if got := tableRows(t, md); len(got) != 1 || got[0] != 2 {
		t.Errorf("tables = %v, want one table of 2 rows:\n%s", got, md)
	}
	assertContains(t, md, "Meezan → Wallet", "| Food |", "lunch", "`1b9d6bcd`", "2025-03-03")
}

func TestProposal(t *testing.T) {
	md := Proposal(ledger.Transaction{Type: ledger.Expense, Amount: d("350"), Currency: ledger.USD, AccountID: "a2", CategoryID: "c2", Note: "coffee"}, names)
	assertNoError(t, md)
	assertContains(t, md, "## Expense of $350.00", "| Account | Wallet |", "| Category | Food |", "| Note | coffee |")

	md = Proposal(ledger.Transaction{Type: ledger.Transfer, Amount: d("1"), Currency: ledger.PKR, AccountID: "a1", ToAccountID: "zz"}, names)
	assertContains(t, md, "| From | Meezan |", "| To | zz |")
}

func TestSummary(t *testing.T) {
	pkr := func(v string) ledger.Money { return ledger.M(d(v), ledger.PKR) }
	s := ledger.Summary{
		Range:    date.BudgetMonth(date.New(2025, time.March, 3), 25),
		Currency: ledger.PKR,
		NetWorth: pkr("40198.5"),
		Income:   pkr("50000"),
		Expense:  pkr("20578.5"),
		Fees:     pkr("10"),
		Count:    5,
		ByCategory: []ledger.CategoryTotal{
			{Category: ledger.Category{Name: "Rent"}, Total: pkr("20000"), Count: 1},
			{Total: pkr("578.5"), Count: 2},
		},
	}
	md := Summary(s)
	assertNoError(t, md)
	if got := tableRows(t, md); len(got) != 2 || got[1] != 2 {
		t.Errorf("tables = %v, want a totals table and 2 categories:\n%s", got, md)
	}
	assertContains(t, md, "# Summary 2025-02-25_2025-03-24", "2025-02-25 to 2025-03-24, 28 days.", "(deleted)", "| Rent | 1 |")

	s.Range = date.BudgetMonth(date.New(2025, time.March, 3), 1)
	assertContains(t, Summary(s), "# Summary 2025-03\n", "31 days.")
}

func TestAudit(t *testing.T) {
	if md := Audit(nil); !strings.Contains(md, "Every balance matches") {
		t.Errorf("Audit(nil) = %q", md)
	}
	md := Audit([]ledger.Discrepancy{{Account: meezan, Expected: d("149000")}})
	assertNoError(t, md)
	if got := tableRows(t, md); len(got) != 1 || got[0] != 1 {
		t.Errorf("tables = %v, want one row:\n%s", got, md)
	}
}

func TestSettings(t *testing.T) {
	s := ledger.DefaultSettings()
	s.UseCustomRates = true
	s.CustomRates = ledger.Rates{ledger.USD: d("280")}
	md := Settings(s)
	assertNoError(t, md)
	assertContains(t, md, "| Custom rates | on |", "| USD | 280 |", "| AED | 75.8 |")
}
