package agent_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/agent"
	"github.com/etnz/ledger/memstore"
	"github.com/shopspring/decimal"
)

// parser answers canned proposals by sentence.
type parser map[string]string

func (p parser) Parse(_ context.Context, text string) (ledger.ProposedTransaction, error) {
	answer, ok := p[text]
	if !ok {
		return ledger.ProposedTransaction{}, errors.New("model unavailable")
	}
	return agent.DecodeProposal(answer)
}

func newEngine(t *testing.T) (*ledger.Engine, ledger.Account) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	t.Cleanup(func() { store.Close() })
	e := ledger.New(store,
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ledger.WithClock(func() time.Time { return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) }),
	)
	cash, err := e.CreateAccount(ctx, ledger.Account{Name: "Cash", Type: ledger.Cash, Currency: ledger.PKR, InitialBalance: decimal.NewFromInt(10000)})
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	if _, err := e.CreateCategory(ctx, ledger.Category{Name: "Groceries", Type: ledger.Expense}); err != nil {
		t.Fatalf("CreateCategory() failed: %v", err)
	}
	return e, cash
}

const groceries = `{"type":"expense","amount":2500,"category":"groceries","account":"cash"}`

func TestAssistant_Run(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOut []string
		wantBal string
	}{
		{
			name:    "confirmed",
			input:   "paid 2500 for groceries\ny\nbye\n",
			wantOut: []string{"Expense of", "Groceries", "Recorded"},
			wantBal: "7500",
		},
		{
			name:    "shouted and confirmed without final newline",
			input:   "PAID 2500 FOR GROCERIES\nyes",
			wantOut: []string{"Recorded"},
			wantBal: "7500",
		},
		{
			name:    "declined",
			input:   "paid 2500 for groceries\nn\n",
			wantOut: []string{"Discarded."},
			wantBal: "10000",
		},
		{
			name:    "unknown category",
			input:   "paid 30 for coffee\nbye\n",
			wantOut: []string{"Error:", "coffee"},
			wantBal: "10000",
		},
		{
			name:    "parser failure",
			input:   "what is my balance\nbye\n",
			wantOut: []string{"Error: model unavailable"},
			wantBal: "10000",
		},
	}
	p := parser{
		"paid 2500 for groceries": groceries,
		"paid 30 for coffee":      `{"type":"expense","amount":30,"category":"coffee","account":"cash"}`,
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, cash := newEngine(t)
			var out strings.Builder
			a := agent.New(&out, strings.NewReader(tt.input), p, e)
			if err := a.Run(context.Background()); err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out.String(), want) {
					t.Errorf("Run() output does not contain %q:\n%s", want, out.String())
				}
			}
			got, err := e.Account(context.Background(), cash.ID)
			if err != nil {
				t.Fatalf("Account() failed: %v", err)
			}
			if !got.Balance.Equal(decimal.RequireFromString(tt.wantBal)) {
				t.Errorf("balance = %s, want %s", got.Balance, tt.wantBal)
			}
		})
	}
}

func TestAssistant_Prompts(t *testing.T) {
	e, cash := newEngine(t)
	var out strings.Builder
	var printed []string
	a := agent.New(&out, strings.NewReader("y\n"), parser{"paid 2500 for groceries": groceries}, e)
	a.Markdown = func(_ io.Writer, md string) { printed = append(printed, md) }

	if err := a.Run(context.Background(), "paid 2500 for groceries"); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(printed) != 1 || !strings.Contains(printed[0], "Groceries") {
		t.Errorf("Markdown printed %q, want one proposal", printed)
	}
	list, err := e.Transactions(context.Background(), ledger.Filter{AccountID: cash.ID})
	if err != nil {
		t.Fatalf("Transactions() failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d transactions, want 1", len(list))
	}
}
