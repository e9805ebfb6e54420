package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/memstore"
	"github.com/etnz/ledger/sqlite"
	"github.com/google/go-cmp/cmp"
)

func TestEngine_IncomeRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	hbl := mustAccount(t, e, "HBL", ledger.PKR, "100000")
	salary := mustCategory(t, e, "Salary", ledger.Income)

	tx := mustCreate(t, e, ledger.Transaction{
		Type: ledger.Income, Amount: D("50000"), Currency: ledger.PKR,
		AccountID: hbl.ID, CategoryID: salary.ID,
	})
	assertBalance(t, e, hbl.ID, D("150000"))
	if tx.ID == "" {
		t.Errorf("CreateTransaction() returned no ID")
	}
	if !tx.Date.Equal(testDay) {
		t.Errorf("CreateTransaction() date = %v, want %v", tx.Date, testDay)
	}

	removed, err := e.DeleteTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("DeleteTransaction() failed: %v", err)
	}
	if diff := cmp.Diff(tx, removed); diff != "" {
		t.Errorf("DeleteTransaction() returned mismatch (-want +got):\n%s", diff)
	}
	assertBalance(t, e, hbl.ID, D("100000"))
	if _, err := e.Transaction(ctx, tx.ID); !errors.Is(err, ledger.ErrMissingTransaction) {
		t.Errorf("Transaction() after delete error = %v, want missing transaction", err)
	}
}

func TestEngine_ExpenseWithFee(t *testing.T) {
	e := newEngine(t)
	a := mustAccount(t, e, "Wallet", ledger.PKR, "1000")
	food := mustCategory(t, e, "Food", ledger.Expense)

	mustCreate(t, e, ledger.Transaction{
		Type: ledger.Expense, Amount: D("200"), Fee: D("5"), Currency: ledger.PKR,
		AccountID: a.ID, CategoryID: food.ID,
	})
	assertBalance(t, e, a.ID, D("795"))
	assertConsistent(t, e)
}

func TestEngine_IncomeFeeIsDeducted(t *testing.T) {
	e := newEngine(t)
	a := mustAccount(t, e, "Bank", ledger.PKR, "0")
	c := mustCategory(t, e, "Freelance", ledger.Income)

	mustCreate(t, e, ledger.Transaction{
		Type: ledger.Income, Amount: D("1000"), Fee: D("30"), Currency: ledger.PKR,
		AccountID: a.ID, CategoryID: c.ID,
	})
	assertBalance(t, e, a.ID, D("970"))
}

func TestEngine_CrossCurrencyTransfer(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	a := mustAccount(t, e, "A", ledger.PKR, "10000")
	b := mustAccount(t, e, "B", ledger.USD, "100")

	tx := mustCreate(t, e, ledger.Transaction{
		Type: ledger.Transfer, Amount: D("1000"), Fee: D("50"), Currency: ledger.PKR,
		AccountID: a.ID, ToAccountID: b.ID,
	})
	assertBalance(t, e, a.ID, D("8950"))

	got := balance(t, e, b.ID)
	want := D("100").Add(D("1000").Div(D("278.5")))
	if !got.Equal(want) {
		t.Errorf("destination balance = %s, want %s", got, want)
	}
	if r := got.Round(2); !r.Equal(D("103.59")) {
		t.Errorf("destination balance rounded = %s, want 103.59", r)
	}
	assertConsistent(t, e)

	if _, err := e.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() failed: %v", err)
	}
	assertBalance(t, e, a.ID, D("10000"))
	assertBalance(t, e, b.ID, D("100"))
}

func TestEngine_TransferFeeNeverTouchesDestination(t *testing.T) {
	e := newEngine(t)
	a := mustAccount(t, e, "A", ledger.USD, "500")
	b := mustAccount(t, e, "B", ledger.USD, "0")

	mustCreate(t, e, ledger.Transaction{
		Type: ledger.Transfer, Amount: D("100"), Fee: D("2.5"), Currency: ledger.USD,
		AccountID: a.ID, ToAccountID: b.ID,
	})
	assertBalance(t, e, a.ID, D("397.5"))
	assertBalance(t, e, b.ID, D("100"))
}

func TestEngine_UpdateSameAccount(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	a := mustAccount(t, e, "Cash", ledger.PKR, "2000")
	food := mustCategory(t, e, "Food", ledger.Expense)

	tx := mustCreate(t, e, ledger.Transaction{
		Type: ledger.Expense, Amount: D("500"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: food.ID,
	})
	assertBalance(t, e, a.ID, D("1500"))

	next := tx
	next.Amount = D("800")
	next.Date = time.Time{}
	got, err := e.UpdateTransaction(ctx, tx.ID, next)
	if err != nil {
		t.Fatalf("UpdateTransaction() failed: %v", err)
	}
	// only the 300 difference is applied
	assertBalance(t, e, a.ID, D("1200"))
	if !got.Date.Equal(tx.Date) {
		t.Errorf("UpdateTransaction() date = %v, want the old %v", got.Date, tx.Date)
	}
	assertConsistent(t, e)
}

func TestEngine_UpdateMovesAccountsAndType(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	a := mustAccount(t, e, "A", ledger.PKR, "1000")
	b := mustAccount(t, e, "B", ledger.AED, "100")
	food := mustCategory(t, e, "Food", ledger.Expense)

	tx := mustCreate(t, e, ledger.Transaction{
		Type: ledger.Expense, Amount: D("100"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: food.ID,
	})

	_, err := e.UpdateTransaction(ctx, tx.ID, ledger.Transaction{
		Type: ledger.Transfer, Amount: D("758"), Currency: ledger.PKR, AccountID: a.ID, ToAccountID: b.ID,
	})
	if err != nil {
		t.Fatalf("UpdateTransaction() failed: %v", err)
	}
	assertBalance(t, e, a.ID, D("242"))
	assertBalance(t, e, b.ID, D("110"))
	assertConsistent(t, e)
}

// TestEngine_UpdateRejectedRollsBack checks that an update whose new side is rejected, after
// the old effect was reverted in the same unit, leaves balances and the stored row untouched.
func TestEngine_UpdateRejectedRollsBack(t *testing.T) {
	stores := []struct {
		name string
		open func(t *testing.T) ledger.Store
	}{
		{"memory", func(t *testing.T) ledger.Store { return memstore.New() }},
		{"sqlite", func(t *testing.T) ledger.Store {
			s, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			return s
		}},
	}
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			ctx := context.Background()
			e := newEngineOn(t, st.open(t))
			wallet := mustAccount(t, e, "Wallet", ledger.PKR, "1000")
			food := mustCategory(t, e, "Food", ledger.Expense)
			salary := mustCategory(t, e, "Salary", ledger.Income)
			tx := mustCreate(t, e, ledger.Transaction{
				Type: ledger.Expense, Amount: D("100"), Currency: ledger.PKR, AccountID: wallet.ID, CategoryID: food.ID,
			})

			testCases := []struct {
				name string
				next ledger.Transaction
				want error
			}{
				{
					name: "income category on an expense",
					next: ledger.Transaction{Type: ledger.Expense, Amount: D("300"), Currency: ledger.PKR, AccountID: wallet.ID, CategoryID: salary.ID},
					want: ledger.ErrTypeFieldMismatch,
				},
				{
					name: "unknown account",
					next: ledger.Transaction{Type: ledger.Expense, Amount: D("300"), Currency: ledger.PKR, AccountID: "nope", CategoryID: food.ID},
					want: ledger.ErrMissingAccount,
				},
				{
					name: "unknown destination",
					next: ledger.Transaction{Type: ledger.Transfer, Amount: D("300"), Currency: ledger.PKR, AccountID: wallet.ID, ToAccountID: "nope"},
					want: ledger.ErrMissingDestinationAccount,
				},
			}
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					if _, err := e.UpdateTransaction(ctx, tx.ID, tc.next); !errors.Is(err, tc.want) {
						t.Fatalf("UpdateTransaction() error = %v, want %v", err, tc.want)
					}
					assertBalance(t, e, wallet.ID, D("900"))
					got, err := e.Transaction(ctx, tx.ID)
					if err != nil {
						t.Fatalf("Transaction() failed: %v", err)
					}
					if !got.Equal(tx) {
						t.Errorf("Transaction() = %+v, want unchanged %+v", got, tx)
					}
					assertConsistent(t, e)
				})
			}

			if _, err := e.UpdateTransaction(ctx, "missing", tx); !errors.Is(err, ledger.ErrMissingTransaction) {
				t.Errorf("UpdateTransaction(missing) error = %v, want missing transaction", err)
			}
			if _, err := e.DeleteTransaction(ctx, "missing"); !errors.Is(err, ledger.ErrMissingTransaction) {
				t.Errorf("DeleteTransaction(missing) error = %v, want missing transaction", err)
			}
			assertBalance(t, e, wallet.ID, D("900"))
		})
	}
}

func TestEngine_Rejections(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	a := mustAccount(t, e, "A", ledger.PKR, "1000")
	b := mustAccount(t, e, "B", ledger.PKR, "0")
	food := mustCategory(t, e, "Food", ledger.Expense)
	salary := mustCategory(t, e, "Salary", ledger.Income)

	testCases := []struct {
		name string
		tx   ledger.Transaction
		want error
	}{
		{
			name: "unknown account",
			tx:   ledger.Transaction{Type: ledger.Expense, Amount: D("1"), Currency: ledger.PKR, AccountID: "nope", CategoryID: food.ID},
			want: ledger.ErrMissingAccount,
		},
		{
			name: "unknown category",
			tx:   ledger.Transaction{Type: ledger.Expense, Amount: D("1"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: "nope"},
			want: ledger.ErrMissingCategory,
		},
		{
			name: "unknown destination",
			tx:   ledger.Transaction{Type: ledger.Transfer, Amount: D("1"), Currency: ledger.PKR, AccountID: a.ID, ToAccountID: "nope"},
			want: ledger.ErrMissingDestinationAccount,
		},
		{
			name: "zero amount",
			tx:   ledger.Transaction{Type: ledger.Expense, Amount: D("0"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: food.ID},
			want: ledger.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			tx:   ledger.Transaction{Type: ledger.Income, Amount: D("-5"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: salary.ID},
			want: ledger.ErrInvalidAmount,
		},
		{
			name: "negative fee",
			tx:   ledger.Transaction{Type: ledger.Expense, Amount: D("5"), Fee: D("-1"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: food.ID},
			want: ledger.ErrInvalidAmount,
		},
		{
			name: "transfer with category",
			tx:   ledger.Transaction{Type: ledger.Transfer, Amount: D("1"), Currency: ledger.PKR, AccountID: a.ID, ToAccountID: b.ID, CategoryID: food.ID},
			want: ledger.ErrTypeFieldMismatch,
		},
		{
			name: "transfer to itself",
			tx:   ledger.Transaction{Type: ledger.Transfer, Amount: D("1"), Currency: ledger.PKR, AccountID: a.ID, ToAccountID: a.ID},
			want: ledger.ErrTypeFieldMismatch,
		},
		{
			name: "expense without category",
			tx:   ledger.Transaction{Type: ledger.Expense, Amount: D("1"), Currency: ledger.PKR, AccountID: a.ID},
			want: ledger.ErrTypeFieldMismatch,
		},
		{
			name: "expense in an income category",
			tx:   ledger.Transaction{Type: ledger.Expense, Amount: D("1"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: salary.ID},
			want: ledger.ErrTypeFieldMismatch,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.CreateTransaction(ctx, tc.tx)
			if !errors.Is(err, tc.want) {
				t.Fatalf("CreateTransaction() error = %v, want %v", err, tc.want)
			}
			assertBalance(t, e, a.ID, D("1000"))
			assertBalance(t, e, b.ID, D("0"))
			if list, _ := e.Transactions(ctx, ledger.Filter{}); len(list) != 0 {
				t.Errorf("Transactions() = %d records, want none", len(list))
			}
		})
	}
}

func TestEngine_UnknownCurrency(t *testing.T) {
	e := newEngine(t)
	a := mustAccount(t, e, "A", ledger.PKR, "1000")
	food := mustCategory(t, e, "Food", ledger.Expense)

	_, err := e.CreateTransaction(context.Background(), ledger.Transaction{
		Type: ledger.Expense, Amount: D("1"), Currency: "EUR", AccountID: a.ID, CategoryID: food.ID,
	})
	var verr *ledger.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("CreateTransaction() error = %v, want a validation error", err)
	}
	assertBalance(t, e, a.ID, D("1000"))
}

func TestEngine_StoreFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	store := &failingStore{Store: memstore.New()}
	e := newEngineOn(t, store)
	a := mustAccount(t, e, "A", ledger.PKR, "1000")
	b := mustAccount(t, e, "B", ledger.USD, "10")

	store.err = boom
	_, err := e.CreateTransaction(ctx, ledger.Transaction{
		Type: ledger.Transfer, Amount: D("100"), Currency: ledger.PKR, AccountID: a.ID, ToAccountID: b.ID,
	})
	var serr *ledger.StoreFailure
	if !errors.As(err, &serr) || !errors.Is(err, boom) {
		t.Fatalf("CreateTransaction() error = %v, want a store failure wrapping %v", err, boom)
	}
	// both balances were written before the failure, neither is visible.
	assertBalance(t, e, a.ID, D("1000"))
	assertBalance(t, e, b.ID, D("10"))

	// retrying the whole operation succeeds once the store recovers.
	store.err = nil
	mustCreate(t, e, ledger.Transaction{
		Type: ledger.Transfer, Amount: D("100"), Currency: ledger.PKR, AccountID: a.ID, ToAccountID: b.ID,
	})
	assertBalance(t, e, a.ID, D("900"))
	assertConsistent(t, e)
}

func TestEngine_DeleteAccountCascades(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	a := mustAccount(t, e, "A", ledger.PKR, "1000")
	b := mustAccount(t, e, "B", ledger.PKR, "1000")
	c := mustAccount(t, e, "C", ledger.PKR, "1000")
	food := mustCategory(t, e, "Food", ledger.Expense)

	mustCreate(t, e, ledger.Transaction{Type: ledger.Expense, Amount: D("10"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: food.ID})
	mustCreate(t, e, ledger.Transaction{Type: ledger.Transfer, Amount: D("100"), Currency: ledger.PKR, AccountID: a.ID, ToAccountID: b.ID})
	mustCreate(t, e, ledger.Transaction{Type: ledger.Transfer, Amount: D("50"), Fee: D("1"), Currency: ledger.PKR, AccountID: b.ID, ToAccountID: a.ID})
	kept := mustCreate(t, e, ledger.Transaction{Type: ledger.Transfer, Amount: D("20"), Currency: ledger.PKR, AccountID: b.ID, ToAccountID: c.ID})

	removed, err := e.DeleteAccount(ctx, a.ID)
	if err != nil {
		t.Fatalf("DeleteAccount() failed: %v", err)
	}
	if len(removed) != 3 {
		t.Errorf("DeleteAccount() removed %d transactions, want 3", len(removed))
	}
	if _, err := e.Account(ctx, a.ID); !errors.Is(err, ledger.ErrMissingAccount) {
		t.Errorf("Account() after delete error = %v, want missing account", err)
	}
	list, err := e.Transactions(ctx, ledger.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]ledger.Transaction{kept}, list); diff != "" {
		t.Errorf("remaining transactions mismatch (-want +got):\n%s", diff)
	}
	// only the transfer to C is left on B.
	assertBalance(t, e, b.ID, D("980"))
	assertBalance(t, e, c.ID, D("1020"))
	assertConsistent(t, e)
}

func TestEngine_DeleteCategoryInUse(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	a := mustAccount(t, e, "A", ledger.PKR, "1000")
	food := mustCategory(t, e, "Food", ledger.Expense)
	unused := mustCategory(t, e, "Travel", ledger.Expense)

	tx := mustCreate(t, e, ledger.Transaction{Type: ledger.Expense, Amount: D("10"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: food.ID})

	if err := e.DeleteCategory(ctx, food.ID); !errors.Is(err, ledger.ErrCategoryInUse) {
		t.Fatalf("DeleteCategory() error = %v, want ErrCategoryInUse", err)
	}
	if _, err := e.Category(ctx, food.ID); err != nil {
		t.Errorf("Category() after refused delete failed: %v", err)
	}
	if err := e.DeleteCategory(ctx, unused.ID); err != nil {
		t.Errorf("DeleteCategory(unused) failed: %v", err)
	}

	if _, err := e.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteCategory(ctx, food.ID); err != nil {
		t.Errorf("DeleteCategory() once unused failed: %v", err)
	}
}

func TestEngine_CustomRates(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	settings := ledger.DefaultSettings()
	settings.UseCustomRates = true
	settings.CustomRates = ledger.Rates{ledger.USD: D("300")}
	if err := e.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings() failed: %v", err)
	}

	a := mustAccount(t, e, "A", ledger.PKR, "0")
	c := mustCategory(t, e, "Salary", ledger.Income)
	mustCreate(t, e, ledger.Transaction{Type: ledger.Income, Amount: D("10"), Currency: ledger.USD, AccountID: a.ID, CategoryID: c.ID})
	assertBalance(t, e, a.ID, D("3000"))
	assertConsistent(t, e)

	// rates changed since: the audit reports the drift.
	settings.UseCustomRates = false
	if err := e.SaveSettings(ctx, settings); err != nil {
		t.Fatal(err)
	}
	found, err := e.Audit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || !found[0].Expected.Equal(D("2785")) {
		t.Errorf("Audit() = %+v, want A expected at 2785", found)
	}
}

func TestEngine_Observers(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	var got []ledger.Changes
	cancel := e.Subscribe(func(c ledger.Changes) { got = append(got, c) })

	a := mustAccount(t, e, "A", ledger.PKR, "0")
	c := mustCategory(t, e, "Salary", ledger.Income)
	mustCreate(t, e, ledger.Transaction{Type: ledger.Income, Amount: D("1"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: c.ID})
	// rejected operations notify nobody.
	e.CreateTransaction(ctx, ledger.Transaction{Type: ledger.Income, Amount: D("1"), Currency: ledger.PKR, AccountID: "nope", CategoryID: c.ID})
	cancel()
	mustAccount(t, e, "B", ledger.PKR, "0")

	want := []ledger.Changes{
		ledger.AccountsChanged,
		ledger.CategoriesChanged,
		ledger.AccountsChanged | ledger.TransactionsChanged,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_AccountNamesAreUnique(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	mustAccount(t, e, "Meezan", ledger.PKR, "0")
	_, err := e.CreateAccount(ctx, ledger.Account{Name: " meezan ", Type: ledger.Cash, Currency: ledger.PKR})
	var verr *ledger.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("CreateAccount(duplicate) error = %v, want a validation error", err)
	}
}

func TestEngine_UpdateAccountKeepsBalance(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	a := mustAccount(t, e, "Old", ledger.PKR, "42")
	name := "New"
	got, err := e.UpdateAccount(ctx, a.ID, ledger.AccountUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateAccount() failed: %v", err)
	}
	if got.Name != "New" || !got.Balance.Equal(D("42")) {
		t.Errorf("UpdateAccount() = %+v", got)
	}
	if _, err := e.AccountByName(ctx, "new"); err != nil {
		t.Errorf("AccountByName() failed: %v", err)
	}
}

func TestEngine_TransactionsFilter(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	a := mustAccount(t, e, "A", ledger.PKR, "0")
	b := mustAccount(t, e, "B", ledger.PKR, "0")
	salary := mustCategory(t, e, "Salary", ledger.Income)

	day := func(d int) time.Time { return time.Date(2025, time.March, d, 9, 0, 0, 0, time.UTC) }
	t1 := mustCreate(t, e, ledger.Transaction{Type: ledger.Income, Amount: D("1"), Currency: ledger.PKR, AccountID: a.ID, CategoryID: salary.ID, Date: day(1)})
	t2 := mustCreate(t, e, ledger.Transaction{Type: ledger.Transfer, Amount: D("1"), Currency: ledger.PKR, AccountID: a.ID, ToAccountID: b.ID, Date: day(2)})
	t3 := mustCreate(t, e, ledger.Transaction{Type: ledger.Income, Amount: D("1"), Currency: ledger.PKR, AccountID: b.ID, CategoryID: salary.ID, Date: day(3)})

	testCases := []struct {
		name   string
		filter ledger.Filter
		want   []ledger.Transaction
	}{
		{"all", ledger.Filter{}, []ledger.Transaction{t3, t2, t1}},
		{"account as destination", ledger.Filter{AccountID: b.ID}, []ledger.Transaction{t3, t2}},
		{"category", ledger.Filter{CategoryID: salary.ID}, []ledger.Transaction{t3, t1}},
		{"range", ledger.Filter{Since: day(2), Until: day(3)}, []ledger.Transaction{t2}},
		{"limit", ledger.Filter{Limit: 1}, []ledger.Transaction{t3}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Transactions(ctx, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Transactions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
