package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// CategorySeed lists the category names created on a fresh ledger.
type CategorySeed struct {
	Income  []string `yaml:"income"`
	Expense []string `yaml:"expense"`
}

// DefaultCategorySeed returns the built-in category names.
func DefaultCategorySeed() CategorySeed {
	return CategorySeed{
		Income: []string{
			"Salary", "Bonus", "Freelance", "Business", "Commission", "Rental",
			"Interest", "Dividends", "Gifts", "Refunds", "Reimbursements",
			"Investment gains", "Side hustle", "Pension", "Other income",
		},
		Expense: []string{
			"Groceries", "Food", "Dining", "Rent", "Utilities", "Electricity",
			"Gas", "Water", "Internet", "Mobile", "Fuel", "Transport",
			"Car maintenance", "Public transport", "Shopping", "Clothing",
			"Healthcare", "Medical", "Insurance", "Education", "Tuition",
			"Subscriptions", "Entertainment", "Coffee", "Travel", "Hotels",
			"Flights", "Personal care", "Gym", "Gifts", "Charity", "Taxes",
			"Loan repayment", "Credit card payment", "Household", "Repairs", "Miscellaneous",
		},
	}
}

// DecodeCategorySeed reads a YAML document with `income` and `expense` name lists.
func DecodeCategorySeed(r io.Reader) (CategorySeed, error) {
	var seed CategorySeed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return seed, fmt.Errorf("cannot decode category seed: %w", err)
	}
	return seed, nil
}

var (
	incomeColors  = []string{"#10b981", "#059669", "#34d399", "#14b8a6", "#0d9488", "#2dd4bf"}
	expenseColors = []string{"#f43f5e", "#e11d48", "#fb7185", "#f97316", "#ea580c", "#8b5cf6", "#7c3aed"}
)

// SeedCategories creates the seed categories once per ledger. Names already present are
// skipped. Later calls do nothing and return 0. It returns the number of categories created.
func (e *Engine) SeedCategories(ctx context.Context, seed CategorySeed) (created int, err error) {
	err = e.write(ctx, "seed categories", CategoriesChanged, func(tx Tx) error {
		created = 0
		done, err := tx.Setting(keyCategoriesSeeded)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("cannot read setting %q: %w", keyCategoriesSeeded, err)
		}
		if seeded, _ := strconv.ParseBool(done); seeded {
			return nil
		}
		existing, err := tx.Categories()
		if err != nil {
			return fmt.Errorf("cannot list categories: %w", err)
		}
		add := func(typ TransactionType, names []string, colors []string) error {
			for i, name := range names {
				if _, ok := findCategory(existing, typ, name); ok {
					continue
				}
				c := Category{ID: e.newID(), Name: name, Type: typ, Color: colors[i%len(colors)]}
				if err := validateStruct("category", c); err != nil {
					return err
				}
				if err := tx.PutCategory(c); err != nil {
					return fmt.Errorf("cannot create category %q: %w", name, err)
				}
				existing = append(existing, c)
				created++
			}
			return nil
		}
		if err := add(Income, seed.Income, incomeColors); err != nil {
			return err
		}
		if err := add(Expense, seed.Expense, expenseColors); err != nil {
			return err
		}
		return tx.PutSetting(keyCategoriesSeeded, "true")
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		e.log.Info("categories seeded", "count", created)
	}
	return created, nil
}
