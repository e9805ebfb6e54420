package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

type categoriesCmd struct{}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list income and expense categories" }
func (*categoriesCmd) Usage() string {
	return `lgr categories

  Lists the income categories, then the expense categories.
`
}

func (*categoriesCmd) SetFlags(*flag.FlagSet) {}

func (*categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		list, err := e.Categories(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Categories(list))
		return nil
	})
}

// categoryType parses a category type: income or expense.
func categoryType(s string) (ledger.TransactionType, error) {
	typ, err := ledger.ParseTransactionType(s)
	if err != nil {
		return "", err
	}
	if typ == ledger.Transfer {
		return "", fmt.Errorf("category type must be income or expense")
	}
	return typ, nil
}

type addCategoryCmd struct {
	typ   string
	color string
	icon  string
}

func (*addCategoryCmd) Name() string     { return "add-category" }
func (*addCategoryCmd) Synopsis() string { return "create a category" }
func (*addCategoryCmd) Usage() string {
	return `lgr add-category -type <income|expense> [-color <color>] [-icon <icon>] <name>

  Creates a category. Names are unique within a type.
`
}

func (c *addCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "expense", "Category type (income, expense).")
	f.StringVar(&c.color, "color", "", "Display color.")
	f.StringVar(&c.icon, "icon", "", "Display icon.")
}

func (c *addCategoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.Join(f.Args(), " ")
	if name == "" {
		fmt.Fprintln(stderr, "Error: missing category name")
		return subcommands.ExitUsageError
	}
	typ, err := categoryType(c.typ)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		cat, err := e.CreateCategory(ctx, ledger.Category{Name: name, Type: typ, Color: c.color, Icon: c.icon})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s category %q created.\n", cat.Type, cat.Name)
		return nil
	})
}

type editCategoryCmd struct {
	typ   string
	name  string
	color string
	icon  string
}

func (*editCategoryCmd) Name() string     { return "edit-category" }
func (*editCategoryCmd) Synopsis() string { return "rename or restyle a category" }
func (*editCategoryCmd) Usage() string {
	return `lgr edit-category -type <income|expense> [-name <new name>] [-color <color>] [-icon <icon>] <category>

  Changes the name, color or icon of a category. Its type cannot change.
`
}

func (c *editCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "expense", "Type of the category to edit (income, expense).")
	f.StringVar(&c.name, "name", "", "New category name.")
	f.StringVar(&c.color, "color", "", "New display color.")
	f.StringVar(&c.icon, "icon", "", "New display icon.")
}

func (c *editCategoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref := strings.Join(f.Args(), " ")
	if ref == "" {
		fmt.Fprintln(stderr, "Error: missing category name")
		return subcommands.ExitUsageError
	}
	typ, err := categoryType(c.typ)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	set := visited(f)
	var u ledger.CategoryUpdate
	if set["name"] {
		u.Name = &c.name
	}
	if set["color"] {
		u.Color = &c.color
	}
	if set["icon"] {
		u.Icon = &c.icon
	}
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		cat, err := e.CategoryByName(ctx, typ, ref)
		if err != nil {
			return err
		}
		if cat, err = e.UpdateCategory(ctx, cat.ID, u); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Category %q updated.\n", cat.Name)
		return nil
	})
}

type deleteCategoryCmd struct {
	typ string
}

func (*deleteCategoryCmd) Name() string     { return "delete-category" }
func (*deleteCategoryCmd) Synopsis() string { return "delete an unused category" }
func (*deleteCategoryCmd) Usage() string {
	return `lgr delete-category -type <income|expense> <category>

  Deletes a category. A category used by a transaction cannot be deleted.
`
}

func (c *deleteCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "expense", "Type of the category to delete (income, expense).")
}

func (c *deleteCategoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref := strings.Join(f.Args(), " ")
	if ref == "" {
		fmt.Fprintln(stderr, "Error: missing category name")
		return subcommands.ExitUsageError
	}
	typ, err := categoryType(c.typ)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		cat, err := e.CategoryByName(ctx, typ, ref)
		if err != nil {
			return err
		}
		if err := e.DeleteCategory(ctx, cat.ID); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Category %q deleted.\n", cat.Name)
		return nil
	})
}

type seedCmd struct {
	file string
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "create the default categories" }
func (*seedCmd) Usage() string {
	return `lgr seed [-f <file.yaml>]

  Creates the default income and expense categories, once per ledger. The file, when given,
  replaces the built-in lists:

    income: [Salary, Bonus]
    expense: [Rent, Groceries]
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "YAML file with the income and expense category names.")
}

func (c *seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	seed := ledger.DefaultCategorySeed()
	if c.file != "" {
		r, err := os.Open(c.file)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		defer r.Close()
		if seed, err = ledger.DecodeCategorySeed(r); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
	}
	return withEngine(ctx, func(ctx context.Context, e *ledger.Engine) error {
		n, err := e.SeedCategories(ctx, seed)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(stdout, "Categories already seeded.")
			return nil
		}
		fmt.Fprintf(stdout, "%d categories created.\n", n)
		return nil
	})
}
