package ledger

import (
	"context"
	"fmt"
	"strings"
)

// CreateCategory stores a new category. Names are unique within a type, case-insensitively.
func (e *Engine) CreateCategory(ctx context.Context, c Category) (Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.ID = e.newID()
	if err := validateStruct("category", c); err != nil {
		return Category{}, err
	}
	err := e.write(ctx, "create category", CategoriesChanged, func(tx Tx) error {
		if err := uniqueCategoryName(tx, c); err != nil {
			return err
		}
		return tx.PutCategory(c)
	})
	if err != nil {
		return Category{}, err
	}
	e.log.Info("category created", "id", c.ID, "name", c.Name, "type", c.Type)
	return c, nil
}

// UpdateCategory changes the name, color or icon of a category. Its type is fixed.
func (e *Engine) UpdateCategory(ctx context.Context, id string, u CategoryUpdate) (Category, error) {
	var c Category
	err := e.write(ctx, "update category", CategoriesChanged, func(tx Tx) error {
		old, err := loadCategory(tx, id)
		if err != nil {
			return err
		}
		c = u.apply(old)
		if err := validateStruct("category", c); err != nil {
			return err
		}
		if err := uniqueCategoryName(tx, c); err != nil {
			return err
		}
		return tx.PutCategory(c)
	})
	if err != nil {
		return Category{}, err
	}
	e.log.Info("category updated", "id", c.ID, "name", c.Name)
	return c, nil
}

// DeleteCategory removes a category no transaction references. Otherwise it fails with an
// error matching ErrCategoryInUse and nothing changes.
func (e *Engine) DeleteCategory(ctx context.Context, id string) error {
	err := e.write(ctx, "delete category", CategoriesChanged, func(tx Tx) error {
		c, err := loadCategory(tx, id)
		if err != nil {
			return err
		}
		refs, err := tx.Transactions(Filter{CategoryID: id, Limit: 1})
		if err != nil {
			return fmt.Errorf("cannot list transactions of category %q: %w", id, err)
		}
		if len(refs) > 0 {
			return fmt.Errorf("%w: %q is used by transactions", ErrCategoryInUse, c.Name)
		}
		return tx.DeleteCategory(id)
	})
	if err != nil {
		return err
	}
	e.log.Info("category deleted", "id", id)
	return nil
}

// Category returns the category id.
func (e *Engine) Category(ctx context.Context, id string) (c Category, err error) {
	err = view(ctx, e.store, "read category", func(tx Tx) error {
		c, err = loadCategory(tx, id)
		return err
	})
	return c, err
}

// Categories returns every category ordered by type then name.
func (e *Engine) Categories(ctx context.Context) (list []Category, err error) {
	err = view(ctx, e.store, "list categories", func(tx Tx) error {
		list, err = tx.Categories()
		return err
	})
	return list, err
}

// CategoryByName finds a category of type typ by name, case-insensitively.
func (e *Engine) CategoryByName(ctx context.Context, typ TransactionType, name string) (Category, error) {
	list, err := e.Categories(ctx)
	if err != nil {
		return Category{}, err
	}
	if c, ok := findCategory(list, typ, name); ok {
		return c, nil
	}
	return Category{}, &NotFoundError{Kind: KindCategory, ID: name}
}

// findCategory looks a category up by type and name, case-insensitively.
func findCategory(list []Category, typ TransactionType, name string) (Category, bool) {
	for _, c := range list {
		if c.Type == typ && sameName(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}

func uniqueCategoryName(tx Tx, c Category) error {
	list, err := tx.Categories()
	if err != nil {
		return fmt.Errorf("cannot list categories: %w", err)
	}
	if other, ok := findCategory(list, c.Type, c.Name); ok && other.ID != c.ID {
		return invalidf("an %s category named %q already exists", c.Type, other.Name)
	}
	return nil
}
