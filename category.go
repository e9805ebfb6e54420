package ledger

import "strings"

// Category labels income and expense transactions. Transfers have no category.
type Category struct {
	ID    string          `json:"id"`
	Name  string          `json:"name" validate:"required,max=64"`
	Type  TransactionType `json:"type" validate:"oneof=Income Expense"`
	Color string          `json:"color,omitempty"`
	Icon  string          `json:"icon,omitempty"`
}

// CategoryUpdate lists the category fields that can change. Nil fields are kept.
type CategoryUpdate struct {
	Name  *string
	Color *string
	Icon  *string
}

func (u CategoryUpdate) apply(c Category) Category {
	if u.Name != nil {
		c.Name = strings.TrimSpace(*u.Name)
	}
	if u.Color != nil {
		c.Color = *u.Color
	}
	if u.Icon != nil {
		c.Icon = *u.Icon
	}
	return c
}
