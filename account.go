package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts. It is informational only.
type AccountType string

const (
	Bank       AccountType = "Bank"
	Cash       AccountType = "Cash"
	Investment AccountType = "Investment"
)

// ParseAccountType parses an account type, case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	for _, t := range []AccountType{Bank, Cash, Investment} {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", invalidf("unknown account type %q", s)
}

// Account holds money in a single currency.
//
// Balance always equals InitialBalance plus the converted effect of every transaction touching
// the account. Only the Engine writes it.
type Account struct {
	ID             string          `json:"id"`
	Name           string          `json:"name" validate:"required,max=64"`
	Type           AccountType     `json:"type" validate:"oneof=Bank Cash Investment"`
	Currency       Currency        `json:"currency" validate:"currency"`
	Balance        decimal.Decimal `json:"balance"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Color          string          `json:"color,omitempty"`
	Icon           string          `json:"icon,omitempty"`
}

// BalanceMoney returns the balance with its currency.
func (a Account) BalanceMoney() Money { return M(a.Balance, a.Currency) }

// AccountUpdate lists the account fields that can change after creation. Nil fields are kept.
// Currency and InitialBalance are immutable.
type AccountUpdate struct {
	Name  *string
	Type  *AccountType
	Color *string
	Icon  *string
}

func (u AccountUpdate) apply(a Account) Account {
	if u.Name != nil {
		a.Name = strings.TrimSpace(*u.Name)
	}
	if u.Type != nil {
		a.Type = *u.Type
	}
	if u.Color != nil {
		a.Color = *u.Color
	}
	if u.Icon != nil {
		a.Icon = *u.Icon
	}
	return a
}

// sameName compares names the way uniqueness is enforced.
func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
