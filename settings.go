package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Setting keys as persisted in the settings table.
const (
	keyMainCurrency     = "mainCurrency"
	keyMonthStartDay    = "monthStartDay"
	keyUseCustomRates   = "useCustomRates"
	keyCustomRates      = "customRates"
	keyCategoriesSeeded = "categoriesSeeded"
)

// UserSettings are the user preferences the engine reads. The engine never writes them.
type UserSettings struct {
	MainCurrency   Currency `json:"mainCurrency" validate:"currency"`
	MonthStartDay  int      `json:"monthStartDay" validate:"min=1,max=31"`
	UseCustomRates bool     `json:"useCustomRates"`
	CustomRates    Rates    `json:"customRates,omitempty"`
}

// DefaultSettings returns the settings of a fresh ledger.
func DefaultSettings() UserSettings {
	return UserSettings{
		MainCurrency:  PKR,
		MonthStartDay: 1,
		CustomRates:   Rates{},
	}
}

// Rates returns the conversion rates in effect under these settings.
func (s UserSettings) Rates() Rates { return RatesFor(s) }

// Validate checks the settings before they are saved.
func (s UserSettings) Validate() error {
	if err := validateStruct("settings", s); err != nil {
		return err
	}
	for c, r := range s.CustomRates {
		if !c.Valid() {
			return invalidf("custom rate for unsupported currency %q", c)
		}
		if !r.IsPositive() {
			return invalidf("custom rate for %s must be positive, got %s", c, r)
		}
	}
	return nil
}

// readSettings loads the settings, falling back to defaults for keys never written.
func readSettings(tx Tx) (UserSettings, error) {
	s := DefaultSettings()

	get := func(key string) (string, bool, error) {
		v, err := tx.Setting(key)
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("cannot read setting %q: %w", key, err)
		}
		return v, true, nil
	}

	if v, ok, err := get(keyMainCurrency); err != nil {
		return s, err
	} else if ok {
		if s.MainCurrency, err = ParseCurrency(v); err != nil {
			return s, err
		}
	}
	if v, ok, err := get(keyMonthStartDay); err != nil {
		return s, err
	} else if ok {
		if s.MonthStartDay, err = strconv.Atoi(v); err != nil {
			return s, fmt.Errorf("invalid setting %q=%q: %w", keyMonthStartDay, v, err)
		}
	}
	if v, ok, err := get(keyUseCustomRates); err != nil {
		return s, err
	} else if ok {
		if s.UseCustomRates, err = strconv.ParseBool(v); err != nil {
			return s, fmt.Errorf("invalid setting %q=%q: %w", keyUseCustomRates, v, err)
		}
	}
	if v, ok, err := get(keyCustomRates); err != nil {
		return s, err
	} else if ok && v != "" {
		if err := json.Unmarshal([]byte(v), &s.CustomRates); err != nil {
			return s, fmt.Errorf("invalid setting %q: %w", keyCustomRates, err)
		}
	}
	return s, nil
}

func writeSettings(tx Tx, s UserSettings) error {
	rates, err := json.Marshal(s.CustomRates)
	if err != nil {
		return fmt.Errorf("cannot encode custom rates: %w", err)
	}
	for _, kv := range [][2]string{
		{keyMainCurrency, string(s.MainCurrency)},
		{keyMonthStartDay, strconv.Itoa(s.MonthStartDay)},
		{keyUseCustomRates, strconv.FormatBool(s.UseCustomRates)},
		{keyCustomRates, string(rates)},
	} {
		if err := tx.PutSetting(kv[0], kv[1]); err != nil {
			return fmt.Errorf("cannot write setting %q: %w", kv[0], err)
		}
	}
	return nil
}

// LoadSettings reads the user settings from the store.
func LoadSettings(ctx context.Context, s Store) (settings UserSettings, err error) {
	err = view(ctx, s, "load settings", func(tx Tx) error {
		settings, err = readSettings(tx)
		return err
	})
	return settings, err
}
