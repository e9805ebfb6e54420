package ledger

import (
	"errors"
	"fmt"
)

// Validation failure reasons. They are wrapped in a *ValidationError so callers can match them
// with errors.Is.
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrTypeFieldMismatch = errors.New("type/field mismatch")
)

// ErrCategoryInUse is returned when deleting a category that transactions still reference.
var ErrCategoryInUse = errors.New("category in use")

// ErrNotFound is returned by a Store when a record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError rejects an operation before anything is written.
type ValidationError struct {
	Reason string
	Err    error // optional sentinel such as ErrInvalidAmount
}

func (e *ValidationError) Error() string {
	if e.Err != nil && e.Reason == "" {
		return "validation: " + e.Err.Error()
	}
	return "validation: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func invalidAmountf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...), Err: ErrInvalidAmount}
}

func mismatchf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...), Err: ErrTypeFieldMismatch}
}

// EntityKind names the kind of record a NotFoundError refers to.
type EntityKind string

const (
	KindAccount            EntityKind = "account"
	KindDestinationAccount EntityKind = "destination account"
	KindCategory           EntityKind = "category"
	KindTransaction        EntityKind = "transaction"
)

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is matches another *NotFoundError of the same kind. A target with an empty ID matches any ID,
// which is what the ErrMissing* sentinels rely on.
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.ID == "" || t.ID == e.ID)
}

// Sentinels for errors.Is on missing references.
var (
	ErrMissingAccount            error = &NotFoundError{Kind: KindAccount}
	ErrMissingDestinationAccount error = &NotFoundError{Kind: KindDestinationAccount}
	ErrMissingCategory           error = &NotFoundError{Kind: KindCategory}
	ErrMissingTransaction        error = &NotFoundError{Kind: KindTransaction}
)

// StoreFailure wraps any failure of the atomic unit. When it is returned nothing was committed,
// so the whole operation can be retried.
type StoreFailure struct {
	Op  string
	Err error
}

func (e *StoreFailure) Error() string { return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err) }
func (e *StoreFailure) Unwrap() error { return e.Err }

// classify leaves engine errors untouched and wraps everything else as a StoreFailure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		verr *ValidationError
		nerr *NotFoundError
		serr *StoreFailure
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &nerr), errors.As(err, &serr),
		errors.Is(err, ErrCategoryInUse):
		return err
	}
	return &StoreFailure{Op: op, Err: err}
}
