package cart

import (
	"errors"
	"strconv"
	"strings"
)

// Kind classifies cart failures so callers can branch without string matching.
type Kind string

const (
	KindNotAuthenticated Kind = "not_authenticated"
	KindInvalidQuantity  Kind = "invalid_quantity"
	KindInvalidInput     Kind = "invalid_input"
	KindItemNotFound     Kind = "item_not_found"
	KindEmptyCart        Kind = "empty_cart"
	KindPersistence      Kind = "persistence_error"
	KindLedger           Kind = "ledger_error"
)

// Error is the result of every failed cart operation. Message is safe to show
// to a shopper; Err carries the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotAuthenticated = &Error{Kind: KindNotAuthenticated, Message: "please log in to use the cart"}
	ErrInvalidQuantity  = &Error{Kind: KindInvalidQuantity, Message: "quantity must be at least 1"}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrItemNotFound     = &Error{Kind: KindItemNotFound, Message: "item is not in the cart"}
	ErrEmptyCart        = &Error{Kind: KindEmptyCart, Message: "your cart is empty"}
	ErrPersistence      = &Error{Kind: KindPersistence, Message: "failed to save cart"}
	ErrLedger           = &Error{Kind: KindLedger, Message: "failed to place order"}
)

// NewError builds a cart error of the given kind. Other packages sharing the
// cart's error vocabulary use it too.
func NewError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the Kind of err, or "" when err is not a cart error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ParseQuantity converts user input into a quantity. Non-numeric input is an
// InvalidQuantity failure; range checks happen in the mutating operations.
func ParseQuantity(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, NewError(KindInvalidQuantity, "quantity must be a whole number", err)
	}
	return n, nil
}
