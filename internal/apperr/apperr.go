// Package apperr defines the error kinds surfaced by the ledger core.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	InvalidAmount      Kind = "invalid_amount"
	InvalidArgument    Kind = "invalid_argument"
	InsufficientFunds  Kind = "insufficient_funds"
	AccountNotFound    Kind = "account_not_found"
	LoanNotFound       Kind = "loan_not_found"
	InvestmentNotFound Kind = "investment_not_found"
	Unauthorized       Kind = "unauthorized"
	InvalidState       Kind = "invalid_state"
	StoreUnavailable   Kind = "store_unavailable"
)

// Error carries a Kind alongside a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so errors.Is(err, apperr.New(apperr.LoanNotFound, ""))
// works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
