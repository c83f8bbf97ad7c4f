package domain

import "errors"

// ErrQuoteUnavailable marks a per-symbol quote failure. It is
// recoverable: the valuation engine degrades to the holding's average
// price for that line item.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// ErrQuoteSourceOutage marks a batch-level quote source failure. The
// quote cache recovers by serving the previous payload as stale when
// one exists.
var ErrQuoteSourceOutage = errors.New("quote source outage")

// ErrAccountNotFound is returned when no account exists for a user.
var ErrAccountNotFound = errors.New("account not found")

// InvalidTradeInputError rejects a trade request before any state
// change. It is a caller error and is never retried automatically.
type InvalidTradeInputError struct {
	Reason string
}

func (e *InvalidTradeInputError) Error() string {
	return "invalid trade input: " + e.Reason
}

// NewInvalidTradeInput builds an InvalidTradeInputError with the given reason.
func NewInvalidTradeInput(reason string) error {
	return &InvalidTradeInputError{Reason: reason}
}

// IsInvalidTradeInput reports whether err is an InvalidTradeInputError.
func IsInvalidTradeInput(err error) bool {
	var e *InvalidTradeInputError
	return errors.As(err, &e)
}
