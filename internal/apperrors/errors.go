package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// PricingError is the base failure of the pricing engine for one event and
// date. It aborts that single event's line computation; the line is recorded
// with error status and processing continues with the next event.
type PricingError struct {
	Kind    string
	Details map[string]any
}

func (e *PricingError) Error() string {
	return fmt.Sprintf("pricing error: %s", e.Kind)
}

// NewPricingError builds a PricingError with an identifying kind.
func NewPricingError(kind string, details map[string]any) *PricingError {
	return &PricingError{Kind: kind, Details: details}
}

// PricingNotFoundError means no pricing model covers the event date. It can
// happen when pricings are defined for only part of the requested period, so
// the resulting line is a warning rather than an error.
type PricingNotFoundError struct {
	PricingError
}

// NewPricingNotFoundError builds a PricingNotFoundError.
func NewPricingNotFoundError(details map[string]any) *PricingNotFoundError {
	return &PricingNotFoundError{PricingError{Kind: "PricingNotFound", Details: details}}
}

// PayerDataError means the payer could not be resolved for one event and
// date. The affected line degrades to error status with blanked payer
// identity fields; numeric fields are preserved and processing continues.
type PayerDataError struct {
	Details map[string]any
}

func (e *PayerDataError) Error() string {
	return "payer data error"
}

// NewPayerDataError builds a PayerDataError.
func NewPayerDataError(details map[string]any) *PayerDataError {
	return &PayerDataError{Details: details}
}

// ErrorKind returns the persisted error identifier for a collaborator failure.
func ErrorKind(err error) string {
	var notFound *PricingNotFoundError
	if errors.As(err, &notFound) {
		return "PricingNotFound"
	}
	var pricing *PricingError
	if errors.As(err, &pricing) {
		return pricing.Kind
	}
	var payer *PayerDataError
	if errors.As(err, &payer) {
		return "PayerError"
	}
	return "Error"
}

// ErrorDetails extracts the details payload of a collaborator failure.
func ErrorDetails(err error) map[string]any {
	var pricing *PricingError
	if errors.As(err, &pricing) {
		return pricing.Details
	}
	var payer *PayerDataError
	if errors.As(err, &payer) {
		return payer.Details
	}
	return nil
}
