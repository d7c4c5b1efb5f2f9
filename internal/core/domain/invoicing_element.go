package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoicingElementKind distinguishes invoice lines from credit lines.
type InvoicingElementKind string

const (
	ElementInvoice InvoicingElementKind = "invoice"
	ElementCredit  InvoicingElementKind = "credit"
)

// AdjustmentRef is the before/after annotation persisted with a line for one
// covered date, referencing neighbouring invoicing element numbers.
type AdjustmentRef struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// InvoicingElementLine is a flattened invoice or credit line row as read
// from the store: one persisted line with the identity of its parent
// document (the invoicing element).
type InvoicingElementLine struct {
	Kind             InvoicingElementKind
	EventSlug        string
	Dates            []string
	UnitAmount       decimal.Decimal
	TotalAmount      decimal.Decimal
	PayerExternalID  string
	ElementNumber    string
	ElementCreatedAt time.Time
	// AdjustmentRefs maps covered ISO dates to their adjustment annotations.
	AdjustmentRefs map[string]AdjustmentRef
}

// AsLink classifies the row as a booking or cancellation movement.
// A negative-total invoice line, or a positive-total credit line, is a
// cancellation; everything else is a booking.
func (e InvoicingElementLine) AsLink() Link {
	booked := true
	if e.Kind == ElementInvoice && e.TotalAmount.IsNegative() {
		booked = false
	}
	if e.Kind == ElementCredit && e.TotalAmount.IsPositive() {
		booked = false
	}
	return Link{
		PayerExternalID:        e.PayerExternalID,
		UnitAmount:             e.UnitAmount.Abs(),
		Booked:                 booked,
		InvoicingElementNumber: e.ElementNumber,
	}
}
