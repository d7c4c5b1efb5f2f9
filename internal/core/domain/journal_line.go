package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineStatus reflects whether the line could be fully computed.
type LineStatus string

const (
	LineStatusSuccess LineStatus = "success"
	LineStatusWarning LineStatus = "warning"
	LineStatusError   LineStatus = "error"
)

// Quantity types.
const (
	QuantityUnits   = "units"
	QuantityMinutes = "minutes"
)

// PayerData is the resolved payer identity used to address invoices.
type PayerData struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DirectDebit bool   `json:"direct_debit"`
}

// JournalLine is one computed invoicing decision for one user, event, date
// and payer in one pool. Lines are immutable once built; corrections are
// expressed as additional lines, never as edits.
//
// Seq is a monotonically increasing sequence number assigned by the line
// builder at construction time and drives all later ordering.
type JournalLine struct {
	ID          string
	Seq         int64
	EventDate   time.Time
	Slug        string
	Label       string
	Description string

	Quantity     decimal.Decimal
	QuantityType string
	Amount       decimal.Decimal

	UserExternalID string
	UserFirstName  string
	UserLastName   string

	PayerExternalID string
	Payer           PayerData

	Event   Event
	Booking Booking

	PricingData PricingData
	Status      LineStatus
	ErrorStatus string

	PoolID             string
	FromInjectedLineID *int64
}

// SignedAmount is the net financial effect of the line (amount x quantity).
func (l JournalLine) SignedAmount() decimal.Decimal {
	return l.Amount.Mul(l.Quantity)
}

// IsAdjustment reports whether the line was synthesized by the
// reconciliation engine rather than computed from a pricing decision.
func (l JournalLine) IsAdjustment() bool {
	return l.PricingData.Adjustment != nil
}
