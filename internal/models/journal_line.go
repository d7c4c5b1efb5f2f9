package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DraftJournalLine mirrors the draft_journal_lines table. Event, Booking and
// PricingData are stored as jsonb.
type DraftJournalLine struct {
	LineID      string          `json:"lineID"` // Primary Key (UUID)
	Seq         int64           `json:"seq"`
	EventDate   time.Time       `json:"eventDate"`
	Slug        string          `json:"slug"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	QuantityType string         `json:"quantityType"`
	Amount      decimal.Decimal `json:"amount"`

	UserExternalID string `json:"userExternalID"`
	UserFirstName  string `json:"userFirstName"`
	UserLastName   string `json:"userLastName"`

	PayerExternalID  string `json:"payerExternalID"`
	PayerFirstName   string `json:"payerFirstName"`
	PayerLastName    string `json:"payerLastName"`
	PayerAddress     string `json:"payerAddress"`
	PayerEmail       string `json:"payerEmail"`
	PayerPhone       string `json:"payerPhone"`
	PayerDirectDebit bool   `json:"payerDirectDebit"`

	Event       json.RawMessage `json:"event"`
	Booking     json.RawMessage `json:"booking"`
	PricingData json.RawMessage `json:"pricingData"`

	Status      string `json:"status"`
	ErrorStatus string `json:"errorStatus"`

	PoolID             string  `json:"poolID"`
	FromInjectedLineID *int64  `json:"fromInjectedLineID,omitempty"`
	InvoiceLineID      *string `json:"invoiceLineID,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
