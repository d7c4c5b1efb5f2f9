package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DraftInvoice mirrors the draft_invoices table.
type DraftInvoice struct {
	InvoiceID           string     `json:"invoiceID"` // Primary Key (UUID)
	Label               string     `json:"label"`
	DatePublication     time.Time  `json:"datePublication"`
	DatePaymentDeadline time.Time  `json:"datePaymentDeadline"`
	DateDue             time.Time  `json:"dateDue"`
	DateDebit           *time.Time `json:"dateDebit,omitempty"`
	RegieID             int64      `json:"regieID"`

	PayerExternalID  string `json:"payerExternalID"`
	PayerFirstName   string `json:"payerFirstName"`
	PayerLastName    string `json:"payerLastName"`
	PayerAddress     string `json:"payerAddress"`
	PayerEmail       string `json:"payerEmail"`
	PayerPhone       string `json:"payerPhone"`
	PayerDirectDebit bool   `json:"payerDirectDebit"`

	PoolID string `json:"poolID"`
	Origin string `json:"origin"`
}

// DraftInvoiceLine mirrors the draft_invoice_lines table. Details is stored
// as jsonb.
type DraftInvoiceLine struct {
	InvoiceLineID  string          `json:"invoiceLineID"` // Primary Key (UUID)
	InvoiceID      string          `json:"invoiceID"`
	EventDate      time.Time       `json:"eventDate"`
	Label          string          `json:"label"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitAmount     decimal.Decimal `json:"unitAmount"`
	Details        json.RawMessage `json:"details"`
	EventSlug      string          `json:"eventSlug"`
	EventLabel     string          `json:"eventLabel"`
	AgendaSlug     string          `json:"agendaSlug"`
	ActivityLabel  string          `json:"activityLabel"`
	Description    string          `json:"description"`
	AccountingCode string          `json:"accountingCode"`
	UserExternalID string          `json:"userExternalID"`
	UserFirstName  string          `json:"userFirstName"`
	UserLastName   string          `json:"userLastName"`
	PoolID         string          `json:"poolID"`
}
