package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineDetails is the grouping metadata persisted with a draft invoice
// line, later used to rebuild chains (the "dates" set in particular).
type InvoiceLineDetails struct {
	Agenda          string   `json:"agenda,omitempty"`
	PrimaryEvent    string   `json:"primary_event,omitempty"`
	Status          string   `json:"status,omitempty"`
	CheckType       string   `json:"check_type,omitempty"`
	CheckTypeGroup  string   `json:"check_type_group,omitempty"`
	CheckTypeLabel  string   `json:"check_type_label,omitempty"`
	Dates           []string `json:"dates,omitempty"`
	EventTime       string   `json:"event_time,omitempty"`
	PartialBookings bool     `json:"partial_bookings,omitempty"`
}

// DraftInvoiceLine aggregates journal lines sharing the same grouping key
// into one displayable invoice line.
type DraftInvoiceLine struct {
	ID             string
	EventDate      time.Time
	Label          string
	Quantity       decimal.Decimal
	UnitAmount     decimal.Decimal
	Details        InvoiceLineDetails
	EventSlug      string
	EventLabel     string
	AgendaSlug     string
	ActivityLabel  string
	Description    string
	AccountingCode string
	UserExternalID string
	UserFirstName  string
	UserLastName   string
	PoolID         string
	InvoiceID      string

	// JournalLineIDs are the aggregated journal lines, linked back after
	// the invoice line is persisted.
	JournalLineIDs []string
}

// DraftInvoice is the per-payer document produced from a pool's journal lines.
type DraftInvoice struct {
	ID                  string
	Label               string
	DatePublication     time.Time
	DatePaymentDeadline time.Time
	DateDue             time.Time
	DateDebit           *time.Time
	RegieID             int64
	PayerExternalID     string
	Payer               PayerData
	PoolID              string
	Origin              string
	Lines               []DraftInvoiceLine
}
