package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign mirrors the campaigns table.
type Campaign struct {
	CampaignID          int64     `json:"campaignID"` // Primary Key
	RegieID             int64     `json:"regieID"`
	Label               string    `json:"label"`
	DateStart           time.Time `json:"dateStart"`
	DateEnd             time.Time `json:"dateEnd"`
	DatePublication     time.Time `json:"datePublication"`
	DatePaymentDeadline time.Time `json:"datePaymentDeadline"`
	DateDue             time.Time `json:"dateDue"`
	DateDebit           time.Time `json:"dateDebit"`
	AdjustmentCampaign  bool      `json:"adjustmentCampaign"`
	PrimaryCampaignID   *int64    `json:"primaryCampaignID,omitempty"`
	InjectedLines       string    `json:"injectedLines"`
}

// Pool mirrors the pools table.
type Pool struct {
	PoolID    string    `json:"poolID"` // Primary Key (UUID)
	CampaignID int64    `json:"campaignID"`
	Status    string    `json:"status"`
	Draft     bool      `json:"draft"`
	CreatedAt time.Time `json:"createdAt"`
}

// Agenda mirrors the agendas table.
type Agenda struct {
	Slug            string `json:"slug"` // Primary Key
	Label           string `json:"label"`
	PartialBookings bool   `json:"partialBookings"`
}

// CheckType mirrors the check_types table.
type CheckType struct {
	Slug               string `json:"slug"`
	GroupSlug          string `json:"groupSlug"`
	Label              string `json:"label"`
	Kind               string `json:"kind"`
	UnexpectedPresence bool   `json:"unexpectedPresence"`
}

// InjectedLine mirrors the injected_lines table.
type InjectedLine struct {
	InjectedLineID   int64           `json:"injectedLineID"` // Primary Key
	RegieID          int64           `json:"regieID"`
	EventDate        time.Time       `json:"eventDate"`
	Slug             string          `json:"slug"`
	Label            string          `json:"label"`
	Amount           decimal.Decimal `json:"amount"`
	UserExternalID   string          `json:"userExternalID"`
	PayerExternalID  string          `json:"payerExternalID"`
	PayerFirstName   string          `json:"payerFirstName"`
	PayerLastName    string          `json:"payerLastName"`
	PayerAddress     string          `json:"payerAddress"`
	PayerDirectDebit bool            `json:"payerDirectDebit"`
}
