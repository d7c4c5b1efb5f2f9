package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InjectedLinesMode controls which externally injected lines a campaign picks up.
type InjectedLinesMode string

const (
	InjectedLinesNone   InjectedLinesMode = "no"
	InjectedLinesAll    InjectedLinesMode = "all"
	InjectedLinesPeriod InjectedLinesMode = "period"
)

// PoolStatus is the lifecycle state of one campaign execution.
type PoolStatus string

const (
	PoolStatusRegistered PoolStatus = "registered"
	PoolStatusRunning    PoolStatus = "running"
	PoolStatusCompleted  PoolStatus = "completed"
	PoolStatusFailed     PoolStatus = "failed"
)

// Regie is the billing entity owning invoices, credits and payments.
type Regie struct {
	ID    int64
	Label string
	Slug  string
}

// Campaign is one billing run over a date range. A campaign is either
// primary, corrective (PrimaryCampaignID set, comparing against the previous
// campaign in the lineage) or flagged as an adjustment campaign (closing gaps
// against the live invoiced state).
type Campaign struct {
	ID                  int64
	RegieID             int64
	Label               string
	DateStart           time.Time
	DateEnd             time.Time
	DatePublication     time.Time
	DatePaymentDeadline time.Time
	DateDue             time.Time
	DateDebit           time.Time
	AdjustmentCampaign  bool
	PrimaryCampaignID   *int64
	InjectedLines       InjectedLinesMode
	AgendaSlugs         []string
}

// IsCorrective reports whether this campaign corrects a primary campaign.
func (c Campaign) IsCorrective() bool {
	return c.PrimaryCampaignID != nil
}

// Pool is one execution (draft or finalized) of a campaign.
type Pool struct {
	ID        string
	Campaign  Campaign
	Status    PoolStatus
	Draft     bool
	CreatedAt time.Time
}

// InjectedLine is an externally supplied charge waiting to be picked up by a
// campaign run.
type InjectedLine struct {
	ID               int64
	RegieID          int64
	EventDate        time.Time
	Slug             string
	Label            string
	Amount           decimal.Decimal
	UserExternalID   string
	PayerExternalID  string
	PayerFirstName   string
	PayerLastName    string
	PayerAddress     string
	PayerDirectDebit bool
}
