package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// InvoicingElementLine is the flattened read model of a persisted invoice or
// credit line joined with its parent document. Dates and AdjustmentRefs are
// stored as jsonb.
type InvoicingElementLine struct {
	Kind             string          `json:"kind"`
	EventSlug        string          `json:"eventSlug"`
	Dates            json.RawMessage `json:"dates"`
	UnitAmount       decimal.Decimal `json:"unitAmount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PayerExternalID  string          `json:"payerExternalID"`
	ElementNumber    string          `json:"elementNumber"`
	ElementCreatedAt time.Time       `json:"elementCreatedAt"`
	AdjustmentRefs   json.RawMessage `json:"adjustmentRefs"`
}
