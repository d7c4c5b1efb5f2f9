package domain

import "github.com/shopspring/decimal"

// Link is one historical financial movement (a booking or its cancellation)
// for a specific user, event and date, as carried by a persisted invoice or
// credit line.
type Link struct {
	PayerExternalID        string
	UnitAmount             decimal.Decimal
	Booked                 bool
	InvoicingElementNumber string
}

// Chain is the ordered booking/cancellation history for one event occurrence.
type Chain []Link

// Last returns the final link of the chain, or false when the chain is empty.
func (c Chain) Last() (Link, bool) {
	if len(c) == 0 {
		return Link{}, false
	}
	return c[len(c)-1], true
}

// ExistingLines indexes chains by combined event slug ("agenda@event") and
// ISO date ("2006-01-02").
type ExistingLines map[string]map[string]Chain

// ChainFor returns the chain for an event slug and ISO date, or nil.
func (e ExistingLines) ChainFor(slug, date string) Chain {
	return e[slug][date]
}
