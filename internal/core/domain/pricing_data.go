package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Booking statuses as reported by the bookings provider.
const (
	BookingStatusNotBooked = "not-booked"
	BookingStatusCancelled = "cancelled"
	BookingStatusPresence  = "presence"
	BookingStatusAbsence   = "absence"
)

// Adjustment reasons and info tags carried by synthesized correction lines.
const (
	ReasonMissingBooking      = "missing-booking"
	ReasonMissingCancellation = "missing-cancellation"

	InfoPricingChanged = "pricing-changed"
	InfoCorrection     = "correction"
)

// BookingDetails describes how the event was checked for the user.
type BookingDetails struct {
	Status         string `json:"status,omitempty"`
	CheckType      string `json:"check_type,omitempty"`
	CheckTypeGroup string `json:"check_type_group,omitempty"`
}

// CalculationDetails carries the pricing before any check-type modifier.
type CalculationDetails struct {
	Pricing decimal.Decimal `json:"pricing"`
}

// ComputedPricing is the pricing engine's decision for one event occurrence.
type ComputedPricing struct {
	Pricing            decimal.Decimal     `json:"pricing"`
	BookingDetails     BookingDetails      `json:"booking_details"`
	CalculationDetails *CalculationDetails `json:"calculation_details,omitempty"`
	AccountingCode     string              `json:"accounting_code,omitempty"`
}

// InitialPricing returns the pricing before modifiers when available,
// falling back to the final pricing.
func (c ComputedPricing) InitialPricing() decimal.Decimal {
	if c.CalculationDetails != nil {
		return c.CalculationDetails.Pricing
	}
	return c.Pricing
}

// AdjustmentDetails documents a synthesized correction line. Before and After
// reference the invoicing element numbers bounding the repaired gap.
type AdjustmentDetails struct {
	Reason string `json:"reason"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
	Info   string `json:"info,omitempty"`
}

// ErrorDetails records a collaborator failure attached to a journal line.
type ErrorDetails struct {
	Kind    string         `json:"error"`
	Details map[string]any `json:"error_details,omitempty"`
}

// PricingData is the tagged payload persisted with each journal line. Exactly
// one of Computed or Adjustment is set for regular lines; Err may accompany
// either when payer resolution failed, or stand alone for pricing failures.
type PricingData struct {
	Computed   *ComputedPricing
	Adjustment *AdjustmentDetails
	Err        *ErrorDetails
}

// IsZero reports whether the payload carries nothing. Lines with empty
// pricing data are placeholders and are skipped by the previous-campaign index.
func (p PricingData) IsZero() bool {
	return p.Computed == nil && p.Adjustment == nil && p.Err == nil
}

// BookingDetails returns the computed booking details, or zero details for
// adjustment and error payloads.
func (p PricingData) BookingDetails() BookingDetails {
	if p.Computed == nil {
		return BookingDetails{}
	}
	return p.Computed.BookingDetails
}

// pricingDataJSON mirrors the persisted jsonb schema.
type pricingDataJSON struct {
	Pricing            *decimal.Decimal    `json:"pricing,omitempty"`
	BookingDetails     *BookingDetails     `json:"booking_details,omitempty"`
	CalculationDetails *CalculationDetails `json:"calculation_details,omitempty"`
	AccountingCode     string              `json:"accounting_code,omitempty"`
	Adjustment         *AdjustmentDetails  `json:"adjustment,omitempty"`
	Error              string              `json:"error,omitempty"`
	ErrorDetails       map[string]any      `json:"error_details,omitempty"`
}

// MarshalJSON serializes to the persisted schema: computed fields are
// flattened at the top level, adjustment and error payloads keep their keys.
func (p PricingData) MarshalJSON() ([]byte, error) {
	out := pricingDataJSON{Adjustment: p.Adjustment}
	if p.Computed != nil {
		pricing := p.Computed.Pricing
		details := p.Computed.BookingDetails
		out.Pricing = &pricing
		out.BookingDetails = &details
		out.CalculationDetails = p.Computed.CalculationDetails
		out.AccountingCode = p.Computed.AccountingCode
	}
	if p.Err != nil {
		out.Error = p.Err.Kind
		out.ErrorDetails = p.Err.Details
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the persisted schema back into the tagged form.
func (p *PricingData) UnmarshalJSON(data []byte) error {
	var in pricingDataJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = PricingData{Adjustment: in.Adjustment}
	if in.Pricing != nil || in.BookingDetails != nil {
		computed := ComputedPricing{
			BookingDetails:     BookingDetails{},
			CalculationDetails: in.CalculationDetails,
			AccountingCode:     in.AccountingCode,
		}
		if in.Pricing != nil {
			computed.Pricing = *in.Pricing
		}
		if in.BookingDetails != nil {
			computed.BookingDetails = *in.BookingDetails
		}
		p.Computed = &computed
	}
	if in.Error != "" {
		p.Err = &ErrorDetails{Kind: in.Error, Details: in.ErrorDetails}
	}
	return nil
}
