package services

import (
	"github.com/shopspring/decimal"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
)

// TerminalState is how a chain must end to be consistent with the latest
// pricing decision.
type TerminalState int

const (
	// TerminalCancelled means the chain must end in a cancellation (or be
	// empty): no net booking remains.
	TerminalCancelled TerminalState = iota
	// TerminalBooked means the chain must end in a booking with the
	// decision's payer and amount.
	TerminalBooked
)

// ChainAdjustment is one synthesized correction closing a gap in a chain.
// Quantity is +1 for a missing booking and -1 for a missing cancellation.
// Before and After reference the invoicing element numbers bounding the gap.
type ChainAdjustment struct {
	Quantity        int64
	Amount          decimal.Decimal
	PayerExternalID string
	Before          string
	After           string
	Info            string
}

// Reason returns the adjustment reason derived from the quantity sign.
func (a ChainAdjustment) Reason() string {
	if a.Quantity == -1 {
		return domain.ReasonMissingCancellation
	}
	return domain.ReasonMissingBooking
}

// TerminalStateFor classifies the desired terminal state of a chain from a
// pricing decision. Presences checked with the group's unexpected-presence
// type are billed by the campaign itself, so their chain must end cancelled.
// The second return value is false for statuses outside the reconciliation
// scope.
func TerminalStateFor(pricing domain.ComputedPricing, checkTypes domain.CheckTypeIndex) (TerminalState, bool) {
	status := pricing.BookingDetails.Status
	if status == domain.BookingStatusPresence {
		if ct, ok := checkTypes.Find(pricing.BookingDetails); ok && ct.UnexpectedPresence {
			return TerminalCancelled, true
		}
	}
	switch status {
	case domain.BookingStatusNotBooked, domain.BookingStatusCancelled:
		return TerminalCancelled, true
	case domain.BookingStatusPresence, domain.BookingStatusAbsence:
		return TerminalBooked, true
	}
	return TerminalCancelled, false
}

// ReconcileChain walks the existing chain for one event occurrence and
// returns the corrections required so that the chain, extended with them,
// alternates booking/cancellation correctly and ends in the desired state.
// currentPricing and currentPayerExternalID describe the latest pricing
// decision; they only matter when the desired state is TerminalBooked.
//
// Feeding the output back as part of the chain yields no further
// corrections.
func ReconcileChain(final TerminalState, currentPricing decimal.Decimal, currentPayerExternalID string, chain domain.Chain) []ChainAdjustment {
	return checkLinks(final, currentPricing, currentPayerExternalID, chain, "", true)
}

// checkLinks is the recursive walker. previousNumber carries the invoicing
// element number preceding the remaining links, referenced as Before by a
// correction opening right after it. fixWhenPricingChanged guards the
// tail payer/amount comparison against the latest decision.
func checkLinks(final TerminalState, currentPricing decimal.Decimal, currentPayerExternalID string, remaining domain.Chain, previousNumber string, fixWhenPricingChanged bool) []ChainAdjustment {
	if len(remaining) == 0 {
		if final == TerminalBooked {
			// chain exhausted without a final booking
			return []ChainAdjustment{{
				Quantity:        1,
				Amount:          currentPricing,
				PayerExternalID: currentPayerExternalID,
				Before:          previousNumber,
			}}
		}
		return nil
	}

	first := remaining[0]
	if !first.Booked {
		// dangling cancellation: the booking it reverses was never invoiced
		out := []ChainAdjustment{{
			Quantity:        1,
			Amount:          first.UnitAmount,
			PayerExternalID: first.PayerExternalID,
			Before:          previousNumber,
			After:           first.InvoicingElementNumber,
		}}
		return append(out, checkLinks(final, currentPricing, currentPayerExternalID, remaining[1:], "", fixWhenPricingChanged)...)
	}

	if len(remaining) == 1 {
		if final == TerminalCancelled {
			// trailing booking that must be reversed
			return []ChainAdjustment{{
				Quantity:        -1,
				Amount:          first.UnitAmount,
				PayerExternalID: first.PayerExternalID,
				Before:          first.InvoicingElementNumber,
			}}
		}
		if !fixWhenPricingChanged {
			return nil
		}
		if first.PayerExternalID != currentPayerExternalID || !first.UnitAmount.Equal(currentPricing) {
			// trailing booking no longer matches the decision: reverse it
			// and rebook with the new payer and amount
			return []ChainAdjustment{
				{
					Quantity:        -1,
					Amount:          first.UnitAmount,
					PayerExternalID: first.PayerExternalID,
					Before:          first.InvoicingElementNumber,
					Info:            domain.InfoPricingChanged,
				},
				{
					Quantity:        1,
					Amount:          currentPricing,
					PayerExternalID: currentPayerExternalID,
					Before:          first.InvoicingElementNumber,
					Info:            domain.InfoPricingChanged,
				},
			}
		}
		return nil
	}

	second := remaining[1]
	if second.Booked {
		// two bookings in a row: the cancellation between them is missing
		out := []ChainAdjustment{{
			Quantity:        -1,
			Amount:          first.UnitAmount,
			PayerExternalID: first.PayerExternalID,
			Before:          first.InvoicingElementNumber,
			After:           second.InvoicingElementNumber,
		}}
		return append(out, checkLinks(final, currentPricing, currentPayerExternalID, remaining[1:], "", fixWhenPricingChanged)...)
	}

	var out []ChainAdjustment
	if !first.UnitAmount.Equal(second.UnitAmount) || first.PayerExternalID != second.PayerExternalID {
		// booking and its cancellation disagree on payer or amount: close
		// the booking as invoiced, then rebook what the cancellation undid
		out = append(out,
			ChainAdjustment{
				Quantity:        -1,
				Amount:          first.UnitAmount,
				PayerExternalID: first.PayerExternalID,
				Before:          first.InvoicingElementNumber,
				After:           second.InvoicingElementNumber,
			},
			ChainAdjustment{
				Quantity:        1,
				Amount:          second.UnitAmount,
				PayerExternalID: second.PayerExternalID,
				Before:          first.InvoicingElementNumber,
				After:           second.InvoicingElementNumber,
			},
		)
	}
	return append(out, checkLinks(final, currentPricing, currentPayerExternalID, remaining[2:], second.InvoicingElementNumber, fixWhenPricingChanged)...)
}
