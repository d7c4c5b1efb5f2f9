package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
)

// computedPricingOf returns the computed payload of a line, or a zero one
// for adjustment/error lines.
func computedPricingOf(line domain.JournalLine) domain.ComputedPricing {
	if line.PricingData.Computed == nil {
		return domain.ComputedPricing{}
	}
	return *line.PricingData.Computed
}

// calculationPricingOf returns the pre-modifier pricing of a line, zero
// when absent.
func calculationPricingOf(line domain.JournalLine) decimal.Decimal {
	computed := computedPricingOf(line)
	if computed.CalculationDetails == nil {
		return decimal.Zero
	}
	return computed.CalculationDetails.Pricing
}

// hasJournalLineChange reports whether the new decision diverges from the
// previous campaign's line: payer, pre-modifier pricing, booking status or
// check type. When only the check type group changed, the final pricing
// decides.
func hasJournalLineChange(previous, next domain.JournalLine) bool {
	oldComputed := computedPricingOf(previous)
	newComputed := computedPricingOf(next)
	if previous.PayerExternalID != next.PayerExternalID {
		return true
	}
	if !calculationPricingOf(previous).Equal(calculationPricingOf(next)) {
		return true
	}
	if oldComputed.BookingDetails.Status != newComputed.BookingDetails.Status {
		return true
	}
	if oldComputed.BookingDetails.CheckType != newComputed.BookingDetails.CheckType {
		return true
	}
	if oldComputed.BookingDetails.CheckTypeGroup != newComputed.BookingDetails.CheckTypeGroup {
		if !oldComputed.Pricing.Equal(newComputed.Pricing) {
			return true
		}
	}
	return false
}

// isPrepaidCheckLine reports whether the line is a presence/absence line of
// a prepaid booking: in an adjustment campaign the booking itself was
// invoiced up front, so the line's own amount is only the modifier
// (0, +initial for an unexpected presence, or -initial for a deduction).
func isPrepaidCheckLine(line domain.JournalLine) bool {
	status := line.PricingData.BookingDetails().Status
	return status == domain.BookingStatusPresence || status == domain.BookingStatusAbsence
}

// compareJournalLines compares the new pricing decision against the
// previous campaign's line for the same event occurrence and returns the
// correction lines plus the new line itself, or nothing when nothing
// changed. The previous line is never mutated. Corrections are stamped
// before the new line: a reversal must carry a lower sequence number than
// the line replacing it.
func (f *lineFactory) compareJournalLines(ctx context.Context, pricing domain.ComputedPricing, previous domain.JournalLine) []domain.JournalLine {
	next := f.buildNominal(pricing)
	if !hasJournalLineChange(previous, next) {
		return nil
	}

	if !f.pool.Campaign.AdjustmentCampaign {
		// nominal corrective case: reverse the previous line, add the new one
		cancel := f.correctionLine(ctx, ChainAdjustment{
			Quantity:        -correctionQuantity(previous.Quantity),
			Amount:          previous.Amount,
			PayerExternalID: previous.PayerExternalID,
			Info:            domain.InfoCorrection,
		})
		return []domain.JournalLine{cancel, f.stamp(next)}
	}

	// adjustment corrective case: bookings were prepaid, so rebalance the
	// prepayment before applying the new check type.
	var lines []domain.JournalLine
	if isPrepaidCheckLine(previous) && !previous.SignedAmount().IsNegative() {
		// previous modifier was 0% or +100%: refund the prepaid amount
		lines = append(lines, f.correctionLine(ctx, ChainAdjustment{
			Quantity:        -1,
			Amount:          calculationPricingOf(previous),
			PayerExternalID: previous.PayerExternalID,
			Info:            domain.InfoCorrection,
		}))
	}
	if isPrepaidCheckLine(next) && !next.SignedAmount().IsPositive() {
		// new modifier is 0% or -100%: the booking must be invoiced first
		lines = append(lines, f.correctionLine(ctx, ChainAdjustment{
			Quantity:        1,
			Amount:          calculationPricingOf(next),
			PayerExternalID: next.PayerExternalID,
			Info:            domain.InfoCorrection,
		}))
	}
	return append(lines, f.stamp(next))
}

// checkPrimaryCampaignAmounts verifies, for the first corrective campaign
// of a primary, that the primary campaign's own invoiced amount still
// matches the latest decision for a prepaid booking. It reads the existing
// chain instead of a previous journal line and emits a pricing-changed
// reversal/rebooking pair when payer or amount diverge.
func (f *lineFactory) checkPrimaryCampaignAmounts(ctx context.Context, checkTypes domain.CheckTypeIndex, previous domain.JournalLine, existingLines domain.ExistingLines) []domain.JournalLine {
	details := previous.PricingData.BookingDetails()
	if details.Status != domain.BookingStatusPresence && details.Status != domain.BookingStatusAbsence {
		// only presence/absence bookings carry a prepayment
		return nil
	}
	if ct, ok := checkTypes.Find(details); ok {
		if details.Status == domain.BookingStatusPresence && ct.UnexpectedPresence {
			// unexpected presences are not prepaid
			return nil
		}
	}

	eventSlug := previous.Slug
	if previous.Event.PrimaryEvent != "" {
		agenda, _, _ := strings.Cut(eventSlug, "@")
		eventSlug = agenda + "@" + previous.Event.PrimaryEvent
	}
	links := existingLines.ChainFor(eventSlug, previous.EventDate.Format(isoDate))
	last, ok := links.Last()
	if !ok {
		// no prepayment found, the primary campaign adjusted it already
		return nil
	}
	if !last.Booked {
		return nil
	}

	oldPricing := last.UnitAmount
	newPricing := calculationPricingOf(previous)
	if last.PayerExternalID == previous.PayerExternalID && oldPricing.Equal(newPricing) {
		return nil
	}
	return []domain.JournalLine{
		f.correctionLine(ctx, ChainAdjustment{
			Quantity:        -1,
			Amount:          oldPricing,
			PayerExternalID: last.PayerExternalID,
			Before:          last.InvoicingElementNumber,
			Info:            domain.InfoPricingChanged,
		}),
		f.correctionLine(ctx, ChainAdjustment{
			Quantity:        1,
			Amount:          newPricing,
			PayerExternalID: previous.PayerExternalID,
			Before:          last.InvoicingElementNumber,
			Info:            domain.InfoPricingChanged,
		}),
	}
}
