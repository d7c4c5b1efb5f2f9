package services

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/apperrors"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
)

// lineFactory stamps out journal lines for one user and event from a
// baseline template, assigning each line a fresh identifier and a strictly
// increasing sequence number so that persisted ordering is stable.
type lineFactory struct {
	pool     domain.Pool
	payers   portssvc.PayerResolver
	cache    *domain.PayerDataCache
	template domain.JournalLine
	seq      *atomic.Int64
}

func (f *lineFactory) stamp(line domain.JournalLine) domain.JournalLine {
	line.ID = uuid.NewString()
	line.Seq = f.seq.Add(1)
	line.PoolID = f.pool.ID
	return line
}

// buildNominal builds the baseline line for a pricing decision, without
// stamping it. A negative pricing flips to a positive amount with negated
// quantity. In an adjustment campaign a presence without check type is
// prepaid and its amount forced to zero.
func (f *lineFactory) buildNominal(pricing domain.ComputedPricing) domain.JournalLine {
	line := f.template
	amount := pricing.Pricing
	quantity := line.Quantity
	if amount.IsNegative() {
		amount = amount.Neg()
		quantity = quantity.Neg()
	}
	details := pricing.BookingDetails
	if f.pool.Campaign.AdjustmentCampaign &&
		details.Status == domain.BookingStatusPresence && details.CheckType == "" {
		amount = decimal.Zero
	}
	line.Amount = amount
	line.Quantity = quantity
	line.PricingData = domain.PricingData{Computed: &pricing}
	return line
}

func (f *lineFactory) nominalLine(pricing domain.ComputedPricing) domain.JournalLine {
	return f.stamp(f.buildNominal(pricing))
}

// correctionLine builds a synthesized adjustment line from the template. A
// payer resolution failure does not abort the correction: the line degrades
// to error status with blanked payer identity fields.
func (f *lineFactory) correctionLine(ctx context.Context, adj ChainAdjustment) domain.JournalLine {
	line := f.template
	line.Quantity = decimal.NewFromInt(adj.Quantity)
	line.Amount = adj.Amount
	line.PayerExternalID = adj.PayerExternalID
	line.PricingData = domain.PricingData{Adjustment: &domain.AdjustmentDetails{
		Reason: adj.Reason(),
		Before: adj.Before,
		After:  adj.After,
		Info:   adj.Info,
	}}

	payerData, err := f.cache.GetOrResolve(adj.PayerExternalID, func() (domain.PayerData, error) {
		return f.payers.GetPayerData(ctx, f.pool.Campaign.RegieID, adj.PayerExternalID)
	})
	if err != nil {
		var payerErr *apperrors.PayerDataError
		if !errors.As(err, &payerErr) {
			payerErr = &apperrors.PayerDataError{}
		}
		line.Payer = domain.PayerData{}
		line.Status = domain.LineStatusError
		line.PricingData.Err = &domain.ErrorDetails{
			Kind:    apperrors.ErrorKind(err),
			Details: payerErr.Details,
		}
		return f.stamp(line)
	}
	line.Payer = payerData
	line.Status = domain.LineStatusSuccess
	return f.stamp(line)
}

// correctionQuantity derives a ChainAdjustment quantity from a decimal
// quantity, used when reversing a previous line.
func correctionQuantity(q decimal.Decimal) int64 {
	if q.IsNegative() {
		return -1
	}
	return 1
}
