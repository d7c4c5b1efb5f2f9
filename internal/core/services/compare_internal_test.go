package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/apperrors"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
)

type stubPayers struct {
	fail bool
}

func (s stubPayers) GetPayerExternalID(ctx context.Context, regieID int64, userExternalID string, booking domain.Booking) (string, error) {
	return "payer:1", nil
}

func (s stubPayers) GetPayerData(ctx context.Context, regieID int64, payerExternalID string) (domain.PayerData, error) {
	if s.fail {
		return domain.PayerData{}, apperrors.NewPayerDataError(map[string]any{"payer_external_id": payerExternalID})
	}
	return domain.PayerData{FirstName: "Jane", LastName: "Doe", Address: "1 rue du Chateau"}, nil
}

func newCompareFactory(adjustment bool, payers stubPayers) *lineFactory {
	var seq atomic.Int64
	return &lineFactory{
		pool: domain.Pool{
			ID:       "pool-1",
			Campaign: domain.Campaign{ID: 7, RegieID: 1, AdjustmentCampaign: adjustment},
		},
		payers: payers,
		cache:  domain.NewPayerDataCache(),
		template: domain.JournalLine{
			EventDate:       time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC),
			Slug:            "school@lunch",
			Label:           "Lunch",
			Quantity:        decimal.NewFromInt(1),
			QuantityType:    domain.QuantityUnits,
			UserExternalID:  "user:1",
			UserFirstName:   "Lily",
			UserLastName:    "Doe",
			PayerExternalID: "payer:1",
			Status:          domain.LineStatusSuccess,
		},
		seq: &seq,
	}
}

func decision(status, checkType, group string, pricing, initial float64) domain.ComputedPricing {
	return domain.ComputedPricing{
		Pricing: decimal.NewFromFloat(pricing),
		BookingDetails: domain.BookingDetails{
			Status:         status,
			CheckType:      checkType,
			CheckTypeGroup: group,
		},
		CalculationDetails: &domain.CalculationDetails{Pricing: decimal.NewFromFloat(initial)},
	}
}

func TestHasJournalLineChange(t *testing.T) {
	base := func() domain.JournalLine {
		pricing := decision(domain.BookingStatusPresence, "", "", 10, 10)
		return domain.JournalLine{
			PayerExternalID: "payer:1",
			PricingData:     domain.PricingData{Computed: &pricing},
		}
	}

	same := base()
	assert.False(t, hasJournalLineChange(base(), same))

	payer := base()
	payer.PayerExternalID = "payer:2"
	assert.True(t, hasJournalLineChange(base(), payer))

	repriced := base()
	repriced.PricingData.Computed.CalculationDetails.Pricing = decimal.NewFromInt(12)
	assert.True(t, hasJournalLineChange(base(), repriced))

	status := base()
	status.PricingData.Computed.BookingDetails.Status = domain.BookingStatusAbsence
	assert.True(t, hasJournalLineChange(base(), status))

	checked := base()
	checked.PricingData.Computed.BookingDetails.CheckType = "late"
	assert.True(t, hasJournalLineChange(base(), checked))

	// group moved but the final pricing is identical
	regrouped := base()
	regrouped.PricingData.Computed.BookingDetails.CheckTypeGroup = "other"
	assert.False(t, hasJournalLineChange(base(), regrouped))

	regrouped.PricingData.Computed.Pricing = decimal.NewFromInt(8)
	assert.True(t, hasJournalLineChange(base(), regrouped))
}

func TestCompareJournalLines_NoChange(t *testing.T) {
	f := newCompareFactory(false, stubPayers{})
	pricing := decision(domain.BookingStatusPresence, "", "", 10, 10)
	previous := f.nominalLine(pricing)

	assert.Nil(t, f.compareJournalLines(context.Background(), pricing, previous))
}

func TestCompareJournalLines_Corrective(t *testing.T) {
	f := newCompareFactory(false, stubPayers{})
	previous := f.nominalLine(decision(domain.BookingStatusPresence, "", "", 10, 10))

	lines := f.compareJournalLines(context.Background(), decision(domain.BookingStatusAbsence, "", "", 0, 10), previous)
	require.Len(t, lines, 2)

	cancel := lines[0]
	require.NotNil(t, cancel.PricingData.Adjustment)
	assert.True(t, cancel.Quantity.Equal(decimal.NewFromInt(-1)))
	assert.True(t, cancel.Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, domain.ReasonMissingCancellation, cancel.PricingData.Adjustment.Reason)
	assert.Equal(t, domain.InfoCorrection, cancel.PricingData.Adjustment.Info)
	assert.Equal(t, domain.LineStatusSuccess, cancel.Status)
	assert.Equal(t, "Jane", cancel.Payer.FirstName)

	next := lines[1]
	require.NotNil(t, next.PricingData.Computed)
	assert.True(t, next.Amount.IsZero())
	assert.Equal(t, domain.BookingStatusAbsence, next.PricingData.Computed.BookingDetails.Status)
	assert.Greater(t, next.Seq, cancel.Seq)
}

func TestCompareJournalLines_AdjustmentRebalance(t *testing.T) {
	f := newCompareFactory(true, stubPayers{})
	// prepaid presence, amount forced to zero by the adjustment campaign
	previous := f.nominalLine(decision(domain.BookingStatusPresence, "", "", 10, 10))
	require.True(t, previous.Amount.IsZero())

	// reclassified as a deducted absence (-100% modifier)
	lines := f.compareJournalLines(context.Background(), decision(domain.BookingStatusAbsence, "illness", "absences", -10, 10), previous)
	require.Len(t, lines, 3)

	refund := lines[0]
	require.NotNil(t, refund.PricingData.Adjustment)
	assert.True(t, refund.Quantity.Equal(decimal.NewFromInt(-1)))
	assert.True(t, refund.Amount.Equal(decimal.NewFromInt(10)))

	rebook := lines[1]
	require.NotNil(t, rebook.PricingData.Adjustment)
	assert.True(t, rebook.Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, rebook.Amount.Equal(decimal.NewFromInt(10)))

	next := lines[2]
	require.NotNil(t, next.PricingData.Computed)
	assert.True(t, next.Amount.Equal(decimal.NewFromInt(10)))
	assert.True(t, next.Quantity.Equal(decimal.NewFromInt(-1)))

	// sequence numbers follow emission order, rebalancing before the new line
	assert.Greater(t, rebook.Seq, refund.Seq)
	assert.Greater(t, next.Seq, rebook.Seq)
}

func TestCorrectionLine_PayerFailure(t *testing.T) {
	f := newCompareFactory(false, stubPayers{fail: true})

	line := f.correctionLine(context.Background(), ChainAdjustment{
		Quantity:        -1,
		Amount:          decimal.NewFromInt(10),
		PayerExternalID: "payer:1",
		Info:            domain.InfoCorrection,
	})

	assert.Equal(t, domain.LineStatusError, line.Status)
	assert.Equal(t, domain.PayerData{}, line.Payer)
	require.NotNil(t, line.PricingData.Err)
	assert.Equal(t, "PayerError", line.PricingData.Err.Kind)
	// numeric fields survive the failure
	assert.True(t, line.Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "payer:1", line.PayerExternalID)
}

func TestCheckPrimaryCampaignAmounts(t *testing.T) {
	checkTypes := domain.CheckTypeIndex{
		{Slug: "surprise", Group: "grp", Status: "presence"}: {
			Slug: "surprise", Group: "grp", Kind: "presence", UnexpectedPresence: true,
		},
	}
	eventDate := "2023-03-06"

	previousFor := func(f *lineFactory, pricing domain.ComputedPricing) domain.JournalLine {
		line := f.template
		line.PricingData = domain.PricingData{Computed: &pricing}
		return line
	}

	t.Run("cancelled booking is not prepaid", func(t *testing.T) {
		f := newCompareFactory(true, stubPayers{})
		previous := previousFor(f, decision(domain.BookingStatusCancelled, "", "", 0, 10))
		assert.Nil(t, f.checkPrimaryCampaignAmounts(context.Background(), checkTypes, previous, nil))
	})

	t.Run("unexpected presence is not prepaid", func(t *testing.T) {
		f := newCompareFactory(true, stubPayers{})
		previous := previousFor(f, decision(domain.BookingStatusPresence, "surprise", "grp", 10, 10))
		assert.Nil(t, f.checkPrimaryCampaignAmounts(context.Background(), checkTypes, previous, nil))
	})

	t.Run("no chain or cancelled chain yields nothing", func(t *testing.T) {
		f := newCompareFactory(true, stubPayers{})
		previous := previousFor(f, decision(domain.BookingStatusPresence, "", "", 10, 10))

		assert.Nil(t, f.checkPrimaryCampaignAmounts(context.Background(), checkTypes, previous, domain.ExistingLines{}))

		cancelled := domain.ExistingLines{"school@lunch": {eventDate: domain.Chain{
			{PayerExternalID: "payer:1", UnitAmount: decimal.NewFromInt(10), Booked: true, InvoicingElementNumber: "F-1"},
			{PayerExternalID: "payer:1", UnitAmount: decimal.NewFromInt(10), Booked: false, InvoicingElementNumber: "A-1"},
		}}}
		assert.Nil(t, f.checkPrimaryCampaignAmounts(context.Background(), checkTypes, previous, cancelled))
	})

	t.Run("matching prepayment yields nothing", func(t *testing.T) {
		f := newCompareFactory(true, stubPayers{})
		previous := previousFor(f, decision(domain.BookingStatusPresence, "", "", 10, 10))
		existing := domain.ExistingLines{"school@lunch": {eventDate: domain.Chain{
			{PayerExternalID: "payer:1", UnitAmount: decimal.NewFromInt(10), Booked: true, InvoicingElementNumber: "F-1"},
		}}}
		assert.Nil(t, f.checkPrimaryCampaignAmounts(context.Background(), checkTypes, previous, existing))
	})

	t.Run("repriced prepayment emits a reversal pair", func(t *testing.T) {
		f := newCompareFactory(true, stubPayers{})
		previous := previousFor(f, decision(domain.BookingStatusAbsence, "", "", 0, 12))
		existing := domain.ExistingLines{"school@lunch": {eventDate: domain.Chain{
			{PayerExternalID: "payer:2", UnitAmount: decimal.NewFromInt(10), Booked: true, InvoicingElementNumber: "F-1"},
		}}}

		lines := f.checkPrimaryCampaignAmounts(context.Background(), checkTypes, previous, existing)
		require.Len(t, lines, 2)

		reverse := lines[0]
		require.NotNil(t, reverse.PricingData.Adjustment)
		assert.True(t, reverse.Quantity.Equal(decimal.NewFromInt(-1)))
		assert.True(t, reverse.Amount.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "payer:2", reverse.PayerExternalID)
		assert.Equal(t, "F-1", reverse.PricingData.Adjustment.Before)
		assert.Equal(t, domain.InfoPricingChanged, reverse.PricingData.Adjustment.Info)

		rebook := lines[1]
		require.NotNil(t, rebook.PricingData.Adjustment)
		assert.True(t, rebook.Quantity.Equal(decimal.NewFromInt(1)))
		assert.True(t, rebook.Amount.Equal(decimal.NewFromInt(12)))
		assert.Equal(t, "payer:1", rebook.PayerExternalID)
		assert.Equal(t, "F-1", rebook.PricingData.Adjustment.Before)
	})
}
