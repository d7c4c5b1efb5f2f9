package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/services"
)

type invoiceFixture struct {
	draftRepo    *MockDraftJournalLineRepo
	campaignRepo *MockCampaignRepo
	invoiceRepo  *MockDraftInvoiceRepo

	svc portssvc.InvoiceGeneratorSvcFacade
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		draftRepo:    new(MockDraftJournalLineRepo),
		campaignRepo: new(MockCampaignRepo),
		invoiceRepo:  new(MockDraftInvoiceRepo),
	}
	repos := portsrepo.RepositoryProvider{
		DraftJournalLineRepo: f.draftRepo,
		CampaignRepo:         f.campaignRepo,
		DraftInvoiceRepo:     f.invoiceRepo,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = services.NewInvoiceGeneratorService(repos, logger)
	return f
}

func (f *invoiceFixture) expectCatalogs(agendas []domain.Agenda) {
	f.campaignRepo.On("FindAgendas", mock.Anything).Return(agendas, nil)
	f.campaignRepo.On("FindCheckTypes", mock.Anything).Return(domain.CheckTypeIndex{}, nil)
}

func (f *invoiceFixture) captureSaved() *[]domain.DraftInvoice {
	var saved []domain.DraftInvoice
	f.invoiceRepo.On("SaveDraftInvoice", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = append(saved, *args.Get(1).(*domain.DraftInvoice))
	}).Return(nil)
	return &saved
}

func recurringLine(id string, seq int64, day int, amount float64, payer string) domain.JournalLine {
	date := time.Date(2023, 3, day, 0, 0, 0, 0, time.UTC)
	pricing := domain.ComputedPricing{
		Pricing:        decimal.NewFromFloat(amount),
		BookingDetails: domain.BookingDetails{Status: domain.BookingStatusPresence},
	}
	return domain.JournalLine{
		ID:              id,
		Seq:             seq,
		EventDate:       date,
		Slug:            "school@lunch-" + date.Format("2006-01-02"),
		Label:           "Lunch",
		Quantity:        decimal.NewFromInt(1),
		QuantityType:    domain.QuantityUnits,
		Amount:          decimal.NewFromFloat(amount),
		UserExternalID:  "user:1",
		PayerExternalID: payer,
		Payer:           domain.PayerData{FirstName: "Jane", LastName: "Doe"},
		Event: domain.Event{
			Agenda:        "school",
			Slug:          "lunch-" + date.Format("2006-01-02"),
			PrimaryEvent:  "lunch",
			Label:         "Lunch",
			StartDatetime: date.Add(12 * time.Hour),
		},
		PricingData: domain.PricingData{Computed: &pricing},
		Status:      domain.LineStatusSuccess,
		PoolID:      "pool-1",
	}
}

func adjustmentLine(id string, seq int64, day int, reason string, amount float64) domain.JournalLine {
	line := recurringLine(id, seq, day, amount, "payer:1")
	quantity := decimal.NewFromInt(1)
	if reason == domain.ReasonMissingCancellation {
		quantity = decimal.NewFromInt(-1)
	}
	line.Quantity = quantity
	line.PricingData = domain.PricingData{Adjustment: &domain.AdjustmentDetails{Reason: reason}}
	return line
}

func TestGenerateInvoicesFromLines_GroupsRecurringLines(t *testing.T) {
	f := newInvoiceFixture()
	pool := marchPool(nil)

	errored := recurringLine("jl-3", 3, 8, 10, "payer:1")
	errored.Status = domain.LineStatusError
	lines := []domain.JournalLine{
		recurringLine("jl-1", 1, 6, 10, "payer:1"),
		recurringLine("jl-2", 2, 7, 10, "payer:1"),
		errored,
	}

	f.draftRepo.On("ListDraftLinesByPool", mock.Anything, "pool-1", []string(nil)).Return(lines, nil)
	f.expectCatalogs([]domain.Agenda{{Slug: "school", Label: "School"}})
	f.campaignRepo.On("IsPoolRunning", mock.Anything, "pool-1").Return(true, nil)
	saved := f.captureSaved()

	invoices, err := f.svc.GenerateInvoicesFromLines(context.Background(), pool, nil)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.Len(t, *saved, 1)

	invoice := invoices[0]
	assert.Equal(t, "Invoice from 01/03/2023 to 31/03/2023", invoice.Label)
	assert.Equal(t, "payer:1", invoice.PayerExternalID)
	assert.Equal(t, "campaign", invoice.Origin)
	assert.Nil(t, invoice.DateDebit)

	require.Len(t, invoice.Lines, 1)
	line := invoice.Lines[0]
	assert.Equal(t, "Lunch", line.Label)
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, line.UnitAmount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "school@lunch", line.EventSlug)
	assert.Equal(t, "School", line.ActivityLabel)
	assert.Equal(t, "06/03, 07/03", line.Description)
	assert.Equal(t, []string{"2023-03-06", "2023-03-07"}, line.Details.Dates)
	assert.Equal(t, "12:00:00", line.Details.EventTime)
	assert.ElementsMatch(t, []string{"jl-1", "jl-2"}, line.JournalLineIDs)
}

func TestGenerateInvoicesFromLines_DirectDebit(t *testing.T) {
	f := newInvoiceFixture()
	pool := marchPool(func(c *domain.Campaign) {
		c.DateDebit = time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC)
	})

	line := recurringLine("jl-1", 1, 6, 10, "payer:1")
	line.Payer.DirectDebit = true

	f.draftRepo.On("ListDraftLinesByPool", mock.Anything, "pool-1", []string(nil)).
		Return([]domain.JournalLine{line}, nil)
	f.expectCatalogs([]domain.Agenda{{Slug: "school", Label: "School"}})
	f.campaignRepo.On("IsPoolRunning", mock.Anything, "pool-1").Return(true, nil)
	f.captureSaved()

	invoices, err := f.svc.GenerateInvoicesFromLines(context.Background(), pool, nil)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.NotNil(t, invoices[0].DateDebit)
	assert.Equal(t, pool.Campaign.DateDebit, *invoices[0].DateDebit)
}

func TestGenerateInvoicesFromLines_OppositeRegularizationsCancelOut(t *testing.T) {
	f := newInvoiceFixture()
	pool := marchPool(nil)

	lines := []domain.JournalLine{
		adjustmentLine("jl-1", 1, 6, domain.ReasonMissingBooking, 10),
		adjustmentLine("jl-2", 2, 6, domain.ReasonMissingCancellation, 10),
	}

	f.draftRepo.On("ListDraftLinesByPool", mock.Anything, "pool-1", []string(nil)).Return(lines, nil)
	f.expectCatalogs([]domain.Agenda{{Slug: "school", Label: "School"}})
	f.campaignRepo.On("IsPoolRunning", mock.Anything, "pool-1").Return(true, nil)

	invoices, err := f.svc.GenerateInvoicesFromLines(context.Background(), pool, nil)
	require.NoError(t, err)
	assert.Empty(t, invoices)
	f.invoiceRepo.AssertNotCalled(t, "SaveDraftInvoice", mock.Anything, mock.Anything)
}

func TestGenerateInvoicesFromLines_RegularizationOnDifferentDateSurvives(t *testing.T) {
	f := newInvoiceFixture()
	pool := marchPool(nil)

	lines := []domain.JournalLine{
		adjustmentLine("jl-1", 1, 6, domain.ReasonMissingBooking, 10),
		adjustmentLine("jl-2", 2, 7, domain.ReasonMissingCancellation, 10),
	}

	f.draftRepo.On("ListDraftLinesByPool", mock.Anything, "pool-1", []string(nil)).Return(lines, nil)
	f.expectCatalogs([]domain.Agenda{{Slug: "school", Label: "School"}})
	f.campaignRepo.On("IsPoolRunning", mock.Anything, "pool-1").Return(true, nil)
	f.captureSaved()

	invoices, err := f.svc.GenerateInvoicesFromLines(context.Background(), pool, nil)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.Len(t, invoices[0].Lines, 2)
	assert.Equal(t, "Booking (regularization)", invoices[0].Lines[0].Details.CheckTypeLabel)
	assert.Equal(t, "06/03", invoices[0].Lines[0].Description)
	assert.Equal(t, "Cancellation (regularization)", invoices[0].Lines[1].Details.CheckTypeLabel)
	assert.Equal(t, "07/03", invoices[0].Lines[1].Description)
}

func TestGenerateInvoicesFromLines_BookedHours(t *testing.T) {
	f := newInvoiceFixture()
	pool := marchPool(nil)

	first := recurringLine("jl-1", 1, 6, 2, "payer:1")
	first.Description = "@booked-hours@"
	first.Quantity = decimal.NewFromInt(90)
	first.QuantityType = domain.QuantityMinutes
	second := recurringLine("jl-2", 2, 7, 2, "payer:1")
	second.Description = "@booked-hours@"
	second.Quantity = decimal.NewFromInt(30)
	second.QuantityType = domain.QuantityMinutes

	f.draftRepo.On("ListDraftLinesByPool", mock.Anything, "pool-1", []string(nil)).
		Return([]domain.JournalLine{first, second}, nil)
	f.expectCatalogs([]domain.Agenda{{Slug: "school", Label: "School", PartialBookings: true}})
	f.campaignRepo.On("IsPoolRunning", mock.Anything, "pool-1").Return(true, nil)
	f.captureSaved()

	invoices, err := f.svc.GenerateInvoicesFromLines(context.Background(), pool, nil)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.Len(t, invoices[0].Lines, 1)

	line := invoices[0].Lines[0]
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "2 booked hours for the period", line.Description)
	assert.True(t, line.Details.PartialBookings)
}

func TestGenerateInvoicesFromLines_OneOffEvent(t *testing.T) {
	f := newInvoiceFixture()
	pool := marchPool(nil)

	line := adjustmentLine("jl-1", 1, 6, domain.ReasonMissingCancellation, 10)
	line.Event.PrimaryEvent = ""
	line.Slug = "school@party"

	f.draftRepo.On("ListDraftLinesByPool", mock.Anything, "pool-1", []string(nil)).
		Return([]domain.JournalLine{line}, nil)
	f.expectCatalogs([]domain.Agenda{{Slug: "school", Label: "School"}})
	f.campaignRepo.On("IsPoolRunning", mock.Anything, "pool-1").Return(true, nil)
	f.captureSaved()

	invoices, err := f.svc.GenerateInvoicesFromLines(context.Background(), pool, nil)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.Len(t, invoices[0].Lines, 1)

	got := invoices[0].Lines[0]
	assert.Equal(t, "school@party", got.EventSlug)
	assert.Equal(t, line.EventDate, got.EventDate)
	assert.Equal(t, "Cancellation (regularization)", got.Description)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(-1)))
	assert.Equal(t, []string{"jl-1"}, got.JournalLineIDs)
}

func TestGenerateInvoicesFromLines_PoolStopped(t *testing.T) {
	f := newInvoiceFixture()
	pool := marchPool(nil)

	f.draftRepo.On("ListDraftLinesByPool", mock.Anything, "pool-1", []string(nil)).
		Return([]domain.JournalLine{recurringLine("jl-1", 1, 6, 10, "payer:1")}, nil)
	f.expectCatalogs(nil)
	f.campaignRepo.On("IsPoolRunning", mock.Anything, "pool-1").Return(false, nil)

	invoices, err := f.svc.GenerateInvoicesFromLines(context.Background(), pool, nil)
	require.NoError(t, err)
	assert.Empty(t, invoices)
	f.invoiceRepo.AssertNotCalled(t, "SaveDraftInvoice", mock.Anything, mock.Anything)
}
