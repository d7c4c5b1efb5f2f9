package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
)

// --- Mock InvoicingElementReader ---
type MockInvoicingElementRepo struct {
	mock.Mock
}

var _ portsrepo.InvoicingElementReader = (*MockInvoicingElementRepo)(nil)

func (m *MockInvoicingElementRepo) FindInvoicingElementLines(ctx context.Context, regieID int64, dateMin, dateMax time.Time, userExternalID string, slugs []string) ([]domain.InvoicingElementLine, error) {
	args := m.Called(ctx, regieID, dateMin, dateMax, userExternalID, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoicingElementLine), args.Error(1)
}

// --- Mock JournalLineReader ---
type MockJournalLineRepo struct {
	mock.Mock
}

var _ portsrepo.JournalLineReader = (*MockJournalLineRepo)(nil)

func (m *MockJournalLineRepo) FindPreviousCampaignLines(ctx context.Context, primaryCampaignID int64, userExternalID string, slugs []string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, primaryCampaignID, userExternalID, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalLineRepo) HasPricingChangedLines(ctx context.Context, primaryCampaignID int64) (bool, error) {
	args := m.Called(ctx, primaryCampaignID)
	return args.Bool(0), args.Error(1)
}

// --- Mock DraftJournalLineRepository ---
type MockDraftJournalLineRepo struct {
	mock.Mock
}

var _ portsrepo.DraftJournalLineRepository = (*MockDraftJournalLineRepo)(nil)

func (m *MockDraftJournalLineRepo) BulkCreateDraftLines(ctx context.Context, lines []domain.JournalLine) error {
	args := m.Called(ctx, lines)
	return args.Error(0)
}

func (m *MockDraftJournalLineRepo) FindDraftLineByID(ctx context.Context, lineID string) (*domain.JournalLine, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalLine), args.Error(1)
}

func (m *MockDraftJournalLineRepo) FindResolvedErrors(ctx context.Context, poolID, userExternalID string) (map[string]domain.JournalLine, error) {
	args := m.Called(ctx, poolID, userExternalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.JournalLine), args.Error(1)
}

func (m *MockDraftJournalLineRepo) ListDraftLinesByPool(ctx context.Context, poolID string, payerExternalIDs []string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, poolID, payerExternalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockDraftJournalLineRepo) DeleteDraftLines(ctx context.Context, poolID, userExternalID string, eventDate time.Time, slug string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, poolID, userExternalID, eventDate, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

// --- Mock CampaignRepository ---
type MockCampaignRepo struct {
	mock.Mock
}

var _ portsrepo.CampaignRepository = (*MockCampaignRepo)(nil)

func (m *MockCampaignRepo) FindPool(ctx context.Context, poolID string) (*domain.Pool, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pool), args.Error(1)
}

func (m *MockCampaignRepo) UpdatePoolStatus(ctx context.Context, poolID string, status domain.PoolStatus) error {
	args := m.Called(ctx, poolID, status)
	return args.Error(0)
}

func (m *MockCampaignRepo) IsPoolRunning(ctx context.Context, poolID string) (bool, error) {
	args := m.Called(ctx, poolID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCampaignRepo) FindPreviousPool(ctx context.Context, campaignID int64, excludePoolID string) (*domain.Pool, error) {
	args := m.Called(ctx, campaignID, excludePoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pool), args.Error(1)
}

func (m *MockCampaignRepo) HasOtherCorrectiveCampaigns(ctx context.Context, primaryCampaignID, excludeCampaignID int64) (bool, error) {
	args := m.Called(ctx, primaryCampaignID, excludeCampaignID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCampaignRepo) FindCampaignAgendas(ctx context.Context, campaignID int64) ([]domain.Agenda, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Agenda), args.Error(1)
}

func (m *MockCampaignRepo) FindAgendaBySlug(ctx context.Context, slug string) (*domain.Agenda, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agenda), args.Error(1)
}

func (m *MockCampaignRepo) FindAgendas(ctx context.Context) ([]domain.Agenda, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Agenda), args.Error(1)
}

func (m *MockCampaignRepo) FindCheckTypes(ctx context.Context) (domain.CheckTypeIndex, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CheckTypeIndex), args.Error(1)
}

// --- Mock InjectedLineReader ---
type MockInjectedLineRepo struct {
	mock.Mock
}

var _ portsrepo.InjectedLineReader = (*MockInjectedLineRepo)(nil)

func (m *MockInjectedLineRepo) FindBillableInjectedLines(ctx context.Context, campaign domain.Campaign, userExternalID string) ([]domain.InjectedLine, error) {
	args := m.Called(ctx, campaign, userExternalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InjectedLine), args.Error(1)
}

// --- Mock DraftInvoiceRepository ---
type MockDraftInvoiceRepo struct {
	mock.Mock
}

var _ portsrepo.DraftInvoiceRepository = (*MockDraftInvoiceRepo)(nil)

func (m *MockDraftInvoiceRepo) SaveDraftInvoice(ctx context.Context, invoice *domain.DraftInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockDraftInvoiceRepo) DeleteDraftInvoicesForPayers(ctx context.Context, poolID string, payerExternalIDs []string) error {
	args := m.Called(ctx, poolID, payerExternalIDs)
	return args.Error(0)
}

// --- Mock PricingProvider ---
type MockPricingProvider struct {
	mock.Mock
}

var _ portssvc.PricingProvider = (*MockPricingProvider)(nil)

func (m *MockPricingProvider) GetPricingDataForEvent(ctx context.Context, agenda domain.Agenda, entry domain.CheckStatusEntry, userExternalID, payerExternalID string) (domain.ComputedPricing, error) {
	args := m.Called(ctx, agenda, entry, userExternalID, payerExternalID)
	return args.Get(0).(domain.ComputedPricing), args.Error(1)
}

// --- Mock PayerResolver ---
type MockPayerResolver struct {
	mock.Mock
}

var _ portssvc.PayerResolver = (*MockPayerResolver)(nil)

func (m *MockPayerResolver) GetPayerExternalID(ctx context.Context, regieID int64, userExternalID string, booking domain.Booking) (string, error) {
	args := m.Called(ctx, regieID, userExternalID, booking)
	return args.String(0), args.Error(1)
}

func (m *MockPayerResolver) GetPayerData(ctx context.Context, regieID int64, payerExternalID string) (domain.PayerData, error) {
	args := m.Called(ctx, regieID, payerExternalID)
	return args.Get(0).(domain.PayerData), args.Error(1)
}

// --- Mock BookingsProvider ---
type MockBookingsProvider struct {
	mock.Mock
}

var _ portssvc.BookingsProvider = (*MockBookingsProvider)(nil)

func (m *MockBookingsProvider) GetCheckStatus(ctx context.Context, agendaSlugs []string, userExternalID string, dateStart, dateEnd time.Time) ([]domain.CheckStatusEntry, error) {
	args := m.Called(ctx, agendaSlugs, userExternalID, dateStart, dateEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CheckStatusEntry), args.Error(1)
}

func (m *MockBookingsProvider) GetSubscriptions(ctx context.Context, agendaSlug string, dateStart, dateEnd time.Time) ([]domain.Subscription, error) {
	args := m.Called(ctx, agendaSlug, dateStart, dateEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

// --- Mock LineBuilderSvcFacade ---
type MockLineBuilder struct {
	mock.Mock
}

var _ portssvc.LineBuilderSvcFacade = (*MockLineBuilder)(nil)

func (m *MockLineBuilder) GetLinesForUser(ctx context.Context, pool domain.Pool, agendas []domain.Agenda, user domain.User, cache *domain.PayerDataCache) ([]domain.JournalLine, error) {
	args := m.Called(ctx, pool, agendas, user, cache)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockLineBuilder) ReplayError(ctx context.Context, errorLine domain.JournalLine) ([]domain.DraftInvoice, error) {
	args := m.Called(ctx, errorLine)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DraftInvoice), args.Error(1)
}

// --- Mock InvoiceGeneratorSvcFacade ---
type MockInvoiceGenerator struct {
	mock.Mock
}

var _ portssvc.InvoiceGeneratorSvcFacade = (*MockInvoiceGenerator)(nil)

func (m *MockInvoiceGenerator) GenerateInvoicesFromLines(ctx context.Context, pool domain.Pool, payerExternalIDs []string) ([]domain.DraftInvoice, error) {
	args := m.Called(ctx, pool, payerExternalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DraftInvoice), args.Error(1)
}
