package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/services"
)

type runnerFixture struct {
	campaignRepo *MockCampaignRepo
	bookings     *MockBookingsProvider
	lineBuilder  *MockLineBuilder
	invoiceGen   *MockInvoiceGenerator

	svc portssvc.CampaignRunnerSvcFacade
}

func newRunnerFixture() *runnerFixture {
	f := &runnerFixture{
		campaignRepo: new(MockCampaignRepo),
		bookings:     new(MockBookingsProvider),
		lineBuilder:  new(MockLineBuilder),
		invoiceGen:   new(MockInvoiceGenerator),
	}
	repos := portsrepo.RepositoryProvider{CampaignRepo: f.campaignRepo}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = services.NewCampaignRunnerService(repos, f.bookings, f.lineBuilder, f.invoiceGen, 2, logger)
	return f
}

func TestRunPool_Success(t *testing.T) {
	f := newRunnerFixture()
	pool := marchPool(nil)
	pool.Status = domain.PoolStatusRegistered
	agendas := []domain.Agenda{{Slug: "school", Label: "School"}}

	f.campaignRepo.On("FindPool", mock.Anything, "pool-1").Return(&pool, nil)
	f.campaignRepo.On("UpdatePoolStatus", mock.Anything, "pool-1", domain.PoolStatusRunning).Return(nil)
	f.campaignRepo.On("FindCampaignAgendas", mock.Anything, int64(7)).Return(agendas, nil)
	f.bookings.On("GetSubscriptions", mock.Anything, "school", pool.Campaign.DateStart, pool.Campaign.DateEnd).
		Return([]domain.Subscription{
			{UserExternalID: "user:2", UserFirstName: "Tom"},
			{UserExternalID: "user:1", UserFirstName: "Lily"},
			{UserExternalID: "user:2", UserFirstName: "Tom"},
		}, nil)
	f.campaignRepo.On("IsPoolRunning", mock.Anything, "pool-1").Return(true, nil)
	f.lineBuilder.On("GetLinesForUser", mock.Anything, mock.Anything, agendas, mock.Anything, mock.Anything).
		Return([]domain.JournalLine{}, nil)
	f.invoiceGen.On("GenerateInvoicesFromLines", mock.Anything, mock.Anything, []string(nil)).
		Return([]domain.DraftInvoice{}, nil)
	f.campaignRepo.On("UpdatePoolStatus", mock.Anything, "pool-1", domain.PoolStatusCompleted).Return(nil)

	err := f.svc.RunPool(context.Background(), "pool-1")
	require.NoError(t, err)

	// duplicate subscriptions collapse to one user each
	f.lineBuilder.AssertNumberOfCalls(t, "GetLinesForUser", 2)
	f.campaignRepo.AssertCalled(t, "UpdatePoolStatus", mock.Anything, "pool-1", domain.PoolStatusCompleted)
	f.invoiceGen.AssertExpectations(t)
}

func TestRunPool_StoppedFromOutside(t *testing.T) {
	f := newRunnerFixture()
	pool := marchPool(nil)
	agendas := []domain.Agenda{{Slug: "school", Label: "School"}}

	f.campaignRepo.On("FindPool", mock.Anything, "pool-1").Return(&pool, nil)
	f.campaignRepo.On("FindCampaignAgendas", mock.Anything, int64(7)).Return(agendas, nil)
	f.bookings.On("GetSubscriptions", mock.Anything, "school", pool.Campaign.DateStart, pool.Campaign.DateEnd).
		Return([]domain.Subscription{{UserExternalID: "user:1"}}, nil)
	f.campaignRepo.On("IsPoolRunning", mock.Anything, "pool-1").Return(false, nil)

	// stopping is not a failure and must not flip the pool status
	err := f.svc.RunPool(context.Background(), "pool-1")
	require.NoError(t, err)
	f.campaignRepo.AssertNotCalled(t, "UpdatePoolStatus", mock.Anything, mock.Anything, mock.Anything)
	f.lineBuilder.AssertNotCalled(t, "GetLinesForUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.invoiceGen.AssertNotCalled(t, "GenerateInvoicesFromLines", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunPool_FailureMarksPoolFailed(t *testing.T) {
	f := newRunnerFixture()
	pool := marchPool(nil)
	agendas := []domain.Agenda{{Slug: "school", Label: "School"}}
	cause := errors.New("bookings provider unavailable")

	f.campaignRepo.On("FindPool", mock.Anything, "pool-1").Return(&pool, nil)
	f.campaignRepo.On("FindCampaignAgendas", mock.Anything, int64(7)).Return(agendas, nil)
	f.bookings.On("GetSubscriptions", mock.Anything, "school", pool.Campaign.DateStart, pool.Campaign.DateEnd).
		Return(nil, cause)
	f.campaignRepo.On("UpdatePoolStatus", mock.Anything, "pool-1", domain.PoolStatusFailed).Return(nil)

	err := f.svc.RunPool(context.Background(), "pool-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	f.campaignRepo.AssertCalled(t, "UpdatePoolStatus", mock.Anything, "pool-1", domain.PoolStatusFailed)
}
