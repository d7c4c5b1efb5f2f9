package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
)

// errPoolStopped signals that the pool left the running state mid-run.
var errPoolStopped = errors.New("pool is no longer running")

// campaignRunnerSvc drives a full pool run: collect the subscribed users of
// the campaign's agendas, build their journal lines with bounded
// concurrency, then generate the per-payer draft invoices.
type campaignRunnerSvc struct {
	repos       portsrepo.RepositoryProvider
	bookings    portssvc.BookingsProvider
	lineBuilder portssvc.LineBuilderSvcFacade
	invoiceGen  portssvc.InvoiceGeneratorSvcFacade
	concurrency int
	logger      *slog.Logger
}

// NewCampaignRunnerService creates the pool runner. Concurrency bounds the
// number of users processed in parallel.
func NewCampaignRunnerService(repos portsrepo.RepositoryProvider, bookings portssvc.BookingsProvider, lineBuilder portssvc.LineBuilderSvcFacade, invoiceGen portssvc.InvoiceGeneratorSvcFacade, concurrency int, logger *slog.Logger) portssvc.CampaignRunnerSvcFacade {
	if concurrency < 1 {
		concurrency = 1
	}
	return &campaignRunnerSvc{
		repos:       repos,
		bookings:    bookings,
		lineBuilder: lineBuilder,
		invoiceGen:  invoiceGen,
		concurrency: concurrency,
		logger:      logger,
	}
}

var _ portssvc.CampaignRunnerSvcFacade = (*campaignRunnerSvc)(nil)

// RunPool executes the pool end to end and records the outcome on the pool
// status. A pool cancelled from outside (status flipped away from running)
// stops cleanly without failing.
func (s *campaignRunnerSvc) RunPool(ctx context.Context, poolID string) error {
	pool, err := s.repos.CampaignRepo.FindPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("loading pool %s: %w", poolID, err)
	}
	if pool.Status != domain.PoolStatusRunning {
		if err := s.repos.CampaignRepo.UpdatePoolStatus(ctx, poolID, domain.PoolStatusRunning); err != nil {
			return err
		}
		pool.Status = domain.PoolStatusRunning
	}

	if err := s.runPool(ctx, *pool); err != nil {
		if errors.Is(err, errPoolStopped) {
			s.logger.Info("pool run stopped", slog.String("pool", poolID))
			return nil
		}
		s.logger.Error("pool run failed", slog.String("pool", poolID), slog.String("error", err.Error()))
		if statusErr := s.repos.CampaignRepo.UpdatePoolStatus(ctx, poolID, domain.PoolStatusFailed); statusErr != nil {
			return errors.Join(err, statusErr)
		}
		return err
	}
	return s.repos.CampaignRepo.UpdatePoolStatus(ctx, poolID, domain.PoolStatusCompleted)
}

func (s *campaignRunnerSvc) runPool(ctx context.Context, pool domain.Pool) error {
	campaign := pool.Campaign
	agendas, err := s.repos.CampaignRepo.FindCampaignAgendas(ctx, campaign.ID)
	if err != nil {
		return err
	}
	users, err := s.subscribedUsers(ctx, agendas, campaign)
	if err != nil {
		return err
	}
	s.logger.Info("running pool",
		slog.String("pool", pool.ID),
		slog.Int64("campaign", campaign.ID),
		slog.Int("agendas", len(agendas)),
		slog.Int("users", len(users)))

	cache := domain.NewPayerDataCache()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, user := range users {
		user := user
		g.Go(func() error {
			running, err := s.repos.CampaignRepo.IsPoolRunning(gctx, pool.ID)
			if err != nil {
				return err
			}
			if !running {
				return errPoolStopped
			}
			if _, err := s.lineBuilder.GetLinesForUser(gctx, pool, agendas, user, cache); err != nil {
				return fmt.Errorf("building lines for user %s: %w", user.ExternalID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	_, err = s.invoiceGen.GenerateInvoicesFromLines(ctx, pool, nil)
	return err
}

// subscribedUsers collects the distinct users subscribed to any of the
// agendas over the campaign period, in stable external id order.
func (s *campaignRunnerSvc) subscribedUsers(ctx context.Context, agendas []domain.Agenda, campaign domain.Campaign) ([]domain.User, error) {
	seen := make(map[string]domain.User)
	for _, agenda := range agendas {
		subscriptions, err := s.bookings.GetSubscriptions(ctx, agenda.Slug, campaign.DateStart, campaign.DateEnd)
		if err != nil {
			return nil, fmt.Errorf("fetching subscriptions of agenda %s: %w", agenda.Slug, err)
		}
		for _, sub := range subscriptions {
			if _, ok := seen[sub.UserExternalID]; ok {
				continue
			}
			seen[sub.UserExternalID] = domain.User{
				ExternalID: sub.UserExternalID,
				FirstName:  sub.UserFirstName,
				LastName:   sub.UserLastName,
			}
		}
	}
	users := make([]domain.User, 0, len(seen))
	for _, user := range seen {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ExternalID < users[j].ExternalID })
	return users, nil
}
