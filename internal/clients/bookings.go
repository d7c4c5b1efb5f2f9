package clients

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/platform/config"
)

const apiDate = "2006-01-02"

// BookingsClient fetches check statuses and subscriptions from the remote
// bookings service.
type BookingsClient struct {
	api *apiClient
}

// NewBookingsClient creates a bookings client against cfg.BookingsAPIURL.
func NewBookingsClient(cfg *config.Config) *BookingsClient {
	return &BookingsClient{api: newAPIClient(cfg.BookingsAPIURL, cfg)}
}

var _ portssvc.BookingsProvider = (*BookingsClient)(nil)

// GetCheckStatus returns the user's check status entries for the agendas
// over [dateStart, dateEnd).
func (c *BookingsClient) GetCheckStatus(ctx context.Context, agendaSlugs []string, userExternalID string, dateStart, dateEnd time.Time) ([]domain.CheckStatusEntry, error) {
	query := url.Values{}
	query.Set("agendas", strings.Join(agendaSlugs, ","))
	query.Set("user_external_id", userExternalID)
	query.Set("date_start", dateStart.Format(apiDate))
	query.Set("date_end", dateEnd.Format(apiDate))

	var entries []domain.CheckStatusEntry
	if err := c.api.getJSON(ctx, "/api/agendas/check-status/", query, &entries); err != nil {
		return nil, fmt.Errorf("fetching check status: %w", err)
	}
	return entries, nil
}

// GetSubscriptions returns the agenda's subscriptions overlapping the period.
func (c *BookingsClient) GetSubscriptions(ctx context.Context, agendaSlug string, dateStart, dateEnd time.Time) ([]domain.Subscription, error) {
	query := url.Values{}
	query.Set("date_start", dateStart.Format(apiDate))
	query.Set("date_end", dateEnd.Format(apiDate))

	var subscriptions []domain.Subscription
	path := fmt.Sprintf("/api/agenda/%s/subscription/", url.PathEscape(agendaSlug))
	if err := c.api.getJSON(ctx, path, query, &subscriptions); err != nil {
		return nil, fmt.Errorf("fetching subscriptions: %w", err)
	}
	return subscriptions, nil
}
