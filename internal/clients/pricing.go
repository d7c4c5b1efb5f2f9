package clients

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/apperrors"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/platform/config"
)

// PricingClient computes pricing decisions through the remote pricing
// service. Remote pricing failures are surfaced as typed pricing errors so
// the line builder can degrade the line instead of aborting the user.
type PricingClient struct {
	api *apiClient
}

// NewPricingClient creates a pricing client against cfg.PricingAPIURL.
func NewPricingClient(cfg *config.Config) *PricingClient {
	return &PricingClient{api: newAPIClient(cfg.PricingAPIURL, cfg)}
}

var _ portssvc.PricingProvider = (*PricingClient)(nil)

// GetPricingDataForEvent prices one event occurrence for the user.
func (c *PricingClient) GetPricingDataForEvent(ctx context.Context, agenda domain.Agenda, entry domain.CheckStatusEntry, userExternalID, payerExternalID string) (domain.ComputedPricing, error) {
	query := url.Values{}
	query.Set("agenda", agenda.Slug)
	query.Set("event", entry.Event.Slug)
	query.Set("date", entry.Event.Date().Format(apiDate))
	query.Set("user_external_id", userExternalID)
	query.Set("payer_external_id", payerExternalID)
	query.Set("status", entry.CheckStatus.Status)
	if entry.CheckStatus.CheckType != "" {
		query.Set("check_type", entry.CheckStatus.CheckType)
	}

	var pricing domain.ComputedPricing
	if err := c.api.getJSON(ctx, "/api/pricing/compute/", query, &pricing); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusNotFound {
				return domain.ComputedPricing{}, apperrors.NewPricingNotFoundError(apiErr.Details)
			}
			return domain.ComputedPricing{}, apperrors.NewPricingError(apiErr.Kind, apiErr.Details)
		}
		return domain.ComputedPricing{}, err
	}
	return pricing, nil
}
