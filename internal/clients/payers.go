package clients

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/apperrors"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/platform/config"
)

// PayersClient resolves payers and their contact data from the remote user
// directory. Failures are surfaced as typed payer errors so correction lines
// can degrade instead of aborting.
type PayersClient struct {
	api *apiClient
}

// NewPayersClient creates a payers client against cfg.PayersAPIURL.
func NewPayersClient(cfg *config.Config) *PayersClient {
	return &PayersClient{api: newAPIClient(cfg.PayersAPIURL, cfg)}
}

var _ portssvc.PayerResolver = (*PayersClient)(nil)

// GetPayerExternalID resolves the payer responsible for the user's bookings.
func (c *PayersClient) GetPayerExternalID(ctx context.Context, regieID int64, userExternalID string, booking domain.Booking) (string, error) {
	query := url.Values{}
	query.Set("user_external_id", userExternalID)

	var payload struct {
		PayerExternalID string `json:"payer_external_id"`
	}
	path := fmt.Sprintf("/api/regie/%d/payer/", regieID)
	if err := c.api.getJSON(ctx, path, query, &payload); err != nil {
		return "", wrapPayerError(err)
	}
	if payload.PayerExternalID == "" {
		return "", apperrors.NewPayerDataError(map[string]any{"reason": "empty payer external id"})
	}
	return payload.PayerExternalID, nil
}

// GetPayerData fetches the payer's invoicing identity.
func (c *PayersClient) GetPayerData(ctx context.Context, regieID int64, payerExternalID string) (domain.PayerData, error) {
	var data domain.PayerData
	path := fmt.Sprintf("/api/regie/%d/payer/%s/", regieID, url.PathEscape(payerExternalID))
	if err := c.api.getJSON(ctx, path, nil, &data); err != nil {
		return domain.PayerData{}, wrapPayerError(err)
	}
	return data, nil
}

func wrapPayerError(err error) error {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		details := apiErr.Details
		if details == nil {
			details = map[string]any{"reason": apiErr.Kind}
		}
		return apperrors.NewPayerDataError(details)
	}
	return apperrors.NewPayerDataError(map[string]any{"reason": err.Error()})
}
