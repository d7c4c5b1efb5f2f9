package services

import (
	"context"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
)

// PricingProvider is the external pricing engine. It selects the pricing
// model covering the event date and computes the decision for the check
// status; it fails with apperrors.PricingNotFoundError when no pricing
// covers the date and with apperrors.PricingError for other failures.
type PricingProvider interface {
	GetPricingDataForEvent(ctx context.Context, agenda domain.Agenda, entry domain.CheckStatusEntry, userExternalID, payerExternalID string) (domain.ComputedPricing, error)
}

// PayerResolver is the external payer lookup of the regie. Both methods fail
// with apperrors.PayerDataError when the payer cannot be determined.
type PayerResolver interface {
	GetPayerExternalID(ctx context.Context, regieID int64, userExternalID string, booking domain.Booking) (string, error)
	GetPayerData(ctx context.Context, regieID int64, payerExternalID string) (domain.PayerData, error)
}

// BookingsProvider is the external agenda/booking system supplying check
// statuses and subscriptions.
type BookingsProvider interface {
	GetCheckStatus(ctx context.Context, agendaSlugs []string, userExternalID string, dateStart, dateEnd time.Time) ([]domain.CheckStatusEntry, error)
	GetSubscriptions(ctx context.Context, agendaSlug string, dateStart, dateEnd time.Time) ([]domain.Subscription, error)
}
