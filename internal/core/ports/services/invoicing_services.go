package services

import (
	"context"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
)

// LineBuilderSvcFacade produces the journal lines of one pool run for one
// user: the baseline pricing lines plus any correction/adjustment lines
// required by the campaign kind.
type LineBuilderSvcFacade interface {
	// GetLinesForUser fetches the user's check statuses for the campaign
	// period, builds the journal lines and persists them as draft lines.
	// The cache is shared across the pool run.
	GetLinesForUser(ctx context.Context, pool domain.Pool, agendas []domain.Agenda, user domain.User, cache *domain.PayerDataCache) ([]domain.JournalLine, error)

	// ReplayError recomputes the lines of a single errored user/event,
	// replacing the pool's draft lines and regenerating the draft
	// invoices of the affected payers.
	ReplayError(ctx context.Context, errorLine domain.JournalLine) ([]domain.DraftInvoice, error)
}

// InvoiceGeneratorSvcFacade aggregates a pool's draft journal lines into
// per-payer draft invoices.
type InvoiceGeneratorSvcFacade interface {
	// GenerateInvoicesFromLines groups the pool's successful lines by
	// payer. A nil payerExternalIDs regenerates the whole pool.
	GenerateInvoicesFromLines(ctx context.Context, pool domain.Pool, payerExternalIDs []string) ([]domain.DraftInvoice, error)
}

// CampaignRunnerSvcFacade drives a whole pool run.
type CampaignRunnerSvcFacade interface {
	RunPool(ctx context.Context, poolID string) error
}
