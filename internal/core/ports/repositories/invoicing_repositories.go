package repositories

import (
	"context"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
)

// InvoicingElementReader reads persisted invoice and credit lines, flattened
// with the identity of their parent document. Implementations must restrict
// results to non-cancelled documents of the given regie that are either
// poolless or attached to the latest non-draft pool of their campaign, and
// exclude zero-total lines.
type InvoicingElementReader interface {
	// FindInvoicingElementLines returns lines for the user and event slugs
	// whose covered dates intersect [dateMin, dateMax).
	FindInvoicingElementLines(ctx context.Context, regieID int64, dateMin, dateMax time.Time, userExternalID string, slugs []string) ([]domain.InvoicingElementLine, error)
}

// JournalLineReader reads finalized journal lines of past campaigns.
type JournalLineReader interface {
	// FindPreviousCampaignLines returns, for each (slug, event date), the
	// most recent journal line across the primary campaign and its
	// corrective descendants (most recent pool first, then highest
	// sequence), restricted to lines carrying booking details.
	FindPreviousCampaignLines(ctx context.Context, primaryCampaignID int64, userExternalID string, slugs []string) ([]domain.JournalLine, error)

	// HasPricingChangedLines reports whether any journal line of the
	// primary campaign's pools carries a pricing-changed adjustment.
	HasPricingChangedLines(ctx context.Context, primaryCampaignID int64) (bool, error)
}

// DraftJournalLineRepository persists the draft lines produced by a pool run.
type DraftJournalLineRepository interface {
	BulkCreateDraftLines(ctx context.Context, lines []domain.JournalLine) error

	FindDraftLineByID(ctx context.Context, lineID string) (*domain.JournalLine, error)

	// FindResolvedErrors returns, by slug, the error-status draft lines of
	// the pool that carry a non-empty error status (errors marked as
	// resolved or ignored in a previous run).
	FindResolvedErrors(ctx context.Context, poolID, userExternalID string) (map[string]domain.JournalLine, error)

	// ListDraftLinesByPool returns the pool's draft lines in sequence
	// order, optionally restricted to the given payers.
	ListDraftLinesByPool(ctx context.Context, poolID string, payerExternalIDs []string) ([]domain.JournalLine, error)

	// DeleteDraftLines removes the draft lines of one user, event date and
	// slug from the pool, returning the removed lines.
	DeleteDraftLines(ctx context.Context, poolID, userExternalID string, eventDate time.Time, slug string) ([]domain.JournalLine, error)
}

// CampaignRepository reads campaign, pool and agenda configuration and
// updates pool lifecycle state.
type CampaignRepository interface {
	FindPool(ctx context.Context, poolID string) (*domain.Pool, error)

	UpdatePoolStatus(ctx context.Context, poolID string, status domain.PoolStatus) error

	// IsPoolRunning reports whether the pool is still in running state;
	// pool runs stop early once it is not.
	IsPoolRunning(ctx context.Context, poolID string) (bool, error)

	// FindPreviousPool returns the most recently created pool of the
	// campaign other than the given one, or nil.
	FindPreviousPool(ctx context.Context, campaignID int64, excludePoolID string) (*domain.Pool, error)

	// HasOtherCorrectiveCampaigns reports whether another corrective
	// campaign exists for the primary campaign.
	HasOtherCorrectiveCampaigns(ctx context.Context, primaryCampaignID, excludeCampaignID int64) (bool, error)

	// FindCampaignAgendas returns the campaign's agendas that have a
	// non-flat-fee pricing overlapping the campaign period.
	FindCampaignAgendas(ctx context.Context, campaignID int64) ([]domain.Agenda, error)

	FindAgendaBySlug(ctx context.Context, slug string) (*domain.Agenda, error)

	FindAgendas(ctx context.Context) ([]domain.Agenda, error)

	FindCheckTypes(ctx context.Context) (domain.CheckTypeIndex, error)
}

// InjectedLineReader reads externally injected charges.
type InjectedLineReader interface {
	// FindBillableInjectedLines returns the user's injected lines for the
	// campaign's regie with event date before the campaign end (restricted
	// to the campaign period in "period" mode), excluding lines already
	// invoiced or claimed by a draft line of another campaign.
	FindBillableInjectedLines(ctx context.Context, campaign domain.Campaign, userExternalID string) ([]domain.InjectedLine, error)
}

// DraftInvoiceRepository persists draft invoices generated from journal lines.
type DraftInvoiceRepository interface {
	// SaveDraftInvoice persists the invoice with its lines and links the
	// aggregated journal lines back to them, atomically.
	SaveDraftInvoice(ctx context.Context, invoice *domain.DraftInvoice) error

	// DeleteDraftInvoicesForPayers removes the pool's draft invoices and
	// invoice lines for the given payers, unlinking their journal lines.
	DeleteDraftInvoicesForPayers(ctx context.Context, poolID string, payerExternalIDs []string) error
}
