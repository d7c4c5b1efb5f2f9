package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for transaction management.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	InvoicingElementRepo InvoicingElementReader
	JournalLineRepo      JournalLineReader
	DraftJournalLineRepo DraftJournalLineRepository
	CampaignRepo         CampaignRepository
	InjectedLineRepo     InjectedLineReader
	DraftInvoiceRepo     DraftInvoiceRepository
}
