package pgsql

import (
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		InvoicingElementRepo: newPgxInvoicingElementRepository(dbPool),
		JournalLineRepo:      newPgxJournalLineRepository(dbPool),
		DraftJournalLineRepo: newPgxDraftJournalLineRepository(dbPool),
		CampaignRepo:         newPgxCampaignRepository(dbPool),
		InjectedLineRepo:     newPgxInjectedLineRepository(dbPool),
		DraftInvoiceRepo:     newPgxDraftInvoiceRepository(dbPool),
	}
}
