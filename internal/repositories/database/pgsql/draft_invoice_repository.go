package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/utils/mapping"
)

type PgxDraftInvoiceRepository struct {
	BaseRepository
}

// newPgxDraftInvoiceRepository creates a new repository for draft invoices.
func newPgxDraftInvoiceRepository(pool *pgxpool.Pool) portsrepo.DraftInvoiceRepository {
	return &PgxDraftInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DraftInvoiceRepository = (*PgxDraftInvoiceRepository)(nil)

// SaveDraftInvoice persists the invoice with its lines and links the
// aggregated journal lines back to them, within a DB transaction.
func (r *PgxDraftInvoiceRepository) SaveDraftInvoice(ctx context.Context, invoice *domain.DraftInvoice) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelDraftInvoice(*invoice)
	invoiceQuery := `
		INSERT INTO draft_invoices (
			invoice_id, label, date_publication, date_payment_deadline, date_due, date_debit,
			regie_id, payer_external_id, payer_first_name, payer_last_name,
			payer_address, payer_email, payer_phone, payer_direct_debit, pool_id, origin
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, invoiceQuery,
		m.InvoiceID, m.Label, m.DatePublication, m.DatePaymentDeadline, m.DateDue, m.DateDebit,
		m.RegieID, m.PayerExternalID, m.PayerFirstName, m.PayerLastName,
		m.PayerAddress, m.PayerEmail, m.PayerPhone, m.PayerDirectDebit, m.PoolID, m.Origin,
	)
	if err != nil {
		return fmt.Errorf("failed to insert draft invoice %s: %w", m.InvoiceID, err)
	}

	lineQuery := `
		INSERT INTO draft_invoice_lines (
			invoice_line_id, invoice_id, event_date, label, quantity, unit_amount, details,
			event_slug, event_label, agenda_slug, activity_label, description,
			accounting_code, user_external_id, user_first_name, user_last_name, pool_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	linkQuery := `UPDATE draft_journal_lines SET invoice_line_id = $1 WHERE line_id = ANY($2);`
	batch := &pgx.Batch{}
	for i := range invoice.Lines {
		invoice.Lines[i].InvoiceID = invoice.ID
		ml, err := mapping.ToModelDraftInvoiceLine(invoice.Lines[i])
		if err != nil {
			return fmt.Errorf("failed to map draft invoice line %s: %w", invoice.Lines[i].ID, err)
		}
		batch.Queue(lineQuery,
			ml.InvoiceLineID, ml.InvoiceID, ml.EventDate, ml.Label, ml.Quantity, ml.UnitAmount, ml.Details,
			ml.EventSlug, ml.EventLabel, ml.AgendaSlug, ml.ActivityLabel, ml.Description,
			ml.AccountingCode, ml.UserExternalID, ml.UserFirstName, ml.UserLastName, ml.PoolID,
		)
		batch.Queue(linkQuery, ml.InvoiceLineID, invoice.Lines[i].JournalLineIDs)
	}
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert draft invoice lines: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close invoice line batch: %w", err)
	}

	return r.Commit(ctx, tx)
}

// DeleteDraftInvoicesForPayers removes the pool's draft invoices and invoice
// lines for the given payers, unlinking their journal lines, within a DB
// transaction.
func (r *PgxDraftInvoiceRepository) DeleteDraftInvoicesForPayers(ctx context.Context, poolID string, payerExternalIDs []string) error {
	if len(payerExternalIDs) == 0 {
		return nil
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	unlinkQuery := `
		UPDATE draft_journal_lines djl
		SET invoice_line_id = NULL
		FROM draft_invoice_lines dil
		JOIN draft_invoices di ON di.invoice_id = dil.invoice_id
		WHERE djl.invoice_line_id = dil.invoice_line_id
		  AND di.pool_id = $1
		  AND di.payer_external_id = ANY($2);
	`
	if _, err := tx.Exec(ctx, unlinkQuery, poolID, payerExternalIDs); err != nil {
		return fmt.Errorf("failed to unlink journal lines: %w", err)
	}

	deleteLinesQuery := `
		DELETE FROM draft_invoice_lines dil
		USING draft_invoices di
		WHERE di.invoice_id = dil.invoice_id
		  AND di.pool_id = $1
		  AND di.payer_external_id = ANY($2);
	`
	if _, err := tx.Exec(ctx, deleteLinesQuery, poolID, payerExternalIDs); err != nil {
		return fmt.Errorf("failed to delete draft invoice lines: %w", err)
	}

	deleteInvoicesQuery := `
		DELETE FROM draft_invoices
		WHERE pool_id = $1 AND payer_external_id = ANY($2);
	`
	if _, err := tx.Exec(ctx, deleteInvoicesQuery, poolID, payerExternalIDs); err != nil {
		return fmt.Errorf("failed to delete draft invoices: %w", err)
	}

	return r.Commit(ctx, tx)
}
