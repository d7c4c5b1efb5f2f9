package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/models"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/utils/mapping"
)

type PgxInvoicingElementRepository struct {
	BaseRepository
}

// newPgxInvoicingElementRepository creates a new repository reading persisted
// invoice and credit lines.
func newPgxInvoicingElementRepository(pool *pgxpool.Pool) portsrepo.InvoicingElementReader {
	return &PgxInvoicingElementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoicingElementReader = (*PgxInvoicingElementRepository)(nil)

// FindInvoicingElementLines returns the flattened invoice and credit lines of
// the user for the given event slugs. Only lines of non-cancelled documents
// count, and documents attached to a pool count only for the latest non-draft
// pool of their campaign. Zero-total lines carry no booking information and
// are excluded. Date range filtering happens on the jsonb dates array.
func (r *PgxInvoicingElementRepository) FindInvoicingElementLines(ctx context.Context, regieID int64, dateMin, dateMax time.Time, userExternalID string, slugs []string) ([]domain.InvoicingElementLine, error) {
	query := `
		SELECT kind, event_slug, dates, unit_amount, total_amount,
		       payer_external_id, element_number, element_created_at, adjustment_refs
		FROM (
			SELECT 'invoice' AS kind,
			       il.event_slug,
			       il.details->'dates' AS dates,
			       il.unit_amount,
			       il.quantity * il.unit_amount AS total_amount,
			       i.payer_external_id,
			       i.number AS element_number,
			       i.created_at AS element_created_at,
			       i.adjustment_refs,
			       i.regie_id,
			       i.cancelled_at,
			       i.pool_id,
			       il.user_external_id
			FROM invoice_lines il
			JOIN invoices i ON i.invoice_id = il.invoice_id
			UNION ALL
			SELECT 'credit' AS kind,
			       cl.event_slug,
			       cl.details->'dates' AS dates,
			       cl.unit_amount,
			       cl.quantity * cl.unit_amount AS total_amount,
			       c.payer_external_id,
			       c.number AS element_number,
			       c.created_at AS element_created_at,
			       c.adjustment_refs,
			       c.regie_id,
			       c.cancelled_at,
			       c.pool_id,
			       cl.user_external_id
			FROM credit_lines cl
			JOIN credits c ON c.credit_id = cl.credit_id
		) elements
		WHERE regie_id = $1
		  AND cancelled_at IS NULL
		  AND user_external_id = $2
		  AND event_slug = ANY($3)
		  AND total_amount <> 0
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements_text(dates) AS d
			WHERE d.value >= $4 AND d.value < $5
		  )
		  AND (
			pool_id IS NULL
			OR pool_id IN (
				SELECT DISTINCT ON (p.campaign_id) p.pool_id
				FROM pools p
				WHERE NOT p.draft
				ORDER BY p.campaign_id, p.created_at DESC
			)
		  )
		ORDER BY element_created_at, element_number;
	`
	rows, err := r.Pool.Query(ctx, query, regieID, userExternalID, slugs,
		dateMin.Format("2006-01-02"), dateMax.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query invoicing element lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.InvoicingElementLine
	for rows.Next() {
		var m models.InvoicingElementLine
		if err := rows.Scan(
			&m.Kind,
			&m.EventSlug,
			&m.Dates,
			&m.UnitAmount,
			&m.TotalAmount,
			&m.PayerExternalID,
			&m.ElementNumber,
			&m.ElementCreatedAt,
			&m.AdjustmentRefs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoicing element line: %w", err)
		}
		line, err := mapping.ToDomainInvoicingElementLine(m)
		if err != nil {
			return nil, fmt.Errorf("failed to map invoicing element line %s: %w", m.ElementNumber, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoicing element lines: %w", err)
	}
	return lines, nil
}
