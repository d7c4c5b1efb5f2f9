package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/models"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/utils/mapping"
)

type PgxInjectedLineRepository struct {
	BaseRepository
}

// newPgxInjectedLineRepository creates a new repository for externally
// injected charges.
func newPgxInjectedLineRepository(pool *pgxpool.Pool) portsrepo.InjectedLineReader {
	return &PgxInjectedLineRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InjectedLineReader = (*PgxInjectedLineRepository)(nil)

// FindBillableInjectedLines returns the user's injected lines for the
// campaign's regie with event date before the campaign end, excluding lines
// already invoiced or claimed by a draft line of another campaign. In
// "period" mode only lines within the campaign period count.
func (r *PgxInjectedLineRepository) FindBillableInjectedLines(ctx context.Context, campaign domain.Campaign, userExternalID string) ([]domain.InjectedLine, error) {
	query := `
		SELECT il.injected_line_id, il.regie_id, il.event_date, il.slug, il.label,
		       il.amount, il.user_external_id, il.payer_external_id,
		       il.payer_first_name, il.payer_last_name, il.payer_address, il.payer_direct_debit
		FROM injected_lines il
		WHERE il.regie_id = $1
		  AND il.user_external_id = $2
		  AND il.event_date < $3
		  AND ($4::bool IS FALSE OR il.event_date >= $5)
		  AND NOT EXISTS (
			SELECT 1 FROM journal_lines jl WHERE jl.from_injected_line_id = il.injected_line_id
		  )
		  AND NOT EXISTS (
			SELECT 1
			FROM draft_journal_lines djl
			JOIN pools p ON p.pool_id = djl.pool_id
			WHERE djl.from_injected_line_id = il.injected_line_id
			  AND p.campaign_id <> $6
		  )
		ORDER BY il.event_date;
	`
	periodOnly := campaign.InjectedLines == domain.InjectedLinesPeriod
	rows, err := r.Pool.Query(ctx, query,
		campaign.RegieID, userExternalID, campaign.DateEnd,
		periodOnly, campaign.DateStart, campaign.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query injected lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.InjectedLine
	for rows.Next() {
		var m models.InjectedLine
		if err := rows.Scan(
			&m.InjectedLineID, &m.RegieID, &m.EventDate, &m.Slug, &m.Label,
			&m.Amount, &m.UserExternalID, &m.PayerExternalID,
			&m.PayerFirstName, &m.PayerLastName, &m.PayerAddress, &m.PayerDirectDebit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan injected line: %w", err)
		}
		lines = append(lines, mapping.ToDomainInjectedLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating injected lines: %w", err)
	}
	return lines, nil
}
