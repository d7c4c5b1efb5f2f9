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

type PgxJournalLineRepository struct {
	BaseRepository
}

// newPgxJournalLineRepository creates a new repository reading the finalized
// journal lines of past campaigns.
func newPgxJournalLineRepository(pool *pgxpool.Pool) portsrepo.JournalLineReader {
	return &PgxJournalLineRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalLineReader = (*PgxJournalLineRepository)(nil)

const journalLineColumns = `
	jl.line_id, jl.seq, jl.event_date, jl.slug, jl.label, jl.description,
	jl.quantity, jl.quantity_type, jl.amount,
	jl.user_external_id, jl.user_first_name, jl.user_last_name,
	jl.payer_external_id, jl.payer_first_name, jl.payer_last_name,
	jl.payer_address, jl.payer_email, jl.payer_phone, jl.payer_direct_debit,
	jl.event, jl.booking, jl.pricing_data,
	jl.status, jl.error_status, jl.pool_id, jl.from_injected_line_id`

// FindPreviousCampaignLines returns the most recent line per (slug, event
// date) across the primary campaign and its corrective descendants, most
// recent pool first then highest sequence, restricted to lines carrying
// booking details.
func (r *PgxJournalLineRepository) FindPreviousCampaignLines(ctx context.Context, primaryCampaignID int64, userExternalID string, slugs []string) ([]domain.JournalLine, error) {
	query := `
		SELECT DISTINCT ON (jl.slug, jl.event_date) ` + journalLineColumns + `
		FROM journal_lines jl
		JOIN pools p ON p.pool_id = jl.pool_id
		JOIN campaigns c ON c.campaign_id = p.campaign_id
		WHERE (c.campaign_id = $1 OR c.primary_campaign_id = $1)
		  AND jl.user_external_id = $2
		  AND jl.slug = ANY($3)
		  AND jl.pricing_data ? 'booking_details'
		ORDER BY jl.slug, jl.event_date, p.created_at DESC, jl.seq DESC;
	`
	rows, err := r.Pool.Query(ctx, query, primaryCampaignID, userExternalID, slugs)
	if err != nil {
		return nil, fmt.Errorf("failed to query previous campaign lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		var m models.DraftJournalLine
		if err := scanJournalLine(rows.Scan, &m); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		line, err := mapping.ToDomainDraftJournalLine(m)
		if err != nil {
			return nil, fmt.Errorf("failed to map journal line %s: %w", m.LineID, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating previous campaign lines: %w", err)
	}
	return lines, nil
}

// HasPricingChangedLines reports whether any journal line of the primary
// campaign's pools carries a pricing-changed adjustment.
func (r *PgxJournalLineRepository) HasPricingChangedLines(ctx context.Context, primaryCampaignID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM journal_lines jl
			JOIN pools p ON p.pool_id = jl.pool_id
			WHERE p.campaign_id = $1
			  AND jl.pricing_data->'adjustment'->>'info' = 'pricing-changed'
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, primaryCampaignID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pricing-changed lines: %w", err)
	}
	return exists, nil
}

// scanJournalLine fills a DraftJournalLine model from a row scanner using the
// journalLineColumns ordering. Draft and finalized lines share the shape.
func scanJournalLine(scan func(dest ...any) error, m *models.DraftJournalLine) error {
	return scan(
		&m.LineID,
		&m.Seq,
		&m.EventDate,
		&m.Slug,
		&m.Label,
		&m.Description,
		&m.Quantity,
		&m.QuantityType,
		&m.Amount,
		&m.UserExternalID,
		&m.UserFirstName,
		&m.UserLastName,
		&m.PayerExternalID,
		&m.PayerFirstName,
		&m.PayerLastName,
		&m.PayerAddress,
		&m.PayerEmail,
		&m.PayerPhone,
		&m.PayerDirectDebit,
		&m.Event,
		&m.Booking,
		&m.PricingData,
		&m.Status,
		&m.ErrorStatus,
		&m.PoolID,
		&m.FromInjectedLineID,
	)
}
