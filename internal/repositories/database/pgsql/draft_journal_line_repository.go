package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/apperrors"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/models"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/utils/mapping"
)

type PgxDraftJournalLineRepository struct {
	BaseRepository
}

// newPgxDraftJournalLineRepository creates a new repository for the draft
// lines produced by pool runs.
func newPgxDraftJournalLineRepository(pool *pgxpool.Pool) portsrepo.DraftJournalLineRepository {
	return &PgxDraftJournalLineRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DraftJournalLineRepository = (*PgxDraftJournalLineRepository)(nil)

const draftLineColumns = `
	line_id, seq, event_date, slug, label, description,
	quantity, quantity_type, amount,
	user_external_id, user_first_name, user_last_name,
	payer_external_id, payer_first_name, payer_last_name,
	payer_address, payer_email, payer_phone, payer_direct_debit,
	event, booking, pricing_data,
	status, error_status, pool_id, from_injected_line_id`

// BulkCreateDraftLines inserts the lines in one batch.
func (r *PgxDraftJournalLineRepository) BulkCreateDraftLines(ctx context.Context, lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO draft_journal_lines (` + draftLineColumns + `, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27);
	`
	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, line := range lines {
		m, err := mapping.ToModelDraftJournalLine(line)
		if err != nil {
			return fmt.Errorf("failed to map draft line %s: %w", line.ID, err)
		}
		batch.Queue(query,
			m.LineID, m.Seq, m.EventDate, m.Slug, m.Label, m.Description,
			m.Quantity, m.QuantityType, m.Amount,
			m.UserExternalID, m.UserFirstName, m.UserLastName,
			m.PayerExternalID, m.PayerFirstName, m.PayerLastName,
			m.PayerAddress, m.PayerEmail, m.PayerPhone, m.PayerDirectDebit,
			m.Event, m.Booking, m.PricingData,
			m.Status, m.ErrorStatus, m.PoolID, m.FromInjectedLineID,
			now,
		)
	}
	results := r.Pool.SendBatch(ctx, batch)
	defer results.Close()
	for range lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert draft lines: %w", err)
		}
	}
	return nil
}

// FindDraftLineByID returns one draft line.
func (r *PgxDraftJournalLineRepository) FindDraftLineByID(ctx context.Context, lineID string) (*domain.JournalLine, error) {
	query := `SELECT ` + draftLineColumns + ` FROM draft_journal_lines WHERE line_id = $1;`
	var m models.DraftJournalLine
	err := scanJournalLine(r.Pool.QueryRow(ctx, query, lineID).Scan, &m)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find draft line %s: %w", lineID, err)
	}
	line, err := mapping.ToDomainDraftJournalLine(m)
	if err != nil {
		return nil, fmt.Errorf("failed to map draft line %s: %w", lineID, err)
	}
	return &line, nil
}

// FindResolvedErrors returns, by slug, the pool's draft lines in error that
// carry a non-empty error status.
func (r *PgxDraftJournalLineRepository) FindResolvedErrors(ctx context.Context, poolID, userExternalID string) (map[string]domain.JournalLine, error) {
	query := `
		SELECT ` + draftLineColumns + `
		FROM draft_journal_lines
		WHERE pool_id = $1
		  AND user_external_id = $2
		  AND status = 'error'
		  AND error_status <> ''
		ORDER BY seq;
	`
	rows, err := r.Pool.Query(ctx, query, poolID, userExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolved errors: %w", err)
	}
	defer rows.Close()

	resolved := make(map[string]domain.JournalLine)
	for rows.Next() {
		var m models.DraftJournalLine
		if err := scanJournalLine(rows.Scan, &m); err != nil {
			return nil, fmt.Errorf("failed to scan draft line: %w", err)
		}
		line, err := mapping.ToDomainDraftJournalLine(m)
		if err != nil {
			return nil, fmt.Errorf("failed to map draft line %s: %w", m.LineID, err)
		}
		resolved[line.Slug] = line
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resolved errors: %w", err)
	}
	return resolved, nil
}

// ListDraftLinesByPool returns the pool's draft lines in sequence order,
// optionally restricted to the given payers.
func (r *PgxDraftJournalLineRepository) ListDraftLinesByPool(ctx context.Context, poolID string, payerExternalIDs []string) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + draftLineColumns + `
		FROM draft_journal_lines
		WHERE pool_id = $1
		  AND ($2::text[] IS NULL OR payer_external_id = ANY($2))
		ORDER BY seq;
	`
	rows, err := r.Pool.Query(ctx, query, poolID, payerExternalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query draft lines of pool %s: %w", poolID, err)
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		var m models.DraftJournalLine
		if err := scanJournalLine(rows.Scan, &m); err != nil {
			return nil, fmt.Errorf("failed to scan draft line: %w", err)
		}
		line, err := mapping.ToDomainDraftJournalLine(m)
		if err != nil {
			return nil, fmt.Errorf("failed to map draft line %s: %w", m.LineID, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draft lines: %w", err)
	}
	return lines, nil
}

// DeleteDraftLines removes the draft lines of one user, event date and slug
// from the pool, returning the removed lines.
func (r *PgxDraftJournalLineRepository) DeleteDraftLines(ctx context.Context, poolID, userExternalID string, eventDate time.Time, slug string) ([]domain.JournalLine, error) {
	query := `
		DELETE FROM draft_journal_lines
		WHERE pool_id = $1
		  AND user_external_id = $2
		  AND event_date = $3
		  AND slug = $4
		RETURNING ` + draftLineColumns + `;
	`
	rows, err := r.Pool.Query(ctx, query, poolID, userExternalID, eventDate, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to delete draft lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		var m models.DraftJournalLine
		if err := scanJournalLine(rows.Scan, &m); err != nil {
			return nil, fmt.Errorf("failed to scan deleted draft line: %w", err)
		}
		line, err := mapping.ToDomainDraftJournalLine(m)
		if err != nil {
			return nil, fmt.Errorf("failed to map deleted draft line %s: %w", m.LineID, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deleted draft lines: %w", err)
	}
	return lines, nil
}
