package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/apperrors"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/models"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/utils/mapping"
)

type PgxCampaignRepository struct {
	BaseRepository
}

// newPgxCampaignRepository creates a new repository for campaign, pool and
// agenda configuration.
func newPgxCampaignRepository(pool *pgxpool.Pool) portsrepo.CampaignRepository {
	return &PgxCampaignRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CampaignRepository = (*PgxCampaignRepository)(nil)

const campaignColumns = `
	c.campaign_id, c.regie_id, c.label, c.date_start, c.date_end,
	c.date_publication, c.date_payment_deadline, c.date_due, c.date_debit,
	c.adjustment_campaign, c.primary_campaign_id, c.injected_lines`

func scanCampaign(scan func(dest ...any) error, m *models.Campaign) error {
	return scan(
		&m.CampaignID,
		&m.RegieID,
		&m.Label,
		&m.DateStart,
		&m.DateEnd,
		&m.DatePublication,
		&m.DatePaymentDeadline,
		&m.DateDue,
		&m.DateDebit,
		&m.AdjustmentCampaign,
		&m.PrimaryCampaignID,
		&m.InjectedLines,
	)
}

// FindPool returns the pool with its campaign and the campaign's agenda slugs.
func (r *PgxCampaignRepository) FindPool(ctx context.Context, poolID string) (*domain.Pool, error) {
	query := `
		SELECT p.pool_id, p.campaign_id, p.status, p.draft, p.created_at, ` + campaignColumns + `
		FROM pools p
		JOIN campaigns c ON c.campaign_id = p.campaign_id
		WHERE p.pool_id = $1;
	`
	var mp models.Pool
	var mc models.Campaign
	err := r.Pool.QueryRow(ctx, query, poolID).Scan(
		&mp.PoolID, &mp.CampaignID, &mp.Status, &mp.Draft, &mp.CreatedAt,
		&mc.CampaignID, &mc.RegieID, &mc.Label, &mc.DateStart, &mc.DateEnd,
		&mc.DatePublication, &mc.DatePaymentDeadline, &mc.DateDue, &mc.DateDebit,
		&mc.AdjustmentCampaign, &mc.PrimaryCampaignID, &mc.InjectedLines,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pool %s: %w", poolID, err)
	}
	pool := mapping.ToDomainPool(mp, mc)

	slugsQuery := `SELECT agenda_slug FROM campaign_agendas WHERE campaign_id = $1 ORDER BY agenda_slug;`
	rows, err := r.Pool.Query(ctx, slugsQuery, mc.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign agendas: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan agenda slug: %w", err)
		}
		pool.Campaign.AgendaSlugs = append(pool.Campaign.AgendaSlugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign agendas: %w", err)
	}
	return &pool, nil
}

// UpdatePoolStatus sets the pool's lifecycle status.
func (r *PgxCampaignRepository) UpdatePoolStatus(ctx context.Context, poolID string, status domain.PoolStatus) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE pools SET status = $2 WHERE pool_id = $1;`, poolID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update pool %s status: %w", poolID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// IsPoolRunning reports whether the pool is still in running state.
func (r *PgxCampaignRepository) IsPoolRunning(ctx context.Context, poolID string) (bool, error) {
	var running bool
	query := `SELECT EXISTS (SELECT 1 FROM pools WHERE pool_id = $1 AND status = 'running');`
	if err := r.Pool.QueryRow(ctx, query, poolID).Scan(&running); err != nil {
		return false, fmt.Errorf("failed to check pool %s status: %w", poolID, err)
	}
	return running, nil
}

// FindPreviousPool returns the most recently created pool of the campaign
// other than the given one, or ErrNotFound.
func (r *PgxCampaignRepository) FindPreviousPool(ctx context.Context, campaignID int64, excludePoolID string) (*domain.Pool, error) {
	query := `
		SELECT p.pool_id, p.campaign_id, p.status, p.draft, p.created_at, ` + campaignColumns + `
		FROM pools p
		JOIN campaigns c ON c.campaign_id = p.campaign_id
		WHERE p.campaign_id = $1 AND p.pool_id <> $2
		ORDER BY p.created_at DESC
		LIMIT 1;
	`
	var mp models.Pool
	var mc models.Campaign
	err := r.Pool.QueryRow(ctx, query, campaignID, excludePoolID).Scan(
		&mp.PoolID, &mp.CampaignID, &mp.Status, &mp.Draft, &mp.CreatedAt,
		&mc.CampaignID, &mc.RegieID, &mc.Label, &mc.DateStart, &mc.DateEnd,
		&mc.DatePublication, &mc.DatePaymentDeadline, &mc.DateDue, &mc.DateDebit,
		&mc.AdjustmentCampaign, &mc.PrimaryCampaignID, &mc.InjectedLines,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find previous pool of campaign %d: %w", campaignID, err)
	}
	pool := mapping.ToDomainPool(mp, mc)
	return &pool, nil
}

// HasOtherCorrectiveCampaigns reports whether another corrective campaign
// exists for the primary campaign.
func (r *PgxCampaignRepository) HasOtherCorrectiveCampaigns(ctx context.Context, primaryCampaignID, excludeCampaignID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM campaigns
			WHERE primary_campaign_id = $1 AND campaign_id <> $2
		);
	`
	if err := r.Pool.QueryRow(ctx, query, primaryCampaignID, excludeCampaignID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check corrective campaigns: %w", err)
	}
	return exists, nil
}

// FindCampaignAgendas returns the campaign's agendas that have a
// non-flat-fee pricing overlapping the campaign period.
func (r *PgxCampaignRepository) FindCampaignAgendas(ctx context.Context, campaignID int64) ([]domain.Agenda, error) {
	query := `
		SELECT DISTINCT a.slug, a.label, a.partial_bookings
		FROM agendas a
		JOIN campaign_agendas ca ON ca.agenda_slug = a.slug
		JOIN campaigns c ON c.campaign_id = ca.campaign_id
		JOIN pricing_agendas pa ON pa.agenda_slug = a.slug
		JOIN pricings pr ON pr.pricing_id = pa.pricing_id
		WHERE ca.campaign_id = $1
		  AND NOT pr.flat_fee_schedule
		  AND (pr.date_start, pr.date_end) OVERLAPS (c.date_start, c.date_end)
		ORDER BY a.slug;
	`
	return r.queryAgendas(ctx, query, campaignID)
}

// FindAgendaBySlug returns one agenda.
func (r *PgxCampaignRepository) FindAgendaBySlug(ctx context.Context, slug string) (*domain.Agenda, error) {
	query := `SELECT slug, label, partial_bookings FROM agendas WHERE slug = $1;`
	var m models.Agenda
	if err := r.Pool.QueryRow(ctx, query, slug).Scan(&m.Slug, &m.Label, &m.PartialBookings); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find agenda %s: %w", slug, err)
	}
	agenda := mapping.ToDomainAgenda(m)
	return &agenda, nil
}

// FindAgendas returns all agendas.
func (r *PgxCampaignRepository) FindAgendas(ctx context.Context) ([]domain.Agenda, error) {
	return r.queryAgendas(ctx, `SELECT slug, label, partial_bookings FROM agendas ORDER BY slug;`)
}

func (r *PgxCampaignRepository) queryAgendas(ctx context.Context, query string, args ...any) ([]domain.Agenda, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query agendas: %w", err)
	}
	defer rows.Close()

	var agendas []domain.Agenda
	for rows.Next() {
		var m models.Agenda
		if err := rows.Scan(&m.Slug, &m.Label, &m.PartialBookings); err != nil {
			return nil, fmt.Errorf("failed to scan agenda: %w", err)
		}
		agendas = append(agendas, mapping.ToDomainAgenda(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agendas: %w", err)
	}
	return agendas, nil
}

// FindCheckTypes returns the configured check types indexed by (slug, group,
// status).
func (r *PgxCampaignRepository) FindCheckTypes(ctx context.Context) (domain.CheckTypeIndex, error) {
	query := `
		SELECT ct.slug, ctg.slug, ct.label, ct.kind,
		       ctg.unexpected_presence_slug IS NOT DISTINCT FROM ct.slug
		FROM check_types ct
		JOIN check_type_groups ctg ON ctg.group_id = ct.group_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query check types: %w", err)
	}
	defer rows.Close()

	index := make(domain.CheckTypeIndex)
	for rows.Next() {
		var m models.CheckType
		if err := rows.Scan(&m.Slug, &m.GroupSlug, &m.Label, &m.Kind, &m.UnexpectedPresence); err != nil {
			return nil, fmt.Errorf("failed to scan check type: %w", err)
		}
		ct := mapping.ToDomainCheckType(m)
		index[domain.CheckTypeKey{Slug: ct.Slug, Group: ct.Group, Status: ct.Kind}] = ct
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check types: %w", err)
	}
	return index, nil
}
