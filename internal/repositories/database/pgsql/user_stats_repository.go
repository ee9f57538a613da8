package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tacotally/taco_tally_app/internal/apperrors"
	"github.com/tacotally/taco_tally_app/internal/core/domain"
	portsrepo "github.com/tacotally/taco_tally_app/internal/core/ports/repositories"
	"github.com/tacotally/taco_tally_app/internal/models"
)

// querier is satisfied by both pgxpool.Pool and pgx.Tx, so single-statement
// helpers can run inside or outside an explicit transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxUserStatsRepository is the pgx-backed aggregate store.
type PgxUserStatsRepository struct {
	db *pgxpool.Pool
}

// NewUserStatsRepository creates the aggregate repository.
func NewUserStatsRepository(db *pgxpool.Pool) portsrepo.UserStatsRepositoryFacade {
	return &PgxUserStatsRepository{db: db}
}

// Ensure PgxUserStatsRepository implements the facade.
var _ portsrepo.UserStatsRepositoryFacade = (*PgxUserStatsRepository)(nil)

// Helper to convert models.UserStats to domain.UserStats
func toDomainStats(m models.UserStats) domain.UserStats {
	return domain.UserStats{
		UserID:        m.UserID,
		CommunityID:   m.CommunityID,
		TacosGiven:    m.TacosGiven,
		TacosReceived: m.TacosReceived,
		Achievements:  m.Achievements,
		JoinedAt:      m.JoinedAt,
		LastActiveAt:  m.LastActiveAt,
		Preferences: domain.Preferences{
			ReceiveNotifications: m.ReceiveNotifications,
			PublicStats:          m.PublicStats,
		},
	}
}

const statsColumns = `user_id, community_id, tacos_given, tacos_received, achievements, joined_at, last_active_at, receive_notifications, public_stats`

func scanStatsRow(row pgx.Row) (*domain.UserStats, error) {
	var m models.UserStats
	err := row.Scan(
		&m.UserID,
		&m.CommunityID,
		&m.TacosGiven,
		&m.TacosReceived,
		&m.Achievements,
		&m.JoinedAt,
		&m.LastActiveAt,
		&m.ReceiveNotifications,
		&m.PublicStats,
	)
	if err != nil {
		return nil, err
	}
	d := toDomainStats(m)
	return &d, nil
}

func (r *PgxUserStatsRepository) FindStats(ctx context.Context, userID, communityID string) (*domain.UserStats, error) {
	query := `
        SELECT ` + statsColumns + `
        FROM user_stats
        WHERE user_id = $1 AND community_id = $2;
    `
	stats, err := scanStatsRow(r.db.QueryRow(ctx, query, userID, communityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storeErr(fmt.Sprintf("failed to find stats for user %s", userID), err)
	}
	return stats, nil
}

const getOrCreateStatsQuery = `
        INSERT INTO user_stats (user_id, community_id, joined_at, last_active_at)
        VALUES ($1, $2, $3, $3)
        ON CONFLICT (user_id, community_id) DO UPDATE SET
            last_active_at = EXCLUDED.last_active_at
        RETURNING ` + statsColumns + `;
    `

// GetOrCreateStats inserts a zero-valued record with default preferences or,
// when the row already exists, bumps last_active_at. The upsert resolves the
// concurrent first-creation race at the store: the first writer wins and the
// loser reads the winner's row.
func (r *PgxUserStatsRepository) GetOrCreateStats(ctx context.Context, userID, communityID string, now time.Time) (*domain.UserStats, error) {
	stats, err := scanStatsRow(r.db.QueryRow(ctx, getOrCreateStatsQuery, userID, communityID, now))
	if err != nil {
		return nil, storeErr(fmt.Sprintf("failed to get or create stats for user %s", userID), err)
	}
	return stats, nil
}

const incrementGivenQuery = `
        UPDATE user_stats
        SET tacos_given = tacos_given + $3, last_active_at = $4
        WHERE user_id = $1 AND community_id = $2
        RETURNING ` + statsColumns + `;
    `

const incrementReceivedQuery = `
        UPDATE user_stats
        SET tacos_received = tacos_received + $3, last_active_at = $4
        WHERE user_id = $1 AND community_id = $2
        RETURNING ` + statsColumns + `;
    `

const claimEffectQuery = `
        INSERT INTO taco_effect_applications (transaction_id, side, applied_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (transaction_id, side) DO NOTHING;
    `

// IncrementCounter applies the delta as a single atomic UPDATE at the store,
// so N concurrent awards to the same user always sum correctly. The metric
// selects between two fixed statements; no field name is interpolated.
// The (transactionID, metric) claim row and the increment commit together:
// replaying an already-applied side finds the claim taken, performs no
// update and returns ErrDuplicate.
func (r *PgxUserStatsRepository) IncrementCounter(ctx context.Context, userID, communityID string, metric domain.Metric, delta int64, transactionID string, now time.Time) (*domain.UserStats, error) {
	var query string
	switch metric {
	case domain.MetricGiven:
		query = incrementGivenQuery
	case domain.MetricReceived:
		query = incrementReceivedQuery
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", apperrors.ErrValidation, metric)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("failed to begin increment for user %s", userID), err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, claimEffectQuery, transactionID, string(metric), now)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("failed to claim %s effect of transaction %s", metric, transactionID), err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%s effect of transaction %s already applied: %w", metric, transactionID, apperrors.ErrDuplicate)
	}

	stats, err := incrementRow(ctx, tx, query, userID, communityID, delta, now)
	if err != nil {
		return nil, fmt.Errorf("failed to increment %s counter for user %s: %w", metric, userID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr(fmt.Sprintf("failed to commit increment for user %s", userID), err)
	}
	return stats, nil
}

// incrementRow runs the increment UPDATE on q, lazily creating the stats row
// the first time a user appears.
func incrementRow(ctx context.Context, q querier, query, userID, communityID string, delta int64, now time.Time) (*domain.UserStats, error) {
	stats, err := scanStatsRow(q.QueryRow(ctx, query, userID, communityID, delta, now))
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storeErr("increment update failed", err)
	}

	// Row absent: create it, then retry the increment once.
	if _, err := scanStatsRow(q.QueryRow(ctx, getOrCreateStatsQuery, userID, communityID, now)); err != nil {
		return nil, storeErr("failed to create stats row for increment", err)
	}
	stats, err = scanStatsRow(q.QueryRow(ctx, query, userID, communityID, delta, now))
	if err != nil {
		return nil, storeErr("increment update failed after create", err)
	}
	return stats, nil
}

// AppendAchievements unions the identifiers into the unlocked set. The
// DISTINCT unnest keeps the append idempotent under duplicate evaluation.
func (r *PgxUserStatsRepository) AppendAchievements(ctx context.Context, userID, communityID string, achievementIDs []string) error {
	if len(achievementIDs) == 0 {
		return nil
	}
	query := `
        UPDATE user_stats
        SET achievements = ARRAY(SELECT DISTINCT a FROM unnest(achievements || $3::text[]) AS a ORDER BY a)
        WHERE user_id = $1 AND community_id = $2;
    `
	cmdTag, err := r.db.Exec(ctx, query, userID, communityID, achievementIDs)
	if err != nil {
		return storeErr(fmt.Sprintf("failed to append achievements for user %s", userID), err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("stats for user %s not found: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxUserStatsRepository) UpdatePreferences(ctx context.Context, userID, communityID string, patch domain.PreferencePatch, now time.Time) (*domain.UserStats, error) {
	query := `
        UPDATE user_stats
        SET receive_notifications = COALESCE($3::boolean, receive_notifications),
            public_stats = COALESCE($4::boolean, public_stats),
            last_active_at = $5
        WHERE user_id = $1 AND community_id = $2
        RETURNING ` + statsColumns + `;
    `
	stats, err := scanStatsRow(r.db.QueryRow(ctx, query, userID, communityID, patch.ReceiveNotifications, patch.PublicStats, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storeErr(fmt.Sprintf("failed to update preferences for user %s", userID), err)
	}
	return stats, nil
}

const listTopGivenQuery = `
        SELECT ` + statsColumns + `
        FROM user_stats
        WHERE community_id = $1 AND public_stats = TRUE AND tacos_given > 0
        ORDER BY tacos_given DESC, user_id ASC
        LIMIT $2;
    `

const listTopReceivedQuery = `
        SELECT ` + statsColumns + `
        FROM user_stats
        WHERE community_id = $1 AND public_stats = TRUE AND tacos_received > 0
        ORDER BY tacos_received DESC, user_id ASC
        LIMIT $2;
    `

func (r *PgxUserStatsRepository) ListTop(ctx context.Context, communityID string, metric domain.Metric, limit int) ([]domain.UserStats, error) {
	var query string
	switch metric {
	case domain.MetricGiven:
		query = listTopGivenQuery
	case domain.MetricReceived:
		query = listTopReceivedQuery
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", apperrors.ErrValidation, metric)
	}

	rows, err := r.db.Query(ctx, query, communityID, limit)
	if err != nil {
		return nil, storeErr("failed to query leaderboard", err)
	}
	defer rows.Close()

	statsList := []domain.UserStats{}
	for rows.Next() {
		var m models.UserStats
		err := rows.Scan(
			&m.UserID,
			&m.CommunityID,
			&m.TacosGiven,
			&m.TacosReceived,
			&m.Achievements,
			&m.JoinedAt,
			&m.LastActiveAt,
			&m.ReceiveNotifications,
			&m.PublicStats,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		statsList = append(statsList, toDomainStats(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating stats rows: %w", rows.Err())
	}
	return statsList, nil
}

const countAboveGivenQuery = `
        SELECT COUNT(*)
        FROM user_stats
        WHERE community_id = $1 AND public_stats = TRUE AND tacos_given > $2 AND user_id <> $3;
    `

const countAboveReceivedQuery = `
        SELECT COUNT(*)
        FROM user_stats
        WHERE community_id = $1 AND public_stats = TRUE AND tacos_received > $2 AND user_id <> $3;
    `

func (r *PgxUserStatsRepository) CountStrictlyAbove(ctx context.Context, communityID string, metric domain.Metric, value int64, excludeUserID string) (int64, error) {
	var query string
	switch metric {
	case domain.MetricGiven:
		query = countAboveGivenQuery
	case domain.MetricReceived:
		query = countAboveReceivedQuery
	default:
		return 0, fmt.Errorf("%w: unknown metric %q", apperrors.ErrValidation, metric)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, communityID, value, excludeUserID).Scan(&count); err != nil {
		return 0, storeErr("failed to count higher-ranked users", err)
	}
	return count, nil
}

func (r *PgxUserStatsRepository) CountPublic(ctx context.Context, communityID string) (int64, error) {
	query := `
        SELECT COUNT(*)
        FROM user_stats
        WHERE community_id = $1 AND public_stats = TRUE;
    `
	var count int64
	if err := r.db.QueryRow(ctx, query, communityID).Scan(&count); err != nil {
		return 0, storeErr("failed to count public users", err)
	}
	return count, nil
}
