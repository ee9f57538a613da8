package repositories

import (
	"context"
	"time"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
)

// UserStatsReader defines read operations on per-user aggregates.
type UserStatsReader interface {
	// FindStats retrieves the aggregate for a (user, community) pair.
	FindStats(ctx context.Context, userID, communityID string) (*domain.UserStats, error)

	// ListTop retrieves the highest-valued public aggregates of a community
	// on the given metric, descending by value with ties broken by ascending
	// user ID, excluding zero values.
	ListTop(ctx context.Context, communityID string, metric domain.Metric, limit int) ([]domain.UserStats, error)

	// CountStrictlyAbove counts public-stats users of a community whose
	// metric value strictly exceeds value, excluding excludeUserID.
	CountStrictlyAbove(ctx context.Context, communityID string, metric domain.Metric, value int64, excludeUserID string) (int64, error)

	// CountPublic counts the public-stats users of a community.
	CountPublic(ctx context.Context, communityID string) (int64, error)
}

// UserStatsWriter defines write operations on per-user aggregates.
type UserStatsWriter interface {
	// GetOrCreateStats returns the aggregate for the pair, creating a
	// zero-valued record with default preferences if absent. Safe under
	// concurrent first-time creation: the first writer wins and later
	// callers observe that row. Bumps lastActiveAt to now on every call.
	GetOrCreateStats(ctx context.Context, userID, communityID string, now time.Time) (*domain.UserStats, error)

	// IncrementCounter atomically adds delta to the metric's running total
	// at the store (never read-modify-write) and bumps lastActiveAt,
	// returning the updated aggregate. The (transactionID, metric) pair is
	// an idempotency key claimed in the same store transaction as the
	// increment: a re-application of an already-applied side performs no
	// update and returns ErrDuplicate, so retries cannot double-count.
	IncrementCounter(ctx context.Context, userID, communityID string, metric domain.Metric, delta int64, transactionID string, now time.Time) (*domain.UserStats, error)

	// AppendAchievements unions the given identifiers into the unlocked set.
	// Appending an already-present identifier is a no-op, so duplicate
	// evaluation cannot duplicate entries.
	AppendAchievements(ctx context.Context, userID, communityID string, achievementIDs []string) error

	// UpdatePreferences applies a partial preferences update, returning the
	// updated aggregate.
	UpdatePreferences(ctx context.Context, userID, communityID string, patch domain.PreferencePatch, now time.Time) (*domain.UserStats, error)
}

// UserStatsRepositoryFacade combines all aggregate repository interfaces.
type UserStatsRepositoryFacade interface {
	UserStatsReader
	UserStatsWriter
}
