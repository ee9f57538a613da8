package services

import (
	"context"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
	"github.com/tacotally/taco_tally_app/internal/dto"
)

// RankingSvc defines the standings read path.
type RankingSvc interface {
	// Leaderboard returns up to limit (userID, value) rows of a community on
	// the given metric, descending by value with ties broken by ascending
	// user ID. Restricted to public-stats users with value > 0. Rejects
	// limit < 1.
	Leaderboard(ctx context.Context, communityID string, metric domain.Metric, limit int) ([]domain.LeaderboardEntry, error)

	// Rank returns 1 plus the count of other public-stats users with a
	// strictly greater value on the metric. A private subject can still
	// compute their own rank; the comparison set stays public-only.
	Rank(ctx context.Context, userID, communityID string, metric domain.Metric) (int64, error)

	// StatsWithRank bundles the subject's aggregate with both ranks and the
	// public comparison-set size.
	StatsWithRank(ctx context.Context, userID, communityID string) (*domain.StatsWithRank, error)
}

// StatsWriterSvc defines aggregate-profile mutations outside the award path.
type StatsWriterSvc interface {
	// GetOrCreateStats fetches the subject's aggregate, lazily creating it.
	GetOrCreateStats(ctx context.Context, userID, communityID string) (*domain.UserStats, error)

	// UpdatePreferences applies a partial preferences update.
	UpdatePreferences(ctx context.Context, userID, communityID string, req dto.UpdatePreferencesRequest) (*domain.UserStats, error)
}

// StatsSvcFacade combines all aggregate/ranking service interfaces.
type StatsSvcFacade interface {
	RankingSvc
	StatsWriterSvc
}
