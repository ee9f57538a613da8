package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tacotally/taco_tally_app/internal/apperrors"
	"github.com/tacotally/taco_tally_app/internal/core/domain"
	portsrepo "github.com/tacotally/taco_tally_app/internal/core/ports/repositories"
	portssvc "github.com/tacotally/taco_tally_app/internal/core/ports/services"
	"github.com/tacotally/taco_tally_app/internal/dto"
)

// statsService computes standings from the aggregate store and manages
// aggregate profiles outside the award path.
type statsService struct {
	statsRepo portsrepo.UserStatsRepositoryFacade
	now       func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(statsRepo portsrepo.UserStatsRepositoryFacade) portssvc.StatsSvcFacade {
	return &statsService{
		statsRepo: statsRepo,
		now:       time.Now,
	}
}

// Ensure statsService implements the portssvc.StatsSvcFacade interface
var _ portssvc.StatsSvcFacade = (*statsService)(nil)

// Leaderboard returns the community standings on the given metric.
// Implements portssvc.RankingSvc
func (s *statsService) Leaderboard(ctx context.Context, communityID string, metric domain.Metric, limit int) ([]domain.LeaderboardEntry, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: leaderboard limit must be at least 1", apperrors.ErrValidation)
	}
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: unknown metric %q", apperrors.ErrValidation, metric)
	}

	// Ordering (value desc, user_id asc) is enforced by the store query so
	// ties are deterministic.
	statsList, err := s.statsRepo.ListTop(ctx, communityID, metric, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, len(statsList))
	for i, st := range statsList {
		entries[i] = domain.LeaderboardEntry{UserID: st.UserID, Value: metric.ValueOf(st)}
	}
	return entries, nil
}

// Rank returns 1 plus the count of other public-stats users with a strictly
// greater value. The subject is read directly, so a private profile can
// still compute its own rank; the comparison set stays public-only.
// Implements portssvc.RankingSvc
func (s *statsService) Rank(ctx context.Context, userID, communityID string, metric domain.Metric) (int64, error) {
	if !metric.Valid() {
		return 0, fmt.Errorf("%w: unknown metric %q", apperrors.ErrValidation, metric)
	}

	stats, err := s.statsRepo.GetOrCreateStats(ctx, userID, communityID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to load stats for rank: %w", err)
	}

	higher, err := s.statsRepo.CountStrictlyAbove(ctx, communityID, metric, metric.ValueOf(*stats), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count higher-ranked users: %w", err)
	}
	return higher + 1, nil
}

// Percentile converts a rank within totalUsers into a 0-100 percentile.
// Returns ErrNoUsers when the comparison set is empty rather than dividing
// by zero.
func Percentile(rank, totalUsers int64) (int64, error) {
	if totalUsers <= 0 {
		return 0, apperrors.ErrNoUsers
	}
	return int64(math.Round(float64(totalUsers-rank+1) / float64(totalUsers) * 100)), nil
}

// StatsWithRank bundles the subject's aggregate with both ranks and the
// public comparison-set size.
// Implements portssvc.RankingSvc
func (s *statsService) StatsWithRank(ctx context.Context, userID, communityID string) (*domain.StatsWithRank, error) {
	stats, err := s.statsRepo.GetOrCreateStats(ctx, userID, communityID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	receivedRank, err := s.rankOf(ctx, *stats, domain.MetricReceived)
	if err != nil {
		return nil, err
	}
	givenRank, err := s.rankOf(ctx, *stats, domain.MetricGiven)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.statsRepo.CountPublic(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to count public users: %w", err)
	}

	return &domain.StatsWithRank{
		Stats:        *stats,
		ReceivedRank: receivedRank,
		GivenRank:    givenRank,
		TotalUsers:   totalUsers,
	}, nil
}

// rankOf computes a rank from an already-loaded snapshot, avoiding a second
// read of the subject.
func (s *statsService) rankOf(ctx context.Context, stats domain.UserStats, metric domain.Metric) (int64, error) {
	higher, err := s.statsRepo.CountStrictlyAbove(ctx, stats.CommunityID, metric, metric.ValueOf(stats), stats.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to count higher-ranked users: %w", err)
	}
	return higher + 1, nil
}

// GetOrCreateStats fetches the subject's aggregate, lazily creating it.
// Implements portssvc.StatsWriterSvc
func (s *statsService) GetOrCreateStats(ctx context.Context, userID, communityID string) (*domain.UserStats, error) {
	if userID == "" || communityID == "" {
		return nil, fmt.Errorf("%w: user and community are required", apperrors.ErrValidation)
	}
	stats, err := s.statsRepo.GetOrCreateStats(ctx, userID, communityID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get or create stats: %w", err)
	}
	return stats, nil
}

// UpdatePreferences applies a partial preferences update, creating the
// aggregate first if the user has never interacted.
// Implements portssvc.StatsWriterSvc
func (s *statsService) UpdatePreferences(ctx context.Context, userID, communityID string, req dto.UpdatePreferencesRequest) (*domain.UserStats, error) {
	now := s.now()
	if _, err := s.statsRepo.GetOrCreateStats(ctx, userID, communityID, now); err != nil {
		return nil, fmt.Errorf("failed to get or create stats: %w", err)
	}

	patch := domain.PreferencePatch{
		ReceiveNotifications: req.ReceiveNotifications,
		PublicStats:          req.PublicStats,
	}
	stats, err := s.statsRepo.UpdatePreferences(ctx, userID, communityID, patch, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return stats, nil
}
