package dto

import (
	"time"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
)

// UpdatePreferencesRequest is a partial preferences update.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdatePreferencesRequest struct {
	ReceiveNotifications *bool `json:"receiveNotifications"`
	PublicStats          *bool `json:"publicStats"`
}

// LeaderboardParams defines query parameters for leaderboard requests.
type LeaderboardParams struct {
	Metric string `form:"metric,default=received" binding:"metric"`
	Limit  int    `form:"limit,default=10" binding:"min=1,max=20"`
}

// LeaderboardResponse wraps an ordered leaderboard slice.
type LeaderboardResponse struct {
	CommunityID string                   `json:"communityID"`
	Metric      string                   `json:"metric"`
	Entries     []domain.LeaderboardEntry `json:"entries"`
}

// UserStatsResponse is the API shape of a per-user aggregate.
type UserStatsResponse struct {
	UserID        string             `json:"userID"`
	CommunityID   string             `json:"communityID"`
	TacosGiven    int64              `json:"tacosGiven"`
	TacosReceived int64              `json:"tacosReceived"`
	Achievements  []string           `json:"achievements"`
	JoinedAt      time.Time          `json:"joinedAt"`
	LastActiveAt  time.Time          `json:"lastActiveAt"`
	Preferences   domain.Preferences `json:"preferences"`
}

// ToUserStatsResponse converts a domain.UserStats to its API shape.
func ToUserStatsResponse(s *domain.UserStats) UserStatsResponse {
	achievements := s.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	return UserStatsResponse{
		UserID:        s.UserID,
		CommunityID:   s.CommunityID,
		TacosGiven:    s.TacosGiven,
		TacosReceived: s.TacosReceived,
		Achievements:  achievements,
		JoinedAt:      s.JoinedAt,
		LastActiveAt:  s.LastActiveAt,
		Preferences:   s.Preferences,
	}
}

// StatsWithRankResponse bundles an aggregate with rank and percentile data.
// Percentiles are omitted when there are no public users to rank against.
type StatsWithRankResponse struct {
	Stats              UserStatsResponse `json:"stats"`
	ReceivedRank       int64             `json:"receivedRank"`
	GivenRank          int64             `json:"givenRank"`
	TotalUsers         int64             `json:"totalUsers"`
	ReceivedPercentile *int64            `json:"receivedPercentile,omitempty"`
	GivenPercentile    *int64            `json:"givenPercentile,omitempty"`
}
