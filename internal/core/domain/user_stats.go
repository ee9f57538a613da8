package domain

import "time"

// Preferences holds the per-user flags that gate notifications and
// leaderboard visibility.
type Preferences struct {
	ReceiveNotifications bool `json:"receiveNotifications"`
	PublicStats          bool `json:"publicStats"`
}

// PreferencePatch is a partial preferences update. Nil fields are left
// untouched.
type PreferencePatch struct {
	ReceiveNotifications *bool
	PublicStats          *bool
}

// UserStats is the derived per-(user, community) aggregate: running totals,
// unlocked achievements and activity timestamps. It is a cache maintained
// incrementally from the ledger, never recomputed on read. TacosGiven and
// TacosReceived are monotonically non-decreasing (no retraction).
type UserStats struct {
	UserID        string      `json:"userID"`
	CommunityID   string      `json:"communityID"`
	TacosGiven    int64       `json:"tacosGiven"`
	TacosReceived int64       `json:"tacosReceived"`
	Achievements  []string    `json:"achievements"`
	JoinedAt      time.Time   `json:"joinedAt"`
	LastActiveAt  time.Time   `json:"lastActiveAt"`
	Preferences   Preferences `json:"preferences"`
}

// HasAchievement reports whether the given achievement is already unlocked.
func (s *UserStats) HasAchievement(id string) bool {
	for _, a := range s.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// LeaderboardEntry is one row of a community leaderboard.
type LeaderboardEntry struct {
	UserID string `json:"userID"`
	Value  int64  `json:"value"`
}

// StatsWithRank bundles a user's aggregate with their position on both
// metrics and the size of the public comparison set.
type StatsWithRank struct {
	Stats        UserStats `json:"stats"`
	ReceivedRank int64     `json:"receivedRank"`
	GivenRank    int64     `json:"givenRank"`
	TotalUsers   int64     `json:"totalUsers"`
}
