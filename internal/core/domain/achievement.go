package domain

// Achievement identifiers of the built-in rule table.
const (
	AchievementFirstTacoGiven    = "FIRST_TACO_GIVEN"
	AchievementFirstTacoReceived = "FIRST_TACO_RECEIVED"
	AchievementGenerousGiver     = "GENEROUS_GIVER"
	AchievementPopularMember     = "POPULAR_MEMBER"
	AchievementTacoMaster        = "TACO_MASTER"
)

// AchievementRule maps an achievement identifier to threshold conditions over
// a UserStats snapshot. A zero threshold means the condition is not part of
// the rule. All non-zero thresholds must hold for the rule to unlock.
// Rules are data so operators can add tiers without touching the evaluator.
type AchievementRule struct {
	ID          string `json:"id"`
	MinGiven    int64  `json:"minGiven,omitempty"`
	MinReceived int64  `json:"minReceived,omitempty"`
	MinTotal    int64  `json:"minTotal,omitempty"`
}

// Unlocked reports whether the snapshot satisfies every configured threshold.
func (r AchievementRule) Unlocked(s UserStats) bool {
	if r.MinGiven > 0 && s.TacosGiven < r.MinGiven {
		return false
	}
	if r.MinReceived > 0 && s.TacosReceived < r.MinReceived {
		return false
	}
	if r.MinTotal > 0 && s.TacosGiven+s.TacosReceived < r.MinTotal {
		return false
	}
	return r.MinGiven > 0 || r.MinReceived > 0 || r.MinTotal > 0
}

// DefaultAchievementRules returns the built-in rule table. The table is
// process-wide configuration loaded once at startup; operators may replace it
// via ACHIEVEMENT_RULES.
func DefaultAchievementRules() []AchievementRule {
	return []AchievementRule{
		{ID: AchievementFirstTacoGiven, MinGiven: 1},
		{ID: AchievementFirstTacoReceived, MinReceived: 1},
		{ID: AchievementGenerousGiver, MinGiven: 50},
		{ID: AchievementPopularMember, MinReceived: 100},
		{ID: AchievementTacoMaster, MinTotal: 500},
	}
}
