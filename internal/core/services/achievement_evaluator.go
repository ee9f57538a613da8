package services

import "github.com/tacotally/taco_tally_app/internal/core/domain"

// EvaluateAchievements returns the rule identifiers newly unlocked by the
// given snapshot. It is pure: for a fixed snapshot and rule table the result
// does not depend on evaluation order, and re-evaluating an unchanged
// snapshot whose unlocks were already recorded yields nothing. Achievements
// never re-lock; the unlocked set only grows.
func EvaluateAchievements(stats domain.UserStats, rules []domain.AchievementRule) []string {
	newlyUnlocked := []string{}
	for _, rule := range rules {
		if stats.HasAchievement(rule.ID) {
			continue
		}
		if rule.Unlocked(stats) {
			newlyUnlocked = append(newlyUnlocked, rule.ID)
		}
	}
	return newlyUnlocked
}
