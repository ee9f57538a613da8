package services

import (
	portsrepo "github.com/tacotally/taco_tally_app/internal/core/ports/repositories"
	portssvc "github.com/tacotally/taco_tally_app/internal/core/ports/services"
	"github.com/tacotally/taco_tally_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Taco = NewTacoService(repos.TxnRepo, repos.StatsRepo, TacoServiceConfig{
		MaxDailyTacos:    cfg.MaxDailyTacos,
		MaxPerGift:       cfg.MaxPerGift,
		AchievementRules: cfg.AchievementRules,
	})
	container.Stats = NewStatsService(repos.StatsRepo)

	return container
}
