package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/tacotally/taco_tally_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgx repositories for the service container.
func NewRepositoryProvider(db *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxnRepo:   NewTacoTxnRepository(db),
		StatsRepo: NewUserStatsRepository(db),
	}
}
