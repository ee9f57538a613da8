package services

import (
	"context"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
	"github.com/tacotally/taco_tally_app/internal/dto"
)

// TacoGiverSvc defines the write path of the recognition ledger.
type TacoGiverSvc interface {
	// GiveTacos records a new award: validates, checks the daily quota,
	// persists the ledger entry and applies the aggregate effects to both
	// participants. Returns the created transaction.
	GiveTacos(ctx context.Context, req dto.GiveTacosRequest) (*domain.TacoTransaction, error)

	// AcknowledgeTransaction marks a recorded transaction as acknowledged.
	AcknowledgeTransaction(ctx context.Context, transactionID string) error

	// ReplayTransactionEffects re-applies the aggregate effects of an
	// already-recorded transaction. Intended for an external reconciler
	// replaying a partial application by transaction ID. Idempotent: sides
	// that already applied are skipped, never added twice.
	ReplayTransactionEffects(ctx context.Context, transactionID string) error
}

// QuotaSvc defines the daily-quota read path.
type QuotaSvc interface {
	// DailyGivenTotal sums the amounts a giver has awarded within the
	// calendar day containing now.
	DailyGivenTotal(ctx context.Context, giverID, communityID string) (int64, error)

	// CanGive decides whether a proposed award fits the giver's remaining
	// daily quota. No side effects.
	CanGive(ctx context.Context, giverID, communityID string, amount int64) (*domain.QuotaDecision, error)
}

// TacoHistorySvc defines ledger history and aggregate reads.
type TacoHistorySvc interface {
	// RecentTransactions lists the newest awards of a community.
	RecentTransactions(ctx context.Context, communityID string, limit int) ([]domain.TacoTransaction, error)

	// GivingHistory lists a user's given awards, newest first.
	GivingHistory(ctx context.Context, userID, communityID string, limit int) ([]domain.TacoTransaction, error)

	// ReceivingHistory lists a user's received awards, newest first.
	ReceivingHistory(ctx context.Context, userID, communityID string, limit int) ([]domain.TacoTransaction, error)

	// CommunityStats summarises ledger activity for a community.
	CommunityStats(ctx context.Context, communityID string) (*domain.CommunityStats, error)

	// TopReasons lists the most frequent award reasons of a community.
	TopReasons(ctx context.Context, communityID string, limit int) ([]domain.ReasonCount, error)
}

// TacoSvcFacade combines all ledger-facing service interfaces.
type TacoSvcFacade interface {
	TacoGiverSvc
	QuotaSvc
	TacoHistorySvc
}
