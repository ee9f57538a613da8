package repositories

import (
	"context"
	"time"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
)

// TacoTxnWriter defines write operations on the taco ledger.
type TacoTxnWriter interface {
	// SaveTransaction durably appends a new transaction to the ledger.
	SaveTransaction(ctx context.Context, txn domain.TacoTransaction) error

	// MarkAcknowledged flips the acknowledged flag, the only mutable field
	// of a ledger entry.
	MarkAcknowledged(ctx context.Context, transactionID string) error
}

// TacoTxnReader defines read operations on the taco ledger.
type TacoTxnReader interface {
	// FindTransactionByID retrieves a single ledger entry.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.TacoTransaction, error)

	// SumGivenInWindow sums the amounts a giver awarded within a community
	// between from and to (inclusive), using the store's time-range index.
	SumGivenInWindow(ctx context.Context, giverID, communityID string, from, to time.Time) (int64, error)

	// FindRecentByCommunity retrieves the newest ledger entries of a community.
	FindRecentByCommunity(ctx context.Context, communityID string, limit int) ([]domain.TacoTransaction, error)

	// FindByGiver retrieves a user's giving history, newest first.
	FindByGiver(ctx context.Context, giverID, communityID string, limit int) ([]domain.TacoTransaction, error)

	// FindByReceiver retrieves a user's receiving history, newest first.
	FindByReceiver(ctx context.Context, receiverID, communityID string, limit int) ([]domain.TacoTransaction, error)
}

// TacoTxnAggregator defines ledger-wide aggregate queries.
type TacoTxnAggregator interface {
	// CommunityTotals computes transaction count, taco volume and active
	// user count for one community.
	CommunityTotals(ctx context.Context, communityID string) (*domain.CommunityStats, error)

	// TopReasons lists the most frequent non-empty reasons of a community.
	TopReasons(ctx context.Context, communityID string, limit int) ([]domain.ReasonCount, error)
}

// TacoTxnRepositoryFacade combines all ledger repository interfaces.
type TacoTxnRepositoryFacade interface {
	TacoTxnWriter
	TacoTxnReader
	TacoTxnAggregator
}
