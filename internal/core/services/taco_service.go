package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tacotally/taco_tally_app/internal/apperrors"
	"github.com/tacotally/taco_tally_app/internal/core/domain"
	portsrepo "github.com/tacotally/taco_tally_app/internal/core/ports/repositories"
	portssvc "github.com/tacotally/taco_tally_app/internal/core/ports/services"
	"github.com/tacotally/taco_tally_app/internal/dto"
	"github.com/tacotally/taco_tally_app/internal/middleware"
)

// TacoServiceConfig is the immutable configuration handed to the service at
// construction. It is never read from ambient global state.
type TacoServiceConfig struct {
	MaxDailyTacos    int64
	MaxPerGift       int64
	AchievementRules []domain.AchievementRule
}

// tacoService orchestrates the award write path: quota check, durable ledger
// append, atomic aggregate increments and achievement evaluation.
//
// Concurrency note: the quota check reads committed ledger state and is not
// serialized against the subsequent write. Two concurrent awards from the
// same giver can both pass the check and jointly overshoot the cap by a
// small margin. That is the accepted consistency level here; tightening it
// would require per-giver locking across processes, which the durable store
// does not provide and which this service deliberately does not fake.
type tacoService struct {
	quotaGuard
	txnRepo   portsrepo.TacoTxnRepositoryFacade
	statsRepo portsrepo.UserStatsRepositoryFacade
	cfg       TacoServiceConfig
}

// NewTacoService creates a new TacoService.
func NewTacoService(txnRepo portsrepo.TacoTxnRepositoryFacade, statsRepo portsrepo.UserStatsRepositoryFacade, cfg TacoServiceConfig) portssvc.TacoSvcFacade {
	return &tacoService{
		quotaGuard: quotaGuard{
			txnRepo:  txnRepo,
			maxDaily: cfg.MaxDailyTacos,
			now:      time.Now,
		},
		txnRepo:   txnRepo,
		statsRepo: statsRepo,
		cfg:       cfg,
	}
}

// Ensure tacoService implements the portssvc.TacoSvcFacade interface
var _ portssvc.TacoSvcFacade = (*tacoService)(nil)

// validateGive re-checks the caller's preconditions defensively. Everything
// here rejects before any write happens.
func (s *tacoService) validateGive(req dto.GiveTacosRequest) error {
	if req.GiverID == "" || req.ReceiverID == "" || req.CommunityID == "" {
		return fmt.Errorf("%w: giver, receiver and community are required", apperrors.ErrValidation)
	}
	if req.GiverID == req.ReceiverID {
		return fmt.Errorf("%w: cannot give tacos to yourself", apperrors.ErrValidation)
	}
	if req.Amount < domain.MinLedgerAmount || req.Amount > s.cfg.MaxPerGift || req.Amount > domain.MaxLedgerAmount {
		return fmt.Errorf("%w: amount must be between %d and %d", apperrors.ErrValidation, domain.MinLedgerAmount, s.cfg.MaxPerGift)
	}
	if req.Reason != nil && utf8.RuneCountInString(strings.TrimSpace(*req.Reason)) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason must be at most %d characters", apperrors.ErrValidation, domain.MaxReasonLength)
	}
	return nil
}

// GiveTacos records a new award.
// Implements portssvc.TacoGiverSvc
func (s *tacoService) GiveTacos(ctx context.Context, req dto.GiveTacosRequest) (*domain.TacoTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.validateGive(req); err != nil {
		return nil, err
	}

	// 1. Quota check. Nothing is written if this rejects or fails.
	decision, err := s.CanGive(ctx, req.GiverID, req.CommunityID, req.Amount)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &apperrors.QuotaExceededError{Remaining: decision.Remaining}
	}

	// 2. Durable ledger append, before any aggregate is touched.
	now := s.now()
	txn := domain.TacoTransaction{
		TransactionID: uuid.NewString(),
		GiverID:       req.GiverID,
		ReceiverID:    req.ReceiverID,
		CommunityID:   req.CommunityID,
		ChannelID:     req.ChannelID,
		Amount:        req.Amount,
		Reason:        req.Reason,
		GivenAt:       now,
		Acknowledged:  false,
	}
	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	// 3-5. Aggregate increments and achievement evaluation. A failure past
	// this point leaves a recorded transaction whose effects are incomplete;
	// classify it so an external reconciler can replay by transaction ID.
	if err := s.applyEffects(ctx, txn); err != nil {
		partialErr := &apperrors.PartialApplicationError{TransactionID: txn.TransactionID, Err: err}
		logger.Error("Transaction recorded but effects failed, reconciliation candidate",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("error", err.Error()))
		return nil, partialErr
	}

	logger.Info("Taco transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("giver_id", txn.GiverID),
		slog.String("receiver_id", txn.ReceiverID),
		slog.Int64("amount", txn.Amount))

	return &txn, nil
}

// applyEffects runs the post-append steps of an award: both counter
// increments (atomic at the store) and achievement evaluation against each
// updated aggregate. Increments also bump lastActiveAt. Each increment is
// keyed on the transaction ID, so replaying a transaction whose side
// already applied reads the current aggregate instead of adding again.
func (s *tacoService) applyEffects(ctx context.Context, txn domain.TacoTransaction) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := s.now()

	giverStats, err := s.incrementOnce(ctx, txn.GiverID, txn.CommunityID, domain.MetricGiven, txn, now)
	if err != nil {
		return fmt.Errorf("failed to increment giver counter: %w", err)
	}
	receiverStats, err := s.incrementOnce(ctx, txn.ReceiverID, txn.CommunityID, domain.MetricReceived, txn, now)
	if err != nil {
		return fmt.Errorf("failed to increment receiver counter: %w", err)
	}

	for _, stats := range []*domain.UserStats{giverStats, receiverStats} {
		newlyUnlocked := EvaluateAchievements(*stats, s.cfg.AchievementRules)
		if len(newlyUnlocked) == 0 {
			continue
		}
		if err := s.statsRepo.AppendAchievements(ctx, stats.UserID, stats.CommunityID, newlyUnlocked); err != nil {
			return fmt.Errorf("failed to append achievements for user %s: %w", stats.UserID, err)
		}
		logger.Info("Achievements unlocked",
			slog.String("user_id", stats.UserID),
			slog.String("community_id", stats.CommunityID),
			slog.Any("achievements", newlyUnlocked))
	}
	return nil
}

// incrementOnce applies one side of a transaction exactly once. A side the
// store reports as already applied is not added again; the current aggregate
// is read instead so achievement evaluation still sees up-to-date totals.
func (s *tacoService) incrementOnce(ctx context.Context, userID, communityID string, metric domain.Metric, txn domain.TacoTransaction, now time.Time) (*domain.UserStats, error) {
	stats, err := s.statsRepo.IncrementCounter(ctx, userID, communityID, metric, txn.Amount, txn.TransactionID, now)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, apperrors.ErrDuplicate) {
		return nil, err
	}
	return s.statsRepo.GetOrCreateStats(ctx, userID, communityID, now)
}

// ReplayTransactionEffects re-applies the aggregate effects of a recorded
// transaction, for reconciliation after a partial application. Sides that
// already applied are skipped via the per-transaction claim, so the replay
// is safe to repeat.
// Implements portssvc.TacoGiverSvc
func (s *tacoService) ReplayTransactionEffects(ctx context.Context, transactionID string) error {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("failed to load transaction for replay: %w", err)
	}
	if err := s.applyEffects(ctx, *txn); err != nil {
		return &apperrors.PartialApplicationError{TransactionID: transactionID, Err: err}
	}
	return nil
}

// AcknowledgeTransaction marks a recorded transaction as acknowledged, the
// only mutation the ledger permits.
// Implements portssvc.TacoGiverSvc
func (s *tacoService) AcknowledgeTransaction(ctx context.Context, transactionID string) error {
	if err := s.txnRepo.MarkAcknowledged(ctx, transactionID); err != nil {
		return fmt.Errorf("failed to acknowledge transaction: %w", err)
	}
	return nil
}

// RecentTransactions lists the newest awards of a community.
// Implements portssvc.TacoHistorySvc
func (s *tacoService) RecentTransactions(ctx context.Context, communityID string, limit int) ([]domain.TacoTransaction, error) {
	txns, err := s.txnRepo.FindRecentByCommunity(ctx, communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	return txns, nil
}

// GivingHistory lists a user's given awards, newest first.
// Implements portssvc.TacoHistorySvc
func (s *tacoService) GivingHistory(ctx context.Context, userID, communityID string, limit int) ([]domain.TacoTransaction, error) {
	txns, err := s.txnRepo.FindByGiver(ctx, userID, communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list giving history: %w", err)
	}
	return txns, nil
}

// ReceivingHistory lists a user's received awards, newest first.
// Implements portssvc.TacoHistorySvc
func (s *tacoService) ReceivingHistory(ctx context.Context, userID, communityID string, limit int) ([]domain.TacoTransaction, error) {
	txns, err := s.txnRepo.FindByReceiver(ctx, userID, communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list receiving history: %w", err)
	}
	return txns, nil
}

// CommunityStats summarises ledger activity for a community.
// Implements portssvc.TacoHistorySvc
func (s *tacoService) CommunityStats(ctx context.Context, communityID string) (*domain.CommunityStats, error) {
	stats, err := s.txnRepo.CommunityTotals(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute community stats: %w", err)
	}
	return stats, nil
}

// TopReasons lists the most frequent award reasons of a community.
// Implements portssvc.TacoHistorySvc
func (s *tacoService) TopReasons(ctx context.Context, communityID string, limit int) ([]domain.ReasonCount, error) {
	reasons, err := s.txnRepo.TopReasons(ctx, communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top reasons: %w", err)
	}
	return reasons, nil
}
