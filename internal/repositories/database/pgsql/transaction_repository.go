package pgsql

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tacotally/taco_tally_app/internal/apperrors"
	"github.com/tacotally/taco_tally_app/internal/core/domain"
	portsrepo "github.com/tacotally/taco_tally_app/internal/core/ports/repositories"
	"github.com/tacotally/taco_tally_app/internal/models"
)

// PgxTacoTxnRepository is the pgx-backed taco ledger.
type PgxTacoTxnRepository struct {
	db *pgxpool.Pool
}

// NewTacoTxnRepository creates the ledger repository.
func NewTacoTxnRepository(db *pgxpool.Pool) portsrepo.TacoTxnRepositoryFacade {
	return &PgxTacoTxnRepository{db: db}
}

// Ensure PgxTacoTxnRepository implements the facade.
var _ portsrepo.TacoTxnRepositoryFacade = (*PgxTacoTxnRepository)(nil)

// Helper to convert domain.TacoTransaction to models.TacoTransaction
func toModelTxn(d domain.TacoTransaction) models.TacoTransaction {
	return models.TacoTransaction{
		TransactionID: d.TransactionID,
		GiverID:       d.GiverID,
		ReceiverID:    d.ReceiverID,
		CommunityID:   d.CommunityID,
		ChannelID:     d.ChannelID,
		Amount:        d.Amount,
		Reason:        d.Reason,
		GivenAt:       d.GivenAt,
		Acknowledged:  d.Acknowledged,
	}
}

// Helper to convert models.TacoTransaction to domain.TacoTransaction
func toDomainTxn(m models.TacoTransaction) domain.TacoTransaction {
	return domain.TacoTransaction{
		TransactionID: m.TransactionID,
		GiverID:       m.GiverID,
		ReceiverID:    m.ReceiverID,
		CommunityID:   m.CommunityID,
		ChannelID:     m.ChannelID,
		Amount:        m.Amount,
		Reason:        m.Reason,
		GivenAt:       m.GivenAt,
		Acknowledged:  m.Acknowledged,
	}
}

const txnColumns = `transaction_id, giver_id, receiver_id, community_id, channel_id, amount, reason, given_at, acknowledged`

func scanTxnRows(rows pgx.Rows) ([]domain.TacoTransaction, error) {
	txns := []domain.TacoTransaction{}
	for rows.Next() {
		var m models.TacoTransaction
		err := rows.Scan(
			&m.TransactionID,
			&m.GiverID,
			&m.ReceiverID,
			&m.CommunityID,
			&m.ChannelID,
			&m.Amount,
			&m.Reason,
			&m.GivenAt,
			&m.Acknowledged,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, toDomainTxn(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}
	return txns, nil
}

// storeErr classifies an unexpected driver error as a store availability
// failure while preserving the cause for logging.
func storeErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, apperrors.ErrStoreUnavailable, err)
}

func (r *PgxTacoTxnRepository) SaveTransaction(ctx context.Context, txn domain.TacoTransaction) error {
	m := toModelTxn(txn)
	query := `
        INSERT INTO taco_transactions (transaction_id, giver_id, receiver_id, community_id, channel_id, amount, reason, given_at, acknowledged)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
    `
	_, err := r.db.Exec(ctx, query,
		m.TransactionID,
		m.GiverID,
		m.ReceiverID,
		m.CommunityID,
		m.ChannelID,
		m.Amount,
		m.Reason,
		m.GivenAt,
		m.Acknowledged,
	)
	if err != nil {
		return storeErr("failed to save transaction", err)
	}
	return nil
}

func (r *PgxTacoTxnRepository) MarkAcknowledged(ctx context.Context, transactionID string) error {
	query := `
        UPDATE taco_transactions
        SET acknowledged = TRUE
        WHERE transaction_id = $1;
    `
	cmdTag, err := r.db.Exec(ctx, query, transactionID)
	if err != nil {
		return storeErr("failed to mark transaction acknowledged", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found: %w", transactionID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxTacoTxnRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TacoTransaction, error) {
	query := `
        SELECT ` + txnColumns + `
        FROM taco_transactions
        WHERE transaction_id = $1;
    `
	var m models.TacoTransaction
	err := r.db.QueryRow(ctx, query, transactionID).Scan(
		&m.TransactionID,
		&m.GiverID,
		&m.ReceiverID,
		&m.CommunityID,
		&m.ChannelID,
		&m.Amount,
		&m.Reason,
		&m.GivenAt,
		&m.Acknowledged,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storeErr(fmt.Sprintf("failed to find transaction by ID %s", transactionID), err)
	}
	d := toDomainTxn(m)
	return &d, nil
}

// SumGivenInWindow uses the (giver_id, community_id, given_at) index so the
// quota check never scans unbounded history.
func (r *PgxTacoTxnRepository) SumGivenInWindow(ctx context.Context, giverID, communityID string, from, to time.Time) (int64, error) {
	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM taco_transactions
        WHERE giver_id = $1 AND community_id = $2 AND given_at BETWEEN $3 AND $4;
    `
	var total int64
	err := r.db.QueryRow(ctx, query, giverID, communityID, from, to).Scan(&total)
	if err != nil {
		return 0, storeErr("failed to sum given amounts in window", err)
	}
	return total, nil
}

func (r *PgxTacoTxnRepository) FindRecentByCommunity(ctx context.Context, communityID string, limit int) ([]domain.TacoTransaction, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
        SELECT ` + txnColumns + `
        FROM taco_transactions
        WHERE community_id = $1
        ORDER BY given_at DESC
        LIMIT $2;
    `
	rows, err := r.db.Query(ctx, query, communityID, limit)
	if err != nil {
		return nil, storeErr("failed to query recent transactions", err)
	}
	defer rows.Close()
	return scanTxnRows(rows)
}

func (r *PgxTacoTxnRepository) FindByGiver(ctx context.Context, giverID, communityID string, limit int) ([]domain.TacoTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
        SELECT ` + txnColumns + `
        FROM taco_transactions
        WHERE giver_id = $1 AND community_id = $2
        ORDER BY given_at DESC
        LIMIT $3;
    `
	rows, err := r.db.Query(ctx, query, giverID, communityID, limit)
	if err != nil {
		return nil, storeErr("failed to query giving history", err)
	}
	defer rows.Close()
	return scanTxnRows(rows)
}

func (r *PgxTacoTxnRepository) FindByReceiver(ctx context.Context, receiverID, communityID string, limit int) ([]domain.TacoTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
        SELECT ` + txnColumns + `
        FROM taco_transactions
        WHERE receiver_id = $1 AND community_id = $2
        ORDER BY given_at DESC
        LIMIT $3;
    `
	rows, err := r.db.Query(ctx, query, receiverID, communityID, limit)
	if err != nil {
		return nil, storeErr("failed to query receiving history", err)
	}
	defer rows.Close()
	return scanTxnRows(rows)
}

func (r *PgxTacoTxnRepository) CommunityTotals(ctx context.Context, communityID string) (*domain.CommunityStats, error) {
	query := `
        SELECT
            COUNT(*),
            COALESCE(SUM(amount), 0),
            (
                SELECT COUNT(*) FROM (
                    SELECT giver_id AS user_id FROM taco_transactions WHERE community_id = $1
                    UNION
                    SELECT receiver_id FROM taco_transactions WHERE community_id = $1
                ) AS participants
            )
        FROM taco_transactions
        WHERE community_id = $1;
    `
	var stats domain.CommunityStats
	err := r.db.QueryRow(ctx, query, communityID).Scan(
		&stats.TotalTransactions,
		&stats.TotalTacosGiven,
		&stats.ActiveUsers,
	)
	if err != nil {
		return nil, storeErr("failed to compute community totals", err)
	}
	if stats.TotalTransactions > 0 {
		avg := float64(stats.TotalTacosGiven) / float64(stats.TotalTransactions)
		stats.AvgPerTransaction = math.Round(avg*100) / 100
	}
	return &stats, nil
}

func (r *PgxTacoTxnRepository) TopReasons(ctx context.Context, communityID string, limit int) ([]domain.ReasonCount, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
        SELECT reason, COUNT(*)
        FROM taco_transactions
        WHERE community_id = $1 AND reason IS NOT NULL AND reason <> ''
        GROUP BY reason
        ORDER BY COUNT(*) DESC, reason ASC
        LIMIT $2;
    `
	rows, err := r.db.Query(ctx, query, communityID, limit)
	if err != nil {
		return nil, storeErr("failed to query top reasons", err)
	}
	defer rows.Close()

	reasons := []domain.ReasonCount{}
	for rows.Next() {
		var rc domain.ReasonCount
		if err := rows.Scan(&rc.Reason, &rc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan reason row: %w", err)
		}
		reasons = append(reasons, rc)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating reason rows: %w", rows.Err())
	}
	return reasons, nil
}
