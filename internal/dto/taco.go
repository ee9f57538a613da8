package dto

import (
	"time"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
)

// GiveTacosRequest is the payload for recording a new award. CommunityID
// comes from the route; the giver is supplied by the trusted command layer.
type GiveTacosRequest struct {
	GiverID     string  `json:"giverID" binding:"required"`
	ReceiverID  string  `json:"receiverID" binding:"required"`
	ChannelID   string  `json:"channelID" binding:"required"`
	Amount      int64   `json:"amount" binding:"required,min=1"`
	Reason      *string `json:"reason,omitempty" binding:"omitempty,max=200"`
	CommunityID string  `json:"-"`
}

// TransactionResponse is the API shape of a ledger entry.
type TransactionResponse struct {
	TransactionID string    `json:"transactionID"`
	GiverID       string    `json:"giverID"`
	ReceiverID    string    `json:"receiverID"`
	CommunityID   string    `json:"communityID"`
	ChannelID     string    `json:"channelID"`
	Amount        int64     `json:"amount"`
	Reason        *string   `json:"reason,omitempty"`
	GivenAt       time.Time `json:"givenAt"`
	Acknowledged  bool      `json:"acknowledged"`
}

// ToTransactionResponse converts a domain.TacoTransaction to its API shape.
func ToTransactionResponse(t *domain.TacoTransaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		GiverID:       t.GiverID,
		ReceiverID:    t.ReceiverID,
		CommunityID:   t.CommunityID,
		ChannelID:     t.ChannelID,
		Amount:        t.Amount,
		Reason:        t.Reason,
		GivenAt:       t.GivenAt,
		Acknowledged:  t.Acknowledged,
	}
}

// ListTransactionsResponse wraps a page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToListTransactionsResponse converts a slice of domain transactions.
func ToListTransactionsResponse(txns []domain.TacoTransaction) ListTransactionsResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return ListTransactionsResponse{Transactions: out}
}

// ListParams defines the shared limit query parameter for history listings.
type ListParams struct {
	Limit int `form:"limit,default=10"`
}

// HistoryParams defines query parameters for a user's award history.
type HistoryParams struct {
	Direction string `form:"direction,default=received" binding:"metric"`
	Limit     int    `form:"limit,default=20"`
}

// QuotaResponse reports a giver's consumed daily quota.
type QuotaResponse struct {
	GiverID     string `json:"giverID"`
	CommunityID string `json:"communityID"`
	GivenToday  int64  `json:"givenToday"`
}
