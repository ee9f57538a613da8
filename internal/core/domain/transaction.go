package domain

import "time"

// Ledger-level bounds on a single award. The per-gift business cap is lower
// (config.MaxPerGift, default 5); the ledger itself rejects anything outside
// [1, MaxLedgerAmount] regardless of configuration.
const (
	MinLedgerAmount = 1
	MaxLedgerAmount = 10

	// MaxReasonLength bounds the optional free-text reason.
	MaxReasonLength = 200
)

// TacoTransaction is one immutable award of tacos from one user to another.
// Only the Acknowledged flag may change after creation; the ledger is the
// append-only source of historical truth.
type TacoTransaction struct {
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

// QuotaDecision is the outcome of a daily-quota check.
type QuotaDecision struct {
	Allowed   bool  `json:"allowed"`
	Remaining int64 `json:"remaining"`
}

// CommunityStats summarises ledger activity for one community.
type CommunityStats struct {
	TotalTransactions int64   `json:"totalTransactions"`
	TotalTacosGiven   int64   `json:"totalTacosGiven"`
	ActiveUsers       int64   `json:"activeUsers"`
	AvgPerTransaction float64 `json:"averageTacosPerTransaction"`
}

// ReasonCount is one entry of the most-frequent-reasons listing.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int64  `json:"count"`
}
