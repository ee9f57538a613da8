package models

import "time"

// TacoTransaction mirrors the taco_transactions table.
type TacoTransaction struct {
	TransactionID string    `db:"transaction_id"`
	GiverID       string    `db:"giver_id"`
	ReceiverID    string    `db:"receiver_id"`
	CommunityID   string    `db:"community_id"`
	ChannelID     string    `db:"channel_id"`
	Amount        int64     `db:"amount"`
	Reason        *string   `db:"reason"`
	GivenAt       time.Time `db:"given_at"`
	Acknowledged  bool      `db:"acknowledged"`
}
