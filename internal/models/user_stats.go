package models

import "time"

// UserStats mirrors the user_stats table.
type UserStats struct {
	UserID               string    `db:"user_id"`
	CommunityID          string    `db:"community_id"`
	TacosGiven           int64     `db:"tacos_given"`
	TacosReceived        int64     `db:"tacos_received"`
	Achievements         []string  `db:"achievements"`
	JoinedAt             time.Time `db:"joined_at"`
	LastActiveAt         time.Time `db:"last_active_at"`
	ReceiveNotifications bool      `db:"receive_notifications"`
	PublicStats          bool      `db:"public_stats"`
}
