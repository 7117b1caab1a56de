package models

// MatchReward is the payout ledger for finalized matches. The unique index on
// match_id is the hard bound against crediting the same match twice.
type MatchReward struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	MatchID  string `gorm:"uniqueIndex;not null" json:"match_id"`
	WinnerID string `gorm:"index;not null" json:"winner_id"`
	Points   int    `json:"points"`
	Gems     int    `json:"gems"`

	Timestamps
}
