package models

import "time"

// MatchStatus is the lifecycle state of a challenge match
type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCancelled  MatchStatus = "cancelled"
)

// ChallengeMatch records a single P2P coding duel over one challenge.
// A match is created pending by its first player, moves to in_progress when a
// second, distinct player claims the open slot, and to completed when one
// submission passes every test case. Only conditional updates may touch
// status and winner_id; the code snapshot columns are last-write-wins.
type ChallengeMatch struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ChallengeID string `gorm:"index;not null" json:"challenge_id"`

	PlayerOneID string  `gorm:"index;not null" json:"player_one_id"`
	PlayerTwoID *string `gorm:"index" json:"player_two_id,omitempty"` // nil until an opponent joins

	PlayerOneCode string `gorm:"type:text" json:"player_one_code"`
	PlayerTwoCode string `gorm:"type:text" json:"player_two_code"`

	PlayerOneLanguage string  `gorm:"type:varchar(32)" json:"player_one_language"`
	PlayerTwoLanguage *string `gorm:"type:varchar(32)" json:"player_two_language,omitempty"`

	Status   MatchStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	WinnerID *string     `gorm:"index" json:"winner_id,omitempty"`

	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	Timestamps
}

// IsParticipant reports whether userID occupies one of the two player slots.
func (m *ChallengeMatch) IsParticipant(userID string) bool {
	if m.PlayerOneID == userID {
		return true
	}
	return m.PlayerTwoID != nil && *m.PlayerTwoID == userID
}

// OpponentOf returns the other participant's ID, or "" when userID is not a
// participant or no opponent has joined yet.
func (m *ChallengeMatch) OpponentOf(userID string) string {
	if m.PlayerOneID == userID {
		if m.PlayerTwoID != nil {
			return *m.PlayerTwoID
		}
		return ""
	}
	if m.PlayerTwoID != nil && *m.PlayerTwoID == userID {
		return m.PlayerOneID
	}
	return ""
}
