package services

import (
	"context"
	"errors"
	"time"

	"brainbytes-arena/models"

	"gorm.io/gorm"
)

// MatchStore is the persistence boundary for challenge matches. The two
// conditional writes (ClaimPendingMatch, CompleteMatch) report whether the
// row actually transitioned so callers can detect lost races instead of
// overwriting each other.
type MatchStore interface {
	GetMatch(ctx context.Context, id string) (*models.ChallengeMatch, error)
	CreateMatch(ctx context.Context, match *models.ChallengeMatch) error
	// FindPendingByOwner returns the caller's own pending match for the
	// challenge, or nil when there is none.
	FindPendingByOwner(ctx context.Context, challengeID, userID string) (*models.ChallengeMatch, error)
	// ClaimPendingMatch atomically takes the open slot of a pending match
	// created by someone else. Returns nil when no match could be claimed.
	ClaimPendingMatch(ctx context.Context, challengeID, userID, language string, now time.Time) (*models.ChallengeMatch, error)
	// SaveCodeSnapshot overwrites the submitter's code column. Last write
	// wins; snapshots are display state, not decision state.
	SaveCodeSnapshot(ctx context.Context, match *models.ChallengeMatch, userID, code string) error
	// CompleteMatch transitions in_progress -> completed and records the
	// winner. Returns false when the match was no longer in progress.
	CompleteMatch(ctx context.Context, matchID, winnerID string, now time.Time) (bool, error)
	// CancelStalePending cancels pending matches created before cutoff and
	// returns how many rows changed.
	CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// GormMatchStore backs MatchStore with Postgres; the conditional writes are
// single UPDATE ... WHERE statements checked via RowsAffected.
type GormMatchStore struct {
	DB *gorm.DB
}

func NewGormMatchStore(db *gorm.DB) *GormMatchStore {
	return &GormMatchStore{DB: db}
}

func (s *GormMatchStore) GetMatch(ctx context.Context, id string) (*models.ChallengeMatch, error) {
	var match models.ChallengeMatch
	if err := s.DB.WithContext(ctx).First(&match, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (s *GormMatchStore) CreateMatch(ctx context.Context, match *models.ChallengeMatch) error {
	return s.DB.WithContext(ctx).Create(match).Error
}

func (s *GormMatchStore) FindPendingByOwner(ctx context.Context, challengeID, userID string) (*models.ChallengeMatch, error) {
	var match models.ChallengeMatch
	err := s.DB.WithContext(ctx).
		Where("challenge_id = ? AND status = ? AND player_one_id = ?",
			challengeID, models.MatchStatusPending, userID).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *GormMatchStore) ClaimPendingMatch(ctx context.Context, challengeID, userID, language string, now time.Time) (*models.ChallengeMatch, error) {
	// A candidate found by the read may be claimed by the opponent between
	// our read and write; the conditional update catches that, and we retry
	// against the next candidate a couple of times before giving up.
	for attempt := 0; attempt < 3; attempt++ {
		var candidate models.ChallengeMatch
		err := s.DB.WithContext(ctx).
			Where("challenge_id = ? AND status = ? AND player_two_id IS NULL AND player_one_id <> ?",
				challengeID, models.MatchStatusPending, userID).
			Order("created_at ASC").
			First(&candidate).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		res := s.DB.WithContext(ctx).Model(&models.ChallengeMatch{}).
			Where("id = ? AND status = ? AND player_two_id IS NULL",
				candidate.ID, models.MatchStatusPending).
			Updates(map[string]any{
				"player_two_id":       userID,
				"player_two_language": language,
				"status":              models.MatchStatusInProgress,
				"started_at":          now,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			continue // lost the race for this row
		}
		return s.GetMatch(ctx, candidate.ID)
	}
	return nil, nil
}

func (s *GormMatchStore) SaveCodeSnapshot(ctx context.Context, match *models.ChallengeMatch, userID, code string) error {
	column := "player_one_code"
	if match.PlayerTwoID != nil && *match.PlayerTwoID == userID {
		column = "player_two_code"
	}
	return s.DB.WithContext(ctx).Model(&models.ChallengeMatch{}).
		Where("id = ?", match.ID).
		Update(column, code).Error
}

func (s *GormMatchStore) CompleteMatch(ctx context.Context, matchID, winnerID string, now time.Time) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.ChallengeMatch{}).
		Where("id = ? AND status = ?", matchID, models.MatchStatusInProgress).
		Updates(map[string]any{
			"status":    models.MatchStatusCompleted,
			"winner_id": winnerID,
			"ended_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormMatchStore) CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.ChallengeMatch{}).
		Where("status = ? AND created_at < ?", models.MatchStatusPending, cutoff).
		Update("status", models.MatchStatusCancelled)
	return res.RowsAffected, res.Error
}
