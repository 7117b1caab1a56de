package services

import (
	"context"
	"encoding/json"
	"fmt"

	"brainbytes-arena/models"
	"brainbytes-arena/utils"
)

// R2Archiver copies the final state of a completed match — both players'
// last code snapshots and the recorded winner — into object storage for
// later review.
type R2Archiver struct{}

func (R2Archiver) ArchiveMatch(ctx context.Context, match *models.ChallengeMatch) error {
	doc, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to marshal match %s: %w", match.ID, err)
	}
	key := fmt.Sprintf("matches/%s.json", match.ID)
	if _, err := utils.UploadToR2(ctx, key, doc, "application/json"); err != nil {
		return err
	}
	return nil
}
