package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"brainbytes-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const progressCacheTTL = 60 * time.Second

func progressCacheKey(userID string) string {
	return fmt.Sprintf("user_progress:%s", userID)
}

// ProgressionService is the reward ledger and the cached progress view.
// RDB may be nil, which disables the cache (reads fall through to the DB).
type ProgressionService struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewProgressionService(db *gorm.DB, rdb *redis.Client) *ProgressionService {
	return &ProgressionService{DB: db, RDB: rdb}
}

// EnsureProgressRecord ensures a UserProgress row exists (idempotent)
func (s *ProgressionService) EnsureProgressRecord(ctx context.Context, externalUserID string) (*models.UserProgress, error) {
	var prog models.UserProgress
	err := s.DB.WithContext(ctx).Where("external_user_id = ?", externalUserID).First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prog = models.UserProgress{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			Hearts:         5,
		}
		if err := s.DB.WithContext(ctx).Create(&prog).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Concurrent creation; use whoever won.
				if err := s.DB.WithContext(ctx).Where("external_user_id = ?", externalUserID).First(&prog).Error; err != nil {
					return nil, err
				}
				return &prog, nil
			}
			return nil, err
		}
		return &prog, nil
	}
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

// AwardMatchWin credits the fixed match payout to the winner. The ledger row
// carries a unique index on match_id, so a replay for an already-credited
// match is a no-op rather than a double award.
func (s *ProgressionService) AwardMatchWin(ctx context.Context, winnerID, matchID string) error {
	reward := &models.MatchReward{
		ID:       uuid.NewString(),
		MatchID:  matchID,
		WinnerID: winnerID,
		Points:   MatchWinPoints,
		Gems:     MatchWinGems,
	}
	if err := s.DB.WithContext(ctx).Create(reward).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("Match %s already credited, skipping award", matchID)
			return nil
		}
		return fmt.Errorf("failed to record match reward: %w", err)
	}

	if _, err := s.EnsureProgressRecord(ctx, winnerID); err != nil {
		return fmt.Errorf("failed to ensure progress record: %w", err)
	}
	return s.DB.WithContext(ctx).Model(&models.UserProgress{}).
		Where("external_user_id = ?", winnerID).
		Updates(map[string]any{
			"points": gorm.Expr("points + ?", MatchWinPoints),
			"gems":   gorm.Expr("gems + ?", MatchWinGems),
		}).Error
}

// InvalidateProgress drops the cached progress view for a user. Best-effort.
func (s *ProgressionService) InvalidateProgress(ctx context.Context, userID string) {
	if s.RDB == nil {
		return
	}
	if err := s.RDB.Del(ctx, progressCacheKey(userID)).Err(); err != nil {
		log.Printf("Failed to invalidate progress cache for user %s: %v", userID, err)
	}
}

// --- Fiber handlers ---

// GetUserProgress serves the caller's progress, read through the cache.
func (s *ProgressionService) GetUserProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	ctx := c.Context()

	if s.RDB != nil {
		if cached, err := s.RDB.Get(ctx, progressCacheKey(userID)).Bytes(); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		}
	}

	prog, err := s.EnsureProgressRecord(ctx, userID)
	if err != nil {
		log.Printf("DB Error fetching progress for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch progress"})
	}

	if s.RDB != nil {
		if raw, err := json.Marshal(prog); err == nil {
			if err := s.RDB.Set(ctx, progressCacheKey(userID), raw, progressCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache progress for user %s: %v", userID, err)
			}
		}
	}
	return c.JSON(prog)
}
