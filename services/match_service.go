package services

import (
	"context"
	"errors"
	"log"
	"time"

	"brainbytes-arena/models"
	"brainbytes-arena/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Result tags returned by FindOrJoinMatch.
const (
	MatchWaiting = "waiting"
	MatchJoined  = "joined"
	MatchCreated = "created"
)

// MatchDecision is the matchmaking outcome handed back to the client.
type MatchDecision struct {
	Status string                 `json:"status"`
	Match  *models.ChallengeMatch `json:"match"`
}

// MatchService pairs players into matches and relays typing telemetry.
// It keeps no state of its own; everything lives in the match store.
type MatchService struct {
	Store  MatchStore
	Broker realtime.Broker
}

func NewMatchService(store MatchStore, broker realtime.Broker) *MatchService {
	return &MatchService{Store: store, Broker: broker}
}

// FindOrJoinMatch returns the caller's own pending match unchanged, claims an
// open match created by someone else, or opens a new pending match, in that
// order. Re-polling is idempotent and a player can never fill the second
// slot of their own match.
func (s *MatchService) FindOrJoinMatch(ctx context.Context, challengeID, userID, language string) (*MatchDecision, error) {
	existing, err := s.Store.FindPendingByOwner(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &MatchDecision{Status: MatchWaiting, Match: existing}, nil
	}

	claimed, err := s.Store.ClaimPendingMatch(ctx, challengeID, userID, language, time.Now())
	if err != nil {
		return nil, err
	}
	if claimed != nil {
		// Wake the waiting creator so their idle client does not have to poll.
		if err := s.Broker.Publish(ctx, realtime.MatchChannel(claimed.ID), realtime.EventMatchStart,
			map[string]any{"match": claimed}); err != nil {
			log.Printf("Failed to publish match-start for match %s: %v", claimed.ID, err)
		}
		return &MatchDecision{Status: MatchJoined, Match: claimed}, nil
	}

	match := &models.ChallengeMatch{
		ID:                uuid.NewString(),
		ChallengeID:       challengeID,
		PlayerOneID:       userID,
		PlayerOneLanguage: language,
		Status:            models.MatchStatusPending,
	}
	if err := s.Store.CreateMatch(ctx, match); err != nil {
		return nil, err
	}
	return &MatchDecision{Status: MatchCreated, Match: match}, nil
}

// SendProgressUpdate relays keystroke telemetry to the opponent. Best-effort:
// failures are logged and never interrupt the sender's editing flow.
func (s *MatchService) SendProgressUpdate(ctx context.Context, matchID, userID string, codeLength int, language string) {
	payload := map[string]any{
		"sender_id":   userID,
		"code_length": codeLength,
		"language":    language,
	}
	if err := s.Broker.Publish(ctx, realtime.MatchChannel(matchID), realtime.EventOpponentProgress, payload); err != nil {
		log.Printf("Failed to publish opponent-progress for match %s: %v", matchID, err)
	}
}

// --- Fiber handlers ---

// FindOrJoin handles POST /matches/find-or-join
func (s *MatchService) FindOrJoin(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		ChallengeID string `json:"challenge_id" validate:"required"`
		Language    string `json:"language" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ChallengeID == "" || req.Language == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "challenge_id and language are required"})
	}

	decision, err := s.FindOrJoinMatch(c.Context(), req.ChallengeID, userID, req.Language)
	if err != nil {
		log.Printf("DB Error finding or joining match for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to find or join match"})
	}
	return c.JSON(decision)
}

// GetMatchByID handles GET /matches/:id — the polling fallback for clients
// that missed a realtime event. Participants only; outsiders get the same
// Forbidden a missing match produces.
func (s *MatchService) GetMatchByID(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	matchID := c.Params("id")

	match, err := s.Store.GetMatch(c.Context(), matchID)
	if errors.Is(err, ErrMatchNotFound) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	if err != nil {
		log.Printf("DB Error fetching match %s: %v", matchID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if !match.IsParticipant(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	return c.JSON(match)
}

// PostProgress handles POST /matches/:id/progress
func (s *MatchService) PostProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	matchID := c.Params("id")

	var req struct {
		CodeLength int    `json:"code_length"`
		Language   string `json:"language"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	s.SendProgressUpdate(c.Context(), matchID, userID, req.CodeLength, req.Language)
	return c.JSON(fiber.Map{"message": "OK"})
}
