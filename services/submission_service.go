package services

import (
	"context"
	"errors"
	"log"
	"time"

	"brainbytes-arena/models"
	"brainbytes-arena/realtime"

	"github.com/gofiber/fiber/v2"
)

// Match win payouts, credited once per finalized match.
const (
	MatchWinPoints = 25
	MatchWinGems   = 1
)

// RewardLedger credits match wins. AwardMatchWin must be idempotent per
// match; InvalidateProgress drops any cached progress view for the user.
type RewardLedger interface {
	AwardMatchWin(ctx context.Context, winnerID, matchID string) error
	InvalidateProgress(ctx context.Context, userID string)
}

// SubmissionArchiver stores the final code snapshots of a completed match.
type SubmissionArchiver interface {
	ArchiveMatch(ctx context.Context, match *models.ChallengeMatch) error
}

// SubmissionResult is the structured outcome returned to the submitter.
// A failed test case is a normal negative result, not an error.
type SubmissionResult struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Results []Verdict `json:"results"`
}

// SubmissionService judges P2P submissions and finalizes won matches.
type SubmissionService struct {
	Store      MatchStore
	Challenges ChallengeStore
	Judge      CodeJudge
	Ledger     RewardLedger
	Broker     realtime.Broker
	Archiver   SubmissionArchiver // optional
}

func NewSubmissionService(store MatchStore, challenges ChallengeStore, judge CodeJudge, ledger RewardLedger, broker realtime.Broker) *SubmissionService {
	return &SubmissionService{
		Store:      store,
		Challenges: challenges,
		Judge:      judge,
		Ledger:     ledger,
		Broker:     broker,
	}
}

// SubmitP2PChallenge runs the submitter's code against the challenge's test
// cases in order, stopping at the first failure. The code snapshot is
// recorded no matter the outcome. When every case passes the match is
// finalized; losing the finalize race to the opponent still reports success
// to the submitter, but records no second winner.
func (s *SubmissionService) SubmitP2PChallenge(ctx context.Context, matchID, userID, code, language string) (*SubmissionResult, error) {
	match, err := s.Store.GetMatch(ctx, matchID)
	if errors.Is(err, ErrMatchNotFound) {
		return nil, ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}
	if !match.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}

	switch match.Status {
	case models.MatchStatusInProgress:
	case models.MatchStatusCompleted:
		return nil, ErrAlreadyOver
	default:
		return nil, ErrNotInProgress
	}

	challenge, err := s.Challenges.GetChallenge(ctx, match.ChallengeID)
	if err != nil {
		return nil, err
	}
	testCases, err := challenge.TestCases()
	if err != nil {
		log.Printf("Corrupt test cases on challenge %s: %v", challenge.ID, err)
		return nil, ErrNoTestCases
	}
	if len(testCases) == 0 {
		return nil, ErrNoTestCases
	}

	languageID, ok := JudgeLanguageID(language)
	if !ok {
		return nil, ErrUnsupportedLanguage
	}

	// Snapshot first: the latest attempt is recorded whether it passes or not.
	if err := s.Store.SaveCodeSnapshot(ctx, match, userID, code); err != nil {
		return nil, err
	}
	if match.PlayerOneID == userID {
		match.PlayerOneCode = code
	} else {
		match.PlayerTwoCode = code
	}

	results := make([]Verdict, 0, len(testCases))
	allPassed := true
	for _, tc := range testCases {
		verdict, err := s.Judge.Judge(ctx, languageID, code, tc.Input, tc.Output)
		if err != nil {
			log.Printf("Judge error on match %s for user %s: %v", matchID, userID, err)
			return nil, ErrCodeExecutionFailed
		}
		results = append(results, *verdict)
		if !verdict.Accepted() {
			allPassed = false
			break
		}
	}

	if !allPassed {
		failing := results[len(results)-1]
		s.publish(ctx, realtime.UserChannel(matchID, userID), realtime.EventSubmissionFailed,
			map[string]any{"results": results})
		return &SubmissionResult{Success: false, Error: failing.Status.Description, Results: results}, nil
	}

	if err := s.finalize(ctx, match, userID, results); err != nil {
		return nil, err
	}
	return &SubmissionResult{Success: true, Results: results}, nil
}

// finalize commits the win. The conditional status update is the sole writer
// of winner_id; losing it means the opponent finished first, and everything
// past the transition is skipped.
func (s *SubmissionService) finalize(ctx context.Context, match *models.ChallengeMatch, winnerID string, results []Verdict) error {
	completed, err := s.Store.CompleteMatch(ctx, match.ID, winnerID, time.Now())
	if err != nil {
		log.Printf("DB Error completing match %s: %v", match.ID, err)
		return err
	}
	if !completed {
		return nil
	}

	if err := s.Ledger.AwardMatchWin(ctx, winnerID, match.ID); err != nil {
		// The outcome stands once committed; payout delivery is retried
		// separately rather than rolling back the match.
		log.Printf("Failed to award match %s win to user %s: %v", match.ID, winnerID, err)
	}

	s.publish(ctx, realtime.MatchChannel(match.ID), realtime.EventMatchOver, map[string]any{
		"winner_id": winnerID,
		"results":   results,
	})

	s.Ledger.InvalidateProgress(ctx, match.PlayerOneID)
	if match.PlayerTwoID != nil {
		s.Ledger.InvalidateProgress(ctx, *match.PlayerTwoID)
	}

	if s.Archiver != nil {
		snapshot := *match
		go func() {
			archiveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.Archiver.ArchiveMatch(archiveCtx, &snapshot); err != nil {
				log.Printf("Failed to archive match %s: %v", snapshot.ID, err)
			}
		}()
	}
	return nil
}

func (s *SubmissionService) publish(ctx context.Context, channel, event string, payload any) {
	if err := s.Broker.Publish(ctx, channel, event, payload); err != nil {
		log.Printf("Failed to publish %s on %s: %v", event, channel, err)
	}
}

// --- Fiber handlers ---

// Submit handles POST /matches/:id/submit
func (s *SubmissionService) Submit(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	matchID := c.Params("id")

	var req struct {
		Code     string `json:"code" validate:"required"`
		Language string `json:"language" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Code == "" || req.Language == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code and language are required"})
	}

	result, err := s.SubmitP2PChallenge(c.Context(), matchID, userID, req.Code, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		case errors.Is(err, ErrAlreadyOver):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Match is already over"})
		case errors.Is(err, ErrNotInProgress):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Match is not in progress"})
		case errors.Is(err, ErrNoTestCases):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Challenge has no test cases"})
		case errors.Is(err, ErrUnsupportedLanguage):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported language"})
		case errors.Is(err, ErrChallengeNotFound):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Challenge data not found"})
		case errors.Is(err, ErrCodeExecutionFailed):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Code execution failed."})
		default:
			log.Printf("Submission error on match %s: %v", matchID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal error"})
		}
	}
	return c.JSON(result)
}
