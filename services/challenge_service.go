package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"brainbytes-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ChallengeStore is what the submission pipeline needs from challenges.
type ChallengeStore interface {
	GetChallenge(ctx context.Context, id string) (*models.Challenge, error)
}

// ChallengeService owns challenge CRUD; lessons, quizzes and the rest of the
// course content live in other services.
type ChallengeService struct {
	DB *gorm.DB
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{DB: db}
}

func (s *ChallengeService) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := s.DB.WithContext(ctx).First(&challenge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	return &challenge, nil
}

func (s *ChallengeService) uniqueSlug(question string) string {
	base := slug.Make(question)
	if len(base) > 80 {
		base = base[:80]
	}
	var count int64
	if err := s.DB.Model(&models.Challenge{}).Where("slug = ?", base).Count(&count).Error; err == nil && count == 0 {
		return base
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}

// --- Fiber handlers ---

// CreateChallenge creates a new challenge (Admin only)
func (s *ChallengeService) CreateChallenge(c *fiber.Ctx) error {
	var req struct {
		Type               models.ChallengeType `json:"type" validate:"required,oneof=SELECT HINT CODE"`
		Question           string               `json:"question" validate:"required"`
		ProblemDescription string               `json:"problem_description"`
		TestCases          []models.TestCase    `json:"test_cases"`
		StubCodePy         string               `json:"stub_code_py"`
		StubCodeJs         string               `json:"stub_code_js"`
		StubCodeJava       string               `json:"stub_code_java"`
		StubCodeCpp        string               `json:"stub_code_cpp"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question is required"})
	}
	if req.Type == models.ChallengeTypeCode && len(req.TestCases) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "CODE challenges require test cases"})
	}

	challenge := &models.Challenge{
		ID:                 uuid.NewString(),
		Slug:               s.uniqueSlug(req.Question),
		Type:               req.Type,
		Question:           req.Question,
		ProblemDescription: req.ProblemDescription,
		StubCodePy:         req.StubCodePy,
		StubCodeJs:         req.StubCodeJs,
		StubCodeJava:       req.StubCodeJava,
		StubCodeCpp:        req.StubCodeCpp,
	}
	if err := challenge.SetTestCases(req.TestCases); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid test cases"})
	}

	if err := s.DB.Create(challenge).Error; err != nil {
		log.Printf("DB Error creating challenge: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create challenge"})
	}
	return c.Status(fiber.StatusCreated).JSON(challenge)
}

// UpdateChallenge updates an existing challenge (Admin only)
func (s *ChallengeService) UpdateChallenge(c *fiber.Ctx) error {
	id := c.Params("id")

	var existing models.Challenge
	if err := s.DB.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Question           *string            `json:"question"`
		ProblemDescription *string            `json:"problem_description"`
		TestCases          *[]models.TestCase `json:"test_cases"`
		StubCodePy         *string            `json:"stub_code_py"`
		StubCodeJs         *string            `json:"stub_code_js"`
		StubCodeJava       *string            `json:"stub_code_java"`
		StubCodeCpp        *string            `json:"stub_code_cpp"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Question != nil {
		existing.Question = *req.Question
	}
	if req.ProblemDescription != nil {
		existing.ProblemDescription = *req.ProblemDescription
	}
	if req.TestCases != nil {
		if err := existing.SetTestCases(*req.TestCases); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid test cases"})
		}
	}
	if req.StubCodePy != nil {
		existing.StubCodePy = *req.StubCodePy
	}
	if req.StubCodeJs != nil {
		existing.StubCodeJs = *req.StubCodeJs
	}
	if req.StubCodeJava != nil {
		existing.StubCodeJava = *req.StubCodeJava
	}
	if req.StubCodeCpp != nil {
		existing.StubCodeCpp = *req.StubCodeCpp
	}

	if err := s.DB.Save(&existing).Error; err != nil {
		log.Printf("DB Error updating challenge %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update challenge"})
	}
	return c.JSON(existing)
}

// DeleteChallenge soft-deletes a challenge (Admin only)
func (s *ChallengeService) DeleteChallenge(c *fiber.Ctx) error {
	id := c.Params("id")

	var challenge models.Challenge
	if err := s.DB.First(&challenge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := s.DB.Delete(&challenge).Error; err != nil {
		log.Printf("DB Error deleting challenge %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete challenge"})
	}
	return c.JSON(fiber.Map{"message": "Challenge deleted successfully"})
}

// GetAllChallenges lists challenges, optionally filtered by type
func (s *ChallengeService) GetAllChallenges(c *fiber.Ctx) error {
	query := s.DB.Order("created_at DESC")
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}

	var challenges []models.Challenge
	if err := query.Find(&challenges).Error; err != nil {
		log.Printf("DB Error fetching challenges: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch challenges"})
	}
	return c.JSON(challenges)
}

// GetChallengeByID fetches one challenge with its decoded test cases
func (s *ChallengeService) GetChallengeByID(c *fiber.Ctx) error {
	challenge, err := s.GetChallenge(c.Context(), c.Params("id"))
	if errors.Is(err, ErrChallengeNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	testCases, err := challenge.TestCases()
	if err != nil {
		log.Printf("Corrupt test cases on challenge %s: %v", challenge.ID, err)
		testCases = nil
	}
	return c.JSON(fiber.Map{"challenge": challenge, "test_cases": testCases})
}
