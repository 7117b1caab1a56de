package handlers

import (
	"brainbytes-arena/middleware"
	"brainbytes-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService) {
	// 🔓 Public routes — no user context, but still behind Gateway auth
	app.Get("/challenges", challengeService.GetAllChallenges)
	app.Get("/challenges/:id", challengeService.GetChallengeByID)

	// 🔒 Admin-only routes
	secured := app.Group("/", middleware.UserContextMiddleware())
	admin := secured.Group("/admin", middleware.RequireRole("admin"))
	admin.Post("/challenges", challengeService.CreateChallenge)
	admin.Put("/challenges/:id", challengeService.UpdateChallenge)
	admin.Delete("/challenges/:id", challengeService.DeleteChallenge)
}
