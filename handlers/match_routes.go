package handlers

import (
	"brainbytes-arena/middleware"
	"brainbytes-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService, submissionService *services.SubmissionService) {
	// 🔐 Everything match-related requires user context from the Gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/matches/find-or-join", matchService.FindOrJoin)
	secured.Get("/matches/:id", matchService.GetMatchByID)
	secured.Post("/matches/:id/submit", submissionService.Submit)
	secured.Post("/matches/:id/progress", matchService.PostProgress)
}
