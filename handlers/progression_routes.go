package handlers

import (
	"brainbytes-arena/middleware"
	"brainbytes-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, progressionService *services.ProgressionService) {
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Get("/user/progress", progressionService.GetUserProgress)
}
