package handlers

import (
	"brainbytes-arena/middleware"
	"brainbytes-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRealtimeRoutes(app *fiber.App, realtimeService *services.RealtimeService) {
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/realtime/auth", realtimeService.Authorize)
}
