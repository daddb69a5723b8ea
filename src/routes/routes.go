package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/controllers"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

// Setup registers every API route group.
func Setup(app *fiber.App, h *controllers.Controller, auth *services.AuthService) {
	AuthRoutes(app, h, auth)
	PostRoutes(app, h, auth)
	CommentRoutes(app, h, auth)
	UserRoutes(app, h, auth)
	NotificationRoutes(app, h, auth)
}
