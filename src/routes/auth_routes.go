package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/controllers"
	"github.com/theleywin/Backend-Meme-Nest/src/middleware"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

// AuthRoutes sets up signup, login, logout and the current user
func AuthRoutes(app *fiber.App, h *controllers.Controller, auth *services.AuthService) {
	group := app.Group("/api/v1/auth")

	group.Post("/signup", h.Signup)
	group.Post("/login", h.Login)
	group.Post("/logout", h.Logout)
	group.Get("/me", middleware.ProtectRoute(auth), h.GetCurrentUser)
}
