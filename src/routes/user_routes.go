package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/controllers"
	"github.com/theleywin/Backend-Meme-Nest/src/middleware"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

// UserRoutes sets up public profiles and the caller's profile and preferences
func UserRoutes(app *fiber.App, h *controllers.Controller, auth *services.AuthService) {
	user := app.Group("/api/v1/users")
	protect := middleware.ProtectRoute(auth)

	user.Put("/profile", protect, h.UpdateProfile)
	user.Put("/preferences", protect, h.UpdatePreferences)
	user.Get("/:username", h.GetPublicProfile)
	user.Get("/:username/posts", middleware.OptionalAuth(auth), h.GetUserPosts)
}
