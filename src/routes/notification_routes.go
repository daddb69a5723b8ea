package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/controllers"
	"github.com/theleywin/Backend-Meme-Nest/src/middleware"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

// NotificationRoutes sets up listing, marking as read and deleting notifications
func NotificationRoutes(app *fiber.App, h *controllers.Controller, auth *services.AuthService) {
	notification := app.Group("/api/v1/notifications", middleware.ProtectRoute(auth))

	notification.Get("/", h.GetUserNotifications)
	notification.Put("/:id/read", h.MarkNotificationAsRead)
	notification.Delete("/:id", h.DeleteNotification)
}
