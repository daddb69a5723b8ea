package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/lib"
)

// GetUserNotifications returns the newest notifications of the authenticated user
func (h *Controller) GetUserNotifications(c *fiber.Ctx) error {
	notifications, err := h.svc.Notifications.List(c.UserContext(), viewerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(notifications)
}

// MarkNotificationAsRead flags one notification of the caller as read
func (h *Controller) MarkNotificationAsRead(c *fiber.Ctx) error {
	if err := h.svc.Notifications.MarkRead(c.UserContext(), c.Params("id"), viewerID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(lib.MessageResponse("Notificación marcada como leída"))
}

func (h *Controller) DeleteNotification(c *fiber.Ctx) error {
	if err := h.svc.Notifications.Delete(c.UserContext(), c.Params("id"), viewerID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(lib.MessageResponse("Notificación eliminada correctamente"))
}
