package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/lib"
	"github.com/theleywin/Backend-Meme-Nest/src/middleware"
	"github.com/theleywin/Backend-Meme-Nest/src/models"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

// GetPublicProfile returns the public profile of a user by username
func (h *Controller) GetPublicProfile(c *fiber.Ctx) error {
	user, posts, err := h.svc.Users.Profile(c.UserContext(), c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(convertToProfileDto(user, posts))
}

// GetUserPosts lists the posts of one user, newest first
func (h *Controller) GetUserPosts(c *fiber.Ctx) error {
	page := pageFromQuery(c, false)
	posts, total, err := h.svc.Posts.ListByUser(c.UserContext(), c.Params("username"), page, middleware.Viewer(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(models.PostPageDto{
		Posts:  h.postDtos(c.UserContext(), posts, viewerID(c)),
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// UpdateProfile changes display name, bio and avatar (multipart field "avatar")
func (h *Controller) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		DisplayName *string `json:"displayName" form:"displayName"`
		Bio         *string `json:"bio" form:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Datos inválidos"))
	}
	avatar, err := formUpload(c, "avatar")
	if err != nil {
		return fail(c, err)
	}

	user, err := h.svc.Users.UpdateProfile(c.UserContext(), viewerID(c), services.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Avatar:      avatar,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// UpdatePreferences stores the autoplay flags of the caller
func (h *Controller) UpdatePreferences(c *fiber.Ctx) error {
	var req struct {
		AutoplayDesktop *bool `json:"autoplayDesktop"`
		AutoplayMobile  *bool `json:"autoplayMobile"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Datos inválidos"))
	}

	user, err := h.svc.Users.UpdatePreferences(c.UserContext(), viewerID(c), services.Preferences{
		AutoplayDesktop: req.AutoplayDesktop,
		AutoplayMobile:  req.AutoplayMobile,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(models.PreferencesDto{
		AutoplayDesktop: user.AutoplayDesktop,
		AutoplayMobile:  user.AutoplayMobile,
	})
}
