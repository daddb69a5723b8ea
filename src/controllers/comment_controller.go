package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/lib"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

// UpdateComment edits the text of the caller's own comment
func (h *Controller) UpdateComment(c *fiber.Ctx) error {
	commentID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Datos inválidos"))
	}

	comment, err := h.svc.Comments.Update(c.UserContext(), commentID, viewerID(c), req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(convertCommentNode(&services.CommentNode{Comment: comment}, nil))
}

// DeleteComment removes a comment together with its replies
func (h *Controller) DeleteComment(c *fiber.Ctx) error {
	commentID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Comments.Delete(c.UserContext(), commentID, viewerID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(lib.MessageResponse("Comentario eliminado correctamente"))
}

func (h *Controller) ReactToComment(c *fiber.Ctx) error {
	commentID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	return h.react(c, services.CommentTarget(commentID))
}
