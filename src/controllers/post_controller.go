package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/lib"
	"github.com/theleywin/Backend-Meme-Nest/src/middleware"
	"github.com/theleywin/Backend-Meme-Nest/src/models"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

// GetFeedPosts returns the newest posts visible to the caller
func (h *Controller) GetFeedPosts(c *fiber.Ctx) error {
	page := pageFromQuery(c, false)
	posts, total, err := h.svc.Posts.List(c.UserContext(), page, middleware.Viewer(c))
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

// SearchPosts runs a "#tag -tag words" query. limit=0 returns every match.
func (h *Controller) SearchPosts(c *fiber.Ctx) error {
	query, err := services.ParseSearchQuery(c.Query("q"))
	if err != nil {
		return fail(c, err)
	}

	page := pageFromQuery(c, true)
	posts, total, err := h.svc.Posts.Search(c.UserContext(), query, page, middleware.Viewer(c))
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

// GetPostByID returns a single post
func (h *Controller) GetPostByID(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.svc.Posts.Get(c.UserContext(), postID, middleware.Viewer(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(h.postDtos(c.UserContext(), []models.Post{*post}, viewerID(c))[0])
}

// GetPostComments returns the comment tree of a post, newest threads first
func (h *Controller) GetPostComments(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.svc.Posts.Get(c.UserContext(), postID, middleware.Viewer(c)); err != nil {
		return fail(c, err)
	}

	tree, err := h.svc.Comments.Tree(c.UserContext(), postID)
	if err != nil {
		return fail(c, err)
	}

	reactions := map[uint]models.ReactionKind{}
	if id := viewerID(c); id != 0 && tree.Len() > 0 {
		ids := make([]uint, 0, tree.Len())
		for commentID := range tree.ByID {
			ids = append(ids, commentID)
		}
		if reactions, err = h.svc.Reactions.UserReactions(c.UserContext(), services.TargetComment, id, ids); err != nil {
			return fail(c, err)
		}
	}

	comments := make([]models.CommentDto, 0, len(tree.Roots))
	for _, root := range tree.Roots {
		comments = append(comments, convertCommentNode(root, reactions))
	}
	return c.JSON(fiber.Map{
		"comments": comments,
		"count":    tree.Len(),
	})
}

// CreatePost uploads the media file and creates the post
func (h *Controller) CreatePost(c *fiber.Ctx) error {
	media, err := formUpload(c, "media")
	if err != nil {
		return fail(c, err)
	}

	post, err := h.svc.Posts.Create(c.UserContext(), viewerID(c), services.PostInput{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
		Tags:    c.FormValue("tags"),
		Media:   media,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(convertToPostDto(*post, nil))
}

// UpdatePost changes title or content; only the owner may do it
func (h *Controller) UpdatePost(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Datos inválidos"))
	}

	post, err := h.svc.Posts.Update(c.UserContext(), postID, viewerID(c), services.PostUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(h.postDtos(c.UserContext(), []models.Post{*post}, viewerID(c))[0])
}

// DeletePost removes a post and everything hanging from it
func (h *Controller) DeletePost(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Posts.Delete(c.UserContext(), postID, viewerID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(lib.MessageResponse("Publicación eliminada correctamente"))
}

// ToggleTag adds or removes one tag
func (h *Controller) ToggleTag(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Tag string `json:"tag" form:"tag"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Datos inválidos"))
	}

	list, err := h.svc.Posts.ToggleTag(c.UserContext(), postID, req.Tag, viewerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"tags": list})
}

// ReactToPost likes or dislikes a post; repeating the same reaction removes it
func (h *Controller) ReactToPost(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	return h.react(c, services.PostTarget(postID))
}

// CreateComment adds a comment or a reply (parent_id) to a post
func (h *Controller) CreateComment(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Content  string `json:"content" form:"content"`
		ParentID *uint  `json:"parent_id" form:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Datos inválidos"))
	}
	attachment, err := formUpload(c, "attachment")
	if err != nil {
		return fail(c, err)
	}

	comment, err := h.svc.Comments.Create(c.UserContext(), viewerID(c), services.CommentInput{
		PostID:     postID,
		ParentID:   req.ParentID,
		Content:    req.Content,
		Attachment: attachment,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(convertCommentNode(&services.CommentNode{Comment: comment}, nil))
}

func (h *Controller) react(c *fiber.Ctx, target services.ReactionTarget) error {
	var req struct {
		Kind models.ReactionKind `json:"kind" form:"kind"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Datos inválidos"))
	}

	result, err := h.svc.Reactions.Apply(c.UserContext(), target, viewerID(c), req.Kind)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(models.ReactionResultDto{
		Likes:        result.Likes,
		Dislikes:     result.Dislikes,
		Score:        result.Score,
		UserReaction: result.Current,
	})
}
