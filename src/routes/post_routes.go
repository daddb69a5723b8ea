package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/controllers"
	"github.com/theleywin/Backend-Meme-Nest/src/middleware"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

// PostRoutes sets up the feed, search, post CRUD, tags, reactions and comments
func PostRoutes(app *fiber.App, h *controllers.Controller, auth *services.AuthService) {
	post := app.Group("/api/v1/posts")
	optional := middleware.OptionalAuth(auth)
	protect := middleware.ProtectRoute(auth)

	post.Get("/", optional, h.GetFeedPosts)
	post.Get("/search", optional, h.SearchPosts)
	post.Get("/:id", optional, h.GetPostByID)
	post.Get("/:id/comments", optional, h.GetPostComments)

	post.Post("/", protect, h.CreatePost)
	post.Put("/:id", protect, h.UpdatePost)
	post.Delete("/:id", protect, h.DeletePost)
	post.Post("/:id/tags", protect, h.ToggleTag)
	post.Post("/:id/react", protect, h.ReactToPost)
	post.Post("/:id/comments", protect, h.CreateComment)
}

// CommentRoutes sets up editing, deleting and reacting to comments
func CommentRoutes(app *fiber.App, h *controllers.Controller, auth *services.AuthService) {
	comment := app.Group("/api/v1/comments", middleware.ProtectRoute(auth))

	comment.Put("/:id", h.UpdateComment)
	comment.Delete("/:id", h.DeleteComment)
	comment.Post("/:id/react", h.ReactToComment)
}
