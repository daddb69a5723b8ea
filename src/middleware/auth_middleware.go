package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/lib"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

// CookieName is the session cookie set on login and signup.
const CookieName = "jwt-memenest"

// ViewerKey is the c.Locals key holding the *services.Viewer of the request.
const ViewerKey = "viewer"

// ProtectRoute rejects the request unless it carries a valid token for an existing user
func ProtectRoute(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("No autorizado - Token no proporcionado"))
		}

		viewer, err := auth.ViewerFromToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("No autorizado - Token inválido"))
		}

		c.Locals(ViewerKey, viewer)
		return c.Next()
	}
}

// OptionalAuth attaches the viewer when a valid token is present and lets anonymous requests through
func OptionalAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := extractToken(c); token != "" {
			if viewer, err := auth.ViewerFromToken(c.UserContext(), token); err == nil {
				c.Locals(ViewerKey, viewer)
			}
		}
		return c.Next()
	}
}

// Viewer returns the authenticated caller or nil for anonymous requests.
func Viewer(c *fiber.Ctx) *services.Viewer {
	viewer, _ := c.Locals(ViewerKey).(*services.Viewer)
	return viewer
}

func extractToken(c *fiber.Ctx) string {
	// Formato esperado: "Bearer <token>"
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return c.Cookies(CookieName)
}
