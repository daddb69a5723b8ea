package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/lib"
	"github.com/theleywin/Backend-Meme-Nest/src/middleware"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

// Signup registers a user and starts a session
func (h *Controller) Signup(c *fiber.Ctx) error {
	var userData struct {
		Username    string `json:"username" form:"username"`
		Email       string `json:"email" form:"email"`
		Password    string `json:"password" form:"password"`
		DisplayName string `json:"displayName" form:"displayName"`
	}
	if err := c.BodyParser(&userData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Datos inválidos"))
	}

	user, token, err := h.svc.Auth.Register(c.UserContext(), services.RegisterInput{
		Username:    userData.Username,
		Email:       userData.Email,
		Password:    userData.Password,
		DisplayName: userData.DisplayName,
	})
	if err != nil {
		return fail(c, err)
	}

	h.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Usuario registrado exitosamente",
		"token":   token,
		"user":    user,
	})
}

// Login authenticates by username or email
func (h *Controller) Login(c *fiber.Ctx) error {
	var loginData struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&loginData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Datos inválidos"))
	}

	user, token, err := h.svc.Auth.Login(c.UserContext(), loginData.Username, loginData.Password)
	if err != nil {
		return fail(c, err)
	}

	h.setSessionCookie(c, token)
	return c.JSON(fiber.Map{
		"message": "Inicio de sesión exitoso",
		"token":   token,
		"user":    user,
	})
}

// GetCurrentUser returns the account of the authenticated user
func (h *Controller) GetCurrentUser(c *fiber.Ctx) error {
	user, err := h.svc.Auth.Me(c.UserContext(), viewerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// Logout clears the session cookie
func (h *Controller) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		SameSite: "Strict",
		Path:     "/",
	})
	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Sesión cerrada correctamente"))
}

func (h *Controller) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cfg.TokenTTL),
		HTTPOnly: true,
		SameSite: "Strict", // Usa "Lax" si tienes problemas en local
		Path:     "/",
	})
}
