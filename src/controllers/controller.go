package controllers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/theleywin/Backend-Meme-Nest/src/config"
	"github.com/theleywin/Backend-Meme-Nest/src/lib"
	"github.com/theleywin/Backend-Meme-Nest/src/middleware"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Controller holds the services every handler works with.
type Controller struct {
	svc *services.Services
	cfg *config.Config
}

func New(svc *services.Services, cfg *config.Config) *Controller {
	return &Controller{svc: svc, cfg: cfg}
}

// fail answers with the status that matches a service error.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrPermissionDenied):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	}

	if status == fiber.StatusInternalServerError {
		log.Printf("Error en %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(lib.MessageResponse("Error interno del servidor"))
	}
	return c.Status(status).JSON(lib.MessageResponse(err.Error()))
}

// ErrorHandler answers errors returned by handlers, including fiber's own.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(lib.MessageResponse(fe.Message))
	}
	return fail(c, err)
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "ID inválido")
	}
	return uint(id), nil
}

// pageFromQuery reads limit/offset. limit=0 is only honored when allowUnbounded is set.
func pageFromQuery(c *fiber.Ctx, allowUnbounded bool) services.Page {
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 0 || (limit == 0 && !allowUnbounded) {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return services.Page{Limit: limit, Offset: offset}
}

// formUpload reads an optional multipart file field.
func formUpload(c *fiber.Ctx, field string) (*services.Upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return nil, nil
	}
	if err != nil {
		log.Printf("Error leyendo el archivo %q: %v", field, err)
		return nil, fmt.Errorf("%w: formulario multipart inválido", services.ErrValidation)
	}
	if header == nil {
		return nil, nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &services.Upload{Filename: header.Filename, Data: data}, nil
}

func viewerID(c *fiber.Ctx) uint {
	if v := middleware.Viewer(c); v != nil {
		return v.UserID
	}
	return 0
}
