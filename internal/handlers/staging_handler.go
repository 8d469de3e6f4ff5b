package handlers

import (
	"errors"
	"io"
	"log"
	"strconv"

	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// StagingHandler handles HTTP requests for the pre-creation image buffer.
type StagingHandler struct {
	staging *services.StagingService
}

// NewStagingHandler creates a new StagingHandler.
func NewStagingHandler(staging *services.StagingService) *StagingHandler {
	return &StagingHandler{
		staging: staging,
	}
}

// RegisterRoutes registers the staging routes with the Fiber app.
func (h *StagingHandler) RegisterRoutes(router fiber.Router) {
	stagingRoutes := router.Group("/staging/sessions")
	stagingRoutes.Post("/", h.HandleOpenSession)
	stagingRoutes.Get("/:sessionId/images", h.HandleListImages)
	stagingRoutes.Post("/:sessionId/images", h.HandleStageImages)
	stagingRoutes.Patch("/:sessionId/images/:index/cover", h.HandleSetCover)
	stagingRoutes.Patch("/:sessionId/images/:index", h.HandleSetAlt)
	stagingRoutes.Delete("/:sessionId/images/:index", h.HandleRemoveImage)
	stagingRoutes.Delete("/:sessionId", h.HandleClearSession)
}

// HandleOpenSession mints a staging session ID for one creation form instance.
func (h *StagingHandler) HandleOpenSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": uuid.New().String(),
	})
}

// HandleListImages returns the session's staged images with previews.
func (h *StagingHandler) HandleListImages(c *fiber.Ctx) error {
	images, err := h.staging.List(c.Params("sessionId"))
	if err != nil {
		log.Printf("Error listing staged images: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not list staged images",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"items": images})
}

// HandleStageImages stages every file in the multipart "files" field. A file
// that fails validation is reported but does not block the rest, matching the
// picker's drop-several-files-at-once behavior.
func (h *StagingHandler) HandleStageImages(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid multipart form",
			"error":   err.Error(),
		})
	}
	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": `missing files: form field key should be "files"`,
		})
	}

	var staged []interface{}
	failures := make(map[string]string)
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			failures[fh.Filename] = err.Error()
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			failures[fh.Filename] = err.Error()
			continue
		}

		img, err := h.staging.Stage(sessionID, fh.Filename, data)
		if err != nil {
			failures[fh.Filename] = err.Error()
			continue
		}
		staged = append(staged, img)
	}

	status := fiber.StatusCreated
	if len(staged) == 0 {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"staged": staged,
		"errors": failures,
	})
}

// HandleSetCover designates the image at the given index as cover.
func (h *StagingHandler) HandleSetCover(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid image index"})
	}

	if err := h.staging.SetCover(sessionID, index); err != nil {
		return h.stagingError(c, err, "Could not set cover")
	}
	return c.JSON(fiber.Map{"message": "Cover updated"})
}

// HandleSetAlt sets an explicit alt text on the image at the given index.
func (h *StagingHandler) HandleSetAlt(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid image index"})
	}

	var req struct {
		Alt string `json:"alt"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.staging.SetAlt(sessionID, index, req.Alt); err != nil {
		return h.stagingError(c, err, "Could not update alt text")
	}
	return c.JSON(fiber.Map{"message": "Alt text updated"})
}

// HandleRemoveImage drops the image at the given index.
func (h *StagingHandler) HandleRemoveImage(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid image index"})
	}

	if err := h.staging.Remove(sessionID, index); err != nil {
		return h.stagingError(c, err, "Could not remove image")
	}
	return c.JSON(fiber.Map{"message": "Image removed"})
}

// HandleClearSession drops every staged image in the session.
func (h *StagingHandler) HandleClearSession(c *fiber.Ctx) error {
	if err := h.staging.Clear(c.Params("sessionId")); err != nil {
		log.Printf("Error clearing staging session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not clear staging session",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Staging session cleared"})
}

func (h *StagingHandler) stagingError(c *fiber.Ctx, err error, message string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrOutOfRange):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrTooMany),
		errors.Is(err, services.ErrInvalidType),
		errors.Is(err, services.ErrTooLarge):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
