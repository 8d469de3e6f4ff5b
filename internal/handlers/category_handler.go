package handlers

import (
	"fmt"
	"log"

	"tienda/internal/models"
	"tienda/internal/services"
	"tienda/internal/upstream"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for the category screens.
type CategoryHandler struct {
	catalog  *services.CatalogService
	validate *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(catalog *services.CatalogService) *CategoryHandler {
	return &CategoryHandler{
		catalog:  catalog,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the category routes with the Fiber app.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleListCategories)
	categoryRoutes.Post("/", h.HandleCreateCategory)
	categoryRoutes.Patch("/:id", h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", h.HandleDeleteCategory)
}

// HandleListCategories serves one page of the category listing.
func (h *CategoryHandler) HandleListCategories(c *fiber.Ctx) error {
	query := upstream.CategoryQuery{
		Search:   c.Query("q"),
		ParentID: c.Query("parent_id"),
		Page:     c.QueryInt("page", 1),
		PerPage:  c.QueryInt("per_page", 20),
		Sort:     c.Query("orden"),
	}

	page, err := h.catalog.ListCategories(query)
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not retrieve categories",
			"error":   err.Error(),
		})
	}
	return c.JSON(page)
}

// HandleCreateCategory creates a category.
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var form models.CategoryForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(form); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	category, err := h.catalog.CreateCategory(form)
	if err != nil {
		log.Printf("Error creating category: %v", err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not create category",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Category created successfully",
		"category": category,
	})
}

// HandleUpdateCategory patches a category.
func (h *CategoryHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	categoryID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid category ID"})
	}

	var form models.CategoryForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.catalog.UpdateCategory(categoryID, form); err != nil {
		log.Printf("Error updating category %d: %v", categoryID, err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not update category",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Category %d updated successfully", categoryID),
	})
}

// HandleDeleteCategory deletes a category after the UI's confirmation dialog.
func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	categoryID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid category ID"})
	}

	if err := h.catalog.DeleteCategory(categoryID); err != nil {
		log.Printf("Error deleting category %d: %v", categoryID, err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not delete category",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Category %d deleted successfully", categoryID),
	})
}
