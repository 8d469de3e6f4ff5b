package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"tienda/internal/models"
	"tienda/internal/money"
	"tienda/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product screens.
type ProductHandler struct {
	creation *services.CreationService
	catalog  *services.CatalogService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(creation *services.CreationService, catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{
		creation: creation,
		catalog:  catalog,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)

	productRoutes.Post("/:id/categories", h.HandleToggleCategory)
	productRoutes.Delete("/:id/categories/:categoryId", h.HandleDetachCategory)

	productRoutes.Get("/:id/images", h.HandleListImages)
	productRoutes.Patch("/:id/images/:imageId", h.HandleUpdateImage)
	productRoutes.Delete("/:id/images/:imageId", h.HandleDeleteImage)
}

// productRequest is the submitted creation/edit form. The price arrives as the
// decimal string the admin typed and is converted to minor units on collection.
type productRequest struct {
	Name           string  `json:"name" validate:"required"`
	Slug           string  `json:"slug" validate:"omitempty,max=150"`
	Price          string  `json:"price" validate:"required"`
	Stock          int     `json:"stock"`
	Currency       string  `json:"currency" validate:"omitempty,len=3"`
	SKU            string  `json:"sku" validate:"omitempty,max=64"`
	Description    string  `json:"description" validate:"omitempty,max=2000"`
	Active         bool    `json:"active"`
	CategoryIDs    []int64 `json:"category_ids"`
	StagingSession string  `json:"staging_session" validate:"omitempty,uuid"`
}

// collect maps the submitted values onto the form state without touching them
// beyond the price conversion.
func (r *productRequest) collect() models.ProductForm {
	currency := r.Currency
	if currency == "" {
		currency = "COP"
	}
	return models.ProductForm{
		Name:            r.Name,
		Slug:            r.Slug,
		SlugTouched:     r.Slug != "",
		PriceMinorUnits: money.ToMinorUnits(r.Price),
		Stock:           r.Stock,
		CurrencyCode:    currency,
		SKU:             r.SKU,
		Description:     r.Description,
		Active:          r.Active,
		CategoryIDs:     r.CategoryIDs,
	}
}

// HandleCreateProduct runs the full creation workflow for one submission.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
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

	result, err := h.creation.Create(req.StagingSession, req.collect())
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"error":   validationErr.Msg,
			})
		case errors.Is(err, services.ErrSubmissionInFlight):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": err.Error(),
			})
		default:
			log.Printf("Error creating product: %v", err)
			return c.Status(upstreamStatus(err)).JSON(fiber.Map{
				"message": "Could not create product",
				"error":   err.Error(),
				"result":  result,
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": result.Message,
		"result":  result,
	})
}

// HandleGetProduct returns a product detail including its categories.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid product ID"})
	}

	product, err := h.catalog.GetProduct(productID)
	if err != nil {
		log.Printf("Error getting product %d: %v", productID, err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"producto": product})
}

// HandleUpdateProduct patches product fields from the edit screen.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid product ID"})
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	form := req.collect()
	if err := services.ValidateProductForm(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.catalog.UpdateProduct(productID, form); err != nil {
		log.Printf("Error updating product %d: %v", productID, err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not update product",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %d updated successfully", productID),
	})
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid product ID"})
	}

	if err := h.catalog.DeleteProduct(productID); err != nil {
		log.Printf("Error deleting product %d: %v", productID, err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not delete product",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %d deleted successfully", productID),
	})
}

// HandleToggleCategory attaches one category to a product, mirroring the edit
// screen's checkbox flow: immediate round-trip, the UI rolls back on failure.
func (h *ProductHandler) HandleToggleCategory(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid product ID"})
	}

	var req struct {
		CategoryID int64 `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.CategoryID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "category_id is required",
		})
	}

	if err := h.catalog.ToggleCategory(productID, req.CategoryID, true); err != nil {
		log.Printf("Error attaching category %d to product %d: %v", req.CategoryID, productID, err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not attach category",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Category attached"})
}

// HandleDetachCategory removes one category association.
func (h *ProductHandler) HandleDetachCategory(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid product ID"})
	}
	categoryID, err := parseID(c, "categoryId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid category ID"})
	}

	if err := h.catalog.ToggleCategory(productID, categoryID, false); err != nil {
		log.Printf("Error detaching category %d from product %d: %v", categoryID, productID, err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not detach category",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Category detached"})
}

// HandleListImages lists a product's uploaded images.
func (h *ProductHandler) HandleListImages(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid product ID"})
	}

	images, err := h.catalog.ListImages(productID)
	if err != nil {
		log.Printf("Error listing images for product %d: %v", productID, err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not retrieve images",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"items": images})
}

// HandleUpdateImage updates an uploaded image's alt text or order. An order
// change answers with the re-fetched list so the screen re-renders from
// server state.
func (h *ProductHandler) HandleUpdateImage(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid product ID"})
	}
	imageID, err := parseID(c, "imageId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid image ID"})
	}

	var req struct {
		Alt   *string `json:"alt"`
		Order *int    `json:"orden"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if req.Order != nil {
		items, err := h.catalog.ReorderImage(productID, imageID, *req.Order)
		if err != nil {
			log.Printf("Error reordering image %d of product %d: %v", imageID, productID, err)
			return c.Status(upstreamStatus(err)).JSON(fiber.Map{
				"message": "Could not reorder image",
				"error":   err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "Image reordered", "items": items})
	}

	if req.Alt != nil {
		if err := h.catalog.UpdateImageAlt(productID, imageID, *req.Alt); err != nil {
			log.Printf("Error updating alt of image %d: %v", imageID, err)
			return c.Status(upstreamStatus(err)).JSON(fiber.Map{
				"message": "Could not update image",
				"error":   err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "Image updated"})
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Either alt or orden is required",
	})
}

// HandleDeleteImage deletes an uploaded image.
func (h *ProductHandler) HandleDeleteImage(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid product ID"})
	}
	imageID, err := parseID(c, "imageId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid image ID"})
	}

	if err := h.catalog.DeleteImage(productID, imageID); err != nil {
		log.Printf("Error deleting image %d of product %d: %v", imageID, productID, err)
		return c.Status(upstreamStatus(err)).JSON(fiber.Map{
			"message": "Could not delete image",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Image deleted"})
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	return strconv.ParseInt(c.Params(param), 10, 64)
}
