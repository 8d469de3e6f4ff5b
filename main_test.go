package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tienda/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestOpenStagingDBDefaults(t *testing.T) {
	viper.SetDefault("STAGING_DB_DRIVER", "sqlite")
	viper.SetDefault("STAGING_DB_DSN", "file::memory:?cache=shared")

	db, err := openStagingDB()
	assert.NoError(t, err)
	assert.NotNil(t, db)

	// The staging store must accept the staged image schema.
	err = db.AutoMigrate(&models.StagedImage{})
	assert.NoError(t, err)

	img := models.StagedImage{
		ID:        "11111111-1111-1111-1111-111111111111",
		SessionID: "22222222-2222-2222-2222-222222222222",
		FileName:  "front.png",
		MIMEType:  "image/png",
		Size:      3,
		Data:      []byte{1, 2, 3},
		IsCover:   true,
	}
	assert.NoError(t, db.Create(&img).Error)

	var loaded models.StagedImage
	assert.NoError(t, db.First(&loaded, "id = ?", img.ID).Error)
	assert.Equal(t, img.FileName, loaded.FileName)
	assert.Equal(t, img.Data, loaded.Data)
}

func TestHealthEndpoint(t *testing.T) {
	app := fiber.New()
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
