package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"tienda/internal/handlers"
	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/notify"
	"tienda/internal/repositories"
	"tienda/internal/services"
	"tienda/internal/upstream"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// backendRecorder is the stubbed storefront backend's memory. It records the
// requests the gateway forwards so tests can assert on the wire traffic.
type backendRecorder struct {
	mu            sync.Mutex
	attachedIDs   []int64
	uploadedFiles int
	coverIndex    string
}

// newBackendStub serves the storefront API surface the gateway talks to.
// Category 9 always rejects attachment so partial failures can be exercised.
func newBackendStub(rec *backendRecorder) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		w.Header().Set("Content-Type", "application/json")
		if creds["email"] == "admin@example.com" && creds["password"] == "password123" {
			fmt.Fprint(w, `{"ok": true, "redirect": "/admin/productos.html"}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "credenciales inválidas"}`)
	})

	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 42}`)
	})

	mux.HandleFunc("/products/42/categories", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int64
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["category_id"] == 9 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"error": "categoría inactiva"}`)
			return
		}
		rec.mu.Lock()
		rec.attachedIDs = append(rec.attachedIDs, body["category_id"])
		rec.mu.Unlock()
		fmt.Fprint(w, `{"ok": true}`)
	})

	mux.HandleFunc("/products/42/images", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		rec.mu.Lock()
		rec.uploadedFiles = len(r.MultipartForm.File["files"])
		rec.coverIndex = r.FormValue("portada_index")
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok": true}`)
	})

	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items": [
			{"id": 1, "nombre": "Café", "slug": "cafe", "activo": true},
			{"id": 2, "nombre": "Té", "slug": "te", "activo": true}
		], "total": 2}`)
	})

	return httptest.NewServer(mux)
}

// setupApp wires a Fiber app the same way main does, pointed at the stub
// backend, with an in-memory SQLite staging store.
func setupApp(backendURL string) (*fiber.App, error) {
	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// Initialize in-memory SQLite database for the staging store
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}
	if err := db.AutoMigrate(&models.StagedImage{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	client := upstream.NewClient(backendURL)

	// Initialize Services
	stagingService := services.NewStagingService(repositories.NewGORMStagingRepository(db))
	creationService := services.NewCreationService(client, stagingService, notify.NewLogNotifier())
	catalogService := services.NewCatalogService(client, time.Minute)
	authService := services.NewAuthService(client, jwtSecret)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(creationService, catalogService)
	categoryHandler := handlers.NewCategoryHandler(catalogService)
	stagingHandler := handlers.NewStagingHandler(stagingService)

	app := fiber.New()

	// API Routes
	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Protected routes (require a session)
	protectedRoutes := apiV1.Group("", middleware.SessionRequired(authService))
	productHandler.RegisterRoutes(protectedRoutes)
	categoryHandler.RegisterRoutes(protectedRoutes)
	stagingHandler.RegisterRoutes(protectedRoutes)

	return app, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// login authenticates against the app and returns the session token.
func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	jsonBody, _ := json.Marshal(map[string]string{
		"email":    "admin@example.com",
		"password": "password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]string
	err = json.NewDecoder(resp.Body).Decode(&loginResp)
	assert.NoError(t, err)
	assert.NotEmpty(t, loginResp["token"])
	resp.Body.Close()
	return loginResp["token"]
}

// testPNG encodes a small valid PNG used for staging uploads.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 120, B: 220, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// multipartFiles builds a multipart body with one "files" part per entry.
func multipartFiles(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := w.CreateFormFile("files", name)
		assert.NoError(t, err)
		_, err = part.Write(data)
		assert.NoError(t, err)
	}
	assert.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestLogin(t *testing.T) {
	rec := &backendRecorder{}
	backend := newBackendStub(rec)
	defer backend.Close()

	app, err := setupApp(backend.URL)
	assert.NoError(t, err)

	// Test rejected credentials
	jsonBody, _ := json.Marshal(map[string]string{
		"email":    "admin@example.com",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var errResp map[string]string
	err = json.NewDecoder(resp.Body).Decode(&errResp)
	assert.NoError(t, err)
	assert.Contains(t, errResp["error"], "credenciales inválidas")
	resp.Body.Close()

	// Test successful login: token, redirect and session cookie
	jsonBody, _ = json.Marshal(map[string]string{
		"email":    "admin@example.com",
		"password": "password123",
	})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]string
	err = json.NewDecoder(resp.Body).Decode(&loginResp)
	assert.NoError(t, err)
	assert.NotEmpty(t, loginResp["token"])
	assert.Equal(t, "/admin/productos.html", loginResp["redirect"])

	cookie := resp.Header.Get("Set-Cookie")
	assert.Contains(t, cookie, middleware.SessionCookie+"=")
	resp.Body.Close()
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	rec := &backendRecorder{}
	backend := newBackendStub(rec)
	defer backend.Close()

	app, err := setupApp(backend.URL)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories/", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodPost, "/api/v1/products/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestProductCreationFlow(t *testing.T) {
	rec := &backendRecorder{}
	backend := newBackendStub(rec)
	defer backend.Close()

	app, err := setupApp(backend.URL)
	assert.NoError(t, err)
	token := login(t, app)

	// Open a staging session
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staging/sessions/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var sessionResp map[string]string
	err = json.NewDecoder(resp.Body).Decode(&sessionResp)
	assert.NoError(t, err)
	sessionID := sessionResp["session_id"]
	assert.NotEmpty(t, sessionID)
	resp.Body.Close()

	// Stage one image into the session
	body, contentType := multipartFiles(t, map[string][]byte{"front.png": testPNG(t)})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/staging/sessions/"+sessionID+"/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Submit the creation form. The backend rejects category 9.
	jsonBody, _ := json.Marshal(map[string]interface{}{
		"name":            "Café Élite",
		"price":           "19.99",
		"stock":           10,
		"category_ids":    []int64{7, 9},
		"active":          true,
		"staging_session": sessionID,
	})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/products/", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var createResp struct {
		Message string                     `json:"message"`
		Result  models.OrchestrationResult `json:"result"`
	}
	err = json.NewDecoder(resp.Body).Decode(&createResp)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), createResp.Result.ProductID)
	assert.Equal(t, models.StateDone, createResp.Result.State)
	assert.Equal(t, []int64{9}, createResp.Result.CategoryAttachFailures)
	assert.True(t, createResp.Result.ImageUploadSucceeded)
	assert.Contains(t, createResp.Message, "could not be attached")
	resp.Body.Close()

	// The backend saw the surviving attach and the single batch upload.
	rec.mu.Lock()
	assert.Equal(t, []int64{7}, rec.attachedIDs)
	assert.Equal(t, 1, rec.uploadedFiles)
	assert.Equal(t, "0", rec.coverIndex)
	rec.mu.Unlock()

	// A successful upload cleared the staging session.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/staging/sessions/"+sessionID+"/images", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listResp struct {
		Items []models.StagedImage `json:"items"`
	}
	err = json.NewDecoder(resp.Body).Decode(&listResp)
	assert.NoError(t, err)
	assert.Empty(t, listResp.Items)
	resp.Body.Close()
}

func TestStagingRejectsInvalidFile(t *testing.T) {
	rec := &backendRecorder{}
	backend := newBackendStub(rec)
	defer backend.Close()

	app, err := setupApp(backend.URL)
	assert.NoError(t, err)
	token := login(t, app)

	body, contentType := multipartFiles(t, map[string][]byte{"notes.txt": []byte("plain text")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staging/sessions/11111111-1111-1111-1111-111111111111/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "not an image")
	resp.Body.Close()
}

func TestCategoryListing(t *testing.T) {
	rec := &backendRecorder{}
	backend := newBackendStub(rec)
	defer backend.Close()

	app, err := setupApp(backend.URL)
	assert.NoError(t, err)
	token := login(t, app)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories/?page=1&per_page=20", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Items []models.Category `json:"items"`
		Total int               `json:"total"`
	}
	err = json.NewDecoder(resp.Body).Decode(&page)
	assert.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "Café", page.Items[0].Name)
	resp.Body.Close()
}
