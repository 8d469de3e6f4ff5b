package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"tienda/internal/models"
	"tienda/internal/notify"
	"tienda/internal/slug"
	"tienda/internal/upstream"
)

// ErrSubmissionInFlight rejects a duplicate submit while a creation attempt
// for the same staging session is still running.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// ValidationError is a pre-flight form failure. No network call is made when
// one is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ValidateProductForm applies the pre-flight rules in order; the first
// violation wins.
func ValidateProductForm(form *models.ProductForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return &ValidationError{Msg: "name required"}
	}
	if form.PriceMinorUnits <= 0 {
		return &ValidationError{Msg: "price must be positive"}
	}
	if form.Stock < 0 {
		return &ValidationError{Msg: "stock cannot be negative"}
	}
	return nil
}

// CreationAPI is the slice of the upstream client the orchestrator needs.
type CreationAPI interface {
	CreateProduct(payload upstream.ProductPayload) (int64, error)
	AttachCategory(productID, categoryID int64) error
	UploadImages(productID int64, batch upstream.ImageBatch) error
}

// CreationService runs the product creation workflow: create the product,
// then best-effort attach its categories, then upload the staged gallery in
// one batch. Only the create step can fail the workflow; the later stages
// collect their failures into the result instead.
type CreationService struct {
	api      CreationAPI
	staging  *StagingService
	notifier notify.Notifier

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewCreationService creates a new CreationService.
func NewCreationService(api CreationAPI, staging *StagingService, notifier notify.Notifier) *CreationService {
	return &CreationService{
		api:      api,
		staging:  staging,
		notifier: notifier,
		inFlight: make(map[string]bool),
	}
}

// Create runs one creation attempt end to end and emits exactly one terminal
// notification. sessionID identifies the staging session holding the form's
// images; it also keys the duplicate-submission guard.
func (s *CreationService) Create(sessionID string, form models.ProductForm) (*models.OrchestrationResult, error) {
	if !s.begin(sessionID) {
		return nil, ErrSubmissionInFlight
	}
	defer s.end(sessionID)

	result := &models.OrchestrationResult{State: models.StateIdle}

	// Pre-flight validation blocks submission entirely.
	if err := ValidateProductForm(&form); err != nil {
		result.Message = err.Error()
		s.notifier.Notify(notify.Notification{
			Title:   "Validation failed",
			Message: err.Error(),
			Level:   notify.LevelError,
			At:      time.Now(),
		})
		return result, err
	}

	// Stage 1: create the product. Failure here is terminal and the backend's
	// message is surfaced verbatim.
	result.State = models.StateCreating
	productID, err := s.api.CreateProduct(buildProductPayload(form))
	if err != nil {
		result.State = models.StateFailed
		result.Message = err.Error()
		s.notifier.Notify(notify.Notification{
			Title:   "Error",
			Message: err.Error(),
			Level:   notify.LevelError,
			At:      time.Now(),
		})
		return result, err
	}
	result.ProductID = productID
	log.Printf("Product created with ID %d", productID)

	// Stage 2: attach categories in insertion order. A failed attach is
	// recorded and the rest are still attempted; a partially categorized
	// product is preferable to losing the creation work.
	result.State = models.StateAttachingCategories
	for _, categoryID := range form.CategoryIDs {
		if err := s.api.AttachCategory(productID, categoryID); err != nil {
			log.Printf("Warning: failed to attach category %d to product %d: %v", categoryID, productID, err)
			result.CategoryAttachFailures = append(result.CategoryAttachFailures, categoryID)
		}
	}

	// Stage 3: upload the staged gallery as a single batch. Runs regardless of
	// stage 2 outcomes; an empty session makes it a no-op. Failure leaves the
	// product and categories in place, there is no compensating rollback.
	result.State = models.StateUploadingImages
	result.ImageUploadSucceeded = true
	batch, err := s.staging.UploadBatch(sessionID)
	switch {
	case err != nil:
		log.Printf("Warning: could not assemble image batch for product %d: %v", productID, err)
		result.ImageUploadSucceeded = false
	case len(batch.Files) > 0:
		if err := s.api.UploadImages(productID, batch); err != nil {
			log.Printf("Warning: image upload failed for product %d: %v", productID, err)
			result.ImageUploadSucceeded = false
		} else if err := s.staging.Clear(sessionID); err != nil {
			log.Printf("Warning: failed to clear staging session %s: %v", sessionID, err)
		}
	}

	// The mandatory resource exists, so the terminal state is success even
	// when the best-effort stages were lossy; the message carries the caveats.
	result.State = models.StateDone
	result.Message = doneMessage(result)

	level := notify.LevelSuccess
	if len(result.CategoryAttachFailures) > 0 || !result.ImageUploadSucceeded {
		level = notify.LevelWarning
	}
	s.notifier.Notify(notify.Notification{
		Title:   "Product created",
		Message: result.Message,
		Level:   level,
		At:      time.Now(),
	})

	return result, nil
}

func (s *CreationService) begin(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[sessionID] {
		return false
	}
	s.inFlight[sessionID] = true
	return true
}

func (s *CreationService) end(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}

// buildProductPayload maps the collected form onto the backend's wire shape.
// The slug is derived from the name unless the admin overrode it.
func buildProductPayload(form models.ProductForm) upstream.ProductPayload {
	derived := form.Slug
	if !form.SlugTouched || strings.TrimSpace(derived) == "" {
		derived = slug.Make(form.Name)
	}

	payload := upstream.ProductPayload{
		Name:        strings.TrimSpace(form.Name),
		PriceCents:  form.PriceMinorUnits,
		Stock:       form.Stock,
		Currency:    strings.ToUpper(form.CurrencyCode),
		Description: strings.TrimSpace(form.Description),
		Active:      form.Active,
	}
	if derived != "" {
		payload.Slug = &derived
	}
	if sku := strings.TrimSpace(form.SKU); sku != "" {
		payload.SKU = &sku
	}
	return payload
}

func doneMessage(result *models.OrchestrationResult) string {
	msg := "Product created successfully"
	if n := len(result.CategoryAttachFailures); n > 0 {
		msg += fmt.Sprintf("; %d categories could not be attached", n)
	}
	if !result.ImageUploadSucceeded {
		msg += "; images were not uploaded"
	}
	return msg
}
