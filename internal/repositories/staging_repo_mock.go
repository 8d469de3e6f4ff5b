package repositories

import (
	"fmt"
	"sort"
	"sync"

	"tienda/internal/models"

	"github.com/google/uuid"
)

// MockStagingRepository is an in-memory implementation of StagingRepository.
type MockStagingRepository struct {
	images map[string]models.StagedImage
	mu     sync.RWMutex
}

// NewMockStagingRepository creates a new instance of MockStagingRepository.
func NewMockStagingRepository() *MockStagingRepository {
	return &MockStagingRepository{
		images: make(map[string]models.StagedImage),
	}
}

// ListBySession returns the session's images ordered by position.
func (r *MockStagingRepository) ListBySession(sessionID string) ([]models.StagedImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var images []models.StagedImage
	for _, img := range r.images {
		if img.SessionID == sessionID {
			images = append(images, img)
		}
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].Position < images[j].Position
	})
	return images, nil
}

// Create adds a new staged image.
func (r *MockStagingRepository) Create(img *models.StagedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	r.images[img.ID] = *img
	return nil
}

// Update modifies an existing staged image.
func (r *MockStagingRepository) Update(img *models.StagedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[img.ID]; !ok {
		return fmt.Errorf("staged image with ID %s not found for update", img.ID)
	}
	r.images[img.ID] = *img
	return nil
}

// Delete removes a staged image by its ID.
func (r *MockStagingRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[id]; !ok {
		return fmt.Errorf("staged image with ID %s not found for deletion", id)
	}
	delete(r.images, id)
	return nil
}

// SetCover marks imageID as cover and clears the flag on the session's others.
func (r *MockStagingRepository) SetCover(sessionID, imageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.images[imageID]
	if !ok || target.SessionID != sessionID {
		return fmt.Errorf("staged image with ID %s not found in session %s", imageID, sessionID)
	}
	for id, img := range r.images {
		if img.SessionID != sessionID {
			continue
		}
		img.IsCover = id == imageID
		r.images[id] = img
	}
	return nil
}

// DeleteBySession removes all of the session's staged images.
func (r *MockStagingRepository) DeleteBySession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, img := range r.images {
		if img.SessionID == sessionID {
			delete(r.images, id)
		}
	}
	return nil
}
