package repositories

import (
	"tienda/internal/models"
)

// StagingRepository defines the interface for staged-image data access.
// Entries are scoped to a staging session (one creation form instance).
type StagingRepository interface {
	// ListBySession returns the session's entries ordered by position.
	ListBySession(sessionID string) ([]models.StagedImage, error)
	Create(img *models.StagedImage) error
	Update(img *models.StagedImage) error
	Delete(id string) error
	// SetCover marks imageID as the session's cover and clears the flag on
	// every other entry in the same session.
	SetCover(sessionID, imageID string) error
	DeleteBySession(sessionID string) error
}
