package repositories

import (
	"fmt"

	"tienda/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMStagingRepository is a GORM implementation of StagingRepository. The
// intended backing store is an in-memory SQLite database: staged images are
// disposable by contract and must not outlive the gateway process.
type GORMStagingRepository struct {
	db *gorm.DB
}

// NewGORMStagingRepository creates a new instance of GORMStagingRepository.
func NewGORMStagingRepository(db *gorm.DB) *GORMStagingRepository {
	return &GORMStagingRepository{
		db: db,
	}
}

// ListBySession retrieves the session's staged images ordered by position.
func (r *GORMStagingRepository) ListBySession(sessionID string) ([]models.StagedImage, error) {
	var images []models.StagedImage
	if err := r.db.Where("session_id = ?", sessionID).Order("position asc").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list staged images for session %s: %w", sessionID, err)
	}
	return images, nil
}

// Create stores a new staged image.
func (r *GORMStagingRepository) Create(img *models.StagedImage) error {
	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	if err := r.db.Create(img).Error; err != nil {
		return fmt.Errorf("failed to create staged image: %w", err)
	}
	return nil
}

// Update saves an existing staged image.
func (r *GORMStagingRepository) Update(img *models.StagedImage) error {
	res := r.db.Save(img)
	if res.Error != nil {
		return fmt.Errorf("failed to update staged image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("staged image with ID %s not found for update", img.ID)
	}
	return nil
}

// Delete removes a staged image by its ID.
func (r *GORMStagingRepository) Delete(id string) error {
	res := r.db.Unscoped().Delete(&models.StagedImage{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete staged image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("staged image with ID %s not found for deletion", id)
	}
	return nil
}

// SetCover flips the cover flag to imageID within a single transaction so the
// at-most-one-cover invariant holds even if the process dies mid-change.
func (r *GORMStagingRepository) SetCover(sessionID, imageID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.StagedImage{}).
			Where("session_id = ?", sessionID).
			Update("is_cover", false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.StagedImage{}).
			Where("session_id = ? AND id = ?", sessionID, imageID).
			Update("is_cover", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("staged image with ID %s not found in session %s", imageID, sessionID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set cover: %w", err)
	}
	return nil
}

// DeleteBySession removes every staged image belonging to the session.
func (r *GORMStagingRepository) DeleteBySession(sessionID string) error {
	if err := r.db.Unscoped().Delete(&models.StagedImage{}, "session_id = ?", sessionID).Error; err != nil {
		return fmt.Errorf("failed to clear staging session %s: %w", sessionID, err)
	}
	return nil
}
