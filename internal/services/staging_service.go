package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"strings"

	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/upstream"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Staging limits. Products carry at most five images, each at most 2 MiB.
const (
	maxImagesPerSession = 5
	maxImageBytes       = 2 << 20
	previewMaxDimension = 160
)

// Staging failures, matched by handlers to pick response codes.
var (
	ErrTooMany     = errors.New("maximum 5 images per product")
	ErrInvalidType = errors.New("file is not an image")
	ErrTooLarge    = errors.New("file exceeds 2MB")
	ErrOutOfRange  = errors.New("image index out of range")
)

// StagingService holds the images an admin assembles for a product before the
// product exists upstream. Staging client-side of the backend lets the admin
// build the gallery and pick a cover before the product ID is known; the
// upload is deferred until creation succeeds.
type StagingService struct {
	repo repositories.StagingRepository
}

// NewStagingService creates a new StagingService.
func NewStagingService(repo repositories.StagingRepository) *StagingService {
	return &StagingService{
		repo: repo,
	}
}

// Stage validates and stores one selected file. The first image staged into an
// empty session becomes the cover.
func (s *StagingService) Stage(sessionID, fileName string, data []byte) (*models.StagedImage, error) {
	existing, err := s.repo.ListBySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staged images: %w", err)
	}
	if len(existing) >= maxImagesPerSession {
		return nil, ErrTooMany
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, ErrInvalidType
	}
	if int64(len(data)) > maxImageBytes {
		return nil, ErrTooLarge
	}

	preview, err := buildPreview(data)
	if err != nil {
		// Sniffed as an image but not decodable; treat it as not an image.
		return nil, ErrInvalidType
	}

	img := &models.StagedImage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Position:  len(existing),
		FileName:  fileName,
		MIMEType:  detected.String(),
		Size:      int64(len(data)),
		Data:      data,
		Preview:   preview,
		IsCover:   len(existing) == 0,
	}
	if err := s.repo.Create(img); err != nil {
		return nil, fmt.Errorf("failed to stage image: %w", err)
	}
	return img, nil
}

// List returns the session's staged images in display order.
func (s *StagingService) List(sessionID string) ([]models.StagedImage, error) {
	return s.repo.ListBySession(sessionID)
}

// SetCover designates the image at index as the session's cover, clearing the
// flag on every other entry.
func (s *StagingService) SetCover(sessionID string, index int) error {
	images, err := s.repo.ListBySession(sessionID)
	if err != nil {
		return fmt.Errorf("failed to list staged images: %w", err)
	}
	if index < 0 || index >= len(images) {
		return ErrOutOfRange
	}
	return s.repo.SetCover(sessionID, images[index].ID)
}

// SetAlt attaches an explicit alt text to the image at index.
func (s *StagingService) SetAlt(sessionID string, index int, alt string) error {
	images, err := s.repo.ListBySession(sessionID)
	if err != nil {
		return fmt.Errorf("failed to list staged images: %w", err)
	}
	if index < 0 || index >= len(images) {
		return ErrOutOfRange
	}
	img := images[index]
	img.AltText = alt
	return s.repo.Update(&img)
}

// Remove drops the image at index. Removing the cover promotes the new first
// image to cover, if any remain.
func (s *StagingService) Remove(sessionID string, index int) error {
	images, err := s.repo.ListBySession(sessionID)
	if err != nil {
		return fmt.Errorf("failed to list staged images: %w", err)
	}
	if index < 0 || index >= len(images) {
		return ErrOutOfRange
	}

	target := images[index]
	if err := s.repo.Delete(target.ID); err != nil {
		return fmt.Errorf("failed to remove staged image: %w", err)
	}

	remaining := append(images[:index:index], images[index+1:]...)
	for i := range remaining {
		if remaining[i].Position != i {
			remaining[i].Position = i
			if err := s.repo.Update(&remaining[i]); err != nil {
				return fmt.Errorf("failed to reindex staged images: %w", err)
			}
		}
	}

	if target.IsCover && len(remaining) > 0 {
		return s.repo.SetCover(sessionID, remaining[0].ID)
	}
	return nil
}

// UploadBatch assembles the session's images into the single multipart upload
// the backend expects. Alt texts default to the file's base name.
func (s *StagingService) UploadBatch(sessionID string) (upstream.ImageBatch, error) {
	images, err := s.repo.ListBySession(sessionID)
	if err != nil {
		return upstream.ImageBatch{}, fmt.Errorf("failed to list staged images: %w", err)
	}

	batch := upstream.ImageBatch{CoverIndex: -1}
	for i, img := range images {
		alt := img.AltText
		if alt == "" {
			alt = baseName(img.FileName)
		}
		batch.Files = append(batch.Files, upstream.ImageFile{
			Name: img.FileName,
			MIME: img.MIMEType,
			Data: img.Data,
			Alt:  alt,
		})
		if img.IsCover {
			batch.CoverIndex = i
		}
	}
	return batch, nil
}

// Clear drops every staged image in the session. Called after a successful
// upload, and when the admin abandons the form.
func (s *StagingService) Clear(sessionID string) error {
	return s.repo.DeleteBySession(sessionID)
}

// buildPreview produces a small base64 JPEG data URL for local display. The
// preview is derived from the staged bytes and never uploaded.
func buildPreview(data []byte) (string, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	thumb := imaging.Fit(src, previewMaxDimension, previewMaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// baseName is the portion of a file name before the last extension separator.
func baseName(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}
