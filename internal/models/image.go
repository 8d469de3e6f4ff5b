package models

import "gorm.io/gorm"

// StagedImage is one admin-selected file held client-side of the backend: it
// lives in the staging store until the owning product exists upstream and the
// batch upload succeeds. The preview is derived locally and never uploaded.
type StagedImage struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID  string `json:"-" gorm:"index;type:varchar(36)"`
	Position   int    `json:"position"`
	FileName   string `json:"file_name"`
	MIMEType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	Data       []byte `json:"-" gorm:"type:blob"`
	Preview    string `json:"preview" gorm:"type:text"`
	AltText    string `json:"alt_text"`
	IsCover    bool   `json:"is_cover"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// ProductImage is an already-uploaded image as listed by the storefront backend.
type ProductImage struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Order   int    `json:"orden"`
	IsCover bool   `json:"es_portada"`
}
