package models

// Category is the category shape returned by the storefront backend.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Slug        string `json:"slug"`
	Description string `json:"descripcion"`
	ParentID    *int64 `json:"padre_id"`
	Active      bool   `json:"activo"`
}

// CategoryForm is the collected state of the category create/edit modal.
type CategoryForm struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"omitempty,max=150"`
	Description string `json:"description" validate:"omitempty,max=500"`
	ParentID    *int64 `json:"parent_id"`
}
