package models

// ProductForm is the collected state of the product creation/edit form.
// The price always travels as integer minor units: the decimal amount typed by
// the admin is converted once, at collection time, and never reaches a payload
// as a raw float.
type ProductForm struct {
	Name            string  `json:"name" validate:"required"`
	Slug            string  `json:"slug" validate:"omitempty,max=150"`
	SlugTouched     bool    `json:"-"`
	PriceMinorUnits int64   `json:"price_minor_units"`
	Stock           int     `json:"stock" validate:"gte=0"`
	CurrencyCode    string  `json:"currency_code" validate:"omitempty,len=3"`
	SKU             string  `json:"sku" validate:"omitempty,max=64"`
	Description     string  `json:"description" validate:"omitempty,max=2000"`
	Active          bool    `json:"active"`
	CategoryIDs     []int64 `json:"category_ids"`
}

// Product is the product detail shape returned by the storefront backend.
// Wire names follow the backend's contract.
type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"nombre"`
	Slug        string     `json:"slug"`
	PriceCents  int64      `json:"precio_centavos"`
	Stock       int        `json:"stock"`
	Currency    string     `json:"moneda"`
	SKU         string     `json:"sku"`
	Description string     `json:"descripcion"`
	Active      bool       `json:"activo"`
	Categories  []Category `json:"categorias"`
}
