package upstream

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"tienda/internal/models"
)

// ProductPayload is the product create/update body. Optional fields are
// pointers so the backend receives null instead of an empty string.
type ProductPayload struct {
	Name        string  `json:"nombre"`
	Slug        *string `json:"slug"`
	PriceCents  int64   `json:"precio_centavos"`
	Stock       int     `json:"stock"`
	Currency    string  `json:"moneda"`
	SKU         *string `json:"sku"`
	Description string  `json:"descripcion"`
	Active      bool    `json:"activo"`
}

// CategoryPayload is the category create/update body.
type CategoryPayload struct {
	Name        string `json:"nombre"`
	Slug        string `json:"slug"`
	Description string `json:"descripcion"`
	ParentID    *int64 `json:"padre_id"`
}

// CategoryQuery narrows and pages a category listing.
type CategoryQuery struct {
	Search   string
	ParentID string
	Page     int
	PerPage  int
	Sort     string
}

// CategoryPage is one page of a category listing.
type CategoryPage struct {
	Items []models.Category `json:"items"`
	Total int               `json:"total"`
}

// ImageFile is one staged file ready for upload.
type ImageFile struct {
	Name string
	MIME string
	Data []byte
	Alt  string
}

// ImageBatch is the single multipart upload for a product's staged gallery.
// CoverIndex is the position of the designated cover within Files.
type ImageBatch struct {
	Files      []ImageFile
	CoverIndex int
}

// ImagePayload updates an uploaded image's alt text and/or sort order.
type ImagePayload struct {
	Alt   *string `json:"alt,omitempty"`
	Order *int    `json:"orden,omitempty"`
}

// Session is the backend's answer to a successful login.
type Session struct {
	OK       bool   `json:"ok"`
	Redirect string `json:"redirect"`
}

// RegisterPayload is the registration body.
type RegisterPayload struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateProduct creates a product and returns the backend-assigned ID.
func (c *Client) CreateProduct(payload ProductPayload) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.doJSON(http.MethodPost, "/products", payload, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// GetProduct fetches a product detail including its categories.
func (c *Client) GetProduct(id int64) (*models.Product, error) {
	var resp struct {
		Product models.Product `json:"producto"`
	}
	if err := c.doJSON(http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

// UpdateProduct patches product fields.
func (c *Client) UpdateProduct(id int64, payload ProductPayload) error {
	return c.doJSON(http.MethodPatch, fmt.Sprintf("/products/%d", id), payload, nil)
}

// DeleteProduct deletes a product.
func (c *Client) DeleteProduct(id int64) error {
	return c.doJSON(http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}

// AttachCategory associates a category with a product.
func (c *Client) AttachCategory(productID, categoryID int64) error {
	body := map[string]int64{"category_id": categoryID}
	return c.doJSON(http.MethodPost, fmt.Sprintf("/products/%d/categories", productID), body, nil)
}

// DetachCategory removes a category association from a product.
func (c *Client) DetachCategory(productID, categoryID int64) error {
	return c.doJSON(http.MethodDelete, fmt.Sprintf("/products/%d/categories/%d", productID, categoryID), nil, nil)
}

// ListCategories lists categories matching the query.
func (c *Client) ListCategories(q CategoryQuery) (*CategoryPage, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	if q.ParentID != "" {
		params.Set("parent_id", q.ParentID)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Sort != "" {
		params.Set("orden", q.Sort)
	}

	path := "/categories"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page CategoryPage
	if err := c.doJSON(http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(payload CategoryPayload) (*models.Category, error) {
	var resp struct {
		Category models.Category `json:"category"`
	}
	if err := c.doJSON(http.MethodPost, "/categories", payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Category, nil
}

// UpdateCategory patches a category.
func (c *Client) UpdateCategory(id int64, payload CategoryPayload) error {
	return c.doJSON(http.MethodPatch, fmt.Sprintf("/categories/%d", id), payload, nil)
}

// DeleteCategory deletes a category.
func (c *Client) DeleteCategory(id int64) error {
	return c.doJSON(http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil)
}

// ListImages lists a product's uploaded images.
func (c *Client) ListImages(productID int64) ([]models.ProductImage, error) {
	var resp struct {
		Items []models.ProductImage `json:"items"`
	}
	if err := c.doJSON(http.MethodGet, fmt.Sprintf("/products/%d/images", productID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// UploadImages sends every staged file in one multipart request together with
// per-file alt texts and the cover index.
func (c *Client) UploadImages(productID int64, batch ImageBatch) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range batch.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		header.Set("Content-Type", f.MIME)
		part, err := w.CreatePart(header)
		if err != nil {
			return &Error{Kind: KindNetwork, Message: err.Error()}
		}
		if _, err := part.Write(f.Data); err != nil {
			return &Error{Kind: KindNetwork, Message: err.Error()}
		}
		if err := w.WriteField("alt", f.Alt); err != nil {
			return &Error{Kind: KindNetwork, Message: err.Error()}
		}
	}
	if batch.CoverIndex >= 0 {
		if err := w.WriteField("portada_index", strconv.Itoa(batch.CoverIndex)); err != nil {
			return &Error{Kind: KindNetwork, Message: err.Error()}
		}
	}
	if err := w.Close(); err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}

	path := fmt.Sprintf("/products/%d/images", productID)
	return c.do(http.MethodPost, path, &buf, w.FormDataContentType(), nil)
}

// UpdateImage patches an uploaded image's alt text or order.
func (c *Client) UpdateImage(productID, imageID int64, payload ImagePayload) error {
	return c.doJSON(http.MethodPatch, fmt.Sprintf("/products/%d/images/%d", productID, imageID), payload, nil)
}

// DeleteImage deletes an uploaded image.
func (c *Client) DeleteImage(productID, imageID int64) error {
	return c.doJSON(http.MethodDelete, fmt.Sprintf("/products/%d/images/%d", productID, imageID), nil, nil)
}

// Login submits credentials and returns the backend session answer.
func (c *Client) Login(email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.doJSON(http.MethodPost, "/auth/login", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Register submits a registration and returns the backend's message.
func (c *Client) Register(payload RegisterPayload) (string, error) {
	var resp struct {
		Message string `json:"mensaje"`
	}
	if err := c.doJSON(http.MethodPost, "/auth/register", payload, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
