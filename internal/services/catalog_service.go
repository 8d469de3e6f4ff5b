package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"tienda/internal/models"
	"tienda/internal/slug"
	"tienda/internal/upstream"
	"tienda/pkg/debounce"

	gocache "github.com/patrickmn/go-cache"
)

// CatalogAPI is the slice of the upstream client the catalog screens need.
type CatalogAPI interface {
	ListCategories(q upstream.CategoryQuery) (*upstream.CategoryPage, error)
	CreateCategory(payload upstream.CategoryPayload) (*models.Category, error)
	UpdateCategory(id int64, payload upstream.CategoryPayload) error
	DeleteCategory(id int64) error

	GetProduct(id int64) (*models.Product, error)
	UpdateProduct(id int64, payload upstream.ProductPayload) error
	DeleteProduct(id int64) error
	AttachCategory(productID, categoryID int64) error
	DetachCategory(productID, categoryID int64) error

	ListImages(productID int64) ([]models.ProductImage, error)
	UpdateImage(productID, imageID int64, payload upstream.ImagePayload) error
	DeleteImage(productID, imageID int64) error
}

const defaultListingKey = "categories:default"

// CatalogService backs the category and product edit screens. Category
// listings are cached briefly; mutations flush the cache and a debouncer
// coalesces rapid mutation bursts (an admin toggling many checkboxes) into a
// single upstream re-fetch of the default listing.
type CatalogService struct {
	api     CatalogAPI
	cache   *gocache.Cache
	refresh *debounce.Debouncer
}

// NewCatalogService creates a new CatalogService with the given listing cache
// TTL.
func NewCatalogService(api CatalogAPI, cacheTTL time.Duration) *CatalogService {
	s := &CatalogService{
		api:   api,
		cache: gocache.New(cacheTTL, 2*cacheTTL),
	}
	s.refresh = debounce.New(300*time.Millisecond, s.warmDefaultListing)
	return s
}

// ListCategories serves a listing page, preferring the cache.
func (s *CatalogService) ListCategories(q upstream.CategoryQuery) (*upstream.CategoryPage, error) {
	key := listingKey(q)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*upstream.CategoryPage), nil
	}

	page, err := s.api.ListCategories(q)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, page, gocache.DefaultExpiration)
	return page, nil
}

// CreateCategory creates a category and invalidates the listing cache.
func (s *CatalogService) CreateCategory(form models.CategoryForm) (*models.Category, error) {
	category, err := s.api.CreateCategory(buildCategoryPayload(form))
	if err != nil {
		return nil, err
	}
	s.invalidateListings()
	return category, nil
}

// UpdateCategory patches a category and invalidates the listing cache.
func (s *CatalogService) UpdateCategory(id int64, form models.CategoryForm) error {
	if err := s.api.UpdateCategory(id, buildCategoryPayload(form)); err != nil {
		return err
	}
	s.invalidateListings()
	return nil
}

// DeleteCategory deletes a category and invalidates the listing cache.
func (s *CatalogService) DeleteCategory(id int64) error {
	if err := s.api.DeleteCategory(id); err != nil {
		return err
	}
	s.invalidateListings()
	return nil
}

// GetProduct fetches a product detail including its category associations.
func (s *CatalogService) GetProduct(id int64) (*models.Product, error) {
	return s.api.GetProduct(id)
}

// UpdateProduct patches product fields from the edit form.
func (s *CatalogService) UpdateProduct(id int64, form models.ProductForm) error {
	return s.api.UpdateProduct(id, buildProductPayload(form))
}

// DeleteProduct deletes a product.
func (s *CatalogService) DeleteProduct(id int64) error {
	return s.api.DeleteProduct(id)
}

// ToggleCategory attaches or detaches one product/category association with
// an immediate round-trip, mirroring the edit screen's checkbox flow. The
// caller rolls its UI state back when an error comes back.
func (s *CatalogService) ToggleCategory(productID, categoryID int64, attach bool) error {
	var err error
	if attach {
		err = s.api.AttachCategory(productID, categoryID)
	} else {
		err = s.api.DetachCategory(productID, categoryID)
	}
	if err != nil {
		return err
	}
	s.invalidateListings()
	return nil
}

// ListImages lists a product's uploaded images.
func (s *CatalogService) ListImages(productID int64) ([]models.ProductImage, error) {
	return s.api.ListImages(productID)
}

// ReorderImage updates one image's sort order and returns the fresh list, so
// the screen re-renders from server state rather than its own bookkeeping.
func (s *CatalogService) ReorderImage(productID, imageID int64, order int) ([]models.ProductImage, error) {
	if err := s.api.UpdateImage(productID, imageID, upstream.ImagePayload{Order: &order}); err != nil {
		return nil, err
	}
	return s.api.ListImages(productID)
}

// UpdateImageAlt updates one image's alt text.
func (s *CatalogService) UpdateImageAlt(productID, imageID int64, alt string) error {
	return s.api.UpdateImage(productID, imageID, upstream.ImagePayload{Alt: &alt})
}

// DeleteImage deletes an uploaded image.
func (s *CatalogService) DeleteImage(productID, imageID int64) error {
	return s.api.DeleteImage(productID, imageID)
}

func (s *CatalogService) invalidateListings() {
	s.cache.Flush()
	s.refresh.Trigger()
}

// warmDefaultListing refills the cache entry the listing screen lands on.
func (s *CatalogService) warmDefaultListing() {
	page, err := s.api.ListCategories(upstream.CategoryQuery{Page: 1, PerPage: 20})
	if err != nil {
		log.Printf("Warning: category listing warm-up failed: %v", err)
		return
	}
	s.cache.Set(defaultListingKey, page, gocache.DefaultExpiration)
}

func listingKey(q upstream.CategoryQuery) string {
	if q.Search == "" && q.ParentID == "" && (q.Page == 0 || q.Page == 1) && (q.PerPage == 0 || q.PerPage == 20) && q.Sort == "" {
		return defaultListingKey
	}
	return fmt.Sprintf("categories:%s|%s|%d|%d|%s", strings.ToLower(q.Search), q.ParentID, q.Page, q.PerPage, q.Sort)
}

func buildCategoryPayload(form models.CategoryForm) upstream.CategoryPayload {
	derived := strings.TrimSpace(form.Slug)
	if derived == "" {
		derived = slug.Make(form.Name)
	}
	return upstream.CategoryPayload{
		Name:        strings.TrimSpace(form.Name),
		Slug:        derived,
		Description: strings.TrimSpace(form.Description),
		ParentID:    form.ParentID,
	}
}
