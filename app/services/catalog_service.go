package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/cache"
	"github.com/shashiranjanraj/atelier/pkg/logger"
	"github.com/shashiranjanraj/atelier/pkg/validate"
)

// CatalogEditor is the catalog persistence surface for CRUD and reviews.
type CatalogEditor interface {
	FindItem(ctx context.Context, kind, id string) (models.CatalogItem, error)
	CreateArtwork(ctx context.Context, a *models.Artwork) error
	CreateMaterial(ctx context.Context, m *models.ArtMaterial) error
	UpdateArtwork(ctx context.Context, a *models.Artwork) error
	UpdateMaterial(ctx context.Context, m *models.ArtMaterial) error
	Delete(ctx context.Context, kind, id string) error
	ListArtworks(ctx context.Context, f models.CatalogFilter, page, limit int) ([]models.Artwork, error)
	ListMaterials(ctx context.Context, f models.CatalogFilter, page, limit int) ([]models.ArtMaterial, error)
	ReplaceReviews(ctx context.Context, kind string, id primitive.ObjectID, reviews []models.Review, ratings float64, num int) error
}

// CatalogService manages catalog items, their images, and reviews.
type CatalogService struct {
	catalog CatalogEditor
	images  ImageHost
}

func NewCatalogService(catalog CatalogEditor, images ImageHost) *CatalogService {
	return &CatalogService{catalog: catalog, images: images}
}

// Display width used for catalog images on the image host.
const catalogImageWidth = 800

// How long a catalog item may be served from Redis before re-reading Mongo.
const catalogCacheTTL = 5 * time.Minute

func catalogCacheKey(kind, id string) string {
	return "catalog:" + kind + ":" + id
}

// ArtworkInput is the create/update payload for an artwork.
type ArtworkInput struct {
	Title       string  `json:"title" validate:"required"`
	Artist      string  `json:"artist" validate:"required"`
	Medium      string  `json:"medium"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gte=0"`
}

// MaterialInput is the create/update payload for an art material.
type MaterialInput struct {
	Name        string  `json:"name" validate:"required"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	Stock       int     `json:"stock" validate:"nullable,gte=0"`
}

// CreateArtwork validates, uploads any images, and persists. An image-host
// failure propagates to the caller.
func (s *CatalogService) CreateArtwork(ctx context.Context, in ArtworkInput, images [][]byte) (*models.Artwork, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, ValidationErrors(errs)
	}
	uploaded, err := s.uploadAll(images, "artworks")
	if err != nil {
		return nil, err
	}
	a := &models.Artwork{
		Title:       in.Title,
		Artist:      in.Artist,
		Medium:      in.Medium,
		Description: in.Description,
		Price:       in.Price,
		Images:      uploaded,
		Status:      models.ArtworkAvailable,
		Reviews:     []models.Review{},
	}
	if err := s.catalog.CreateArtwork(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateMaterial validates, uploads any images, and persists.
func (s *CatalogService) CreateMaterial(ctx context.Context, in MaterialInput, images [][]byte) (*models.ArtMaterial, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, ValidationErrors(errs)
	}
	uploaded, err := s.uploadAll(images, "materials")
	if err != nil {
		return nil, err
	}
	m := &models.ArtMaterial{
		Name:        in.Name,
		Brand:       in.Brand,
		Category:    in.Category,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Images:      uploaded,
		Reviews:     []models.Review{},
	}
	if err := s.catalog.CreateMaterial(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateArtwork replaces an artwork's editable fields; new images are
// appended to the existing set.
func (s *CatalogService) UpdateArtwork(ctx context.Context, id string, in ArtworkInput, images [][]byte) (*models.Artwork, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, ValidationErrors(errs)
	}
	item, err := s.catalog.FindItem(ctx, models.KindArtwork, id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	a := item.(*models.Artwork)
	uploaded, err := s.uploadAll(images, "artworks")
	if err != nil {
		return nil, err
	}
	a.Title = in.Title
	a.Artist = in.Artist
	a.Medium = in.Medium
	a.Description = in.Description
	a.Price = in.Price
	a.Images = append(a.Images, uploaded...)
	if err := s.catalog.UpdateArtwork(ctx, a); err != nil {
		return nil, err
	}
	_ = cache.Del(catalogCacheKey(models.KindArtwork, id))
	return a, nil
}

// UpdateMaterial replaces a material's editable fields, including stock.
func (s *CatalogService) UpdateMaterial(ctx context.Context, id string, in MaterialInput, images [][]byte) (*models.ArtMaterial, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, ValidationErrors(errs)
	}
	item, err := s.catalog.FindItem(ctx, models.KindMaterial, id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	m := item.(*models.ArtMaterial)
	uploaded, err := s.uploadAll(images, "materials")
	if err != nil {
		return nil, err
	}
	m.Name = in.Name
	m.Brand = in.Brand
	m.Category = in.Category
	m.Description = in.Description
	m.Price = in.Price
	m.Stock = in.Stock
	m.Images = append(m.Images, uploaded...)
	if err := s.catalog.UpdateMaterial(ctx, m); err != nil {
		return nil, err
	}
	_ = cache.Del(catalogCacheKey(models.KindMaterial, id))
	return m, nil
}

// GetItem loads one catalog item by kind and id, consulting the Redis read
// cache first. Writers invalidate the key, so a hit is at worst one TTL stale.
func (s *CatalogService) GetItem(ctx context.Context, kind, id string) (models.CatalogItem, error) {
	key := catalogCacheKey(kind, id)
	switch kind {
	case models.KindArtwork:
		var a models.Artwork
		if cache.Get(key, &a) {
			return &a, nil
		}
	case models.KindMaterial:
		var m models.ArtMaterial
		if cache.Get(key, &m) {
			return &m, nil
		}
	}
	item, err := s.catalog.FindItem(ctx, kind, id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	if err := cache.Set(key, item, catalogCacheTTL); err != nil {
		logger.Warn("catalog: cache write failed", "key", key, "error", err)
	}
	return item, nil
}

// ListArtworks returns artworks matching the filter.
func (s *CatalogService) ListArtworks(ctx context.Context, f models.CatalogFilter, page, limit int) ([]models.Artwork, error) {
	return s.catalog.ListArtworks(ctx, f, page, limit)
}

// ListMaterials returns materials matching the filter.
func (s *CatalogService) ListMaterials(ctx context.Context, f models.CatalogFilter, page, limit int) ([]models.ArtMaterial, error) {
	return s.catalog.ListMaterials(ctx, f, page, limit)
}

// DeleteItem removes a catalog item and, best effort, its hosted images.
func (s *CatalogService) DeleteItem(ctx context.Context, kind, id string) error {
	item, err := s.catalog.FindItem(ctx, kind, id)
	if err != nil {
		return wrapNotFound(err)
	}
	if err := s.catalog.Delete(ctx, kind, id); err != nil {
		return wrapNotFound(err)
	}
	_ = cache.Del(catalogCacheKey(kind, id))
	for _, img := range itemImages(item) {
		if err := s.images.Delete(img.ID); err != nil {
			logger.Warn("catalog: hosted image not deleted", "image", img.ID, "error", err)
		}
	}
	return nil
}

// UpsertReview records a review, replacing the reviewer's previous one on
// the same item if present, then recomputes the derived rating fields.
func (s *CatalogService) UpsertReview(ctx context.Context, kind, itemID string, reviewer *models.User, rating float64, comment string) ([]models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ValidationErrors{"rating": "rating must be between 1 and 5"}
	}
	item, err := s.catalog.FindItem(ctx, kind, itemID)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	reviews := item.ItemReviews()
	found := false
	for i := range reviews {
		if reviews[i].UserID == reviewer.ID {
			reviews[i].Rating = rating
			reviews[i].Comment = comment
			found = true
			break
		}
	}
	if !found {
		reviews = append(reviews, models.Review{
			UserID:    reviewer.ID,
			Name:      reviewer.Name,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: timeNow(),
		})
	}

	ratings, num := models.RecomputeRatings(reviews)
	if err := s.catalog.ReplaceReviews(ctx, kind, item.ItemID(), reviews, ratings, num); err != nil {
		return nil, err
	}
	_ = cache.Del(catalogCacheKey(kind, itemID))
	return reviews, nil
}

// Reviews returns an item's review list.
func (s *CatalogService) Reviews(ctx context.Context, kind, itemID string) ([]models.Review, error) {
	item, err := s.catalog.FindItem(ctx, kind, itemID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return item.ItemReviews(), nil
}

// DeleteReview removes one reviewer's review and recomputes ratings.
func (s *CatalogService) DeleteReview(ctx context.Context, kind, itemID string, reviewerID primitive.ObjectID) error {
	item, err := s.catalog.FindItem(ctx, kind, itemID)
	if err != nil {
		return wrapNotFound(err)
	}
	reviews := item.ItemReviews()
	kept := reviews[:0]
	found := false
	for _, r := range reviews {
		if r.UserID == reviewerID {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return ErrNotFound
	}
	ratings, num := models.RecomputeRatings(kept)
	if err := s.catalog.ReplaceReviews(ctx, kind, item.ItemID(), kept, ratings, num); err != nil {
		return err
	}
	_ = cache.Del(catalogCacheKey(kind, itemID))
	return nil
}

func (s *CatalogService) uploadAll(images [][]byte, folder string) ([]models.Image, error) {
	out := make([]models.Image, 0, len(images))
	for _, data := range images {
		img, err := s.images.Upload(data, folder, catalogImageWidth)
		if err != nil {
			return nil, &GatewayError{Op: "image upload", Err: err}
		}
		out = append(out, models.Image{ID: img.ID, URL: img.URL})
	}
	return out, nil
}

func itemImages(item models.CatalogItem) []models.Image {
	switch v := item.(type) {
	case *models.Artwork:
		return v.Images
	case *models.ArtMaterial:
		return v.Images
	}
	return nil
}
