package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/database"
)

// CatalogRepository handles both catalog collections. Polymorphic reads
// dispatch on the item kind so callers never duplicate per-type queries.
type CatalogRepository struct {
	artworks  *mongo.Collection
	materials *mongo.Collection
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		artworks:  database.Collection("artworks"),
		materials: database.Collection("artmaterials"),
	}
}

func (r *CatalogRepository) collection(kind string) (*mongo.Collection, error) {
	switch kind {
	case models.KindArtwork:
		return r.artworks, nil
	case models.KindMaterial:
		return r.materials, nil
	}
	return nil, fmt.Errorf("catalog: unknown item kind %q", kind)
}

// FindItem loads one catalog item by kind and hex id.
func (r *CatalogRepository) FindItem(ctx context.Context, kind, id string) (models.CatalogItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	col, err := r.collection(kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case models.KindArtwork:
		var a models.Artwork
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
			return nil, err
		}
		return &a, nil
	default:
		var m models.ArtMaterial
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
			return nil, err
		}
		return &m, nil
	}
}

// CreateArtwork persists a new artwork.
func (r *CatalogRepository) CreateArtwork(ctx context.Context, a *models.Artwork) error {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = models.ArtworkAvailable
	}
	res, err := r.artworks.InsertOne(ctx, a)
	if err != nil {
		return err
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// CreateMaterial persists a new art material.
func (r *CatalogRepository) CreateMaterial(ctx context.Context, m *models.ArtMaterial) error {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	res, err := r.materials.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UpdateArtwork replaces the mutable fields of an artwork.
func (r *CatalogRepository) UpdateArtwork(ctx context.Context, a *models.Artwork) error {
	a.UpdatedAt = time.Now()
	_, err := r.artworks.UpdateByID(ctx, a.ID, bson.M{"$set": bson.M{
		"title":       a.Title,
		"artist":      a.Artist,
		"medium":      a.Medium,
		"description": a.Description,
		"price":       a.Price,
		"images":      a.Images,
		"status":      a.Status,
		"updatedAt":   a.UpdatedAt,
	}})
	return err
}

// UpdateMaterial replaces the mutable fields of an art material.
func (r *CatalogRepository) UpdateMaterial(ctx context.Context, m *models.ArtMaterial) error {
	m.UpdatedAt = time.Now()
	_, err := r.materials.UpdateByID(ctx, m.ID, bson.M{"$set": bson.M{
		"name":        m.Name,
		"brand":       m.Brand,
		"category":    m.Category,
		"description": m.Description,
		"price":       m.Price,
		"stock":       m.Stock,
		"images":      m.Images,
		"updatedAt":   m.UpdatedAt,
	}})
	return err
}

// Delete removes an item of the given kind.
func (r *CatalogRepository) Delete(ctx context.Context, kind, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	col, err := r.collection(kind)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListArtworks returns artworks matching the filter, newest first.
func (r *CatalogRepository) ListArtworks(ctx context.Context, f models.CatalogFilter, page, limit int) ([]models.Artwork, error) {
	query := listFilter(f, "title", "artist")
	if f.Available {
		query["status"] = models.ArtworkAvailable
	}
	cur, err := r.artworks.Find(ctx, query, listOptions(page, limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Artwork
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMaterials returns art materials matching the filter, newest first.
func (r *CatalogRepository) ListMaterials(ctx context.Context, f models.CatalogFilter, page, limit int) ([]models.ArtMaterial, error) {
	query := listFilter(f, "name", "brand")
	if f.InStock {
		query["stock"] = bson.M{"$gt": 0}
	}
	cur, err := r.materials.Find(ctx, query, listOptions(page, limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.ArtMaterial
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceReviews writes the full review list plus the derived rating fields
// in one shot. This path intentionally skips model validation: reconciled
// and review-only writes must not trip required-field checks on unrelated
// fields.
func (r *CatalogRepository) ReplaceReviews(ctx context.Context, kind string, id primitive.ObjectID, reviews []models.Review, ratings float64, num int) error {
	col, err := r.collection(kind)
	if err != nil {
		return err
	}
	_, err = col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"reviews":      reviews,
		"ratings":      ratings,
		"numOfReviews": num,
		"updatedAt":    time.Now(),
	}})
	return err
}

// MarkArtworkSold flips an artwork to sold. Unconditional: reconciling an
// already-sold artwork is a no-op, not an error.
func (r *CatalogRepository) MarkArtworkSold(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.artworks.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":    models.ArtworkSold,
		"updatedAt": time.Now(),
	}})
	return err
}

// DecrementStock atomically decrements a material's stock by qty, guarded by
// stock >= qty in the update filter. Returns false when the guard fails
// (insufficient stock or unknown id) without mutating anything.
func (r *CatalogRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	res, err := r.materials.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func listFilter(f models.CatalogFilter, keywordFields ...string) bson.M {
	query := bson.M{}
	if f.Keyword != "" {
		or := make([]bson.M, 0, len(keywordFields))
		for _, field := range keywordFields {
			or = append(or, bson.M{field: bson.M{"$regex": f.Keyword, "$options": "i"}})
		}
		query["$or"] = or
	}
	price := bson.M{}
	if f.MinPrice > 0 {
		price["$gte"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		price["$lte"] = f.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	return query
}

func listOptions(page, limit int) *options.FindOptions {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
}
