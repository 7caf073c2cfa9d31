package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Catalog item kinds. Every polymorphic path (orders, reviews, promotions)
// dispatches on this tag instead of duplicating per-type workflows.
const (
	KindArtwork  = "artwork"
	KindMaterial = "material"
)

// Artwork availability states.
const (
	ArtworkAvailable = "available"
	ArtworkSold      = "sold"
)

// Image is a stored image reference: the host's stable identifier plus
// the public URL it resolves to.
type Image struct {
	ID  string `bson:"id" json:"id"`
	URL string `bson:"url" json:"url"`
}

// Review is owned by exactly one catalog item. At most one review per
// (item, reviewer) pair; a repeat submission updates in place.
type Review struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Rating    float64            `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Artwork is a one-of-a-kind catalog item with a two-state availability.
type Artwork struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title" validate:"required"`
	Artist       string             `bson:"artist" json:"artist" validate:"required"`
	Medium       string             `bson:"medium" json:"medium"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price" validate:"required,gte=0"`
	Images       []Image            `bson:"images" json:"images"`
	Status       string             `bson:"status" json:"status"` // available | sold
	Reviews      []Review           `bson:"reviews" json:"reviews"`
	Ratings      float64            `bson:"ratings" json:"ratings"`
	NumOfReviews int                `bson:"numOfReviews" json:"numOfReviews"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ArtMaterial is a stocked catalog item (paints, brushes, canvases).
type ArtMaterial struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Brand        string             `bson:"brand" json:"brand"`
	Category     string             `bson:"category" json:"category"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price" validate:"required,gte=0"`
	Stock        int                `bson:"stock" json:"stock" validate:"nullable,gte=0"`
	Images       []Image            `bson:"images" json:"images"`
	Reviews      []Review           `bson:"reviews" json:"reviews"`
	Ratings      float64            `bson:"ratings" json:"ratings"`
	NumOfReviews int                `bson:"numOfReviews" json:"numOfReviews"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CatalogItem is the shared view over Artwork and ArtMaterial. Both order
// snapshotting and review handling go through this interface so the two
// kinds share a single workflow.
type CatalogItem interface {
	ItemID() primitive.ObjectID
	Kind() string
	UnitPrice() float64
	ItemReviews() []Review
	// Snapshot denormalizes the item into an order line at the given
	// quantity, using the item's state at call time.
	Snapshot(qty int) OrderLine
}

func (a *Artwork) ItemID() primitive.ObjectID { return a.ID }
func (a *Artwork) Kind() string               { return KindArtwork }
func (a *Artwork) UnitPrice() float64         { return a.Price }
func (a *Artwork) ItemReviews() []Review      { return a.Reviews }

func (a *Artwork) Snapshot(qty int) OrderLine {
	line := OrderLine{
		ProductID: a.ID,
		Kind:      KindArtwork,
		Title:     a.Title,
		Artist:    a.Artist,
		Medium:    a.Medium,
		Price:     a.Price,
		Qty:       qty,
	}
	if len(a.Images) > 0 {
		line.Image = a.Images[0].URL
	}
	return line
}

func (m *ArtMaterial) ItemID() primitive.ObjectID { return m.ID }
func (m *ArtMaterial) Kind() string               { return KindMaterial }
func (m *ArtMaterial) UnitPrice() float64         { return m.Price }
func (m *ArtMaterial) ItemReviews() []Review      { return m.Reviews }

func (m *ArtMaterial) Snapshot(qty int) OrderLine {
	line := OrderLine{
		ProductID: m.ID,
		Kind:      KindMaterial,
		Name:      m.Name,
		Price:     m.Price,
		Qty:       qty,
	}
	if len(m.Images) > 0 {
		line.Image = m.Images[0].URL
	}
	return line
}

// CatalogFilter narrows a catalog listing. Zero values mean "no constraint";
// Available applies to artworks only, InStock to materials only.
type CatalogFilter struct {
	Keyword   string
	MinPrice  float64
	MaxPrice  float64
	Available bool
	InStock   bool
}

// RecomputeRatings derives the mean rating and review count from reviews.
// Call after every review mutation; the derived fields are never accepted
// from client input.
func RecomputeRatings(reviews []Review) (ratings float64, num int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews)), len(reviews)
}
