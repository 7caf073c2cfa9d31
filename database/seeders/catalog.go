package seeders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/auth"
)

func init() {
	Register("admin", SeedAdmin)
	Register("catalog", SeedCatalog)
}

// SeedAdmin creates the default admin account if none exists.
func SeedAdmin(ctx context.Context, db *mongo.Database) error {
	users := db.Collection("users")
	count, err := users.CountDocuments(ctx, bson.M{"role": models.RoleAdmin})
	if err != nil || count > 0 {
		return err
	}
	hash, err := auth.HashPassword("changeme-now")
	if err != nil {
		return err
	}
	now := time.Now()
	_, err = users.InsertOne(ctx, models.User{
		Name:      "Gallery Admin",
		Email:     "admin@atelier.local",
		Password:  hash,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}

// SeedCatalog inserts a small starter catalog when both collections are empty.
func SeedCatalog(ctx context.Context, db *mongo.Database) error {
	artworks := db.Collection("artworks")
	materials := db.Collection("artmaterials")

	count, err := artworks.CountDocuments(ctx, bson.M{})
	if err != nil || count > 0 {
		return err
	}
	now := time.Now()

	seedArtworks := []interface{}{
		models.Artwork{
			Title: "Harbor at Dusk", Artist: "Mira Solano", Medium: "Oil on canvas",
			Description: "A quiet harbor scene in fading light.",
			Price:       240, Status: models.ArtworkAvailable,
			Reviews: []models.Review{}, CreatedAt: now, UpdatedAt: now,
		},
		models.Artwork{
			Title: "Study in Ochre", Artist: "Dev Anand", Medium: "Watercolor",
			Description: "Abstract color study, one of a series of five.",
			Price:       85, Status: models.ArtworkAvailable,
			Reviews: []models.Review{}, CreatedAt: now, UpdatedAt: now,
		},
	}
	if _, err := artworks.InsertMany(ctx, seedArtworks); err != nil {
		return err
	}

	seedMaterials := []interface{}{
		models.ArtMaterial{
			Name: "Sable Round Brush No. 8", Brand: "Atelier Pro", Category: "brushes",
			Price: 14.5, Stock: 40,
			Reviews: []models.Review{}, CreatedAt: now, UpdatedAt: now,
		},
		models.ArtMaterial{
			Name: "Cold-Pressed Paper A3 (20 sheets)", Brand: "Fabriano", Category: "paper",
			Price: 22, Stock: 25,
			Reviews: []models.Review{}, CreatedAt: now, UpdatedAt: now,
		},
	}
	_, err = materials.InsertMany(ctx, seedMaterials)
	return err
}
