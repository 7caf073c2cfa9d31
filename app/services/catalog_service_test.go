package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/storage"
)

// fakeCatalogEditor reuses fakeCatalogStore's maps and adds the CRUD /
// review surface CatalogService needs.
type fakeCatalogEditor struct {
	*fakeCatalogStore
}

func newFakeCatalogEditor() *fakeCatalogEditor {
	return &fakeCatalogEditor{fakeCatalogStore: newFakeCatalogStore()}
}

func (f *fakeCatalogEditor) CreateArtwork(_ context.Context, a *models.Artwork) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	cp := *a
	f.artworks[a.ID.Hex()] = &cp
	return nil
}

func (f *fakeCatalogEditor) CreateMaterial(_ context.Context, m *models.ArtMaterial) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	cp := *m
	f.materials[m.ID.Hex()] = &cp
	return nil
}

func (f *fakeCatalogEditor) UpdateArtwork(_ context.Context, a *models.Artwork) error {
	if _, ok := f.artworks[a.ID.Hex()]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *a
	f.artworks[a.ID.Hex()] = &cp
	return nil
}

func (f *fakeCatalogEditor) UpdateMaterial(_ context.Context, m *models.ArtMaterial) error {
	if _, ok := f.materials[m.ID.Hex()]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *m
	f.materials[m.ID.Hex()] = &cp
	return nil
}

func (f *fakeCatalogEditor) Delete(_ context.Context, kind, id string) error {
	switch kind {
	case models.KindArtwork:
		if _, ok := f.artworks[id]; !ok {
			return mongo.ErrNoDocuments
		}
		delete(f.artworks, id)
	case models.KindMaterial:
		if _, ok := f.materials[id]; !ok {
			return mongo.ErrNoDocuments
		}
		delete(f.materials, id)
	}
	return nil
}

func (f *fakeCatalogEditor) ListArtworks(_ context.Context, _ models.CatalogFilter, _, _ int) ([]models.Artwork, error) {
	var out []models.Artwork
	for _, a := range f.artworks {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeCatalogEditor) ListMaterials(_ context.Context, _ models.CatalogFilter, _, _ int) ([]models.ArtMaterial, error) {
	var out []models.ArtMaterial
	for _, m := range f.materials {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeCatalogEditor) ReplaceReviews(_ context.Context, kind string, id primitive.ObjectID, reviews []models.Review, ratings float64, num int) error {
	switch kind {
	case models.KindArtwork:
		a, ok := f.artworks[id.Hex()]
		if !ok {
			return mongo.ErrNoDocuments
		}
		a.Reviews, a.Ratings, a.NumOfReviews = reviews, ratings, num
	case models.KindMaterial:
		m, ok := f.materials[id.Hex()]
		if !ok {
			return mongo.ErrNoDocuments
		}
		m.Reviews, m.Ratings, m.NumOfReviews = reviews, ratings, num
	}
	return nil
}

type fakeImageHost struct {
	uploads int
	deleted []string
	fail    bool
}

func (f *fakeImageHost) Upload(_ []byte, folder string, width int) (*storage.StoredImage, error) {
	if f.fail {
		return nil, errors.New("image host down")
	}
	f.uploads++
	id := fmt.Sprintf("%s/img%d.jpg", folder, f.uploads)
	return &storage.StoredImage{ID: id, URL: fmt.Sprintf("https://img.test/%s?w=%d&fit=scale", id, width)}, nil
}

func (f *fakeImageHost) Delete(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func reviewer(name string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: name, Role: models.RoleUser}
}

// ─── CRUD ────────────────────────────────────────────────────────────────────

func TestCreateArtworkUploadsImages(t *testing.T) {
	editor := newFakeCatalogEditor()
	host := &fakeImageHost{}
	svc := NewCatalogService(editor, host)

	art, err := svc.CreateArtwork(context.Background(), ArtworkInput{
		Title: "Harbour Dusk", Artist: "M. Calder", Price: 420,
	}, [][]byte{[]byte("jpegbytes")})
	require.NoError(t, err)

	assert.Equal(t, models.ArtworkAvailable, art.Status)
	require.Len(t, art.Images, 1)
	assert.Equal(t, "artworks/img1.jpg", art.Images[0].ID)
	assert.NotNil(t, art.Reviews)
	assert.Contains(t, editor.artworks, art.ID.Hex())
}

func TestCreateArtworkValidates(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogEditor(), &fakeImageHost{})

	_, err := svc.CreateArtwork(context.Background(), ArtworkInput{Artist: "Anon"}, nil)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "title")
}

func TestCreateMaterialImageHostFailure(t *testing.T) {
	editor := newFakeCatalogEditor()
	svc := NewCatalogService(editor, &fakeImageHost{fail: true})

	_, err := svc.CreateMaterial(context.Background(), MaterialInput{
		Name: "Canvas roll", Price: 35, Stock: 4,
	}, [][]byte{[]byte("pngbytes")})

	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Empty(t, editor.materials, "nothing persisted after a failed upload")
}

func TestDeleteItemCleansUpImages(t *testing.T) {
	editor := newFakeCatalogEditor()
	host := &fakeImageHost{}
	svc := NewCatalogService(editor, host)

	art := editor.addArtwork("Still Life", "B. Kato", 90)
	art.Images = []models.Image{{ID: "artworks/old.jpg", URL: "https://img.test/artworks/old.jpg"}}

	require.NoError(t, svc.DeleteItem(context.Background(), models.KindArtwork, art.ID.Hex()))
	assert.NotContains(t, editor.artworks, art.ID.Hex())
	assert.Equal(t, []string{"artworks/old.jpg"}, host.deleted)
}

// ─── Reviews ─────────────────────────────────────────────────────────────────

func TestUpsertReviewAddsAndRecomputes(t *testing.T) {
	editor := newFakeCatalogEditor()
	svc := NewCatalogService(editor, &fakeImageHost{})
	art := editor.addArtwork("Vessel", "T. Nwosu", 200)

	_, err := svc.UpsertReview(context.Background(), models.KindArtwork, art.ID.Hex(), reviewer("Ada"), 4, "lovely texture")
	require.NoError(t, err)
	_, err = svc.UpsertReview(context.Background(), models.KindArtwork, art.ID.Hex(), reviewer("Ben"), 2, "not for me")
	require.NoError(t, err)

	got := editor.artworks[art.ID.Hex()]
	assert.Equal(t, 2, got.NumOfReviews)
	assert.Equal(t, 3.0, got.Ratings)
}

func TestUpsertReviewReplacesInPlace(t *testing.T) {
	editor := newFakeCatalogEditor()
	svc := NewCatalogService(editor, &fakeImageHost{})
	art := editor.addArtwork("Vessel", "T. Nwosu", 200)
	ada := reviewer("Ada")

	_, err := svc.UpsertReview(context.Background(), models.KindArtwork, art.ID.Hex(), ada, 2, "first impression")
	require.NoError(t, err)
	reviews, err := svc.UpsertReview(context.Background(), models.KindArtwork, art.ID.Hex(), ada, 5, "grew on me")
	require.NoError(t, err)

	require.Len(t, reviews, 1)
	assert.Equal(t, 5.0, reviews[0].Rating)
	assert.Equal(t, "grew on me", reviews[0].Comment)

	got := editor.artworks[art.ID.Hex()]
	assert.Equal(t, 1, got.NumOfReviews)
	assert.Equal(t, 5.0, got.Ratings)
}

func TestUpsertReviewRejectsOutOfRangeRating(t *testing.T) {
	editor := newFakeCatalogEditor()
	svc := NewCatalogService(editor, &fakeImageHost{})
	art := editor.addArtwork("Vessel", "T. Nwosu", 200)

	for _, rating := range []float64{0, 6, -1} {
		_, err := svc.UpsertReview(context.Background(), models.KindArtwork, art.ID.Hex(), reviewer("Ada"), rating, "")
		var verrs ValidationErrors
		assert.True(t, errors.As(err, &verrs), "rating %v must be rejected", rating)
	}
}

func TestDeleteReviewRecomputes(t *testing.T) {
	editor := newFakeCatalogEditor()
	svc := NewCatalogService(editor, &fakeImageHost{})
	mat := editor.addMaterial("Brush set", 24, 10)
	ada, ben := reviewer("Ada"), reviewer("Ben")

	_, err := svc.UpsertReview(context.Background(), models.KindMaterial, mat.ID.Hex(), ada, 5, "")
	require.NoError(t, err)
	_, err = svc.UpsertReview(context.Background(), models.KindMaterial, mat.ID.Hex(), ben, 1, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReview(context.Background(), models.KindMaterial, mat.ID.Hex(), ben.ID))

	got := editor.materials[mat.ID.Hex()]
	assert.Equal(t, 1, got.NumOfReviews)
	assert.Equal(t, 5.0, got.Ratings)

	err = svc.DeleteReview(context.Background(), models.KindMaterial, mat.ID.Hex(), ben.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
