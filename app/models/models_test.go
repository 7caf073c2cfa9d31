package models_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/atelier/app/models"
)

func TestPushLeaseIsExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	token := "ExponentPushToken[abc]"
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name  string
		lease models.PushLease
		want  bool
	}{
		{"empty lease", models.PushLease{}, true},
		{"token without expiry", models.PushLease{Token: &token}, true},
		{"expiry without token", models.PushLease{ExpiresAt: &future}, true},
		{"live lease", models.PushLease{Token: &token, ExpiresAt: &future}, false},
		{"past expiry", models.PushLease{Token: &token, ExpiresAt: &past}, true},
		{"expiry exactly now", models.PushLease{Token: &token, ExpiresAt: &now}, false},
	}
	for _, tc := range cases {
		if got := tc.lease.IsExpired(now); got != tc.want {
			t.Errorf("%s: IsExpired = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPushLeaseHasToken(t *testing.T) {
	empty := ""
	token := "ExponentPushToken[abc]"

	if (models.PushLease{}).HasToken() {
		t.Error("nil token should not count as held")
	}
	if (models.PushLease{Token: &empty}).HasToken() {
		t.Error("empty-string token should not count as held")
	}
	if !(models.PushLease{Token: &token}).HasToken() {
		t.Error("token should count as held even without an expiry")
	}
}

func TestRecomputeRatings(t *testing.T) {
	ratings, num := models.RecomputeRatings(nil)
	if ratings != 0 || num != 0 {
		t.Errorf("empty reviews: got %v/%d, want 0/0", ratings, num)
	}

	reviews := []models.Review{{Rating: 5}, {Rating: 4}, {Rating: 3}}
	ratings, num = models.RecomputeRatings(reviews)
	if ratings != 4 {
		t.Errorf("mean = %v, want 4", ratings)
	}
	if num != 3 {
		t.Errorf("count = %d, want 3", num)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{
		models.StatusProcessing, models.StatusShipped,
		models.StatusDelivered, models.StatusCancelled,
	} {
		if !models.ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "processing", "Returned"} {
		if models.ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true", s)
		}
	}
}

func TestArtworkSnapshot(t *testing.T) {
	a := &models.Artwork{
		ID:     primitive.NewObjectID(),
		Title:  "Quiet Orchard",
		Artist: "H. Lindqvist",
		Medium: "Oil",
		Price:  640,
		Images: []models.Image{{URL: "https://img.test/a.jpg"}, {URL: "https://img.test/b.jpg"}},
	}

	line := a.Snapshot(1)
	if line.Kind != models.KindArtwork {
		t.Errorf("kind = %q", line.Kind)
	}
	if line.Title != "Quiet Orchard" || line.Artist != "H. Lindqvist" || line.Medium != "Oil" {
		t.Errorf("artwork fields not carried: %+v", line)
	}
	if line.Image != "https://img.test/a.jpg" {
		t.Errorf("image = %q, want first image URL", line.Image)
	}
	if line.Price != 640 || line.Qty != 1 {
		t.Errorf("price/qty = %v/%d", line.Price, line.Qty)
	}
}

func TestMaterialSnapshot(t *testing.T) {
	m := &models.ArtMaterial{
		ID:    primitive.NewObjectID(),
		Name:  "Walnut ink 30ml",
		Price: 11.5,
	}

	line := m.Snapshot(3)
	if line.Kind != models.KindMaterial {
		t.Errorf("kind = %q", line.Kind)
	}
	if line.Name != "Walnut ink 30ml" || line.Qty != 3 || line.Price != 11.5 {
		t.Errorf("material fields not carried: %+v", line)
	}
	if line.Image != "" {
		t.Errorf("image = %q, want empty for imageless item", line.Image)
	}
}
