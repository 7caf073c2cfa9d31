package controllers

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/app/services"
	"github.com/shashiranjanraj/atelier/pkg/middleware"
	"github.com/shashiranjanraj/atelier/pkg/response"
)

type CatalogController struct {
	service *services.CatalogService
	auth    *services.AuthService
}

func NewCatalogController(s *services.CatalogService, a *services.AuthService) *CatalogController {
	return &CatalogController{service: s, auth: a}
}

type artworkBody struct {
	services.ArtworkInput
	Images []string `json:"images"`
}

type materialBody struct {
	services.MaterialInput
	Images []string `json:"images"`
}

func (c *CatalogController) ListArtworks(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, err := c.service.ListArtworks(r.Context(), catalogFilter(r), page, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"artworks": items})
}

func (c *CatalogController) GetArtwork(w http.ResponseWriter, r *http.Request) {
	item, err := c.service.GetItem(r.Context(), models.KindArtwork, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"artwork": item})
}

func (c *CatalogController) CreateArtwork(w http.ResponseWriter, r *http.Request) {
	var body artworkBody
	if !bindJSON(w, r, &body) {
		return
	}
	images, verr := decodeImages(body.Images)
	if verr != nil {
		response.ValidationFailed(w, verr)
		return
	}
	artwork, err := c.service.CreateArtwork(r.Context(), body.ArtworkInput, images)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, response.M{"artwork": artwork})
}

func (c *CatalogController) UpdateArtwork(w http.ResponseWriter, r *http.Request) {
	var body artworkBody
	if !bindJSON(w, r, &body) {
		return
	}
	images, verr := decodeImages(body.Images)
	if verr != nil {
		response.ValidationFailed(w, verr)
		return
	}
	artwork, err := c.service.UpdateArtwork(r.Context(), chi.URLParam(r, "id"), body.ArtworkInput, images)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"artwork": artwork})
}

func (c *CatalogController) ListMaterials(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, err := c.service.ListMaterials(r.Context(), catalogFilter(r), page, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"materials": items})
}

func (c *CatalogController) GetMaterial(w http.ResponseWriter, r *http.Request) {
	item, err := c.service.GetItem(r.Context(), models.KindMaterial, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"material": item})
}

func (c *CatalogController) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var body materialBody
	if !bindJSON(w, r, &body) {
		return
	}
	images, verr := decodeImages(body.Images)
	if verr != nil {
		response.ValidationFailed(w, verr)
		return
	}
	material, err := c.service.CreateMaterial(r.Context(), body.MaterialInput, images)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, response.M{"material": material})
}

func (c *CatalogController) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	var body materialBody
	if !bindJSON(w, r, &body) {
		return
	}
	images, verr := decodeImages(body.Images)
	if verr != nil {
		response.ValidationFailed(w, verr)
		return
	}
	material, err := c.service.UpdateMaterial(r.Context(), chi.URLParam(r, "id"), body.MaterialInput, images)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"material": material})
}

// DeleteItem removes an artwork or material; the kind comes from the route.
func (c *CatalogController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	kind, ok := itemKind(r)
	if !ok {
		response.NotFound(w, "unknown catalog kind")
		return
	}
	if err := c.service.DeleteItem(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"deleted": true})
}

// UpsertReview creates or replaces the caller's review on a catalog item.
func (c *CatalogController) UpsertReview(w http.ResponseWriter, r *http.Request) {
	kind, ok := itemKind(r)
	if !ok {
		response.NotFound(w, "unknown catalog kind")
		return
	}
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	var body struct {
		Rating  float64 `json:"rating"`
		Comment string  `json:"comment"`
	}
	if !bindJSON(w, r, &body) {
		return
	}
	reviewer, err := c.auth.Me(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	reviews, err := c.service.UpsertReview(r.Context(), kind, chi.URLParam(r, "id"), reviewer, body.Rating, body.Comment)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"reviews": reviews})
}

func (c *CatalogController) Reviews(w http.ResponseWriter, r *http.Request) {
	kind, ok := itemKind(r)
	if !ok {
		response.NotFound(w, "unknown catalog kind")
		return
	}
	reviews, err := c.service.Reviews(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"reviews": reviews})
}

// DeleteReview removes the caller's own review.
func (c *CatalogController) DeleteReview(w http.ResponseWriter, r *http.Request) {
	kind, ok := itemKind(r)
	if !ok {
		response.NotFound(w, "unknown catalog kind")
		return
	}
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	reviewer, err := c.auth.Me(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := c.service.DeleteReview(r.Context(), kind, chi.URLParam(r, "id"), reviewer.ID); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"deleted": true})
}

func itemKind(r *http.Request) (string, bool) {
	switch chi.URLParam(r, "kind") {
	case models.KindArtwork:
		return models.KindArtwork, true
	case models.KindMaterial:
		return models.KindMaterial, true
	}
	return "", false
}

// catalogFilter reads the list query params; unparseable values are treated
// as absent rather than rejected.
func catalogFilter(r *http.Request) models.CatalogFilter {
	q := r.URL.Query()
	f := models.CatalogFilter{Keyword: q.Get("keyword")}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		f.MinPrice = v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		f.MaxPrice = v
	}
	if v, err := strconv.ParseBool(q.Get("available")); err == nil {
		f.Available = v
	}
	if v, err := strconv.ParseBool(q.Get("inStock")); err == nil {
		f.InStock = v
	}
	return f
}

func decodeImages(encoded []string) ([][]byte, map[string]string) {
	out := make([][]byte, 0, len(encoded))
	for _, s := range encoded {
		if s == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, map[string]string{"images": "images must be base64 encoded"}
		}
		out = append(out, data)
	}
	return out, nil
}
