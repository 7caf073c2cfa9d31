package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/app/services"
	"github.com/shashiranjanraj/atelier/pkg/response"
)

type NotificationController struct {
	notify  *services.NotifyService
	catalog *services.CatalogService
	orders  *services.OrderService
}

func NewNotificationController(n *services.NotifyService, c *services.CatalogService, o *services.OrderService) *NotificationController {
	return &NotificationController{notify: n, catalog: c, orders: o}
}

// PromoteArtwork broadcasts a promotion for one artwork. Admin only.
func (c *NotificationController) PromoteArtwork(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ArtworkID string `json:"artworkId"`
	}
	if !bindJSON(w, r, &body) {
		return
	}
	item, err := c.catalog.GetItem(r.Context(), models.KindArtwork, body.ArtworkID)
	if err != nil {
		fail(w, r, err)
		return
	}
	n, err := c.notify.PromoteArtwork(r.Context(), item.(*models.Artwork))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, response.M{"notification": n})
}

// PromoteMaterial broadcasts a promotion for one art material. Admin only.
func (c *NotificationController) PromoteMaterial(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MaterialID string `json:"materialId"`
	}
	if !bindJSON(w, r, &body) {
		return
	}
	item, err := c.catalog.GetItem(r.Context(), models.KindMaterial, body.MaterialID)
	if err != nil {
		fail(w, r, err)
		return
	}
	n, err := c.notify.PromoteMaterial(r.Context(), item.(*models.ArtMaterial))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, response.M{"notification": n})
}

// NotifyOrderUpdate re-sends the status notification for an order. Admin only.
func (c *NotificationController) NotifyOrderUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID string `json:"orderId"`
	}
	if !bindJSON(w, r, &body) {
		return
	}
	order, err := c.orders.Get(r.Context(), body.OrderID)
	if err != nil {
		fail(w, r, err)
		return
	}
	n, err := c.notify.OrderUpdate(r.Context(), order)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, response.M{"notification": n})
}

// Announce broadcasts a free-form general notification. Admin only.
func (c *NotificationController) Announce(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title     string     `json:"title"`
		Message   string     `json:"message"`
		EventDate *time.Time `json:"eventDate"`
	}
	if !bindJSON(w, r, &body) {
		return
	}
	n, err := c.notify.Announce(r.Context(), body.Title, body.Message, body.EventDate)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, response.M{"notification": n})
}

// List returns the notification log, newest first.
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, err := c.notify.List(r.Context(), page, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"notifications": items})
}

// Delete removes one record from the log. Admin only.
func (c *NotificationController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.notify.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"deleted": true})
}
