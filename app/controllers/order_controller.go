package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/app/services"
	"github.com/shashiranjanraj/atelier/pkg/middleware"
	"github.com/shashiranjanraj/atelier/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(s *services.OrderService) *OrderController {
	return &OrderController{service: s}
}

func callerID(r *http.Request) (primitive.ObjectID, bool) {
	id, ok := middleware.UserIDFromCtx(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// Create persists a pre-built order.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	var body services.CreateOrderInput
	if !bindJSON(w, r, &body) {
		return
	}
	order, err := c.service.Create(r.Context(), userID, body)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, response.M{"order": order})
}

// CreateFromCart builds an order from cart lines, pricing server-side.
func (c *OrderController) CreateFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	var body services.CartInput
	if !bindJSON(w, r, &body) {
		return
	}
	order, err := c.service.CreateFromCart(r.Context(), userID, body)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, response.M{"order": order})
}

// UpdateStatus drives the order state machine. Admin only.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body services.StatusUpdate
	if !bindJSON(w, r, &body) {
		return
	}
	order, err := c.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"order": order})
}

// Get returns one order. Owners see their own; admins see any.
func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	order, err := c.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	userID, _ := middleware.UserIDFromCtx(r)
	role, _ := middleware.RoleFromCtx(r)
	if role != models.RoleAdmin && order.UserID.Hex() != userID {
		response.Forbidden(w)
		return
	}
	response.Success(w, response.M{"order": order})
}

// Mine lists the caller's orders.
func (c *OrderController) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	orders, err := c.service.MyOrders(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"orders": orders})
}

// All lists every order. Admin only.
func (c *OrderController) All(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	orders, err := c.service.All(r.Context(), page, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"orders": orders})
}

// Delete removes an order. Admin only.
func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, response.M{"deleted": true})
}
