package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/logger"
	"github.com/shashiranjanraj/atelier/pkg/ws"
)

// NotificationStore is the append-only notification log.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	All(ctx context.Context, page, limit int) ([]models.Notification, error)
	Delete(ctx context.Context, id string) error
}

// PushDispatcher hands a composed push off for asynchronous delivery.
// Implementations must never block on or report gateway outcomes.
type PushDispatcher interface {
	EnqueuePush(tokens []string, title, body string, data map[string]interface{})
}

// NotifyService is the notification dispatcher: it composes title/body
// pairs from fixed per-trigger templates, appends to the notification log,
// pushes to the live feed, and enqueues gateway delivery.
type NotifyService struct {
	log   NotificationStore
	users UserStore
	push  PushDispatcher
	hub   *ws.Hub // nil disables the live feed
}

func NewNotifyService(log NotificationStore, users UserStore, push PushDispatcher, hub *ws.Hub) *NotifyService {
	return &NotifyService{log: log, users: users, push: push, hub: hub}
}

// PromoteArtwork broadcasts a new-artwork promotion to every user holding
// a live push token.
func (s *NotifyService) PromoteArtwork(ctx context.Context, a *models.Artwork) (*models.Notification, error) {
	n := &models.Notification{
		Title:   "New artwork: " + a.Title,
		Message: fmt.Sprintf("%q by %s is now available in the gallery.", a.Title, a.Artist),
		Type:    models.NotifyArtwork,
		Data: map[string]interface{}{
			"screen": "artwork",
			"id":     a.ID.Hex(),
		},
	}
	return n, s.broadcast(ctx, n)
}

// PromoteMaterial broadcasts a new-material promotion.
func (s *NotifyService) PromoteMaterial(ctx context.Context, m *models.ArtMaterial) (*models.Notification, error) {
	n := &models.Notification{
		Title:   "New in store: " + m.Name,
		Message: fmt.Sprintf("%s is now in stock. Grab yours before it sells out.", m.Name),
		Type:    models.NotifyArtMat,
		Data: map[string]interface{}{
			"screen": "material",
			"id":     m.ID.Hex(),
		},
	}
	return n, s.broadcast(ctx, n)
}

// Announce broadcasts a free-form general notification.
func (s *NotifyService) Announce(ctx context.Context, title, message string, eventDate *time.Time) (*models.Notification, error) {
	errs := ValidationErrors{}
	if title == "" {
		errs["title"] = "title is required"
	}
	if message == "" {
		errs["message"] = "message is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}
	n := &models.Notification{
		Title:     title,
		Message:   message,
		Type:      models.NotifyGeneral,
		EventDate: eventDate,
		Data:      map[string]interface{}{"screen": "home"},
	}
	return n, s.broadcast(ctx, n)
}

// OrderUpdate notifies the order's owner about its current status.
func (s *NotifyService) OrderUpdate(ctx context.Context, order *models.Order) (*models.Notification, error) {
	n := &models.Notification{
		Title:   "Order update",
		Message: orderStatusMessage(order),
		Type:    models.NotifyOrder,
		Data: map[string]interface{}{
			"screen": "order",
			"id":     order.ID.Hex(),
		},
	}
	if err := s.log.Create(ctx, n); err != nil {
		return nil, err
	}

	s.feed(order.UserID.Hex(), n)

	owner, err := s.users.FindByID(ctx, order.UserID.Hex())
	if err != nil {
		logger.Warn("notify: order owner lookup failed", "order", order.ID.Hex(), "error", err)
		return n, nil
	}
	if lease := owner.PushLease; lease.HasToken() && !lease.IsExpired(timeNow()) {
		s.push.EnqueuePush([]string{*lease.Token}, n.Title, n.Message, n.Data)
	}
	return n, nil
}

// OrderStatusChanged satisfies OrderNotifier: the fire-and-forget entry
// point invoked by the order workflow after a committed transition. All
// failures are logged and dropped.
func (s *NotifyService) OrderStatusChanged(order *models.Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.OrderUpdate(ctx, order); err != nil {
			logger.Warn("notify: order update dropped", "order", order.ID.Hex(), "error", err)
		}
	}()
}

// List returns the notification log, newest first.
func (s *NotifyService) List(ctx context.Context, page, limit int) ([]models.Notification, error) {
	return s.log.All(ctx, page, limit)
}

// Delete removes one log record.
func (s *NotifyService) Delete(ctx context.Context, id string) error {
	return wrapNotFound(s.log.Delete(ctx, id))
}

// broadcast appends the record, pushes it on the live feed, and enqueues
// delivery to every user with a live token.
func (s *NotifyService) broadcast(ctx context.Context, n *models.Notification) error {
	if err := s.log.Create(ctx, n); err != nil {
		return err
	}

	s.feed("", n)

	users, err := s.users.AllWithToken(ctx)
	if err != nil {
		logger.Warn("notify: token roster load failed", "error", err)
		return nil
	}
	now := timeNow()
	tokens := make([]string, 0, len(users))
	for _, u := range users {
		if lease := u.PushLease; lease.HasToken() && !lease.IsExpired(now) {
			tokens = append(tokens, *lease.Token)
		}
	}
	if len(tokens) > 0 {
		s.push.EnqueuePush(tokens, n.Title, n.Message, n.Data)
	}
	return nil
}

// feed publishes to the live WebSocket feed. An empty userID broadcasts.
func (s *NotifyService) feed(userID string, n *models.Notification) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	if userID == "" {
		s.hub.Broadcast(payload)
	} else {
		s.hub.SendTo(userID, payload)
	}
}

func orderStatusMessage(order *models.Order) string {
	short := order.ID.Hex()
	if len(short) > 6 {
		short = short[len(short)-6:]
	}
	switch order.OrderStatus {
	case models.StatusShipped:
		return fmt.Sprintf("Your order #%s has shipped.", short)
	case models.StatusDelivered:
		return fmt.Sprintf("Your order #%s has been delivered. Enjoy!", short)
	case models.StatusCancelled:
		return fmt.Sprintf("Your order #%s has been cancelled.", short)
	default:
		return fmt.Sprintf("Your order #%s is being processed.", short)
	}
}
