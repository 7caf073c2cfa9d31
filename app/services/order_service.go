package services

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/logger"
	"github.com/shashiranjanraj/atelier/pkg/metrics"
)

// Pricing rules applied when building an order from a cart.
const (
	TaxRate               = 0.10
	FreeShippingThreshold = 100.0
	FlatShippingFee       = 15.0
)

// OrderStore is the persistence surface the workflow engine needs.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	All(ctx context.Context, page, limit int) ([]models.Order, error)
	Delete(ctx context.Context, id string) error
}

// CatalogStore is the catalog surface used for cart snapshotting and
// stock reconciliation.
type CatalogStore interface {
	FindItem(ctx context.Context, kind, id string) (models.CatalogItem, error)
	MarkArtworkSold(ctx context.Context, id primitive.ObjectID) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
}

// OrderNotifier receives order lifecycle events. Implementations must be
// fire-and-forget: a notification failure never surfaces here.
type OrderNotifier interface {
	OrderStatusChanged(order *models.Order)
}

// OrderService is the order workflow engine: creation, the status state
// machine, and stock reconciliation.
type OrderService struct {
	orders  OrderStore
	catalog CatalogStore
	notify  OrderNotifier
}

func NewOrderService(orders OrderStore, catalog CatalogStore, notify OrderNotifier) *OrderService {
	return &OrderService{orders: orders, catalog: catalog, notify: notify}
}

// CreateOrderInput is a pre-built order: the client supplies lines and
// totals. Used by the payment-callback path.
type CreateOrderInput struct {
	Lines    []models.OrderLine  `json:"lines"`
	Shipping models.ShippingInfo `json:"shipping"`
	Payment  models.PaymentInfo  `json:"payment"`

	ItemsPrice    float64 `json:"itemsPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

// CartLine references a catalog item and a quantity.
type CartLine struct {
	Kind      string `json:"kind"`
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// CartInput is the from-cart order request; prices are computed server-side.
type CartInput struct {
	Lines    []CartLine          `json:"lines"`
	Shipping models.ShippingInfo `json:"shipping"`
	Payment  models.PaymentInfo  `json:"payment"`
}

// StatusUpdate is the status/payment change request. Empty fields are
// left untouched.
type StatusUpdate struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

// Create persists a pre-built order as Processing, paid now. Stock is not
// touched here; reconciliation happens on the later status confirmation.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, in CreateOrderInput) (*models.Order, error) {
	errs := ValidationErrors{}
	if len(in.Lines) == 0 {
		errs["lines"] = "order must contain at least one line"
	}
	if in.Shipping.Address == "" {
		errs["shipping.address"] = "address is required"
	}
	if in.TotalPrice <= 0 {
		errs["totalPrice"] = "total price is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	now := timeNow()
	order := &models.Order{
		UserID:        userID,
		Lines:         in.Lines,
		Shipping:      in.Shipping,
		Payment:       in.Payment,
		ItemsPrice:    in.ItemsPrice,
		TaxPrice:      in.TaxPrice,
		ShippingPrice: in.ShippingPrice,
		TotalPrice:    in.TotalPrice,
		OrderStatus:   models.StatusProcessing,
		PaidAt:        &now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	metrics.OrdersCreated.WithLabelValues("direct").Inc()
	return order, nil
}

// CreateFromCart snapshots each referenced catalog item at its current
// price and computes totals server-side. Catalog reads are not locked
// against concurrent edits; the snapshot wins.
func (s *OrderService) CreateFromCart(ctx context.Context, userID primitive.ObjectID, in CartInput) (*models.Order, error) {
	if len(in.Lines) == 0 {
		return nil, ValidationErrors{"lines": "cart is empty"}
	}

	lines := make([]models.OrderLine, 0, len(in.Lines))
	var itemsPrice float64
	for _, cl := range in.Lines {
		if cl.Qty < 1 {
			cl.Qty = 1
		}
		item, err := s.catalog.FindItem(ctx, cl.Kind, cl.ProductID)
		if err != nil {
			return nil, wrapNotFound(err)
		}
		line := item.Snapshot(cl.Qty)
		lines = append(lines, line)
		itemsPrice += line.Price * float64(line.Qty)
	}

	taxPrice := round2(itemsPrice * TaxRate)
	shippingPrice := FlatShippingFee
	if itemsPrice > FreeShippingThreshold {
		shippingPrice = 0
	}
	totalPrice := round2(itemsPrice + taxPrice + shippingPrice)

	order := &models.Order{
		UserID:        userID,
		Lines:         lines,
		Shipping:      in.Shipping,
		Payment:       in.Payment,
		ItemsPrice:    round2(itemsPrice),
		TaxPrice:      taxPrice,
		ShippingPrice: shippingPrice,
		TotalPrice:    totalPrice,
		OrderStatus:   models.StatusProcessing,
	}
	if in.Payment.Status == models.PaymentPaid {
		now := timeNow()
		order.PaidAt = &now
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	metrics.OrdersCreated.WithLabelValues("cart").Inc()
	return order, nil
}

// UpdateStatus drives the order state machine.
//
// Rules, in order:
//   - Delivered is terminal: any request against a delivered order fails.
//   - A payment status in the request is stored; "paid" sets paidAt,
//     anything else clears it.
//   - A differing status triggers a transition. Non-Cancelled targets run
//     stock reconciliation over every line first; a reconciliation failure
//     aborts the whole update with the order unmodified.
//   - Delivered additionally stamps deliveredAt and forces payment to paid.
//
// After a successful transition the notifier is invoked; its failures are
// its own problem and never roll back the update.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, req StatusUpdate) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	if order.OrderStatus == models.StatusDelivered {
		return nil, ErrOrderDelivered
	}

	if req.PaymentStatus != "" {
		order.Payment.Status = req.PaymentStatus
		if req.PaymentStatus == models.PaymentPaid {
			now := timeNow()
			order.PaidAt = &now
		} else {
			order.PaidAt = nil
		}
	}

	transitioned := false
	if req.Status != "" && req.Status != order.OrderStatus {
		if !models.ValidStatus(req.Status) {
			return nil, ValidationErrors{"status": "unknown order status"}
		}
		if req.Status != models.StatusCancelled {
			if err := s.reconcile(ctx, order.Lines); err != nil {
				return nil, err
			}
		}
		order.OrderStatus = req.Status
		if req.Status == models.StatusDelivered {
			now := timeNow()
			order.DeliveredAt = &now
			order.Payment.Status = models.PaymentPaid
			order.PaidAt = &now
		}
		transitioned = true
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	if transitioned {
		metrics.OrderStatusTransitions.WithLabelValues(order.OrderStatus).Inc()
		s.notify.OrderStatusChanged(order)
	}
	return order, nil
}

// reconcile applies stock/availability effects for every line: artwork is
// marked sold unconditionally, material stock is decremented. All material
// lines are checked before anything is mutated, so an insufficient line
// leaves the whole order's stock untouched. The check and the write are
// separate document operations; the decrement itself carries a stock >= qty
// guard so a concurrent order cannot push stock negative.
func (s *OrderService) reconcile(ctx context.Context, lines []models.OrderLine) error {
	for _, line := range lines {
		if line.Kind != models.KindMaterial {
			continue
		}
		item, err := s.catalog.FindItem(ctx, line.Kind, line.ProductID.Hex())
		if err != nil {
			return wrapNotFound(err)
		}
		mat, ok := item.(*models.ArtMaterial)
		if !ok {
			continue
		}
		if mat.Stock < line.Qty {
			return &InsufficientStockError{ProductID: line.ProductID.Hex()}
		}
	}

	for _, line := range lines {
		switch line.Kind {
		case models.KindArtwork:
			if err := s.catalog.MarkArtworkSold(ctx, line.ProductID); err != nil {
				return err
			}
		case models.KindMaterial:
			ok, err := s.catalog.DecrementStock(ctx, line.ProductID, line.Qty)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{ProductID: line.ProductID.Hex()}
			}
		}
	}
	return nil
}

// Get loads one order.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return order, nil
}

// MyOrders lists the calling user's orders.
func (s *OrderService) MyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.orders.ByUser(ctx, oid)
}

// All lists every order (admin).
func (s *OrderService) All(ctx context.Context, page, limit int) ([]models.Order, error) {
	return s.orders.All(ctx, page, limit)
}

// Delete removes an order (admin).
func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return wrapNotFound(err)
	}
	logger.Info("order deleted", "order", id)
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
