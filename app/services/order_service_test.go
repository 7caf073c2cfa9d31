package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/atelier/app/models"
)

// ─── Fakes ───────────────────────────────────────────────────────────────────

type fakeOrderStore struct {
	orders map[string]*models.Order
	saved  int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*models.Order{}}
}

func (f *fakeOrderStore) Create(_ context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	cp := *o
	f.orders[o.ID.Hex()] = &cp
	return nil
}

// FindByID hands back a copy, like a real driver decode would.
func (f *fakeOrderStore) FindByID(_ context.Context, id string) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) Save(_ context.Context, o *models.Order) error {
	cp := *o
	f.orders[o.ID.Hex()] = &cp
	f.saved++
	return nil
}

func (f *fakeOrderStore) ByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) All(_ context.Context, _, _ int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderStore) Delete(_ context.Context, id string) error {
	if _, ok := f.orders[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.orders, id)
	return nil
}

type fakeCatalogStore struct {
	artworks  map[string]*models.Artwork
	materials map[string]*models.ArtMaterial
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{
		artworks:  map[string]*models.Artwork{},
		materials: map[string]*models.ArtMaterial{},
	}
}

func (f *fakeCatalogStore) addArtwork(title, artist string, price float64) *models.Artwork {
	a := &models.Artwork{
		ID: primitive.NewObjectID(), Title: title, Artist: artist,
		Price: price, Status: models.ArtworkAvailable,
	}
	f.artworks[a.ID.Hex()] = a
	return a
}

func (f *fakeCatalogStore) addMaterial(name string, price float64, stock int) *models.ArtMaterial {
	m := &models.ArtMaterial{
		ID: primitive.NewObjectID(), Name: name, Price: price, Stock: stock,
	}
	f.materials[m.ID.Hex()] = m
	return m
}

func (f *fakeCatalogStore) FindItem(_ context.Context, kind, id string) (models.CatalogItem, error) {
	switch kind {
	case models.KindArtwork:
		if a, ok := f.artworks[id]; ok {
			cp := *a
			return &cp, nil
		}
	case models.KindMaterial:
		if m, ok := f.materials[id]; ok {
			cp := *m
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCatalogStore) MarkArtworkSold(_ context.Context, id primitive.ObjectID) error {
	a, ok := f.artworks[id.Hex()]
	if !ok {
		return mongo.ErrNoDocuments
	}
	a.Status = models.ArtworkSold
	return nil
}

func (f *fakeCatalogStore) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) (bool, error) {
	m, ok := f.materials[id.Hex()]
	if !ok || m.Stock < qty {
		return false, nil
	}
	m.Stock -= qty
	return true, nil
}

type fakeNotifier struct {
	calls []string
}

func (f *fakeNotifier) OrderStatusChanged(order *models.Order) {
	f.calls = append(f.calls, order.OrderStatus)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func newOrderFixture() (*OrderService, *fakeOrderStore, *fakeCatalogStore, *fakeNotifier) {
	orders := newFakeOrderStore()
	catalog := newFakeCatalogStore()
	notifier := &fakeNotifier{}
	return NewOrderService(orders, catalog, notifier), orders, catalog, notifier
}

func seedOrder(t *testing.T, orders *fakeOrderStore, lines []models.OrderLine, status string) *models.Order {
	t.Helper()
	o := &models.Order{
		UserID:      primitive.NewObjectID(),
		Lines:       lines,
		OrderStatus: status,
		TotalPrice:  100,
	}
	require.NoError(t, orders.Create(context.Background(), o))
	return o
}

// ─── State machine ───────────────────────────────────────────────────────────

func TestUpdateStatusDeliveredIsTerminal(t *testing.T) {
	svc, orders, _, notifier := newOrderFixture()
	o := seedOrder(t, orders, nil, models.StatusDelivered)

	_, err := svc.UpdateStatus(context.Background(), o.ID.Hex(), StatusUpdate{Status: models.StatusCancelled})
	assert.ErrorIs(t, err, ErrOrderDelivered)

	// Even a pure payment change is rejected.
	_, err = svc.UpdateStatus(context.Background(), o.ID.Hex(), StatusUpdate{PaymentStatus: "refunded"})
	assert.ErrorIs(t, err, ErrOrderDelivered)

	stored := orders.orders[o.ID.Hex()]
	assert.Equal(t, models.StatusDelivered, stored.OrderStatus)
	assert.Empty(t, notifier.calls)
}

func TestUpdateStatusToDeliveredStampsEverything(t *testing.T) {
	svc, orders, _, notifier := newOrderFixture()
	o := seedOrder(t, orders, nil, models.StatusShipped)

	updated, err := svc.UpdateStatus(context.Background(), o.ID.Hex(), StatusUpdate{Status: models.StatusDelivered})
	require.NoError(t, err)

	assert.Equal(t, models.StatusDelivered, updated.OrderStatus)
	require.NotNil(t, updated.DeliveredAt)
	assert.Equal(t, models.PaymentPaid, updated.Payment.Status)
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, []string{models.StatusDelivered}, notifier.calls)
}

func TestUpdateStatusPaymentPaidSetsPaidAt(t *testing.T) {
	svc, orders, _, _ := newOrderFixture()
	o := seedOrder(t, orders, nil, models.StatusProcessing)

	updated, err := svc.UpdateStatus(context.Background(), o.ID.Hex(), StatusUpdate{PaymentStatus: models.PaymentPaid})
	require.NoError(t, err)
	require.NotNil(t, updated.PaidAt)

	updated, err = svc.UpdateStatus(context.Background(), o.ID.Hex(), StatusUpdate{PaymentStatus: "pending"})
	require.NoError(t, err)
	assert.Nil(t, updated.PaidAt)
	assert.Equal(t, "pending", updated.Payment.Status)
}

func TestUpdateStatusUnknownStatusRejected(t *testing.T) {
	svc, orders, _, _ := newOrderFixture()
	o := seedOrder(t, orders, nil, models.StatusProcessing)

	_, err := svc.UpdateStatus(context.Background(), o.ID.Hex(), StatusUpdate{Status: "Misplaced"})
	var verrs ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc, _, _, _ := newOrderFixture()
	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), StatusUpdate{Status: models.StatusShipped})
	assert.ErrorIs(t, err, ErrNotFound)
}

// ─── Reconciliation ──────────────────────────────────────────────────────────

func TestReconcileMarksArtworkSold(t *testing.T) {
	svc, orders, catalog, _ := newOrderFixture()
	art := catalog.addArtwork("Nocturne", "L. Wen", 300)
	o := seedOrder(t, orders, []models.OrderLine{
		{ProductID: art.ID, Kind: models.KindArtwork, Qty: 1, Price: 300},
	}, models.StatusProcessing)

	_, err := svc.UpdateStatus(context.Background(), o.ID.Hex(), StatusUpdate{Status: models.StatusShipped})
	require.NoError(t, err)
	assert.Equal(t, models.ArtworkSold, catalog.artworks[art.ID.Hex()].Status)
}

func TestReconcileDecrementsMaterialStock(t *testing.T) {
	svc, orders, catalog, _ := newOrderFixture()
	mat := catalog.addMaterial("Gesso 500ml", 12, 10)
	o := seedOrder(t, orders, []models.OrderLine{
		{ProductID: mat.ID, Kind: models.KindMaterial, Qty: 3, Price: 12},
	}, models.StatusProcessing)

	_, err := svc.UpdateStatus(context.Background(), o.ID.Hex(), StatusUpdate{Status: models.StatusShipped})
	require.NoError(t, err)
	assert.Equal(t, 7, catalog.materials[mat.ID.Hex()].Stock)
}

func TestInsufficientStockAbortsWholeUpdate(t *testing.T) {
	svc, orders, catalog, notifier := newOrderFixture()
	plenty := catalog.addMaterial("Linseed oil", 9, 10)
	short := catalog.addMaterial("Cobalt blue", 21, 1)
	o := seedOrder(t, orders, []models.OrderLine{
		{ProductID: plenty.ID, Kind: models.KindMaterial, Qty: 2, Price: 9},
		{ProductID: short.ID, Kind: models.KindMaterial, Qty: 5, Price: 21},
	}, models.StatusProcessing)

	_, err := svc.UpdateStatus(context.Background(), o.ID.Hex(), StatusUpdate{Status: models.StatusShipped})

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, short.ID.Hex(), stockErr.ProductID)

	// Nothing was mutated: not the first line's stock, not the order.
	assert.Equal(t, 10, catalog.materials[plenty.ID.Hex()].Stock)
	assert.Equal(t, 1, catalog.materials[short.ID.Hex()].Stock)
	assert.Equal(t, models.StatusProcessing, orders.orders[o.ID.Hex()].OrderStatus)
	assert.Empty(t, notifier.calls)
}

func TestCancelledSkipsReconciliation(t *testing.T) {
	svc, orders, catalog, _ := newOrderFixture()
	mat := catalog.addMaterial("Charcoal set", 7, 2)
	o := seedOrder(t, orders, []models.OrderLine{
		{ProductID: mat.ID, Kind: models.KindMaterial, Qty: 5, Price: 7},
	}, models.StatusProcessing)

	// Qty exceeds stock, but Cancelled never reconciles.
	updated, err := svc.UpdateStatus(context.Background(), o.ID.Hex(), StatusUpdate{Status: models.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.OrderStatus)
	assert.Equal(t, 2, catalog.materials[mat.ID.Hex()].Stock)
}

// ─── Creation ────────────────────────────────────────────────────────────────

func TestCreateFromCartComputesTotals(t *testing.T) {
	svc, _, catalog, _ := newOrderFixture()
	a := catalog.addArtwork("Sketch I", "P. Osei", 20)
	m := catalog.addMaterial("Palette knife", 30, 5)

	order, err := svc.CreateFromCart(context.Background(), primitive.NewObjectID(), CartInput{
		Lines: []CartLine{
			{Kind: models.KindArtwork, ProductID: a.ID.Hex(), Qty: 1},
			{Kind: models.KindMaterial, ProductID: m.ID.Hex(), Qty: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, order.ItemsPrice)
	assert.Equal(t, 5.0, order.TaxPrice)
	assert.Equal(t, 15.0, order.ShippingPrice) // below the free-shipping threshold
	assert.Equal(t, 70.0, order.TotalPrice)
	assert.Equal(t, models.StatusProcessing, order.OrderStatus)
}

func TestCreateFromCartFreeShippingAboveThreshold(t *testing.T) {
	svc, _, catalog, _ := newOrderFixture()
	a := catalog.addArtwork("Triptych", "R. Iyer", 150)

	order, err := svc.CreateFromCart(context.Background(), primitive.NewObjectID(), CartInput{
		Lines: []CartLine{{Kind: models.KindArtwork, ProductID: a.ID.Hex(), Qty: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, 150.0, order.ItemsPrice)
	assert.Equal(t, 0.0, order.ShippingPrice)
	assert.Equal(t, 165.0, order.TotalPrice)
}

func TestCreateFromCartSnapshotsItemFields(t *testing.T) {
	svc, _, catalog, _ := newOrderFixture()
	a := catalog.addArtwork("Red Field", "D. Moss", 40)
	a.Medium = "Acrylic"

	order, err := svc.CreateFromCart(context.Background(), primitive.NewObjectID(), CartInput{
		Lines: []CartLine{{Kind: models.KindArtwork, ProductID: a.ID.Hex(), Qty: 1}},
	})
	require.NoError(t, err)

	line := order.Lines[0]
	assert.Equal(t, "Red Field", line.Title)
	assert.Equal(t, "D. Moss", line.Artist)
	assert.Equal(t, "Acrylic", line.Medium)
	assert.Equal(t, 40.0, line.Price)

	// Later catalog edits must not leak into the snapshot.
	a.Price = 4000
	assert.Equal(t, 40.0, order.Lines[0].Price)
}

func TestCreateFromCartEmptyCartRejected(t *testing.T) {
	svc, _, _, _ := newOrderFixture()
	_, err := svc.CreateFromCart(context.Background(), primitive.NewObjectID(), CartInput{})
	var verrs ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestCreateDirectSetsPaidNow(t *testing.T) {
	svc, _, _, _ := newOrderFixture()
	before := time.Now()

	order, err := svc.Create(context.Background(), primitive.NewObjectID(), CreateOrderInput{
		Lines:      []models.OrderLine{{Kind: models.KindArtwork, Qty: 1, Price: 10}},
		Shipping:   models.ShippingInfo{Address: "12 Canal St"},
		TotalPrice: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, order.OrderStatus)
	require.NotNil(t, order.PaidAt)
	assert.False(t, order.PaidAt.Before(before))
}

func TestCreateDirectValidates(t *testing.T) {
	svc, _, _, _ := newOrderFixture()
	_, err := svc.Create(context.Background(), primitive.NewObjectID(), CreateOrderInput{})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "lines")
	assert.Contains(t, verrs, "shipping.address")
}
