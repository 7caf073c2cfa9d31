package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/database"
)

// OrderRepository handles database operations for Order documents.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{col: database.Collection("orders")}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID loads one order by its hex object id.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var order models.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Save writes the order's lifecycle fields. Called only after the workflow
// engine has applied its transition rules; this is a single-document write.
func (r *OrderRepository) Save(ctx context.Context, order *models.Order) error {
	order.UpdatedAt = time.Now()
	_, err := r.col.UpdateByID(ctx, order.ID, bson.M{"$set": bson.M{
		"payment":     order.Payment,
		"orderStatus": order.OrderStatus,
		"paidAt":      order.PaidAt,
		"deliveredAt": order.DeliveredAt,
		"updatedAt":   order.UpdatedAt,
	}})
	return err
}

// ByUser returns all orders owned by userID, newest first.
func (r *OrderRepository) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, listOptions(1, 100))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// All returns every order, newest first, paginated.
func (r *OrderRepository) All(ctx context.Context, page, limit int) ([]models.Order, error) {
	cur, err := r.col.Find(ctx, bson.M{}, listOptions(page, limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Delete removes an order.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
