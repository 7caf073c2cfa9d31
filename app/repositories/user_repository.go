package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/database"
)

// UserRepository handles database operations for User documents,
// including the embedded push-token lease.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository() *UserRepository {
	return &UserRepository{col: database.Collection("users")}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID looks up a user by its hex object id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UpdateProfile persists name and avatar changes.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	_, err := r.col.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"name":      user.Name,
		"avatar":    user.Avatar,
		"updatedAt": user.UpdatedAt,
	}})
	return err
}

// All returns users ordered by creation time, newest first.
func (r *UserRepository) All(ctx context.Context, page, limit int) ([]models.User, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AllWithToken streams every user currently holding a push token. The sweep
// and broadcast paths both start from this set.
func (r *UserRepository) AllWithToken(ctx context.Context) ([]models.User, error) {
	filter := bson.M{
		"pushLease.token": bson.M{"$exists": true, "$ne": ""},
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateLease overwrites the user's push lease.
func (r *UserRepository) UpdateLease(ctx context.Context, userID primitive.ObjectID, lease models.PushLease) error {
	_, err := r.col.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"pushLease": lease,
		"updatedAt": time.Now(),
	}})
	return err
}

// ClearLease removes the user's push lease entirely.
func (r *UserRepository) ClearLease(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, userID, bson.M{
		"$unset": bson.M{"pushLease": ""},
		"$set":   bson.M{"updatedAt": time.Now()},
	})
	return err
}
