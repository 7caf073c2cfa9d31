package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// PushLease is the push-token lease embedded in a user document. All three
// fields start absent; they are written only by the push-token lifecycle
// service, never by profile updates.
type PushLease struct {
	Token       *string    `bson:"token,omitempty" json:"token,omitempty"`
	ExpiresAt   *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	ValidatedAt *time.Time `bson:"validatedAt,omitempty" json:"validatedAt,omitempty"`
}

// IsExpired reports whether the lease is unusable at the given instant:
// no token, no expiry, or the expiry has passed.
func (l PushLease) IsExpired(now time.Time) bool {
	return l.Token == nil || l.ExpiresAt == nil || now.After(*l.ExpiresAt)
}

// HasToken reports whether a token is currently held, regardless of expiry.
func (l PushLease) HasToken() bool {
	return l.Token != nil && *l.Token != ""
}

// User is a registered account.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash, never serialised
	Role      string             `bson:"role" json:"role"`
	Avatar    *Image             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	PushLease PushLease          `bson:"pushLease,omitempty" json:"pushLease,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
