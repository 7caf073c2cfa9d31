package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifyArtwork = "artwork"
	NotifyArtMat  = "artmat"
	NotifyGeneral = "general"
	NotifyOrder   = "order"
)

// Notification is an append-only record of a sent notification. Records are
// created and deleted, never updated.
type Notification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	Message string             `bson:"message" json:"message"`
	Type    string             `bson:"notificationType" json:"notificationType"`
	// Data is the free-form navigation payload delivered alongside the push.
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	EventDate *time.Time             `bson:"eventDate,omitempty" json:"eventDate,omitempty"`
	SentAt    time.Time              `bson:"sentAt" json:"sentAt"`
}
