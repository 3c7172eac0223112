package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAuthor is stored when a health tip is created without an author.
const DefaultAuthor = "Anonymous"

// HealthTip is a short piece of health advice stored in the healthtips collection.
type HealthTip struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	Author    string             `bson:"author" json:"author"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (h *HealthTip) SetID(id primitive.ObjectID) { h.ID = id }

// Stamp sets both timestamps, as on creation.
func (h *HealthTip) Stamp(now time.Time) {
	h.CreatedAt = now
	h.UpdatedAt = now
}
