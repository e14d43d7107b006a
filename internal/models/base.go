package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base carries the fields every tenant-scoped document shares.
type Base struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID  string             `json:"tenantId" bson:"tenantId"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
	CreatedBy string             `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
}

// Meta exposes the shared fields to generic stores.
func (b *Base) Meta() *Base { return b }
