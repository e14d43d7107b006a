package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is read from the identity provider's users collection.
type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID string             `json:"tenantId" bson:"tenantId"`
	Name     string             `json:"name" bson:"name"`
	Username string             `json:"username" bson:"username"`
	Email    string             `json:"email" bson:"email"`
	Role     string             `json:"role" bson:"role"`
	Division string             `json:"division" bson:"division"`
}
