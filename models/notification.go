package models

import "time"

// Notification is an append-only in-app message. Only IsRead is ever mutated
// after creation.
type Notification struct {
	ID             string    `bson:"_id" json:"id"`
	UserID         string    `bson:"userId" json:"userId"`
	Type           string    `bson:"type" json:"type"`
	Title          string    `bson:"title" json:"title"`
	Message        string    `bson:"message" json:"message"`
	PropertyID     string    `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	PropertyName   string    `bson:"propertyName,omitempty" json:"propertyName,omitempty"`
	IsRead         bool      `bson:"isRead" json:"isRead"`
	ActionRequired bool      `bson:"actionRequired" json:"actionRequired"`
	ActionURL      string    `bson:"actionUrl,omitempty" json:"actionUrl,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}
