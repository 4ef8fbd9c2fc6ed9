package models

import "time"

// SavedProperty holds a user's bookmarked property ids. The cascade prunes a
// deleted id from PropertyIDs and removes the document only when the array
// becomes empty.
type SavedProperty struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	PropertyIDs []string  `bson:"propertyIds" json:"propertyIds"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SavedSearch is a stored search whose result set pinned concrete property
// ids; pruned the same way SavedProperty is.
type SavedSearch struct {
	ID          string            `bson:"_id" json:"id"`
	UserID      string            `bson:"userId" json:"userId"`
	Name        string            `bson:"name" json:"name"`
	Filters     map[string]string `bson:"filters,omitempty" json:"filters,omitempty"`
	PropertyIDs []string          `bson:"propertyIds" json:"propertyIds"`
	CreatedAt   time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// Subscription is a per-property alert subscription, deleted wholesale when
// the property goes away.
type Subscription struct {
	ID         string    `bson:"_id" json:"id"`
	PropertyID string    `bson:"propertyId" json:"propertyId"`
	UserID     string    `bson:"userId" json:"userId"`
	Status     string    `bson:"status" json:"status"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
