package models

import "time"

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationApproved    ApplicationStatus = "approved"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationWithdrawn   ApplicationStatus = "withdrawn"
)

// ApplicationMetadata mirrors the nested shape older records used for the
// property reference. New writes always set the flat PropertyID field, but
// reads must tolerate both.
type ApplicationMetadata struct {
	PropertyID   string `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	PropertyName string `bson:"propertyName,omitempty" json:"propertyName,omitempty"`
}

// Application is a rental application submitted by a prospect.
type Application struct {
	ID          string               `bson:"_id" json:"id"`
	PropertyID  string               `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	ListingID   string               `bson:"listingId,omitempty" json:"listingId,omitempty"`
	Metadata    *ApplicationMetadata `bson:"metadata,omitempty" json:"metadata,omitempty"`
	UserID      string               `bson:"userId" json:"userId"`
	LandlordID  string               `bson:"landlordId" json:"landlordId"`
	Status      ApplicationStatus    `bson:"status" json:"status"`
	MoveInDate  time.Time            `bson:"moveInDate,omitempty" json:"moveInDate,omitempty"`
	MonthlyRent float64              `bson:"monthlyRent,omitempty" json:"monthlyRent,omitempty"`
	Message     string               `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
