package models

import "time"

type TourStatus string

const (
	TourPending   TourStatus = "pending"
	TourConfirmed TourStatus = "confirmed"
	TourCompleted TourStatus = "completed"
	TourCancelled TourStatus = "cancelled"
)

// GeneralTourID is the sentinel property reference for tours booked without a
// specific property (walk-in office tours).
const GeneralTourID = "general-tour"

// TourBooking is a prospect's request to visit a property.
type TourBooking struct {
	ID               string     `bson:"_id" json:"id"`
	PropertyID       string     `bson:"propertyId" json:"propertyId"`
	UserID           string     `bson:"userId" json:"userId"`
	RequestedDate    time.Time  `bson:"requestedDate" json:"requestedDate"`
	ConfirmedDate    *time.Time `bson:"confirmedDate,omitempty" json:"confirmedDate,omitempty"`
	Status           TourStatus `bson:"status" json:"status"`
	ConfirmationCode string     `bson:"confirmationCode,omitempty" json:"confirmationCode,omitempty"`
	Notes            string     `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt" json:"updatedAt"`
}
