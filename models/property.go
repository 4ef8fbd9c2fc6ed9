package models

import "time"

// Property is the root document of the deletion cascade. Every dependent
// document references it by id.
type Property struct {
	ID          string    `bson:"_id" json:"id"`
	LandlordID  string    `bson:"landlordId" json:"landlordId"`
	Name        string    `bson:"name" json:"name"`
	Address     string    `bson:"address" json:"address"`
	City        string    `bson:"city" json:"city"`
	State       string    `bson:"state" json:"state"`
	Zip         string    `bson:"zip" json:"zip"`
	Type        string    `bson:"type" json:"type"`
	UnitCount   int       `bson:"unitCount" json:"unitCount"`
	MonthlyRent float64   `bson:"monthlyRent" json:"monthlyRent"`
	Bedrooms    int       `bson:"bedrooms" json:"bedrooms"`
	Bathrooms   int       `bson:"bathrooms" json:"bathrooms"`
	AreaSqFt    float64   `bson:"areaSqFt" json:"areaSqFt"`
	Amenities   string    `bson:"amenities" json:"amenities"`
	ImageURLs   []string  `bson:"imageUrls,omitempty" json:"imageUrls,omitempty"`
	IsListed    bool      `bson:"isListed" json:"isListed"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Unit belongs to exactly one Property and is removed with it.
type Unit struct {
	ID          string    `bson:"_id" json:"id"`
	PropertyID  string    `bson:"propertyId" json:"propertyId"`
	UnitNumber  string    `bson:"unitNumber" json:"unitNumber"`
	Floor       int       `bson:"floor" json:"floor"`
	Bedrooms    int       `bson:"bedrooms" json:"bedrooms"`
	Bathrooms   int       `bson:"bathrooms" json:"bathrooms"`
	MonthlyRent float64   `bson:"monthlyRent" json:"monthlyRent"`
	IsOccupied  bool      `bson:"isOccupied" json:"isOccupied"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Listing advertises a Property/Unit pair and is removed with the Property.
type Listing struct {
	ID          string    `bson:"_id" json:"id"`
	PropertyID  string    `bson:"propertyId" json:"propertyId"`
	UnitID      string    `bson:"unitId" json:"unitId"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Rent        float64   `bson:"rent" json:"rent"`
	AvailableAt time.Time `bson:"availableAt" json:"availableAt"`
	IsActive    bool      `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
