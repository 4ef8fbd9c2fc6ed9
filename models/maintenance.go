package models

import "time"

type MaintenanceStatus string

const (
	MaintenanceSubmitted  MaintenanceStatus = "submitted"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// MaintenanceTransitions is the allowed-transition table for maintenance
// request statuses. Terminal statuses map to an empty slice.
var MaintenanceTransitions = map[MaintenanceStatus][]MaintenanceStatus{
	MaintenanceSubmitted:  {MaintenanceInProgress, MaintenanceCancelled},
	MaintenanceInProgress: {MaintenanceCompleted, MaintenanceCancelled},
	MaintenanceCompleted:  {},
	MaintenanceCancelled:  {},
}

// IsTerminal reports whether no outbound transition exists from s.
func (s MaintenanceStatus) IsTerminal() bool {
	next, ok := MaintenanceTransitions[s]
	return ok && len(next) == 0
}

// MaintenanceRequest is a tenant-submitted repair ticket.
type MaintenanceRequest struct {
	ID            string            `bson:"_id" json:"id"`
	PropertyID    string            `bson:"propertyId" json:"propertyId"`
	TenantID      string            `bson:"tenantId" json:"tenantId"`
	LandlordID    string            `bson:"landlordId" json:"landlordId"`
	Title         string            `bson:"title" json:"title"`
	Description   string            `bson:"description" json:"description"`
	Priority      string            `bson:"priority,omitempty" json:"priority,omitempty"`
	Status        MaintenanceStatus `bson:"status" json:"status"`
	ScheduledDate *time.Time        `bson:"scheduledDate,omitempty" json:"scheduledDate,omitempty"`
	CompletedDate *time.Time        `bson:"completedDate,omitempty" json:"completedDate,omitempty"`
	Notes         string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time         `bson:"updatedAt" json:"updatedAt"`
}
