// Package services holds the deletion-cascade, notification, and maintenance
// workflows. Handlers translate the error taxonomy here into HTTP responses.
package services

import "errors"

var (
	// ErrNotFound means a referenced document is absent. Never retried.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the acting identity does not own the target
	// document. Distinct from ErrNotFound so the UI can message it.
	ErrUnauthorized = errors.New("not authorized")

	// ErrInvalidTransition means a status change violates the maintenance
	// state machine. The message enumerates the legal next states or names
	// the terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMissingPrecondition covers requests that are shaped correctly but
	// lack a required prior step, e.g. in_progress without a scheduled date.
	ErrMissingPrecondition = errors.New("missing precondition")

	// ErrDeleteNotAllowed is returned when a tenant tries to delete an
	// in-progress maintenance request, which must be cancelled with a
	// reason instead.
	ErrDeleteNotAllowed = errors.New("request must be cancelled, not deleted")

	// ErrAtomicWriteFailed means both the atomic batch and the sequential
	// fallback failed to apply the cascade.
	ErrAtomicWriteFailed = errors.New("atomic write failed")
)

// Collection names, as exposed by the hosted document store.
const (
	CollProperties          = "properties"
	CollUnits               = "units"
	CollListings            = "listings"
	CollApplications        = "applications"
	CollMaintenanceRequests = "maintenanceRequests"
	CollTourBookings        = "tourBookings"
	CollSavedProperties     = "savedProperties"
	CollSavedSearches       = "savedSearches"
	CollSubscriptions       = "subscriptions"
	CollNotifications       = "notifications"
	CollUsers               = "users"
)
