package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Leizel2402/cocoon-platform-sub000/models"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
)

// ValidateStatusTransition checks a maintenance status change against the
// allowed-transitions table. Same-status requests are a no-op and always
// valid. Pure function, safe to call without coordination.
func ValidateStatusTransition(current, requested models.MaintenanceStatus) error {
	if current == requested {
		return nil
	}
	allowed, ok := models.MaintenanceTransitions[current]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, current)
	}
	if len(allowed) == 0 {
		return fmt.Errorf("%w: %s is a final state", ErrInvalidTransition, current)
	}
	for _, next := range allowed {
		if next == requested {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, next := range allowed {
		names[i] = string(next)
	}
	return fmt.Errorf("%w: cannot move from %s to %s (allowed: %s)",
		ErrInvalidTransition, current, requested, strings.Join(names, ", "))
}

// MaintenanceService owns the maintenance-request lifecycle: submission,
// scheduling, status changes, and the delete-vs-cancel ownership rules.
type MaintenanceService struct {
	store    store.Store
	notifier *NotificationService
	logger   *slog.Logger
	now      func() time.Time
}

func NewMaintenanceService(st store.Store, notifier *NotificationService, logger *slog.Logger) *MaintenanceService {
	return &MaintenanceService{
		store:    st,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create persists a new submitted request and alerts the landlord.
func (s *MaintenanceService) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = models.MaintenanceSubmitted
	req.CreatedAt = s.now()
	req.UpdatedAt = req.CreatedAt

	doc, err := store.ToDoc(req)
	if err != nil {
		return err
	}
	if err := s.store.Insert(ctx, CollMaintenanceRequests, doc); err != nil {
		return err
	}

	if err := s.notifier.Create(ctx, Event{
		Kind:         KindNewMaintenance,
		UserID:       req.LandlordID,
		PropertyID:   req.PropertyID,
		PropertyName: req.Title,
		Reason:       req.Description,
	}); err != nil {
		s.logger.Warn("landlord alert failed for new maintenance request",
			"requestId", req.ID, "error", err)
	}
	return nil
}

// StatusUpdate describes a requested status change. SkipTransitionCheck
// bypasses the table validation only; the scheduled-date precondition for
// in_progress is always enforced.
type StatusUpdate struct {
	Status              models.MaintenanceStatus
	Notes               string
	ScheduledDate       *time.Time
	SkipTransitionCheck bool
}

// UpdateStatus applies a status change to a request. On success it stamps
// updatedAt, persists notes when supplied, and stamps completedDate when the
// request reaches completed.
func (s *MaintenanceService) UpdateStatus(ctx context.Context, requestID string, upd StatusUpdate) (*models.MaintenanceRequest, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	scheduled := req.ScheduledDate
	if upd.ScheduledDate != nil && !upd.ScheduledDate.IsZero() {
		scheduled = upd.ScheduledDate
	}
	if upd.Status == models.MaintenanceInProgress && scheduled == nil {
		return nil, fmt.Errorf("%w: request must be scheduled before moving to in_progress", ErrMissingPrecondition)
	}
	if !upd.SkipTransitionCheck {
		if err := ValidateStatusTransition(req.Status, upd.Status); err != nil {
			return nil, err
		}
	}

	now := s.now()
	set := bson.M{
		"status":    string(upd.Status),
		"updatedAt": now,
	}
	if upd.ScheduledDate != nil && !upd.ScheduledDate.IsZero() {
		set["scheduledDate"] = *upd.ScheduledDate
	}
	if upd.Status == models.MaintenanceCompleted {
		set["completedDate"] = now
	}
	if upd.Notes != "" {
		set["notes"] = upd.Notes
	}
	if err := s.store.Update(ctx, CollMaintenanceRequests, requestID, set); err != nil {
		return nil, err
	}

	req.Status = upd.Status
	req.UpdatedAt = now
	req.ScheduledDate = scheduled
	if upd.Status == models.MaintenanceCompleted {
		req.CompletedDate = &now
	}
	if upd.Notes != "" {
		req.Notes = upd.Notes
	}
	return req, nil
}

// Schedule sets the visit date and moves the request to in_progress in one
// step. The table check is bypassed because the scheduling flow validates its
// own preconditions; the scheduled-date requirement still applies.
func (s *MaintenanceService) Schedule(ctx context.Context, requestID string, when time.Time, notes string) (*models.MaintenanceRequest, error) {
	if when.IsZero() {
		return nil, fmt.Errorf("%w: a scheduled date is required", ErrMissingPrecondition)
	}
	return s.UpdateStatus(ctx, requestID, StatusUpdate{
		Status:              models.MaintenanceInProgress,
		Notes:               notes,
		ScheduledDate:       &when,
		SkipTransitionCheck: true,
	})
}

// Cancel moves a request to cancelled on behalf of its owning tenant. The
// reason is mandatory, is persisted into notes, and is forwarded to the
// landlord in a notification.
func (s *MaintenanceService) Cancel(ctx context.Context, requestID, tenantID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: a cancellation reason is required", ErrMissingPrecondition)
	}
	req, err := s.load(ctx, requestID)
	if err != nil {
		return err
	}
	if req.TenantID != tenantID {
		return fmt.Errorf("%w: user %s does not own maintenance request %s", ErrUnauthorized, tenantID, requestID)
	}
	if err := ValidateStatusTransition(req.Status, models.MaintenanceCancelled); err != nil {
		return err
	}

	set := bson.M{
		"status":    string(models.MaintenanceCancelled),
		"notes":     "Cancelled by tenant: " + reason,
		"updatedAt": s.now(),
	}
	if err := s.store.Update(ctx, CollMaintenanceRequests, requestID, set); err != nil {
		return err
	}

	if err := s.notifier.Create(ctx, Event{
		Kind:         KindMaintenanceCancelled,
		UserID:       req.LandlordID,
		PropertyID:   req.PropertyID,
		PropertyName: req.Title,
		Reason:       reason,
	}); err != nil {
		s.logger.Warn("landlord notification failed for maintenance cancellation",
			"requestId", requestID, "error", err)
	}
	return nil
}

// Delete removes a request outright. Only the owning tenant may delete, and
// only while the request is not in progress; an in-progress request has a
// scheduled visit attached and must go through Cancel.
func (s *MaintenanceService) Delete(ctx context.Context, requestID, tenantID string) error {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return err
	}
	if req.TenantID != tenantID {
		return fmt.Errorf("%w: user %s does not own maintenance request %s", ErrUnauthorized, tenantID, requestID)
	}
	if req.Status == models.MaintenanceInProgress {
		return fmt.Errorf("%w: maintenance request %s is in progress", ErrDeleteNotAllowed, requestID)
	}
	return s.store.Delete(ctx, CollMaintenanceRequests, requestID)
}

// Get returns a request by id.
func (s *MaintenanceService) Get(ctx context.Context, requestID string) (*models.MaintenanceRequest, error) {
	return s.load(ctx, requestID)
}

// ListByTenant returns the tenant's requests.
func (s *MaintenanceService) ListByTenant(ctx context.Context, tenantID string) ([]models.MaintenanceRequest, error) {
	return s.list(ctx, bson.M{"tenantId": tenantID})
}

// ListByLandlord returns the requests on the landlord's properties.
func (s *MaintenanceService) ListByLandlord(ctx context.Context, landlordID string) ([]models.MaintenanceRequest, error) {
	return s.list(ctx, bson.M{"landlordId": landlordID})
}

func (s *MaintenanceService) list(ctx context.Context, filter bson.M) ([]models.MaintenanceRequest, error) {
	docs, err := s.store.Find(ctx, CollMaintenanceRequests, filter)
	if err != nil {
		return nil, err
	}
	reqs := make([]models.MaintenanceRequest, 0, len(docs))
	for _, doc := range docs {
		var req models.MaintenanceRequest
		if err := store.Decode(doc, &req); err != nil {
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (s *MaintenanceService) load(ctx context.Context, requestID string) (*models.MaintenanceRequest, error) {
	doc, err := s.store.Get(ctx, CollMaintenanceRequests, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: maintenance request %s", ErrNotFound, requestID)
	}
	if err != nil {
		return nil, err
	}
	var req models.MaintenanceRequest
	if err := store.Decode(doc, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
