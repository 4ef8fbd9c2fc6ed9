package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Leizel2402/cocoon-platform-sub000/models"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
)

// NotificationKind identifies an event independently of any entity's
// historical status; deletion-triggered notifications are always
// cancellation-flavored regardless of what the application's status was.
type NotificationKind string

const (
	KindPropertyDeletedTenant   NotificationKind = "property_deleted_tenant"
	KindPropertyDeletedProspect NotificationKind = "property_deleted_prospect"
	KindApplicationCancelled    NotificationKind = "application_cancelled"
	KindMaintenanceCancelled    NotificationKind = "maintenance_cancelled"
	KindSubscriptionCancelled   NotificationKind = "subscription_cancelled"
	KindTourConfirmed           NotificationKind = "tour_confirmed"
	KindTourCancelled           NotificationKind = "tour_cancelled"
	KindNewApplication          NotificationKind = "new_application"
	KindNewMaintenance          NotificationKind = "new_maintenance"
)

// cancellationKinds are the kinds whose titles must never read as an
// approval; see the guard in Create.
var cancellationKinds = map[NotificationKind]bool{
	KindPropertyDeletedTenant:   true,
	KindPropertyDeletedProspect: true,
	KindApplicationCancelled:    true,
	KindMaintenanceCancelled:    true,
	KindSubscriptionCancelled:   true,
	KindTourCancelled:           true,
}

// Event is the input to the emitter.
type Event struct {
	Kind             NotificationKind
	UserID           string
	PropertyID       string
	PropertyName     string
	PropertyAddress  string
	Reason           string
	ConfirmationCode string
	ActionURL        string

	// TitleOverride lets callers customize the title; it is subject to the
	// cancellation-title guard.
	TitleOverride string
}

// NotificationService writes in-app notification documents and dispatches
// the paired templated emails. The two writes are independent best-effort
// operations: an email failure never blocks the in-app record and vice versa.
type NotificationService struct {
	store  store.Store
	mailer Mailer
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewNotificationService(st store.Store, mailer Mailer, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		store:  st,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create durable-writes the in-app notification and then attempts the paired
// email. Only the in-app write failure is returned; the email outcome is
// logged and dropped.
func (s *NotificationService) Create(ctx context.Context, ev Event) error {
	n := s.build(ev)

	doc, err := store.ToDoc(n)
	if err != nil {
		return err
	}
	writeErr := s.store.Insert(ctx, CollNotifications, doc)
	if writeErr != nil {
		s.logger.Error("in-app notification write failed",
			"kind", ev.Kind, "userId", ev.UserID, "error", writeErr)
	}

	// The email is sent even when the in-app write failed; the two
	// channels are independent of each other.
	s.SendEmail(ctx, ev, n.Title)

	return writeErr
}

// SendEmail resolves the recipient's address and dispatches the templated
// email for the event. It never returns an error past its boundary; the
// boolean reports whether the single attempt succeeded.
func (s *NotificationService) SendEmail(ctx context.Context, ev Event, subject string) bool {
	if s.mailer == nil {
		return false
	}
	email, err := s.recipientEmail(ctx, ev.UserID)
	if err != nil || email == "" {
		s.logger.Warn("no email address resolved for notification recipient",
			"userId", ev.UserID, "kind", ev.Kind)
		return false
	}
	err = s.mailer.Send(ctx, Email{
		Recipient:    email,
		Subject:      subject,
		TemplateKind: ev.Kind,
		Data: map[string]string{
			"PropertyName":     ev.PropertyName,
			"PropertyAddress":  ev.PropertyAddress,
			"Reason":           ev.Reason,
			"ConfirmationCode": ev.ConfirmationCode,
		},
	})
	if err != nil {
		s.logger.Warn("email dispatch failed",
			"userId", ev.UserID, "kind", ev.Kind, "error", err)
		return false
	}
	return true
}

// NotifyApplicationCancelled routes a deletion-triggered application
// notification by the application's pre-deletion status: approved renters get
// the urgent tenant variant with actionRequired set, rejected applications are
// skipped entirely, and everything else gets the informational prospect
// variant. The boolean reports whether a notification was emitted.
func (s *NotificationService) NotifyApplicationCancelled(ctx context.Context, userID string, status models.ApplicationStatus, propertyID, propertyName, propertyAddress string) (bool, error) {
	if status == models.ApplicationRejected {
		return false, nil
	}
	kind := KindPropertyDeletedProspect
	if status == models.ApplicationApproved {
		kind = KindPropertyDeletedTenant
	}
	err := s.Create(ctx, Event{
		Kind:            kind,
		UserID:          userID,
		PropertyID:      propertyID,
		PropertyName:    propertyName,
		PropertyAddress: propertyAddress,
	})
	return err == nil, err
}

func (s *NotificationService) build(ev Event) *models.Notification {
	title, message, actionRequired := renderKind(ev)
	if ev.TitleOverride != "" {
		title = ev.TitleOverride
	}

	// A deletion-triggered notification must never carry an approval-flavored
	// title; an application's historical approved status is not the
	// notification type. Correct and log rather than emit a misleading title.
	if cancellationKinds[ev.Kind] && strings.Contains(strings.ToLower(title), "approved") {
		s.logger.Warn("corrected approval-flavored title on cancellation notification",
			"kind", ev.Kind, "title", title)
		title, _, _ = renderKind(Event{Kind: ev.Kind, PropertyName: ev.PropertyName})
	}

	return &models.Notification{
		ID:             s.newID(),
		UserID:         ev.UserID,
		Type:           string(ev.Kind),
		Title:          title,
		Message:        message,
		PropertyID:     ev.PropertyID,
		PropertyName:   ev.PropertyName,
		IsRead:         false,
		ActionRequired: actionRequired,
		ActionURL:      ev.ActionURL,
		CreatedAt:      s.now(),
	}
}

func renderKind(ev Event) (title, message string, actionRequired bool) {
	switch ev.Kind {
	case KindPropertyDeletedTenant:
		return "Urgent: your home is no longer available",
			"The property " + ev.PropertyName + " has been removed by its owner. Your lease application is no longer valid; please contact support.",
			true
	case KindPropertyDeletedProspect:
		return "Property no longer available",
			"The property " + ev.PropertyName + " has been removed and your application has been closed.",
			false
	case KindApplicationCancelled:
		return "Application cancelled",
			"Your application for " + ev.PropertyName + " has been cancelled.",
			false
	case KindMaintenanceCancelled:
		msg := "The maintenance request \"" + ev.PropertyName + "\" was cancelled."
		if ev.Reason != "" {
			msg += " Reason: " + ev.Reason
		}
		return "Maintenance request cancelled", msg, false
	case KindSubscriptionCancelled:
		return "Subscription ended",
			"Your alerts for " + ev.PropertyName + " have been stopped because the property was removed.",
			false
	case KindTourConfirmed:
		msg := "Your tour of " + ev.PropertyName + " is confirmed."
		if ev.ConfirmationCode != "" {
			msg += " Confirmation code: " + ev.ConfirmationCode
		}
		return "Tour confirmed", msg, false
	case KindTourCancelled:
		return "Tour cancelled",
			"Your tour of " + ev.PropertyName + " has been cancelled.",
			false
	case KindNewApplication:
		return "New application received",
			"A new application was submitted for " + ev.PropertyName + ".",
			true
	case KindNewMaintenance:
		return "New maintenance request",
			"A tenant submitted \"" + ev.PropertyName + "\".",
			true
	default:
		return string(ev.Kind), ev.Reason, false
	}
}

func (s *NotificationService) recipientEmail(ctx context.Context, userID string) (string, error) {
	doc, err := s.store.Get(ctx, CollUsers, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	email, _ := doc["email"].(string)
	return email, nil
}

// ListForUser returns a user's notifications.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	docs, err := s.store.Find(ctx, CollNotifications, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(docs))
	for _, doc := range docs {
		var n models.Notification
		if err := store.Decode(doc, &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsRead != out[j].IsRead {
			return !out[i].IsRead
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MarkRead toggles the only mutable field on a notification.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string, read bool) error {
	err := s.store.Update(ctx, CollNotifications, notificationID, bson.M{"isRead": read})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
	}
	return err
}
