package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Leizel2402/cocoon-platform-sub000/models"
	"github.com/Leizel2402/cocoon-platform-sub000/services"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
)

type TourController struct {
	store    store.Store
	notifier *services.NotificationService
}

func NewTourController(st store.Store, notifier *services.NotificationService) *TourController {
	return &TourController{store: st, notifier: notifier}
}

func (tc *TourController) Book(c echo.Context) error {
	var tour models.TourBooking
	if err := c.Bind(&tour); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if tour.PropertyID == "" {
		tour.PropertyID = models.GeneralTourID
	}
	if tour.PropertyID != models.GeneralTourID {
		if _, err := tc.store.Get(context.Background(), services.CollProperties, tour.PropertyID); err != nil {
			return respondError(c, err)
		}
	}

	tour.ID = uuid.NewString()
	tour.UserID = userID(c)
	tour.Status = models.TourPending
	tour.CreatedAt = time.Now()
	tour.UpdatedAt = tour.CreatedAt

	doc, err := store.ToDoc(tour)
	if err != nil {
		return respondError(c, err)
	}
	if err := tc.store.Insert(context.Background(), services.CollTourBookings, doc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to book tour"})
	}
	return c.JSON(http.StatusCreated, tour)
}

func (tc *TourController) ListMine(c echo.Context) error {
	docs, err := tc.store.Find(context.Background(), services.CollTourBookings, bson.M{"userId": userID(c)})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch tours"})
	}
	tours := make([]models.TourBooking, 0, len(docs))
	for _, doc := range docs {
		var tour models.TourBooking
		if err := store.Decode(doc, &tour); err != nil {
			continue
		}
		tours = append(tours, tour)
	}
	return c.JSON(http.StatusOK, tours)
}

// ownsTourProperty checks the acting landlord against the tour's property.
// General tours are not tied to a property, so any landlord may act on them.
func (tc *TourController) ownsTourProperty(c echo.Context, tour *models.TourBooking) (bool, error) {
	if tour.PropertyID == models.GeneralTourID {
		return true, nil
	}
	doc, err := tc.store.Get(context.Background(), services.CollProperties, tour.PropertyID)
	if err != nil {
		return false, err
	}
	owner, _ := doc["landlordId"].(string)
	return owner == userID(c), nil
}

// Confirm is a landlord action: it stamps the confirmed date, issues a
// confirmation code, and notifies the prospect.
func (tc *TourController) Confirm(c echo.Context) error {
	tour, err := tc.load(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	owns, err := tc.ownsTourProperty(c, tour)
	if err != nil {
		return respondError(c, err)
	}
	if !owns {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You do not own this property"})
	}
	if tour.Status != models.TourPending {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Only pending tours can be confirmed"})
	}

	now := time.Now()
	code := uuid.NewString()[:8]
	if err := tc.store.Update(context.Background(), services.CollTourBookings, tour.ID, bson.M{
		"status":           string(models.TourConfirmed),
		"confirmedDate":    tour.RequestedDate,
		"confirmationCode": code,
		"updatedAt":        now,
	}); err != nil {
		return respondError(c, err)
	}

	_ = tc.notifier.Create(context.Background(), services.Event{
		Kind:             services.KindTourConfirmed,
		UserID:           tour.UserID,
		PropertyID:       tour.PropertyID,
		PropertyName:     tour.PropertyID,
		ConfirmationCode: code,
	})

	tour.Status = models.TourConfirmed
	tour.ConfirmationCode = code
	return c.JSON(http.StatusOK, tour)
}

func (tc *TourController) Complete(c echo.Context) error {
	tour, err := tc.load(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	owns, err := tc.ownsTourProperty(c, tour)
	if err != nil {
		return respondError(c, err)
	}
	if !owns {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You do not own this property"})
	}
	if tour.Status != models.TourConfirmed {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Only confirmed tours can be completed"})
	}
	if err := tc.store.Update(context.Background(), services.CollTourBookings, tour.ID, bson.M{
		"status":    string(models.TourCompleted),
		"updatedAt": time.Now(),
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Tour completed"})
}

func (tc *TourController) Cancel(c echo.Context) error {
	tour, err := tc.load(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if tour.Status == models.TourCompleted || tour.Status == models.TourCancelled {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Tour is already " + string(tour.Status)})
	}
	actor := userID(c)
	if tour.UserID != actor && userRole(c) != models.RoleLandlord {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You are not authorized to cancel this tour"})
	}

	if err := tc.store.Update(context.Background(), services.CollTourBookings, tour.ID, bson.M{
		"status":    string(models.TourCancelled),
		"updatedAt": time.Now(),
	}); err != nil {
		return respondError(c, err)
	}

	if tour.UserID != actor {
		_ = tc.notifier.Create(context.Background(), services.Event{
			Kind:         services.KindTourCancelled,
			UserID:       tour.UserID,
			PropertyID:   tour.PropertyID,
			PropertyName: tour.PropertyID,
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Tour cancelled"})
}

func (tc *TourController) load(id string) (*models.TourBooking, error) {
	doc, err := tc.store.Get(context.Background(), services.CollTourBookings, id)
	if err != nil {
		return nil, err
	}
	var tour models.TourBooking
	if err := store.Decode(doc, &tour); err != nil {
		return nil, err
	}
	return &tour, nil
}
