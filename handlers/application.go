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

// applicationReviewTransitions gates the landlord review flow; withdrawal is
// handled separately because it is applicant-initiated.
var applicationReviewTransitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.ApplicationPending:     {models.ApplicationUnderReview, models.ApplicationApproved, models.ApplicationRejected},
	models.ApplicationUnderReview: {models.ApplicationApproved, models.ApplicationRejected},
}

type ApplicationController struct {
	store    store.Store
	notifier *services.NotificationService
}

func NewApplicationController(st store.Store, notifier *services.NotificationService) *ApplicationController {
	return &ApplicationController{store: st, notifier: notifier}
}

func (ac *ApplicationController) Submit(c echo.Context) error {
	var app models.Application
	if err := c.Bind(&app); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if app.PropertyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "propertyId is required"})
	}

	propDoc, err := ac.store.Get(context.Background(), services.CollProperties, app.PropertyID)
	if err != nil {
		return respondError(c, err)
	}
	propertyName, _ := propDoc["name"].(string)
	landlordID, _ := propDoc["landlordId"].(string)

	app.ID = uuid.NewString()
	app.UserID = userID(c)
	app.LandlordID = landlordID
	app.Status = models.ApplicationPending
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt

	doc, err := store.ToDoc(app)
	if err != nil {
		return respondError(c, err)
	}
	if err := ac.store.Insert(context.Background(), services.CollApplications, doc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to submit application"})
	}

	_ = ac.notifier.Create(context.Background(), services.Event{
		Kind:         services.KindNewApplication,
		UserID:       landlordID,
		PropertyID:   app.PropertyID,
		PropertyName: propertyName,
	})

	return c.JSON(http.StatusCreated, app)
}

func (ac *ApplicationController) ListMine(c echo.Context) error {
	return ac.list(c, bson.M{"userId": userID(c)})
}

func (ac *ApplicationController) ListForLandlord(c echo.Context) error {
	return ac.list(c, bson.M{"landlordId": userID(c)})
}

func (ac *ApplicationController) list(c echo.Context, filter bson.M) error {
	docs, err := ac.store.Find(context.Background(), services.CollApplications, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch applications"})
	}
	apps := make([]models.Application, 0, len(docs))
	for _, doc := range docs {
		var app models.Application
		if err := store.Decode(doc, &app); err != nil {
			continue
		}
		apps = append(apps, app)
	}
	return c.JSON(http.StatusOK, apps)
}

// Review moves an application through the landlord decision flow.
func (ac *ApplicationController) Review(c echo.Context) error {
	var body struct {
		Status models.ApplicationStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	id := c.Param("id")
	doc, err := ac.store.Get(context.Background(), services.CollApplications, id)
	if err != nil {
		return respondError(c, err)
	}
	var app models.Application
	if err := store.Decode(doc, &app); err != nil {
		return respondError(c, err)
	}
	if app.LandlordID != userID(c) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You are not authorized to review this application"})
	}

	allowed := false
	for _, next := range applicationReviewTransitions[app.Status] {
		if next == body.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Application cannot move from " + string(app.Status) + " to " + string(body.Status)})
	}

	if err := ac.store.Update(context.Background(), services.CollApplications, id, bson.M{
		"status":    string(body.Status),
		"updatedAt": time.Now(),
	}); err != nil {
		return respondError(c, err)
	}
	app.Status = body.Status
	return c.JSON(http.StatusOK, app)
}

// Withdraw lets the applicant pull a pending or under-review application.
func (ac *ApplicationController) Withdraw(c echo.Context) error {
	id := c.Param("id")
	doc, err := ac.store.Get(context.Background(), services.CollApplications, id)
	if err != nil {
		return respondError(c, err)
	}
	var app models.Application
	if err := store.Decode(doc, &app); err != nil {
		return respondError(c, err)
	}
	if app.UserID != userID(c) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You are not authorized to withdraw this application"})
	}
	if app.Status != models.ApplicationPending && app.Status != models.ApplicationUnderReview {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Only pending or under-review applications can be withdrawn"})
	}

	if err := ac.store.Update(context.Background(), services.CollApplications, id, bson.M{
		"status":    string(models.ApplicationWithdrawn),
		"updatedAt": time.Now(),
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Application withdrawn"})
}
