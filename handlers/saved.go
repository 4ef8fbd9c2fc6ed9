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

// SavedController maintains the per-user saved-property and saved-search
// documents that the deletion cascade later prunes.
type SavedController struct {
	store store.Store
}

func NewSavedController(st store.Store) *SavedController {
	return &SavedController{store: st}
}

func (sc *SavedController) SaveProperty(c echo.Context) error {
	propertyID := c.Param("propertyId")
	if _, err := sc.store.Get(context.Background(), services.CollProperties, propertyID); err != nil {
		return respondError(c, err)
	}

	uid := userID(c)
	docs, err := sc.store.Find(context.Background(), services.CollSavedProperties, bson.M{"userId": uid})
	if err != nil {
		return respondError(c, err)
	}

	if len(docs) == 0 {
		saved := models.SavedProperty{
			ID:          uuid.NewString(),
			UserID:      uid,
			PropertyIDs: []string{propertyID},
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		doc, err := store.ToDoc(saved)
		if err != nil {
			return respondError(c, err)
		}
		if err := sc.store.Insert(context.Background(), services.CollSavedProperties, doc); err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusCreated, saved)
	}

	var saved models.SavedProperty
	if err := store.Decode(docs[0], &saved); err != nil {
		return respondError(c, err)
	}
	for _, id := range saved.PropertyIDs {
		if id == propertyID {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Property already saved"})
		}
	}
	saved.PropertyIDs = append(saved.PropertyIDs, propertyID)
	if err := sc.store.Update(context.Background(), services.CollSavedProperties, saved.ID, bson.M{
		"propertyIds": saved.PropertyIDs,
		"updatedAt":   time.Now(),
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (sc *SavedController) UnsaveProperty(c echo.Context) error {
	propertyID := c.Param("propertyId")
	uid := userID(c)
	docs, err := sc.store.Find(context.Background(), services.CollSavedProperties, bson.M{"userId": uid})
	if err != nil || len(docs) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No saved properties"})
	}
	var saved models.SavedProperty
	if err := store.Decode(docs[0], &saved); err != nil {
		return respondError(c, err)
	}
	remaining := saved.PropertyIDs[:0]
	for _, id := range saved.PropertyIDs {
		if id != propertyID {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		if err := sc.store.Delete(context.Background(), services.CollSavedProperties, saved.ID); err != nil {
			return respondError(c, err)
		}
	} else if err := sc.store.Update(context.Background(), services.CollSavedProperties, saved.ID, bson.M{
		"propertyIds": remaining,
		"updatedAt":   time.Now(),
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Property unsaved"})
}

func (sc *SavedController) ListSaved(c echo.Context) error {
	docs, err := sc.store.Find(context.Background(), services.CollSavedProperties, bson.M{"userId": userID(c)})
	if err != nil {
		return respondError(c, err)
	}
	if len(docs) == 0 {
		return c.JSON(http.StatusOK, models.SavedProperty{PropertyIDs: []string{}})
	}
	var saved models.SavedProperty
	if err := store.Decode(docs[0], &saved); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (sc *SavedController) CreateSavedSearch(c echo.Context) error {
	var search models.SavedSearch
	if err := c.Bind(&search); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	search.ID = uuid.NewString()
	search.UserID = userID(c)
	if search.PropertyIDs == nil {
		search.PropertyIDs = []string{}
	}
	search.CreatedAt = time.Now()
	search.UpdatedAt = search.CreatedAt

	doc, err := store.ToDoc(search)
	if err != nil {
		return respondError(c, err)
	}
	if err := sc.store.Insert(context.Background(), services.CollSavedSearches, doc); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, search)
}

func (sc *SavedController) ListSavedSearches(c echo.Context) error {
	docs, err := sc.store.Find(context.Background(), services.CollSavedSearches, bson.M{"userId": userID(c)})
	if err != nil {
		return respondError(c, err)
	}
	searches := make([]models.SavedSearch, 0, len(docs))
	for _, doc := range docs {
		var search models.SavedSearch
		if err := store.Decode(doc, &search); err != nil {
			continue
		}
		searches = append(searches, search)
	}
	return c.JSON(http.StatusOK, searches)
}

// Subscribe registers property alerts for the acting user.
func (sc *SavedController) Subscribe(c echo.Context) error {
	propertyID := c.Param("propertyId")
	if _, err := sc.store.Get(context.Background(), services.CollProperties, propertyID); err != nil {
		return respondError(c, err)
	}
	uid := userID(c)
	existing, err := sc.store.Find(context.Background(), services.CollSubscriptions, bson.M{"userId": uid, "propertyId": propertyID})
	if err != nil {
		return respondError(c, err)
	}
	if len(existing) > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Already subscribed"})
	}

	sub := models.Subscription{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		UserID:     uid,
		Status:     "active",
		CreatedAt:  time.Now(),
	}
	doc, err := store.ToDoc(sub)
	if err != nil {
		return respondError(c, err)
	}
	if err := sc.store.Insert(context.Background(), services.CollSubscriptions, doc); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, sub)
}

func (sc *SavedController) Unsubscribe(c echo.Context) error {
	propertyID := c.Param("propertyId")
	uid := userID(c)
	docs, err := sc.store.Find(context.Background(), services.CollSubscriptions, bson.M{"userId": uid, "propertyId": propertyID})
	if err != nil || len(docs) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Subscription not found"})
	}
	for _, doc := range docs {
		if id, ok := doc["_id"].(string); ok {
			if err := sc.store.Delete(context.Background(), services.CollSubscriptions, id); err != nil {
				return respondError(c, err)
			}
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Unsubscribed"})
}
