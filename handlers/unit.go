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

// UnitController manages the per-property units and their listings.
type UnitController struct {
	store store.Store
}

func NewUnitController(st store.Store) *UnitController {
	return &UnitController{store: st}
}

func (uc *UnitController) ownsProperty(c echo.Context, propertyID string) (bool, error) {
	doc, err := uc.store.Get(context.Background(), services.CollProperties, propertyID)
	if err != nil {
		return false, err
	}
	owner, _ := doc["landlordId"].(string)
	return owner == userID(c), nil
}

func (uc *UnitController) CreateUnit(c echo.Context) error {
	var unit models.Unit
	if err := c.Bind(&unit); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	owns, err := uc.ownsProperty(c, unit.PropertyID)
	if err != nil {
		return respondError(c, err)
	}
	if !owns {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You are not authorized to add units to this property"})
	}

	unit.ID = uuid.NewString()
	unit.CreatedAt = time.Now()
	unit.UpdatedAt = unit.CreatedAt

	doc, err := store.ToDoc(unit)
	if err != nil {
		return respondError(c, err)
	}
	if err := uc.store.Insert(context.Background(), services.CollUnits, doc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create unit"})
	}
	return c.JSON(http.StatusCreated, unit)
}

func (uc *UnitController) ListUnits(c echo.Context) error {
	docs, err := uc.store.Find(context.Background(), services.CollUnits, bson.M{"propertyId": c.Param("propertyId")})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch units"})
	}
	units := make([]models.Unit, 0, len(docs))
	for _, doc := range docs {
		var unit models.Unit
		if err := store.Decode(doc, &unit); err != nil {
			continue
		}
		units = append(units, unit)
	}
	return c.JSON(http.StatusOK, units)
}

func (uc *UnitController) CreateListing(c echo.Context) error {
	var listing models.Listing
	if err := c.Bind(&listing); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	owns, err := uc.ownsProperty(c, listing.PropertyID)
	if err != nil {
		return respondError(c, err)
	}
	if !owns {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You are not authorized to list this property"})
	}

	listing.ID = uuid.NewString()
	listing.IsActive = true
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt

	doc, err := store.ToDoc(listing)
	if err != nil {
		return respondError(c, err)
	}
	if err := uc.store.Insert(context.Background(), services.CollListings, doc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create listing"})
	}
	return c.JSON(http.StatusCreated, listing)
}

func (uc *UnitController) ListListings(c echo.Context) error {
	docs, err := uc.store.Find(context.Background(), services.CollListings, bson.M{"propertyId": c.Param("propertyId")})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch listings"})
	}
	listings := make([]models.Listing, 0, len(docs))
	for _, doc := range docs {
		var listing models.Listing
		if err := store.Decode(doc, &listing); err != nil {
			continue
		}
		listings = append(listings, listing)
	}
	return c.JSON(http.StatusOK, listings)
}
