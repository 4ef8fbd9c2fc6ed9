package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Leizel2402/cocoon-platform-sub000/models"
	"github.com/Leizel2402/cocoon-platform-sub000/services"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
	"github.com/Leizel2402/cocoon-platform-sub000/utils"
)

type PropertyController struct {
	store    store.Store
	deletion *services.PropertyDeletionService
}

func NewPropertyController(st store.Store, deletion *services.PropertyDeletionService) *PropertyController {
	return &PropertyController{store: st, deletion: deletion}
}

func (pc *PropertyController) CreateProperty(c echo.Context) error {
	var property models.Property
	if err := c.Bind(&property); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if !utils.IsValidPropertyID(property.ID) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid property id: must be PROP followed by a number greater than 1000"})
	}
	if _, err := pc.store.Get(context.Background(), services.CollProperties, property.ID); err == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Property with this id already exists"})
	}

	property.LandlordID = userID(c)
	property.CreatedAt = time.Now()
	property.UpdatedAt = time.Now()

	doc, err := store.ToDoc(property)
	if err != nil {
		return respondError(c, err)
	}
	if err := pc.store.Insert(context.Background(), services.CollProperties, doc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create property"})
	}
	if utils.RedisClient != nil {
		_ = utils.InvalidateCached(context.Background(), "properties")
	}
	return c.JSON(http.StatusCreated, property)
}

func (pc *PropertyController) GetProperty(c echo.Context) error {
	id := c.Param("id")
	doc, err := pc.store.Get(context.Background(), services.CollProperties, id)
	if err != nil {
		return respondError(c, err)
	}
	var property models.Property
	if err := store.Decode(doc, &property); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, property)
}

func (pc *PropertyController) ListProperties(c echo.Context) error {
	params := map[string]string{}
	for _, name := range []string{"city", "state", "type", "bedrooms", "bathrooms", "landlord_id"} {
		if v := c.QueryParam(name); v != "" {
			params[name] = v
		}
	}

	cacheKey := utils.GenerateQueryCacheKey("properties", params)
	if utils.RedisClient != nil {
		var cached []models.Property
		if hit, err := utils.GetCached(context.Background(), cacheKey, &cached); err == nil && hit {
			return c.JSON(http.StatusOK, cached)
		}
	}

	query := bson.M{}
	if v, ok := params["city"]; ok {
		query["city"] = v
	}
	if v, ok := params["state"]; ok {
		query["state"] = v
	}
	if v, ok := params["type"]; ok {
		query["type"] = v
	}
	if v, ok := params["bedrooms"]; ok {
		if num, err := strconv.Atoi(v); err == nil {
			query["bedrooms"] = num
		}
	}
	if v, ok := params["bathrooms"]; ok {
		if num, err := strconv.Atoi(v); err == nil {
			query["bathrooms"] = num
		}
	}
	if v, ok := params["landlord_id"]; ok {
		query["landlordId"] = v
	}

	docs, err := pc.store.Find(context.Background(), services.CollProperties, query)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch properties"})
	}
	properties := make([]models.Property, 0, len(docs))
	for _, doc := range docs {
		var property models.Property
		if err := store.Decode(doc, &property); err != nil {
			continue
		}
		properties = append(properties, property)
	}

	if utils.RedisClient != nil {
		_ = utils.SetCached(context.Background(), cacheKey, properties, 5*time.Minute)
	}
	return c.JSON(http.StatusOK, properties)
}

func (pc *PropertyController) UpdateProperty(c echo.Context) error {
	id := c.Param("id")
	doc, err := pc.store.Get(context.Background(), services.CollProperties, id)
	if err != nil {
		return respondError(c, err)
	}
	if owner, _ := doc["landlordId"].(string); owner != userID(c) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You are not authorized to update this property"})
	}

	var update models.Property
	if err := c.Bind(&update); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	set := bson.M{
		"name":        update.Name,
		"address":     update.Address,
		"city":        update.City,
		"state":       update.State,
		"zip":         update.Zip,
		"type":        update.Type,
		"unitCount":   update.UnitCount,
		"monthlyRent": update.MonthlyRent,
		"bedrooms":    update.Bedrooms,
		"bathrooms":   update.Bathrooms,
		"areaSqFt":    update.AreaSqFt,
		"amenities":   update.Amenities,
		"isListed":    update.IsListed,
		"updatedAt":   time.Now(),
	}
	if err := pc.store.Update(context.Background(), services.CollProperties, id, set); err != nil {
		return respondError(c, err)
	}
	if utils.RedisClient != nil {
		_ = utils.InvalidateCached(context.Background(), "properties")
	}
	return pc.GetProperty(c)
}

// DeleteProperty runs the full cascade: every unit, listing, application,
// maintenance request and subscription referencing the property is removed,
// saved lists are pruned, and every affected party is notified.
func (pc *PropertyController) DeleteProperty(c echo.Context) error {
	result, err := pc.deletion.DeleteProperty(context.Background(), services.DeletionRequest{
		PropertyID: c.Param("id"),
		LandlordID: userID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	if utils.RedisClient != nil {
		_ = utils.InvalidateCached(context.Background(), "properties")
	}
	return c.JSON(http.StatusOK, result)
}
