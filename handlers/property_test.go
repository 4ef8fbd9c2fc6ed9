package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Leizel2402/cocoon-platform-sub000/services"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
)

func newPropertyHarness(t *testing.T) (*PropertyController, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := services.NewNotificationService(st, nil, logger)
	deletion := services.NewPropertyDeletionService(st, notifier, logger)
	return NewPropertyController(st, deletion), st
}

func TestDeletePropertyEndpoint(t *testing.T) {
	pc, st := newPropertyHarness(t)
	ctx := context.Background()
	require.NoError(t, st.Insert(ctx, services.CollProperties, bson.M{
		"_id": "PROP2001", "landlordId": "landlord-1", "name": "Elm Street Flats", "address": "12 Elm St",
	}))
	require.NoError(t, st.Insert(ctx, services.CollApplications, bson.M{
		"_id": "app-1", "propertyId": "PROP2001", "userId": "prospect-1", "status": "pending",
	}))

	// Wrong landlord cannot trigger the cascade.
	rec := doJSON(t, pc.DeleteProperty, http.MethodDelete, "/properties/PROP2001", "", "impostor", "id", "PROP2001")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, st.Count(services.CollProperties))

	rec = doJSON(t, pc.DeleteProperty, http.MethodDelete, "/properties/PROP2001", "", "landlord-1", "id", "PROP2001")
	assert.Equal(t, http.StatusOK, rec.Code)

	var result services.DeletionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.DeletedCounts["properties"])
	assert.Equal(t, 1, result.DeletedCounts["applications"])
	assert.Equal(t, 0, st.Count(services.CollProperties))

	// Second delete of the same id is a clean 404.
	rec = doJSON(t, pc.DeleteProperty, http.MethodDelete, "/properties/PROP2001", "", "landlord-1", "id", "PROP2001")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAndGetProperty(t *testing.T) {
	pc, _ := newPropertyHarness(t)

	rec := doJSON(t, pc.CreateProperty, http.MethodPost, "/properties",
		`{"id":"PROP2001","name":"Elm Street Flats","address":"12 Elm St","city":"Springfield"}`,
		"landlord-1")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, pc.GetProperty, http.MethodGet, "/properties/PROP2001", "", "landlord-1", "id", "PROP2001")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Elm Street Flats")

	// The external id format is validated on create.
	rec = doJSON(t, pc.CreateProperty, http.MethodPost, "/properties",
		`{"id":"HOUSE-9","name":"Bad ID"}`, "landlord-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
