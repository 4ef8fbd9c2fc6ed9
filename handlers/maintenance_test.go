package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leizel2402/cocoon-platform-sub000/models"
	"github.com/Leizel2402/cocoon-platform-sub000/services"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
)

func newMaintenanceHarness(t *testing.T) (*MaintenanceController, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := services.NewNotificationService(st, nil, logger)
	svc := services.NewMaintenanceService(st, notifier, logger)
	return NewMaintenanceController(svc), st
}

func doJSON(t *testing.T, handler echo.HandlerFunc, method, path, body, actingUser string, pathParam ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", actingUser)
	c.Set("user_role", models.RoleRenter)
	if len(pathParam) == 2 {
		c.SetParamNames(pathParam[0])
		c.SetParamValues(pathParam[1])
	}
	require.NoError(t, handler(c))
	return rec
}

func TestCreateRequestEndpoint(t *testing.T) {
	mc, st := newMaintenanceHarness(t)

	rec := doJSON(t, mc.CreateRequest, http.MethodPost, "/maintenance",
		`{"propertyId":"PROP2001","landlordId":"landlord-1","title":"Leaking sink"}`, "tenant-1")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, st.Count(services.CollMaintenanceRequests))

	rec = doJSON(t, mc.CreateRequest, http.MethodPost, "/maintenance", `{"title":"no property"}`, "tenant-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelEndpointStatusMapping(t *testing.T) {
	mc, st := newMaintenanceHarness(t)
	seedHTTPRequest(t, st, "req-1", "tenant-1", models.MaintenanceInProgress)

	// Missing reason is a 400.
	rec := doJSON(t, mc.Cancel, http.MethodPut, "/maintenance/req-1/cancel", `{"reason":""}`, "tenant-1", "id", "req-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Non-owner is a 403.
	rec = doJSON(t, mc.Cancel, http.MethodPut, "/maintenance/req-1/cancel", `{"reason":"moving out"}`, "intruder", "id", "req-1")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner with a reason succeeds.
	rec = doJSON(t, mc.Cancel, http.MethodPut, "/maintenance/req-1/cancel", `{"reason":"moving out"}`, "tenant-1", "id", "req-1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteEndpointStatusMapping(t *testing.T) {
	mc, st := newMaintenanceHarness(t)
	seedHTTPRequest(t, st, "req-1", "tenant-1", models.MaintenanceInProgress)
	seedHTTPRequest(t, st, "req-2", "tenant-1", models.MaintenanceSubmitted)

	// In-progress deletion conflicts; the ticket must be cancelled instead.
	rec := doJSON(t, mc.Delete, http.MethodDelete, "/maintenance/req-1", "", "tenant-1", "id", "req-1")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, mc.Delete, http.MethodDelete, "/maintenance/req-2", "", "tenant-1", "id", "req-2")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mc.Delete, http.MethodDelete, "/maintenance/ghost", "", "tenant-1", "id", "ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduleEndpoint(t *testing.T) {
	mc, st := newMaintenanceHarness(t)
	seedHTTPRequest(t, st, "req-1", "tenant-1", models.MaintenanceSubmitted)

	rec := doJSON(t, mc.Schedule, http.MethodPut, "/maintenance/req-1/schedule",
		`{"scheduledDate":"2026-09-15T10:00:00Z","notes":"plumber"}`, "landlord-1", "id", "req-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "in_progress")

	// A zero date never reaches in_progress.
	rec = doJSON(t, mc.Schedule, http.MethodPut, "/maintenance/req-1/schedule", `{}`, "landlord-1", "id", "req-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func seedHTTPRequest(t *testing.T, st *store.MemoryStore, id, tenantID string, status models.MaintenanceStatus) {
	t.Helper()
	req := models.MaintenanceRequest{
		ID:         id,
		PropertyID: "PROP2001",
		TenantID:   tenantID,
		LandlordID: "landlord-1",
		Title:      "Leaking sink",
		Status:     status,
	}
	doc, err := store.ToDoc(&req)
	require.NoError(t, err)
	require.NoError(t, st.Insert(context.Background(), services.CollMaintenanceRequests, doc))
}
