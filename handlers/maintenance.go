package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Leizel2402/cocoon-platform-sub000/models"
	"github.com/Leizel2402/cocoon-platform-sub000/services"
)

type MaintenanceController struct {
	maintenance *services.MaintenanceService
}

func NewMaintenanceController(maintenance *services.MaintenanceService) *MaintenanceController {
	return &MaintenanceController{maintenance: maintenance}
}

func (mc *MaintenanceController) CreateRequest(c echo.Context) error {
	var req models.MaintenanceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	req.TenantID = userID(c)
	if req.PropertyID == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "propertyId and title are required"})
	}
	if err := mc.maintenance.Create(context.Background(), &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (mc *MaintenanceController) ListMine(c echo.Context) error {
	reqs, err := mc.maintenance.ListByTenant(context.Background(), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reqs)
}

func (mc *MaintenanceController) ListForLandlord(c echo.Context) error {
	reqs, err := mc.maintenance.ListByLandlord(context.Background(), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reqs)
}

func (mc *MaintenanceController) UpdateStatus(c echo.Context) error {
	var body struct {
		Status models.MaintenanceStatus `json:"status"`
		Notes  string                   `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	req, err := mc.maintenance.UpdateStatus(context.Background(), c.Param("id"), services.StatusUpdate{
		Status: body.Status,
		Notes:  body.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

func (mc *MaintenanceController) Schedule(c echo.Context) error {
	var body struct {
		ScheduledDate time.Time `json:"scheduledDate"`
		Notes         string    `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	req, err := mc.maintenance.Schedule(context.Background(), c.Param("id"), body.ScheduledDate, body.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

func (mc *MaintenanceController) Cancel(c echo.Context) error {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := mc.maintenance.Cancel(context.Background(), c.Param("id"), userID(c), body.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Maintenance request cancelled"})
}

func (mc *MaintenanceController) Delete(c echo.Context) error {
	if err := mc.maintenance.Delete(context.Background(), c.Param("id"), userID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Maintenance request deleted"})
}
