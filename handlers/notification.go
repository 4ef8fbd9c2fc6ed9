package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Leizel2402/cocoon-platform-sub000/services"
)

type NotificationController struct {
	notifier *services.NotificationService
}

func NewNotificationController(notifier *services.NotificationService) *NotificationController {
	return &NotificationController{notifier: notifier}
}

func (nc *NotificationController) List(c echo.Context) error {
	notifications, err := nc.notifier.ListForUser(context.Background(), userID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch notifications"})
	}
	return c.JSON(http.StatusOK, notifications)
}

func (nc *NotificationController) MarkRead(c echo.Context) error {
	var body struct {
		IsRead *bool `json:"isRead"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	read := true
	if body.IsRead != nil {
		read = *body.IsRead
	}
	if err := nc.notifier.MarkRead(context.Background(), c.Param("id"), read); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notification updated"})
}
