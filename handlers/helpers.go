package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Leizel2402/cocoon-platform-sub000/services"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
)

// respondError maps the service error taxonomy onto HTTP statuses. Internal
// failures get a generic body so diagnostics never reach the end user.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You are not authorized to perform this action"})
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrDeleteNotAllowed):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrMissingPrecondition):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

func userRole(c echo.Context) string {
	role, _ := c.Get("user_role").(string)
	return role
}

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
