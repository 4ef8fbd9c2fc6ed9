package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Leizel2402/cocoon-platform-sub000/handlers"
	"github.com/Leizel2402/cocoon-platform-sub000/middleware"
	"github.com/Leizel2402/cocoon-platform-sub000/models"
)

// Controllers bundles every handler group the router wires up.
type Controllers struct {
	Users         *handlers.UserController
	Properties    *handlers.PropertyController
	Units         *handlers.UnitController
	Applications  *handlers.ApplicationController
	Maintenance   *handlers.MaintenanceController
	Tours         *handlers.TourController
	Notifications *handlers.NotificationController
	Saved         *handlers.SavedController
}

func RegisterRoutes(e *echo.Echo, c Controllers) {
	e.GET("/health", handlers.HealthCheck)

	e.POST("/auth/register", c.Users.Register)
	e.POST("/auth/login", c.Users.Login)

	e.GET("/properties", c.Properties.ListProperties)
	e.GET("/properties/:id", c.Properties.GetProperty)

	auth := e.Group("", middleware.JWTMiddleware())
	auth.GET("/profile", c.Users.GetProfile)
	auth.PUT("/profile", c.Users.UpdateProfile)

	landlord := auth.Group("", middleware.RequireRole(models.RoleLandlord))
	landlord.POST("/properties", c.Properties.CreateProperty)
	landlord.PUT("/properties/:id", c.Properties.UpdateProperty)
	landlord.DELETE("/properties/:id", c.Properties.DeleteProperty)
	landlord.POST("/units", c.Units.CreateUnit)
	landlord.POST("/listings", c.Units.CreateListing)
	landlord.GET("/landlord/applications", c.Applications.ListForLandlord)
	landlord.PUT("/applications/:id/review", c.Applications.Review)
	landlord.GET("/landlord/maintenance", c.Maintenance.ListForLandlord)
	landlord.PUT("/maintenance/:id/schedule", c.Maintenance.Schedule)
	landlord.PUT("/maintenance/:id/status", c.Maintenance.UpdateStatus)
	landlord.PUT("/tours/:id/confirm", c.Tours.Confirm)
	landlord.PUT("/tours/:id/complete", c.Tours.Complete)

	auth.GET("/properties/:propertyId/units", c.Units.ListUnits)
	auth.GET("/properties/:propertyId/listings", c.Units.ListListings)

	auth.POST("/applications", c.Applications.Submit)
	auth.GET("/applications", c.Applications.ListMine)
	auth.PUT("/applications/:id/withdraw", c.Applications.Withdraw)

	auth.POST("/maintenance", c.Maintenance.CreateRequest)
	auth.GET("/maintenance", c.Maintenance.ListMine)
	auth.PUT("/maintenance/:id/cancel", c.Maintenance.Cancel)
	auth.DELETE("/maintenance/:id", c.Maintenance.Delete)

	auth.POST("/tours", c.Tours.Book)
	auth.GET("/tours", c.Tours.ListMine)
	auth.PUT("/tours/:id/cancel", c.Tours.Cancel)

	auth.GET("/notifications", c.Notifications.List)
	auth.PUT("/notifications/:id/read", c.Notifications.MarkRead)

	auth.POST("/saved/:propertyId", c.Saved.SaveProperty)
	auth.DELETE("/saved/:propertyId", c.Saved.UnsaveProperty)
	auth.GET("/saved", c.Saved.ListSaved)
	auth.POST("/saved-searches", c.Saved.CreateSavedSearch)
	auth.GET("/saved-searches", c.Saved.ListSavedSearches)
	auth.POST("/subscriptions/:propertyId", c.Saved.Subscribe)
	auth.DELETE("/subscriptions/:propertyId", c.Saved.Unsubscribe)
}
