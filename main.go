package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/lmittmann/tint"

	"github.com/Leizel2402/cocoon-platform-sub000/config"
	"github.com/Leizel2402/cocoon-platform-sub000/handlers"
	"github.com/Leizel2402/cocoon-platform-sub000/routes"
	"github.com/Leizel2402/cocoon-platform-sub000/services"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
	"github.com/Leizel2402/cocoon-platform-sub000/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	config.ConnectDB()
	utils.InitRedis()

	st := store.NewMongoStore(config.GetDatabase())
	mailer := services.NewSMTPMailerFromEnv()

	notifier := services.NewNotificationService(st, mailer, logger)
	maintenance := services.NewMaintenanceService(st, notifier, logger)
	deletion := services.NewPropertyDeletionService(st, notifier, logger)

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	routes.RegisterRoutes(e, routes.Controllers{
		Users:         handlers.NewUserController(st),
		Properties:    handlers.NewPropertyController(st, deletion),
		Units:         handlers.NewUnitController(st),
		Applications:  handlers.NewApplicationController(st, notifier),
		Maintenance:   handlers.NewMaintenanceController(maintenance),
		Tours:         handlers.NewTourController(st, notifier),
		Notifications: handlers.NewNotificationController(notifier),
		Saved:         handlers.NewSavedController(st),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting", "port", port)
	e.Logger.Fatal(e.Start(":" + port))
}
