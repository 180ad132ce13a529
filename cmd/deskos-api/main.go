package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/deskos/deskos-api/internal/ai"
	"github.com/deskos/deskos-api/internal/config"
	"github.com/deskos/deskos-api/internal/database"
	"github.com/deskos/deskos-api/internal/events"
	"github.com/deskos/deskos-api/internal/handlers"
	"github.com/deskos/deskos-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	hub := events.NewHub()
	go hub.Run()

	documentService := services.NewDocumentService(db, hub.BroadcastChange)
	projectService := services.NewProjectService(documentService)
	appService := services.NewAppService(documentService)
	dashboardService := services.NewDashboardService(documentService)
	aiClient := ai.NewClient(cfg.Anthropic)

	if err := appService.SeedDefaults(ctx); err != nil {
		logger.Fatal("Failed to seed default apps", zap.Error(err))
	}

	databaseHandler := handlers.NewDatabaseHandler(documentService, logger)
	projectHandler := handlers.NewProjectHandler(projectService, appService, aiClient, logger)
	appHandler := handlers.NewAppHandler(appService, logger)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, logger)
	eventsHandler := handlers.NewEventsHandler(hub)
	generateHandler := handlers.NewGenerateHandler(aiClient, logger)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api")

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	api.Get("/db", databaseHandler.ListCollections)
	api.Post("/query", databaseHandler.Query)
	api.Post("/db/reset", databaseHandler.Reset)
	api.Get("/db/:collection", databaseHandler.ListDocuments)
	api.Post("/db/:collection", databaseHandler.CreateDocument)
	api.Get("/db/:collection/events", eventsHandler.Subscribe)
	api.Get("/db/:collection/:id", databaseHandler.GetDocument)
	api.Put("/db/:collection/:id", databaseHandler.UpdateDocument)
	api.Delete("/db/:collection/:id", databaseHandler.DeleteDocument)

	api.Get("/projects", projectHandler.List)
	api.Post("/projects", projectHandler.Create)
	api.Get("/published-projects", projectHandler.ListPublished)
	api.Get("/projects/:projectId", projectHandler.Get)
	api.Put("/projects/:projectId", projectHandler.Update)
	api.Delete("/projects/:projectId", projectHandler.Delete)
	api.Post("/projects/:projectId/publish", projectHandler.Publish)
	api.Get("/projects/:projectId/versions", projectHandler.ListVersions)
	api.Post("/projects/:projectId/versions", projectHandler.CreateVersion)
	api.Put("/projects/:projectId/versions/current", projectHandler.SwitchVersion)
	api.Delete("/projects/:projectId/versions/:versionNumber", projectHandler.DeleteVersion)
	api.Post("/projects/:projectId/convert", projectHandler.Convert)

	api.Get("/apps", appHandler.List)
	api.Post("/apps", appHandler.Create)
	api.Get("/apps/:appId", appHandler.Get)
	api.Put("/apps/:appId/source", appHandler.UpdateSource)

	api.Get("/dashboard/layout", dashboardHandler.GetLayout)
	api.Put("/dashboard/layout", dashboardHandler.SaveLayout)
	api.Post("/dashboard/widgets", dashboardHandler.AddWidget)
	api.Delete("/dashboard/widgets/:widgetId", dashboardHandler.RemoveWidget)

	api.Get("/models", generateHandler.ListModels)

	// Generation endpoints stream over SSE and sit outside /api.
	app.Post("/generate", generateHandler.Generate)
	app.Post("/generate/modify", generateHandler.Modify)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Info("Server starting", zap.String("addr", addr))
		if err := app.Run(addr); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
}
