package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/quintaverde/taskroster/internal/config"
	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/handlers"
	"github.com/quintaverde/taskroster/internal/middleware"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Repositories
	taskRepo := repository.NewTaskDefinitionRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	// Synchronizer and trigger wiring
	suppressor := services.NewSuppressor()
	syncService := services.NewSyncService(taskRepo, rosterRepo, assignmentRepo, suppressor, logger)
	triggers := services.NewSyncTriggers(syncService, suppressor, services.TriggerConfig{
		PastDays:      cfg.SyncPastDays,
		FutureDays:    cfg.SyncFutureDays,
		MaxFutureDays: cfg.SyncMaxFutureDays,
	}, logger)

	// Services
	taskService := services.NewTaskDefinitionService(db, taskRepo, triggers)
	rosterService := services.NewRosterService(db, rosterRepo, triggers)
	assignmentService := services.NewAssignmentService(assignmentRepo)

	// Initialize Gin router
	r := gin.Default()

	// Initialize handlers
	taskHandler := handlers.NewTaskDefinitionHandler(taskService)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	syncHandler := handlers.NewSyncHandler(syncService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Roster API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		tasks := api.Group("/task-definitions")
		{
			tasks.GET("", taskHandler.ListTaskDefinitions)
			tasks.POST("", taskHandler.CreateTaskDefinition)
			tasks.GET("/:id", middleware.RequireTaskDefinition(database.GetDB), taskHandler.GetTaskDefinition)
			tasks.PATCH("/:id", middleware.RequireTaskDefinition(database.GetDB), taskHandler.UpdateTaskDefinition)
			tasks.PUT("/:id/scope", middleware.RequireTaskDefinition(database.GetDB), taskHandler.SetTaskDefinitionScope)
			tasks.POST("/:id/deactivate", middleware.RequireTaskDefinition(database.GetDB), taskHandler.DeactivateTaskDefinition)
		}

		roster := api.Group("/roster")
		{
			roster.GET("/calendars", rosterHandler.ListCalendars)
			roster.POST("/calendars", rosterHandler.CreateCalendar)
			roster.POST("/calendars/:id/approve", rosterHandler.ApproveCalendar)
			roster.GET("/entries", rosterHandler.ListEntries)
			roster.POST("/entries", rosterHandler.CreateEntry)
			roster.PATCH("/entries/:id", rosterHandler.UpdateEntry)
			roster.DELETE("/entries/:id", rosterHandler.DeleteEntry)
		}

		assignments := api.Group("/assignments")
		{
			assignments.GET("", assignmentHandler.ListAssignments)
			assignments.POST("/:id/complete", assignmentHandler.CompleteAssignment)
			assignments.POST("/:id/evidence", assignmentHandler.AddEvidence)
		}

		api.POST("/sync", syncHandler.RunSync)
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
