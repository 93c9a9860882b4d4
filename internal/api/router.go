package api

import (
	"log/slog"

	"tempo/internal/api/handlers"
	"tempo/internal/api/middleware"
	"tempo/internal/clock"
	"tempo/internal/parse"
	"tempo/internal/storage"

	"github.com/gin-gonic/gin"
)

// RouterConfig holds dependencies for the API router
type RouterConfig struct {
	Storage storage.Storage
	Parser  *parse.Registry
	Clock   clock.Clock
	APIKey  string
	Logger  *slog.Logger
}

// NewRouter creates and configures the Gin router
func NewRouter(config RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(config.Logger))
	router.Use(middleware.Logging(config.Logger))
	router.Use(middleware.ContentType())

	// Health check (no auth)
	healthHandler := handlers.NewHealthHandler()
	router.GET("/health", healthHandler.GetHealth)

	// API v1 routes (with authentication)
	v1 := router.Group("/v1")
	v1.Use(authMiddleware(config.APIKey))
	{
		tasksHandler := handlers.NewTasksHandler(
			config.Storage,
			config.Parser,
			config.Logger,
		)
		v1.GET("/tasks", tasksHandler.ListTasks)
		v1.POST("/tasks", tasksHandler.CreateTask)
		v1.GET("/tasks/:id", tasksHandler.GetTask)
		v1.PATCH("/tasks/:id", tasksHandler.UpdateTask)
		v1.DELETE("/tasks/:id", tasksHandler.DeleteTask)
		v1.GET("/tasks/:id/runs", tasksHandler.ListRuns)

		conditionsHandler := handlers.NewConditionsHandler(
			config.Parser,
			config.Clock,
			config.Logger,
		)
		v1.POST("/conditions/evaluate", conditionsHandler.Evaluate)
	}

	return router
}

// authMiddleware verifies API key authentication
func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-Tempo-Key")
		if providedKey != apiKey {
			c.JSON(401, gin.H{
				"error": "Unauthorized",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
