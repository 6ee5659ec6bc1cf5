package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"taskflow/backend/internal/auth"
	"taskflow/backend/internal/config"
	"taskflow/backend/internal/handlers"
	"taskflow/backend/internal/middleware"
	"taskflow/backend/internal/monitoring"
)

// Deps carries everything the HTTP surface needs. The router owns no
// state of its own.
type Deps struct {
	Config      *config.Config
	Tokens      *auth.TokenService
	AuthHandler *handlers.AuthHandler
	TaskHandler *handlers.TaskHandler
	Collector   *monitoring.Collector
	Health      *monitoring.HealthChecker
}

func New(deps Deps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RecoveryWithLog())
	r.Use(deps.Collector.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{deps.Config.CORS.AllowOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running")
	})
	r.GET("/health", monitoring.HealthHandler(deps.Collector, deps.Health))
	r.GET("/metrics", monitoring.MetricsHandler(deps.Collector))

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", deps.AuthHandler.Register)
			authGroup.POST("/login", deps.AuthHandler.Login)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(deps.Tokens))
		{
			tasks.GET("", deps.TaskHandler.ListTasks)
			tasks.POST("", deps.TaskHandler.CreateTask)
			tasks.PUT("/:id", deps.TaskHandler.UpdateTask)
			tasks.DELETE("/:id", deps.TaskHandler.DeleteTask)
		}
	}

	return r
}
