package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskhive/backend/internal/app"
	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/middleware"
)

// SetupRouter wires middleware, operational endpoints and the versioned API.
func SetupRouter(container *app.ServiceContainer, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RequireAuth())
	{
		tasks := api.Group("/tasks")
		{
			tasks.POST("", container.TaskHandler.Create)
			tasks.GET("/:id", container.TaskHandler.Get)
			tasks.GET("/:id/submissions", container.VerificationHandler.ListTaskSubmissions)

			tasks.POST("/:id/apply", container.ParticipantHandler.Apply)
			tasks.POST("/:id/participants/:pid/review", container.ParticipantHandler.Review)
			tasks.POST("/:id/participants/:pid/complete", container.ParticipantHandler.Complete)
		}

		verification := api.Group("/verification")
		{
			verification.POST("/submit", container.VerificationHandler.Submit)
			verification.GET("/submissions/:id", container.VerificationHandler.GetSubmission)
		}
	}

	return r
}
