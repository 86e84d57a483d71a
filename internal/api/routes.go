package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"workoutlog/internal/repository"
	"workoutlog/internal/service"
	"workoutlog/internal/storage"
)

// StaticConfig tells the router which filesystem roots to serve.
// Empty values disable the corresponding mount.
type StaticConfig struct {
	// UploadDir is served under /uploads when the local storage backend
	// is active.
	UploadDir string
	// ClientDir holds the browser client served at /.
	ClientDir string
}

func SetupRoutes(
	router *gin.Engine,
	workoutService service.WorkoutService,
	fileStorage storage.FileStorage,
	workoutRepo repository.WorkoutRepository,
	static StaticConfig,
) {
	router.Use(RequestIDMiddleware())
	router.Use(MetricsMiddleware())

	workoutHandler := NewWorkoutHandler(workoutService, fileStorage)
	healthHandler := NewHealthHandler(workoutRepo)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", healthHandler.Health)
		apiGroup.GET("/db-health", healthHandler.DBHealth)

		workoutGroup := apiGroup.Group("/workouts")
		{
			// /stats is registered alongside /:id; gin routes the static
			// segment first.
			workoutGroup.GET("/stats", workoutHandler.GetStats)
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
			workoutGroup.POST("/:id/image", workoutHandler.UploadWorkoutImage)
		}
	}

	if static.UploadDir != "" {
		router.Static(storage.PublicUploadPrefix, static.UploadDir)
	}
	if static.ClientDir != "" {
		router.StaticFile("/", filepath.Join(static.ClientDir, "index.html"))
		router.StaticFile("/app.js", filepath.Join(static.ClientDir, "app.js"))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Route not found"})
	})
}
