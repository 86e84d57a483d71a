package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"workoutlog/internal/repository"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	workoutRepo repository.WorkoutRepository
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(workoutRepo repository.WorkoutRepository) *HealthHandler {
	return &HealthHandler{workoutRepo: workoutRepo}
}

// Health reports process liveness without touching the database.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Backend is running"})
}

// DBHealth probes database connectivity with a trivial statement.
func (h *HealthHandler) DBHealth(c *gin.Context) {
	if err := h.workoutRepo.Ping(c.Request.Context()); err != nil {
		log.Printf("ERROR: Database health check failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "db": gin.H{"ok": 1}})
}
