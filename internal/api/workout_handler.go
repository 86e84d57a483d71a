package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"workoutlog/internal/domain"
	"workoutlog/internal/service"
	"workoutlog/internal/storage"
)

// PageSizeCookie remembers the caller's preferred page size. It is a
// plain convenience value, not a session or authorization mechanism.
const PageSizeCookie = "pageSize"

// pageSizeCookieMaxAge keeps the preference for 30 days.
const pageSizeCookieMaxAge = 30 * 24 * 60 * 60

// WorkoutHandler holds the workout service and file storage dependencies.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	fileStorage    storage.FileStorage
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService, fileStorage storage.FileStorage) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, fileStorage: fileStorage}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateWorkoutRequest defines the expected JSON for creating an entry.
// Required-field checks live in the service so every validation failure
// produces the same envelope.
type CreateWorkoutRequest struct {
	Title       string  `json:"title"`
	WorkoutDate string  `json:"workout_date"`
	Category    string  `json:"category"`
	DurationMin *int    `json:"duration_min"`
	Notes       *string `json:"notes"`
	ImageURL    *string `json:"image_url"`
}

// UpdateWorkoutRequest is a partial update; absent fields keep their
// stored values.
type UpdateWorkoutRequest struct {
	Title       *string `json:"title"`
	WorkoutDate *string `json:"workout_date"`
	Category    *string `json:"category"`
	DurationMin *int    `json:"duration_min"`
	Notes       *string `json:"notes"`
	ImageURL    *string `json:"image_url"`
}

// StatsResponse augments the collection aggregates with the caller's
// effective page-size preference.
type StatsResponse struct {
	domain.Stats
	CurrentPageSize int `json:"currentPageSize"`
}

// --- Handler Methods ---

// ListWorkouts handles GET /api/workouts with search, sort, order, page
// and pageSize query parameters. An explicit pageSize is persisted back
// to the preference cookie.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	cookieSize, _ := c.Cookie(PageSizeCookie)

	result, err := h.workoutService.List(c.Request.Context(), service.ListOptions{
		Search:         c.Query("search"),
		Sort:           c.Query("sort"),
		Order:          c.Query("order"),
		Page:           c.Query("page"),
		PageSize:       c.Query("pageSize"),
		CookiePageSize: cookieSize,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if result.PersistPageSize {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(PageSizeCookie, strconv.Itoa(result.PageSize), pageSizeCookieMaxAge, "/", "", false, false)
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"page":     result.Page,
		"pageSize": result.PageSize,
		"total":    result.Total,
		"results":  result.Entries,
	})
}

// GetWorkout handles GET /api/workouts/:id.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	entry, err := h.workoutService.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "workout": entry})
}

// CreateWorkout handles POST /api/workouts.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	entry, err := h.workoutService.Create(c.Request.Context(), service.CreateWorkoutInput{
		Title:       req.Title,
		WorkoutDate: req.WorkoutDate,
		Category:    req.Category,
		DurationMin: req.DurationMin,
		Notes:       req.Notes,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "workout": entry})
}

// UpdateWorkout handles PUT /api/workouts/:id with any subset of fields.
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	entry, err := h.workoutService.Update(c.Request.Context(), id, service.UpdateWorkoutInput{
		Title:       req.Title,
		WorkoutDate: req.WorkoutDate,
		Category:    req.Category,
		DurationMin: req.DurationMin,
		Notes:       req.Notes,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "workout": entry})
}

// DeleteWorkout handles DELETE /api/workouts/:id.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UploadWorkoutImage handles POST /api/workouts/:id/image. The multipart
// field must be named "image". Every failure path resolves synchronously
// to a JSON error; the request is never left hanging.
func (h *WorkoutHandler) UploadWorkoutImage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	// Reject unknown ids before touching the filesystem so a failed
	// request cannot leave an orphaned upload behind.
	if _, err := h.workoutService.Get(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			abortWithError(c, http.StatusBadRequest, "No file uploaded")
			return
		}
		abortWithError(c, http.StatusBadRequest, "Upload failed")
		return
	}

	if fileHeader.Size > storage.MaxUploadBytes {
		abortWithError(c, http.StatusBadRequest, "File too large (max 5MB)")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.IsAllowedImageType(contentType) {
		abortWithError(c, http.StatusBadRequest, "Only image files allowed")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("ERROR: Opening uploaded file: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Upload failed")
		return
	}
	defer file.Close()

	storedName := storage.StoredName(fileHeader.Filename, time.Now())
	ref, err := h.fileStorage.Save(c.Request.Context(), storedName, contentType, file)
	if err != nil {
		log.Printf("ERROR: Saving uploaded file: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Upload failed")
		return
	}

	entry, err := h.workoutService.AttachImage(c.Request.Context(), id, ref)
	if err != nil {
		// The row vanished between the existence check and the write;
		// drop the file again rather than leaking it.
		if cleanupErr := h.fileStorage.Delete(c.Request.Context(), ref); cleanupErr != nil {
			log.Printf("ERROR: Cleaning up orphaned upload %s: %v", ref, cleanupErr)
		}
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "workout": entry})
}

// GetStats handles GET /api/workouts/stats.
func (h *WorkoutHandler) GetStats(c *gin.Context) {
	stats, err := h.workoutService.Stats(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	currentPageSize := domain.DefaultPageSize
	if raw, err := c.Cookie(PageSizeCookie); err == nil {
		if n, convErr := strconv.Atoi(raw); convErr == nil && n > 0 {
			currentPageSize = n
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": StatsResponse{
		Stats:           *stats,
		CurrentPageSize: currentPageSize,
	}})
}

// parseIDParam extracts and validates the numeric :id path parameter,
// writing the error response itself when the value is unusable.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// handleServiceError translates service errors into the JSON envelope.
// Storage failures surface as a generic message; internals stay in logs.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: Workout request failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Service unavailable")
	}
}
