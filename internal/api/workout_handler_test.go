package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliterepo "workoutlog/internal/repository/sqlite"
	"workoutlog/internal/service"
	"workoutlog/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the full stack against an in-memory database and a
// temp-dir upload store.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := sqliterepo.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqliterepo.NewWorkoutRepo(db)
	svc := service.NewWorkoutService(repo)

	uploadDir := t.TempDir()
	store, err := storage.NewLocalStorage(uploadDir)
	require.NoError(t, err)

	router := gin.New()
	SetupRoutes(router, svc, store, repo, StaticConfig{UploadDir: uploadDir})
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var payload map[string]interface{}
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload), "body: %s", rr.Body.String())
	}
	return rr, payload
}

func createWorkout(t *testing.T, router *gin.Engine, title, date, category string, duration int) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"workout_date":%q,"category":%q,"duration_min":%d}`, title, date, category, duration)
	rr, payload := doJSON(t, router, http.MethodPost, "/api/workouts", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	workout := payload["workout"].(map[string]interface{})
	return int64(workout["id"].(float64))
}

func TestCreateWorkout(t *testing.T) {
	router := newTestRouter(t)

	rr, payload := doJSON(t, router, http.MethodPost, "/api/workouts",
		`{"title":"Morning run","workout_date":"2024-03-10","category":"Cardio","duration_min":30,"notes":"easy pace"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, true, payload["ok"])

	workout := payload["workout"].(map[string]interface{})
	assert.Equal(t, "Morning run", workout["title"])
	assert.Equal(t, "2024-03-10", workout["workout_date"])
	assert.Equal(t, "Cardio", workout["category"])
	assert.Equal(t, float64(30), workout["duration_min"])
	assert.Equal(t, "easy pace", workout["notes"])
	assert.Nil(t, workout["image_url"])
	assert.NotEmpty(t, workout["created_at"])
	assert.NotEmpty(t, workout["updated_at"])
}

func TestCreateWorkout_Validation(t *testing.T) {
	router := newTestRouter(t)

	cases := []string{
		`{"workout_date":"2024-03-10","category":"Cardio","duration_min":30}`,
		`{"title":"Run","category":"Cardio","duration_min":30}`,
		`{"title":"Run","workout_date":"2024-03-10","duration_min":30}`,
		`{"title":"Run","workout_date":"2024-03-10","category":"Cardio"}`,
		`{"title":"Run","workout_date":"2024-03-10","category":"Cardio","duration_min":0}`,
	}
	for _, body := range cases {
		rr, payload := doJSON(t, router, http.MethodPost, "/api/workouts", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Equal(t, false, payload["ok"])
		assert.NotEmpty(t, payload["error"])
	}
}

func TestGetWorkout(t *testing.T) {
	router := newTestRouter(t)
	id := createWorkout(t, router, "Swim", "2024-03-11", "Cardio", 45)

	rr, payload := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/workouts/%d", id), "")
	require.Equal(t, http.StatusOK, rr.Code)
	workout := payload["workout"].(map[string]interface{})
	assert.Equal(t, "Swim", workout["title"])

	rr, payload = doJSON(t, router, http.MethodGet, "/api/workouts/99999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Not found", payload["error"])

	rr, payload = doJSON(t, router, http.MethodGet, "/api/workouts/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid id", payload["error"])
}

func TestListWorkouts_PaginationAndCookie(t *testing.T) {
	router := newTestRouter(t)
	for i := 1; i <= 5; i++ {
		createWorkout(t, router, fmt.Sprintf("W%d", i), fmt.Sprintf("2024-03-%02d", i), "Cardio", 10*i)
	}

	rr, payload := doJSON(t, router, http.MethodGet, "/api/workouts?page=1&pageSize=2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), payload["page"])
	assert.Equal(t, float64(2), payload["pageSize"])
	assert.Equal(t, float64(5), payload["total"])
	assert.Len(t, payload["results"], 2)

	// Explicit pageSize is persisted as the preference cookie.
	cookies := rr.Result().Cookies()
	var pageSizeCookie *http.Cookie
	for _, ck := range cookies {
		if ck.Name == PageSizeCookie {
			pageSizeCookie = ck
		}
	}
	require.NotNil(t, pageSizeCookie)
	assert.Equal(t, "2", pageSizeCookie.Value)

	// The cookie alone drives the page size on later requests.
	req := httptest.NewRequest(http.MethodGet, "/api/workouts", nil)
	req.AddCookie(&http.Cookie{Name: PageSizeCookie, Value: "3"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["pageSize"])
	assert.Empty(t, rec.Result().Cookies(), "cookie-driven requests must not rewrite the preference")
}

func TestListWorkouts_SortInjectionFallsBackToDefault(t *testing.T) {
	router := newTestRouter(t)
	createWorkout(t, router, "A", "2024-03-01", "Cardio", 30)
	createWorkout(t, router, "B", "2024-03-03", "Strength", 60)
	createWorkout(t, router, "C", "2024-03-02", "Cardio", 90)

	_, hostile := doJSON(t, router, http.MethodGet, "/api/workouts?sort=id%3B+DROP+TABLE+workouts", "")
	_, plain := doJSON(t, router, http.MethodGet, "/api/workouts", "")
	assert.Equal(t, plain["results"], hostile["results"])

	// The table is still intact.
	rr, payload := doJSON(t, router, http.MethodGet, "/api/workouts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(3), payload["total"])
}

func TestListWorkouts_Search(t *testing.T) {
	router := newTestRouter(t)
	createWorkout(t, router, "Tempo Run", "2024-03-01", "Cardio", 40)
	createWorkout(t, router, "Leg day", "2024-03-02", "Strength", 50)

	rr, payload := doJSON(t, router, http.MethodGet, "/api/workouts?search=tempo", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), payload["total"])
}

func TestUpdateWorkout_Partial(t *testing.T) {
	router := newTestRouter(t)
	id := createWorkout(t, router, "Row", "2024-03-01", "Cardio", 20)

	rr, payload := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/workouts/%d", id), `{"duration_min":45}`)
	require.Equal(t, http.StatusOK, rr.Code)
	workout := payload["workout"].(map[string]interface{})
	assert.Equal(t, float64(45), workout["duration_min"])
	assert.Equal(t, "Row", workout["title"])
	assert.Equal(t, "Cardio", workout["category"])

	rr, payload = doJSON(t, router, http.MethodPut, "/api/workouts/99999", `{"duration_min":45}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Not found", payload["error"])
}

func TestDeleteWorkout(t *testing.T) {
	router := newTestRouter(t)
	id := createWorkout(t, router, "Bike", "2024-03-01", "Cardio", 60)

	rr, payload := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/workouts/%d", id), "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, payload["ok"])

	rr, payload = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/workouts/%d", id), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Not found", payload["error"])
}

// multipartImage builds a multipart body with a single "image" part
// carrying the given content type.
func multipartImage(t *testing.T, fieldName, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadWorkoutImage(t *testing.T) {
	router := newTestRouter(t)
	id := createWorkout(t, router, "Hike", "2024-03-01", "Outdoor", 120)

	body, contentType := multipartImage(t, "image", "trail photo.jpg", "image/jpeg", []byte("jpeg bytes"))
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/workouts/%d/image", id), body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	workout := payload["workout"].(map[string]interface{})
	imageURL, _ := workout["image_url"].(string)
	assert.True(t, strings.HasPrefix(imageURL, "/uploads/"), imageURL)
	assert.True(t, strings.HasSuffix(imageURL, "_trail_photo.jpg"), imageURL)
}

func TestUploadWorkoutImage_Rejections(t *testing.T) {
	router := newTestRouter(t)
	id := createWorkout(t, router, "Hike", "2024-03-01", "Outdoor", 120)

	t.Run("unknown id", func(t *testing.T) {
		body, contentType := multipartImage(t, "image", "a.jpg", "image/jpeg", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/workouts/99999/image", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("wrong type", func(t *testing.T) {
		body, contentType := multipartImage(t, "image", "doc.pdf", "application/pdf", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/workouts/%d/image", id), body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Only image files allowed")
	})

	t.Run("too large", func(t *testing.T) {
		oversized := make([]byte, storage.MaxUploadBytes+1)
		body, contentType := multipartImage(t, "image", "huge.png", "image/png", oversized)
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/workouts/%d/image", id), body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "File too large")

		// The entry keeps its previous image reference (none).
		_, payload := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/workouts/%d", id), "")
		workout := payload["workout"].(map[string]interface{})
		assert.Nil(t, workout["image_url"])
	})

	t.Run("missing file", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.Close())
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/workouts/%d/image", id), body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestStats(t *testing.T) {
	router := newTestRouter(t)

	// Empty collection: all zeros, no error.
	rr, payload := doJSON(t, router, http.MethodGet, "/api/workouts/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	stats := payload["stats"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["totalRecords"])
	assert.Equal(t, float64(0), stats["totalMinutes"])
	assert.Equal(t, float64(0), stats["avgDuration"])
	assert.Equal(t, float64(0), stats["categoryCount"])
	assert.Equal(t, float64(0), stats["longestWorkout"])
	assert.Equal(t, float64(0), stats["shortestWorkout"])
	assert.Empty(t, stats["categoryBreakdown"])
	assert.Equal(t, float64(10), stats["currentPageSize"])

	createWorkout(t, router, "A", "2024-03-01", "Cardio", 30)
	createWorkout(t, router, "B", "2024-03-02", "Strength", 90)

	req := httptest.NewRequest(http.MethodGet, "/api/workouts/stats", nil)
	req.AddCookie(&http.Cookie{Name: PageSizeCookie, Value: "25"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	stats = resp["stats"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["totalRecords"])
	assert.Equal(t, float64(120), stats["totalMinutes"])
	assert.Equal(t, float64(60), stats["avgDuration"])
	assert.Equal(t, float64(2), stats["categoryCount"])
	assert.Equal(t, float64(90), stats["longestWorkout"])
	assert.Equal(t, float64(30), stats["shortestWorkout"])
	assert.Equal(t, float64(25), stats["currentPageSize"])
	assert.Len(t, stats["categoryBreakdown"], 2)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rr, payload := doJSON(t, router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, payload["ok"])

	rr, payload = doJSON(t, router, http.MethodGet, "/api/db-health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, payload["ok"])
}

func TestUnknownRouteEnvelope(t *testing.T) {
	router := newTestRouter(t)

	rr, payload := doJSON(t, router, http.MethodGet, "/api/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, false, payload["ok"])
	assert.Equal(t, "Route not found", payload["error"])
}
