package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"workoutlog/internal/api"
	"workoutlog/internal/config"
	"workoutlog/internal/repository"
	"workoutlog/internal/repository/postgres"
	"workoutlog/internal/repository/sqlite"
	"workoutlog/internal/service"
	"workoutlog/internal/storage"
)

func main() {
	log.Println("Starting Workout Log API server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	// Any storage failure at startup is fatal: fast operator feedback
	// beats a silently degraded process.
	ctx := context.Background()
	var workoutRepo repository.WorkoutRepository
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to Postgres: %v", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("FATAL: Could not ensure database schema: %v", err)
		}
		workoutRepo = postgres.NewWorkoutRepo(pool)
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.Database.Path)
		if err != nil {
			log.Fatalf("FATAL: Could not open SQLite database: %v", err)
		}
		workoutRepo = sqlite.NewWorkoutRepo(db)
	default:
		log.Fatalf("FATAL: Unknown database driver %q (want postgres or sqlite)", cfg.Database.Driver)
	}
	defer func() {
		log.Println("Closing database...")
		workoutRepo.Close()
	}()
	log.Println("Database connection established.")

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	var fileStorage storage.FileStorage
	staticCfg := api.StaticConfig{ClientDir: cfg.Server.StaticDir}
	switch cfg.Storage.Backend {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.UploadDir)
		staticCfg.UploadDir = cfg.Storage.UploadDir
	case "s3":
		fileStorage, err = storage.NewS3Storage(cfg.S3)
	default:
		log.Fatalf("FATAL: Unknown storage backend %q (want local or s3)", cfg.Storage.Backend)
	}
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize file storage: %v", err)
	}

	// --- Initialize Services ---
	log.Println("Initializing services...")
	workoutService := service.NewWorkoutService(workoutRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, workoutService, fileStorage, workoutRepo, staticCfg)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// In-flight requests get 5 seconds to finish.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
