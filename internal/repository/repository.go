package repository

import (
	"context"

	"workoutlog/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// WorkoutRepository defines the interface for interacting with workout
// entries. One implementation exists per database engine; the engine is
// chosen by configuration at startup.
type WorkoutRepository interface {
	// List returns the page of entries matching the filter plus the
	// total size of the unsliced matching set.
	List(ctx context.Context, filter domain.ListFilter) ([]domain.WorkoutEntry, int, error)
	GetByID(ctx context.Context, id int64) (*domain.WorkoutEntry, error)
	// Create inserts the entry and returns it with the assigned id and
	// database-maintained timestamps populated.
	Create(ctx context.Context, entry *domain.WorkoutEntry) (*domain.WorkoutEntry, error)
	// Update overwrites all mutable columns of the row and refreshes
	// updated_at. Partial-field merging happens in the service layer.
	Update(ctx context.Context, entry *domain.WorkoutEntry) (*domain.WorkoutEntry, error)
	Delete(ctx context.Context, id int64) error
	// SetImage updates only image_url and updated_at.
	SetImage(ctx context.Context, id int64, imageURL string) (*domain.WorkoutEntry, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	// Ping probes connectivity for the readiness endpoint.
	Ping(ctx context.Context) error
	Close()
}
