package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"workoutlog/internal/domain"
	"workoutlog/internal/repository"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrValidationFailed = errors.New("validation failed")
)

// ListOptions carries the raw, untrusted request parameters for a list
// call. The service resolves them against defaults and the client's
// stored page-size preference.
type ListOptions struct {
	Search string
	Sort   string
	Order  string
	Page   string
	// PageSize is the explicit query value; empty when absent.
	PageSize string
	// CookiePageSize is the client preference cookie value; empty when absent.
	CookiePageSize string
}

// ListResult is one resolved page of the collection.
type ListResult struct {
	Page     int
	PageSize int
	Total    int
	Entries  []domain.WorkoutEntry
	// PersistPageSize tells the HTTP layer to write the resolved page
	// size back as the new client preference. Set only when the caller
	// supplied an explicit pageSize.
	PersistPageSize bool
}

// CreateWorkoutInput holds the fields for a new entry. DurationMin is a
// pointer so a missing value can be told apart from zero.
type CreateWorkoutInput struct {
	Title       string
	WorkoutDate string
	Category    string
	DurationMin *int
	Notes       *string
	ImageURL    *string
}

// UpdateWorkoutInput holds a partial update; nil fields keep their
// currently stored values.
type UpdateWorkoutInput struct {
	Title       *string
	WorkoutDate *string
	Category    *string
	DurationMin *int
	Notes       *string
	ImageURL    *string
}

// WorkoutService is the query-construction core: it validates request
// parameters, resolves paging defaults, merges partial updates and maps
// repository errors onto the service taxonomy.
type WorkoutService interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	Get(ctx context.Context, id int64) (*domain.WorkoutEntry, error)
	Create(ctx context.Context, input CreateWorkoutInput) (*domain.WorkoutEntry, error)
	Update(ctx context.Context, id int64, input UpdateWorkoutInput) (*domain.WorkoutEntry, error)
	Delete(ctx context.Context, id int64) error
	AttachImage(ctx context.Context, id int64, fileRef string) (*domain.WorkoutEntry, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

type workoutService struct {
	workoutRepo repository.WorkoutRepository
}

// NewWorkoutService creates a new workout service instance.
func NewWorkoutService(workoutRepo repository.WorkoutRepository) WorkoutService {
	return &workoutService{workoutRepo: workoutRepo}
}

// toPositiveInt parses a raw value into a positive integer, returning the
// fallback for anything missing, malformed or non-positive.
func toPositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (s *workoutService) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	cookieSize := toPositiveInt(opts.CookiePageSize, domain.DefaultPageSize)

	filter := domain.ListFilter{
		Search:   strings.TrimSpace(opts.Search),
		Sort:     domain.ParseSortField(opts.Sort),
		Order:    domain.ParseSortOrder(opts.Order),
		Page:     toPositiveInt(opts.Page, 1),
		PageSize: toPositiveInt(opts.PageSize, cookieSize),
	}

	entries, total, err := s.workoutRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Page:            filter.Page,
		PageSize:        filter.PageSize,
		Total:           total,
		Entries:         entries,
		PersistPageSize: opts.PageSize != "",
	}, nil
}

func (s *workoutService) Get(ctx context.Context, id int64) (*domain.WorkoutEntry, error) {
	entry, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *workoutService) Create(ctx context.Context, input CreateWorkoutInput) (*domain.WorkoutEntry, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidationFailed)
	}
	if strings.TrimSpace(input.WorkoutDate) == "" {
		return nil, fmt.Errorf("%w: workout_date is required", ErrValidationFailed)
	}
	date, err := domain.ParseDate(input.WorkoutDate)
	if err != nil {
		return nil, fmt.Errorf("%w: workout_date must be YYYY-MM-DD", ErrValidationFailed)
	}
	// A present-but-zero (or negative) duration is rejected outright; a
	// missing one is a distinct error. Duration must be strictly positive.
	if input.DurationMin == nil {
		return nil, fmt.Errorf("%w: duration_min is required", ErrValidationFailed)
	}
	if *input.DurationMin <= 0 {
		return nil, fmt.Errorf("%w: duration_min must be a positive number", ErrValidationFailed)
	}

	entry := &domain.WorkoutEntry{
		Title:       input.Title,
		WorkoutDate: date,
		Category:    input.Category,
		DurationMin: *input.DurationMin,
		Notes:       input.Notes,
		ImageURL:    input.ImageURL,
	}
	return s.workoutRepo.Create(ctx, entry)
}

func (s *workoutService) Update(ctx context.Context, id int64, input UpdateWorkoutInput) (*domain.WorkoutEntry, error) {
	existing, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidationFailed)
		}
		existing.Title = *input.Title
	}
	if input.WorkoutDate != nil {
		date, err := domain.ParseDate(*input.WorkoutDate)
		if err != nil {
			return nil, fmt.Errorf("%w: workout_date must be YYYY-MM-DD", ErrValidationFailed)
		}
		existing.WorkoutDate = date
	}
	if input.Category != nil {
		if strings.TrimSpace(*input.Category) == "" {
			return nil, fmt.Errorf("%w: category must not be empty", ErrValidationFailed)
		}
		existing.Category = *input.Category
	}
	if input.DurationMin != nil {
		if *input.DurationMin <= 0 {
			return nil, fmt.Errorf("%w: duration_min must be a positive number", ErrValidationFailed)
		}
		existing.DurationMin = *input.DurationMin
	}
	if input.Notes != nil {
		existing.Notes = input.Notes
	}
	if input.ImageURL != nil {
		existing.ImageURL = input.ImageURL
	}

	updated, err := s.workoutRepo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *workoutService) Delete(ctx context.Context, id int64) error {
	if err := s.workoutRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

func (s *workoutService) AttachImage(ctx context.Context, id int64, fileRef string) (*domain.WorkoutEntry, error) {
	if strings.TrimSpace(fileRef) == "" {
		return nil, fmt.Errorf("%w: no file uploaded", ErrValidationFailed)
	}
	entry, err := s.workoutRepo.SetImage(ctx, id, fileRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *workoutService) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.workoutRepo.Stats(ctx)
}
