package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workoutlog/internal/domain"
	"workoutlog/internal/repository"
)

const entryColumns = `id, title, workout_date, category, duration_min, notes, image_url, created_at, updated_at`

// WorkoutRepo implements repository.WorkoutRepository on Postgres.
type WorkoutRepo struct {
	pool *pgxpool.Pool
}

// NewWorkoutRepo creates a Postgres-backed workout repository.
func NewWorkoutRepo(pool *pgxpool.Pool) *WorkoutRepo {
	return &WorkoutRepo{pool: pool}
}

// List returns one page of matching entries and the unsliced match count.
// filter.Sort and filter.Order come from the domain allow-list parsers,
// so they are the only values ever interpolated into the ORDER BY clause;
// the search text is always bound.
func (r *WorkoutRepo) List(ctx context.Context, filter domain.ListFilter) ([]domain.WorkoutEntry, int, error) {
	var (
		where string
		args  []interface{}
	)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		where = ` WHERE title ILIKE $1 OR category ILIKE $2 OR COALESCE(notes,'') ILIKE $3`
		args = append(args, like, like, like)
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM workouts` + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting workouts: %w", err)
	}

	listSQL := fmt.Sprintf(
		`SELECT %s FROM workouts%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		entryColumns, where, filter.Sort.Column(), filter.Order,
		len(args)+1, len(args)+2,
	)
	args = append(args, filter.PageSize, filter.Offset())

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.WorkoutEntry, 0, filter.PageSize)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating workouts: %w", err)
	}
	return entries, total, nil
}

func (r *WorkoutRepo) GetByID(ctx context.Context, id int64) (*domain.WorkoutEntry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM workouts WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *WorkoutRepo) Create(ctx context.Context, entry *domain.WorkoutEntry) (*domain.WorkoutEntry, error) {
	const query = `INSERT INTO workouts (title, workout_date, category, duration_min, notes, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + entryColumns

	row := r.pool.QueryRow(ctx, query,
		entry.Title,
		entry.WorkoutDate.Time,
		entry.Category,
		entry.DurationMin,
		entry.Notes,
		entry.ImageURL,
	)
	created, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("inserting workout: %w", err)
	}
	return created, nil
}

func (r *WorkoutRepo) Update(ctx context.Context, entry *domain.WorkoutEntry) (*domain.WorkoutEntry, error) {
	const query = `UPDATE workouts
		SET title=$1, workout_date=$2, category=$3, duration_min=$4, notes=$5, image_url=$6, updated_at=NOW()
		WHERE id=$7
		RETURNING ` + entryColumns

	row := r.pool.QueryRow(ctx, query,
		entry.Title,
		entry.WorkoutDate.Time,
		entry.Category,
		entry.DurationMin,
		entry.Notes,
		entry.ImageURL,
		entry.ID,
	)
	updated, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("updating workout: %w", err)
	}
	return updated, nil
}

func (r *WorkoutRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *WorkoutRepo) SetImage(ctx context.Context, id int64, imageURL string) (*domain.WorkoutEntry, error) {
	const query = `UPDATE workouts SET image_url=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + entryColumns

	row := r.pool.QueryRow(ctx, query, imageURL, id)
	updated, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("setting workout image: %w", err)
	}
	return updated, nil
}

// Stats aggregates the whole collection in two statements. COALESCE keeps
// every aggregate at zero for an empty table.
func (r *WorkoutRepo) Stats(ctx context.Context) (*domain.Stats, error) {
	const aggSQL = `SELECT
		COUNT(*),
		COALESCE(SUM(duration_min), 0),
		COALESCE(AVG(duration_min), 0),
		COUNT(DISTINCT category),
		COALESCE(MAX(duration_min), 0),
		COALESCE(MIN(duration_min), 0)
		FROM workouts`

	var (
		stats domain.Stats
		avg   float64
	)
	err := r.pool.QueryRow(ctx, aggSQL).Scan(
		&stats.TotalRecords,
		&stats.TotalMinutes,
		&avg,
		&stats.CategoryCount,
		&stats.LongestWorkout,
		&stats.ShortestWorkout,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating workout stats: %w", err)
	}
	stats.AvgDuration = int(math.Round(avg))

	rows, err := r.pool.Query(ctx, `SELECT category, COUNT(*) FROM workouts GROUP BY category ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying category breakdown: %w", err)
	}
	defer rows.Close()

	stats.CategoryBreakdown = []domain.CategoryCount{}
	for rows.Next() {
		var cc domain.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scanning category breakdown: %w", err)
		}
		stats.CategoryBreakdown = append(stats.CategoryBreakdown, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category breakdown: %w", err)
	}
	return &stats, nil
}

func (r *WorkoutRepo) Ping(ctx context.Context) error {
	var one int
	if err := r.pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("pinging postgres: %w", err)
	}
	return nil
}

func (r *WorkoutRepo) Close() {
	r.pool.Close()
}

// scanEntry scans one workout row from either a pgx.Row or pgx.Rows.
func scanEntry(row pgx.Row) (*domain.WorkoutEntry, error) {
	var (
		entry domain.WorkoutEntry
		date  time.Time
	)
	err := row.Scan(
		&entry.ID,
		&entry.Title,
		&date,
		&entry.Category,
		&entry.DurationMin,
		&entry.Notes,
		&entry.ImageURL,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning workout row: %w", err)
	}
	entry.WorkoutDate = domain.NewDate(date)
	return &entry, nil
}
