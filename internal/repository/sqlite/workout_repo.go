package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"workoutlog/internal/domain"
	"workoutlog/internal/repository"
)

const entryColumns = `id, title, workout_date, category, duration_min, notes, image_url, created_at, updated_at`

// WorkoutRepo implements repository.WorkoutRepository on SQLite.
type WorkoutRepo struct {
	db *sql.DB
}

// NewWorkoutRepo creates a SQLite-backed workout repository.
func NewWorkoutRepo(db *sql.DB) *WorkoutRepo {
	return &WorkoutRepo{db: db}
}

// List returns one page of matching entries and the unsliced match count.
// The sort column and direction come from the domain allow-list parsers;
// everything user-controlled is bound.
func (r *WorkoutRepo) List(ctx context.Context, filter domain.ListFilter) ([]domain.WorkoutEntry, int, error) {
	var (
		where string
		args  []interface{}
	)
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		where = ` WHERE LOWER(title) LIKE ? OR LOWER(category) LIKE ? OR LOWER(COALESCE(notes,'')) LIKE ?`
		args = append(args, like, like, like)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting workouts: %w", err)
	}

	listSQL := fmt.Sprintf(
		`SELECT %s FROM workouts%s ORDER BY %s %s LIMIT ? OFFSET ?`,
		entryColumns, where, filter.Sort.Column(), filter.Order,
	)
	args = append(args, filter.PageSize, filter.Offset())

	rows, err := r.db.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.WorkoutEntry, 0, filter.PageSize)
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
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
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM workouts WHERE id = ?`, id)
	entry, err := scanEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *WorkoutRepo) Create(ctx context.Context, entry *domain.WorkoutEntry) (*domain.WorkoutEntry, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO workouts (title, workout_date, category, duration_min, notes, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Title,
		entry.WorkoutDate.String(),
		entry.Category,
		entry.DurationMin,
		entry.Notes,
		entry.ImageURL,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted workout id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *WorkoutRepo) Update(ctx context.Context, entry *domain.WorkoutEntry) (*domain.WorkoutEntry, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE workouts SET title=?, workout_date=?, category=?, duration_min=?, notes=?, image_url=?, updated_at=? WHERE id=?`,
		entry.Title,
		entry.WorkoutDate.String(),
		entry.Category,
		entry.DurationMin,
		entry.Notes,
		entry.ImageURL,
		time.Now().UTC().Format(time.RFC3339),
		entry.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating workout: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking workout update: %w", err)
	}
	if affected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, entry.ID)
}

func (r *WorkoutRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking workout delete: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *WorkoutRepo) SetImage(ctx context.Context, id int64, imageURL string) (*domain.WorkoutEntry, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE workouts SET image_url=?, updated_at=? WHERE id=?`,
		imageURL,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("setting workout image: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking workout image update: %w", err)
	}
	if affected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Stats aggregates the whole collection. COALESCE keeps every aggregate
// at zero for an empty table.
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
	err := r.db.QueryRowContext(ctx, aggSQL).Scan(
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

	rows, err := r.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM workouts GROUP BY category ORDER BY COUNT(*) DESC`)
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
	if err := r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("pinging sqlite: %w", err)
	}
	return nil
}

func (r *WorkoutRepo) Close() {
	if err := r.db.Close(); err != nil {
		log.Printf("ERROR: closing sqlite database: %v", err)
	}
}

// scanEntry scans one workout row via the given Scan function, converting
// the TEXT date and timestamp columns back to their domain types.
func scanEntry(scan func(dest ...interface{}) error) (*domain.WorkoutEntry, error) {
	var (
		entry      domain.WorkoutEntry
		dateStr    string
		createdStr string
		updatedStr string
		notes      sql.NullString
		imageURL   sql.NullString
	)
	err := scan(
		&entry.ID,
		&entry.Title,
		&dateStr,
		&entry.Category,
		&entry.DurationMin,
		&notes,
		&imageURL,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning workout row: %w", err)
	}

	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("parsing stored workout date: %w", err)
	}
	entry.WorkoutDate = date
	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if entry.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	if notes.Valid {
		entry.Notes = &notes.String
	}
	if imageURL.Valid {
		entry.ImageURL = &imageURL.String
	}
	return &entry, nil
}
