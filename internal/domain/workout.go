package domain

import (
	"time"
)

// WorkoutEntry represents a single workout log record.
// IDs are assigned by the database on insert and never reused.
type WorkoutEntry struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	WorkoutDate Date      `json:"workout_date"`
	Category    string    `json:"category"`
	DurationMin int       `json:"duration_min"`
	Notes       *string   `json:"notes"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
