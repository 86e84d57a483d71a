package domain

import "strings"

// SortField is the closed set of columns a caller may sort the workout
// collection by. Anything outside the set falls back to the default, so
// user input never reaches the identifier position of an ORDER BY clause.
type SortField string

const (
	SortByWorkoutDate SortField = "workout_date"
	SortByCreatedAt   SortField = "created_at"
	SortByDuration    SortField = "duration_min"
	SortByTitle       SortField = "title"
	SortByCategory    SortField = "category"
)

// DefaultSortField is used whenever a requested sort key is not allow-listed.
const DefaultSortField = SortByWorkoutDate

var allowedSortFields = map[SortField]struct{}{
	SortByWorkoutDate: {},
	SortByCreatedAt:   {},
	SortByDuration:    {},
	SortByTitle:       {},
	SortByCategory:    {},
}

// ParseSortField maps a raw query value onto the allow-list,
// falling back to DefaultSortField for anything unrecognized.
func ParseSortField(raw string) SortField {
	f := SortField(strings.TrimSpace(raw))
	if _, ok := allowedSortFields[f]; ok {
		return f
	}
	return DefaultSortField
}

// Column returns the SQL column name for the sort field. Only values
// produced by ParseSortField may be interpolated into query text.
func (f SortField) Column() string {
	return string(f)
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// ParseSortOrder treats "asc" (any case) as ascending and everything
// else, including the empty string, as descending.
func ParseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), "asc") {
		return SortAsc
	}
	return SortDesc
}

// DefaultPageSize applies when neither the query nor the client
// preference cookie carries a usable page size.
const DefaultPageSize = 10

// ListFilter carries fully resolved list parameters into the repository.
// Sort and Order must come from the Parse helpers above.
type ListFilter struct {
	Search   string
	Sort     SortField
	Order    SortOrder
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
