package domain

// CategoryCount is one row of the per-category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats aggregates the whole workout collection. An empty collection
// yields zero values throughout, never an error.
type Stats struct {
	TotalRecords      int             `json:"totalRecords"`
	TotalMinutes      int             `json:"totalMinutes"`
	AvgDuration       int             `json:"avgDuration"`
	CategoryCount     int             `json:"categoryCount"`
	LongestWorkout    int             `json:"longestWorkout"`
	ShortestWorkout   int             `json:"shortestWorkout"`
	CategoryBreakdown []CategoryCount `json:"categoryBreakdown"`
}
