package timesheet

import (
	"context"
	"time"
)

// EntryRow is one flat row from the range query: a time entry joined back
// to its owning project through the task and work package.
type EntryRow struct {
	EntryDate time.Time `db:"entry_date"`
	ProjectID int64     `db:"project_id"`
	TaskID    int64     `db:"task_id"`
	Hours     float64   `db:"hours"`
}

// RangeTotals is the three-level aggregate: day -> project -> task -> hours.
// The map is unordered; callers rendering tables iterate the requested day
// range and default missing days to zero.
type RangeTotals map[time.Time]map[int64]map[int64]float64

// DayTotal sums every leaf under one day. Absent days total 0.0.
func (t RangeTotals) DayTotal(day time.Time) float64 {
	var total float64
	for _, tasks := range t[day] {
		for _, hours := range tasks {
			total += hours
		}
	}
	return total
}

// Total sums every leaf in the aggregate.
func (t RangeTotals) Total() float64 {
	var total float64
	for day := range t {
		total += t.DayTotal(day)
	}
	return total
}

type Repository interface {
	// EntriesInRange returns the user's entries within [start, end]
	// inclusive, ordered by (date, project, task).
	EntriesInRange(ctx context.Context, userID int64, start, end time.Time) ([]EntryRow, error)
}

// WeeklyView is the Monday..Sunday rendering of a range aggregate. Every
// day of the week is present even when nothing was logged.
type WeeklyView struct {
	WeekStart       time.Time  `json:"week_start"`
	Days            []DayTotal `json:"days"`
	Total           float64    `json:"total"`
	ContractedHours int        `json:"contracted_hours"`
}

type DayTotal struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
}

// DayView breaks a single day down by project and task.
type DayView struct {
	Date  time.Time     `json:"date"`
	Items []DayViewItem `json:"items"`
	Total float64       `json:"total"`
}

type DayViewItem struct {
	ProjectID    int64   `json:"project_id"`
	ProjectLabel string  `json:"project_label"`
	TaskID       int64   `json:"task_id"`
	TaskLabel    string  `json:"task_label"`
	Hours        float64 `json:"hours"`
}
