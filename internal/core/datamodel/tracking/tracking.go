package tracking

import "time"

// TimeEntry is the atomic fact record of hours logged by one user on one
// task for one day. The composite primary key enforces at most one entry
// per user/task/day; corrections go through remove-then-record.
type TimeEntry struct {
	UserID    int64     `gorm:"column:user_id;primaryKey"`
	TaskID    int64     `gorm:"column:task_id;primaryKey"`
	EntryDate time.Time `gorm:"column:entry_date;primaryKey;type:date"`
	Hours     float64   `gorm:"column:hours;not null"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

// TaskAssignment binds a user to a task. EffortConsumed is a denormalized
// integer cache of the hours logged against the assignment; the time entry
// rows stay authoritative.
type TaskAssignment struct {
	TaskID           int64 `gorm:"column:task_id;primaryKey"`
	UserID           int64 `gorm:"column:user_id;primaryKey"`
	EffortHypothetic int   `gorm:"column:effort_hypothetic;not null"`
	EffortConsumed   int   `gorm:"column:effort_consumed;not null;default:0"`
}

func (TaskAssignment) TableName() string {
	return "task_assignments"
}
