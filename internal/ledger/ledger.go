package ledger

import (
	"context"
	"errors"
	"time"
)

// Entry mirrors one time_entries row.
type Entry struct {
	UserID int64     `json:"user_id"`
	TaskID int64     `json:"task_id"`
	Day    time.Time `json:"entry_date"`
	Hours  float64   `json:"hours"`
}

// Assignment mirrors one task_assignments row. EffortConsumed is the
// cached integer counter; entries remain authoritative.
type Assignment struct {
	TaskID           int64 `json:"task_id"`
	UserID           int64 `json:"user_id"`
	EffortHypothetic int   `json:"effort_hypothetic"`
	EffortConsumed   int   `json:"effort_consumed"`
}

// AdjustMode selects how AdjustConsumed applies its delta.
type AdjustMode string

const (
	AdjustAdd      AdjustMode = "add"
	AdjustSubtract AdjustMode = "subtract"
	AdjustReplace  AdjustMode = "replace"
)

func (m AdjustMode) Valid() bool {
	switch m {
	case AdjustAdd, AdjustSubtract, AdjustReplace:
		return true
	}
	return false
}

// Repository is the store surface the ledger writes through. Every call
// owns its store interaction for its own lifetime; the ledger never holds
// state between calls.
type Repository interface {
	InsertEntry(ctx context.Context, entry *Entry) error
	GetEntry(ctx context.Context, userID, taskID int64, day time.Time) (*Entry, error)
	// DeleteEntry reports the number of rows removed; deleting a missing
	// entry is not an error so compensation stays idempotent.
	DeleteEntry(ctx context.Context, userID, taskID int64, day time.Time) (int64, error)
	GetAssignment(ctx context.Context, taskID, userID int64) (*Assignment, error)
	// AdjustConsumed applies the counter change as a single atomic UPDATE
	// statement and reports the rows affected.
	AdjustConsumed(ctx context.Context, taskID, userID int64, delta int, mode AdjustMode) (int64, error)
	// SumTruncatedEntryHours totals the whole-hour portion of each entry
	// row for one assignment. Records advance the counter per entry, so
	// the truncation is applied per row, never on the summed total.
	SumTruncatedEntryHours(ctx context.Context, taskID, userID int64) (int, error)
	IsNonWorkingTask(ctx context.Context, taskID int64) (bool, error)
}

// ErrPartialWrite marks a record operation that failed after the time
// entry insert succeeded, leaving the two ledger tables out of step. The
// caller is expected to invoke RemoveHours for the same key as the
// compensating action.
var ErrPartialWrite = errors.New("ledger write partially applied")

// IsPartialWrite reports whether err left a transient inconsistency that
// needs caller-driven compensation.
func IsPartialWrite(err error) bool {
	return errors.Is(err, ErrPartialWrite)
}
