package availability

import (
	"context"
	"fmt"
	"time"
)

// TaskRef identifies a task together with its owning project, enough to
// render the "{id} - {title}" labels at the boundary.
type TaskRef struct {
	TaskID       int64
	TaskTitle    string
	ProjectID    int64
	ProjectTitle string
}

func (t TaskRef) TaskLabel() string {
	return fmt.Sprintf("%d - %s", t.TaskID, t.TaskTitle)
}

func (t TaskRef) ProjectLabel() string {
	return fmt.Sprintf("%d - %s", t.ProjectID, t.ProjectTitle)
}

type Repository interface {
	// AssignedTasksWithoutEntry returns the user's assigned tasks on
	// visible, non-archived projects that have no time entry yet for the
	// given day.
	AssignedTasksWithoutEntry(ctx context.Context, userID int64, day time.Time) ([]TaskRef, error)
	// NonWorkingTasks returns the fixed catalogue of time-off tasks.
	NonWorkingTasks(ctx context.Context) ([]TaskRef, error)
}
