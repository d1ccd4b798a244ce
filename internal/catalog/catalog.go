package catalog

import (
	"context"
	"time"
)

type Project struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	SupervisorID     int64  `json:"supervisor_id"`
	CreatedByAdminID int64  `json:"created_by_admin_id"`
	Archived         bool   `json:"archived"`
}

type WorkPackage struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

type Task struct {
	ID            int64     `json:"id"`
	WorkPackageID int64     `json:"work_package_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	EffortHours   int       `json:"effort_hours"`
	DurationHours int       `json:"duration_hours"`
	Deadline      time.Time `json:"deadline"`
	PriorityID    int64     `json:"priority_id"`
	StatusID      int64     `json:"status_id"`
}

// AssignmentInfo is the planning view of one task assignment. Consumed and
// hypothetic effort travel as separate fields; any "consumed - hypothetic"
// string belongs to the rendering layer.
type AssignmentInfo struct {
	UserID           int64  `json:"user_id"`
	Email            string `json:"email"`
	EffortConsumed   int    `json:"effort_consumed"`
	EffortHypothetic int    `json:"effort_hypothetic"`
}

type Repository interface {
	CreateProject(ctx context.Context, project *Project) error
	ProjectsByArchived(ctx context.Context, archived bool) ([]Project, error)
	SetProjectArchived(ctx context.Context, projectID int64, archived bool) error
	GetProjectTitle(ctx context.Context, projectID int64) (string, error)
	AddProjectVisibility(ctx context.Context, projectID, userID int64) error

	CreateWorkPackage(ctx context.Context, wp *WorkPackage) error
	GetWorkPackage(ctx context.Context, workPackageID int64) (*WorkPackage, error)
	UpdateWorkPackageWindow(ctx context.Context, workPackageID int64, start, end time.Time) error
	DeleteWorkPackage(ctx context.Context, workPackageID int64) error
	WorkPackagesByProject(ctx context.Context, projectID int64) ([]WorkPackage, error)

	CreateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, taskID int64) error
	TasksByWorkPackage(ctx context.Context, workPackageID int64) ([]Task, error)
	TasksByProject(ctx context.Context, projectID int64) ([]Task, error)
	GetTaskTitle(ctx context.Context, taskID int64) (string, error)

	CreateAssignment(ctx context.Context, taskID, userID int64, effortHypothetic int) error
	AssignmentsByTask(ctx context.Context, taskID int64) ([]AssignmentInfo, error)
}
