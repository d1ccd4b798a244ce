package catalog

import (
	"time"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/core/common/dates"
)

type CreateProjectDTO struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	SupervisorID int64  `json:"supervisor_id"`
}

func (d CreateProjectDTO) Validate() error {
	if d.Title == "" {
		return apperrors.NewValidationFieldError("title", "title is required", apperrors.ErrCodeValidationFailed)
	}
	if d.SupervisorID <= 0 {
		return apperrors.NewValidationFieldError("supervisor_id", "supervisor_id is required", apperrors.ErrCodeValidationFailed)
	}
	return nil
}

type CreateWorkPackageDTO struct {
	ProjectID   int64  `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (d CreateWorkPackageDTO) Validate() error {
	if d.ProjectID <= 0 {
		return apperrors.NewValidationFieldError("project_id", "project_id is required", apperrors.ErrCodeValidationFailed)
	}
	if d.Title == "" {
		return apperrors.NewValidationFieldError("title", "title is required", apperrors.ErrCodeValidationFailed)
	}
	start, end, err := d.Window()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return apperrors.NewValidationFieldError("end_date", "end_date must not precede start_date", apperrors.ErrCodeInvalidDateRange)
	}
	return nil
}

func (d CreateWorkPackageDTO) Window() (time.Time, time.Time, error) {
	start, err := dates.Parse(d.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationFieldError("start_date", "start_date must be an ISO date (YYYY-MM-DD)", apperrors.ErrCodeInvalidDate)
	}
	end, err := dates.Parse(d.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationFieldError("end_date", "end_date must be an ISO date (YYYY-MM-DD)", apperrors.ErrCodeInvalidDate)
	}
	return start, end, nil
}

type UpdateWorkPackageWindowDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (d UpdateWorkPackageWindowDTO) Window() (time.Time, time.Time, error) {
	wp := CreateWorkPackageDTO{StartDate: d.StartDate, EndDate: d.EndDate}
	start, end, err := wp.Window()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperrors.NewValidationFieldError("end_date", "end_date must not precede start_date", apperrors.ErrCodeInvalidDateRange)
	}
	return start, end, nil
}

type CreateTaskDTO struct {
	WorkPackageID int64  `json:"work_package_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	EffortHours   int    `json:"effort_hours"`
	DurationHours int    `json:"duration_hours"`
	Deadline      string `json:"deadline"`
	PriorityID    int64  `json:"priority_id"`
	StatusID      int64  `json:"status_id"`
}

func (d CreateTaskDTO) Validate() error {
	if d.WorkPackageID <= 0 {
		return apperrors.NewValidationFieldError("work_package_id", "work_package_id is required", apperrors.ErrCodeValidationFailed)
	}
	if d.Title == "" {
		return apperrors.NewValidationFieldError("title", "title is required", apperrors.ErrCodeValidationFailed)
	}
	if d.EffortHours < 0 || d.DurationHours < 0 {
		return apperrors.NewValidationFieldError("effort_hours", "effort_hours and duration_hours must not be negative", apperrors.ErrCodeValidationFailed)
	}
	if _, err := d.DeadlineDay(); err != nil {
		return err
	}
	return nil
}

func (d CreateTaskDTO) DeadlineDay() (time.Time, error) {
	deadline, err := dates.Parse(d.Deadline)
	if err != nil {
		return time.Time{}, apperrors.NewValidationFieldError("deadline", "deadline must be an ISO date (YYYY-MM-DD)", apperrors.ErrCodeInvalidDate)
	}
	return deadline, nil
}

type AssignTaskDTO struct {
	UserID           int64 `json:"user_id"`
	EffortHypothetic int   `json:"effort_hypothetic"`
}

func (d AssignTaskDTO) Validate() error {
	if d.UserID <= 0 {
		return apperrors.NewValidationFieldError("user_id", "user_id is required", apperrors.ErrCodeValidationFailed)
	}
	if d.EffortHypothetic < 0 {
		return apperrors.NewValidationFieldError("effort_hypothetic", "effort_hypothetic must not be negative", apperrors.ErrCodeValidationFailed)
	}
	return nil
}
