package catalog

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/core/common/dates"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateProject records a new project owned by the given supervisor. The
// creating administrator is kept on the row for audit.
func (s *Service) CreateProject(ctx context.Context, adminID int64, dto CreateProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	project := &Project{
		Title:            dto.Title,
		Description:      dto.Description,
		SupervisorID:     dto.SupervisorID,
		CreatedByAdminID: adminID,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		s.logger.Error("failed to create project", "error", err, "title", dto.Title)
		return nil, err
	}

	// The supervisor sees the project from day one.
	if err := s.repo.AddProjectVisibility(ctx, project.ID, dto.SupervisorID); err != nil {
		s.logger.Error("failed to grant supervisor visibility",
			"error", err, "project_id", project.ID, "user_id", dto.SupervisorID)
		return nil, err
	}

	s.logger.Info("project created", "project_id", project.ID, "supervisor_id", dto.SupervisorID)
	return project, nil
}

func (s *Service) ActiveProjects(ctx context.Context) ([]Project, error) {
	return s.repo.ProjectsByArchived(ctx, false)
}

func (s *Service) ArchivedProjects(ctx context.Context) ([]Project, error) {
	return s.repo.ProjectsByArchived(ctx, true)
}

// SetArchived flips a project in or out of the archive. Archived projects
// drop out of availability but keep their logged history.
func (s *Service) SetArchived(ctx context.Context, projectID int64, archived bool) error {
	if err := s.repo.SetProjectArchived(ctx, projectID, archived); err != nil {
		return err
	}
	s.logger.Info("project archive state changed", "project_id", projectID, "archived", archived)
	return nil
}

// AddResearcherToProject makes the project visible to the researcher so its
// tasks can appear in their availability.
func (s *Service) AddResearcherToProject(ctx context.Context, projectID, userID int64) error {
	if _, err := s.repo.GetProjectTitle(ctx, projectID); err != nil {
		return err
	}
	return s.repo.AddProjectVisibility(ctx, projectID, userID)
}

func (s *Service) CreateWorkPackage(ctx context.Context, dto CreateWorkPackageDTO) (*WorkPackage, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	start, end, err := dto.Window()
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetProjectTitle(ctx, dto.ProjectID); err != nil {
		return nil, err
	}

	wp := &WorkPackage{
		ProjectID:   dto.ProjectID,
		Title:       dto.Title,
		Description: dto.Description,
		StartDate:   start,
		EndDate:     end,
	}
	if err := s.repo.CreateWorkPackage(ctx, wp); err != nil {
		s.logger.Error("failed to create work package", "error", err, "project_id", dto.ProjectID)
		return nil, err
	}

	s.logger.Info("work package created", "work_package_id", wp.ID, "project_id", wp.ProjectID)
	return wp, nil
}

// UpdateWorkPackageWindow moves the work package's date window. Existing
// task deadlines are not revalidated; the new window governs tasks created
// from now on.
func (s *Service) UpdateWorkPackageWindow(ctx context.Context, workPackageID int64, dto UpdateWorkPackageWindowDTO) error {
	start, end, err := dto.Window()
	if err != nil {
		return err
	}

	if _, err := s.repo.GetWorkPackage(ctx, workPackageID); err != nil {
		return err
	}
	return s.repo.UpdateWorkPackageWindow(ctx, workPackageID, start, end)
}

func (s *Service) DeleteWorkPackage(ctx context.Context, workPackageID int64) error {
	if err := s.repo.DeleteWorkPackage(ctx, workPackageID); err != nil {
		return err
	}
	s.logger.Info("work package deleted", "work_package_id", workPackageID)
	return nil
}

func (s *Service) WorkPackagesByProject(ctx context.Context, projectID int64) ([]WorkPackage, error) {
	return s.repo.WorkPackagesByProject(ctx, projectID)
}

// CreateTask adds a task to a work package. The deadline must fall inside
// the work package's date window, bounds included.
func (s *Service) CreateTask(ctx context.Context, dto CreateTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	deadline, err := dto.DeadlineDay()
	if err != nil {
		return nil, err
	}

	wp, err := s.repo.GetWorkPackage(ctx, dto.WorkPackageID)
	if err != nil {
		return nil, err
	}

	if deadline.Before(dates.DayOf(wp.StartDate)) || deadline.After(dates.DayOf(wp.EndDate)) {
		return nil, apperrors.NewConstraintError(
			fmt.Sprintf("deadline %s is outside the work package window %s to %s",
				dates.Format(deadline), dates.Format(wp.StartDate), dates.Format(wp.EndDate)),
			apperrors.ErrCodeDeadlineOutOfRange,
		)
	}

	task := &Task{
		WorkPackageID: dto.WorkPackageID,
		Title:         dto.Title,
		Description:   dto.Description,
		EffortHours:   dto.EffortHours,
		DurationHours: dto.DurationHours,
		Deadline:      deadline,
		PriorityID:    dto.PriorityID,
		StatusID:      dto.StatusID,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		s.logger.Error("failed to create task", "error", err, "work_package_id", dto.WorkPackageID)
		return nil, err
	}

	s.logger.Info("task created", "task_id", task.ID, "work_package_id", task.WorkPackageID)
	return task, nil
}

func (s *Service) DeleteTask(ctx context.Context, taskID int64) error {
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	s.logger.Info("task deleted", "task_id", taskID)
	return nil
}

func (s *Service) TasksByWorkPackage(ctx context.Context, workPackageID int64) ([]Task, error) {
	return s.repo.TasksByWorkPackage(ctx, workPackageID)
}

func (s *Service) TasksByProject(ctx context.Context, projectID int64) ([]Task, error) {
	return s.repo.TasksByProject(ctx, projectID)
}

// AssignTask binds a researcher to a task with a planned effort budget.
// Consumed effort always starts at zero; only logged hours move it.
func (s *Service) AssignTask(ctx context.Context, taskID int64, dto AssignTaskDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.repo.GetTaskTitle(ctx, taskID); err != nil {
		return err
	}

	if err := s.repo.CreateAssignment(ctx, taskID, dto.UserID, dto.EffortHypothetic); err != nil {
		s.logger.Error("failed to assign task", "error", err, "task_id", taskID, "user_id", dto.UserID)
		return err
	}

	s.logger.Info("task assigned", "task_id", taskID, "user_id", dto.UserID)
	return nil
}

func (s *Service) TaskAssignments(ctx context.Context, taskID int64) ([]AssignmentInfo, error) {
	if _, err := s.repo.GetTaskTitle(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.AssignmentsByTask(ctx, taskID)
}

// GetProjectTitle and GetTaskTitle serve label rendering for the daily
// timesheet view.
func (s *Service) GetProjectTitle(ctx context.Context, projectID int64) (string, error) {
	return s.repo.GetProjectTitle(ctx, projectID)
}

func (s *Service) GetTaskTitle(ctx context.Context, taskID int64) (string, error) {
	return s.repo.GetTaskTitle(ctx, taskID)
}
