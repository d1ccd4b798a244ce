package postgres

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/catalog"
	catalogDatamodel "github.com/mzavatta/effort-tracking/internal/core/datamodel/catalog"
	trackingDatamodel "github.com/mzavatta/effort-tracking/internal/core/datamodel/tracking"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.Repository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateProject(ctx context.Context, project *catalog.Project) error {
	row := catalogDatamodel.Project{
		Title:            project.Title,
		Description:      project.Description,
		SupervisorID:     project.SupervisorID,
		CreatedByAdminID: project.CreatedByAdminID,
		Archived:         project.Archived,
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	switch {
	case err == nil:
		project.ID = row.ID
		return nil
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.NewConstraintError("project references a missing user", apperrors.ErrCodeConstraintViolation).WithCause(err)
	default:
		return apperrors.NewUnavailableError("failed to create project", err)
	}
}

func (r *CatalogRepository) ProjectsByArchived(ctx context.Context, archived bool) ([]catalog.Project, error) {
	var rows []catalogDatamodel.Project
	err := r.db.WithContext(ctx).
		Where("archived = ?", archived).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to list projects", err)
	}

	projects := make([]catalog.Project, len(rows))
	for i, row := range rows {
		projects[i] = toProject(row)
	}
	return projects, nil
}

func (r *CatalogRepository) SetProjectArchived(ctx context.Context, projectID int64, archived bool) error {
	tx := r.db.WithContext(ctx).
		Model(&catalogDatamodel.Project{}).
		Where("id = ?", projectID).
		UpdateColumn("archived", archived)
	if tx.Error != nil {
		return apperrors.NewUnavailableError("failed to update project archive state", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}

func (r *CatalogRepository) GetProjectTitle(ctx context.Context, projectID int64) (string, error) {
	var row catalogDatamodel.Project
	err := r.db.WithContext(ctx).
		Select("id, title").
		First(&row, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrProjectNotFound
		}
		return "", apperrors.NewUnavailableError("failed to read project", err)
	}
	return row.Title, nil
}

func (r *CatalogRepository) AddProjectVisibility(ctx context.Context, projectID, userID int64) error {
	row := catalogDatamodel.ProjectVisibility{ProjectID: projectID, UserID: userID}

	err := r.db.WithContext(ctx).Create(&row).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// Re-granting visibility is a no-op.
		return nil
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.NewConstraintError("visibility references a missing project or user", apperrors.ErrCodeConstraintViolation).WithCause(err)
	default:
		return apperrors.NewUnavailableError("failed to grant project visibility", err)
	}
}

func (r *CatalogRepository) CreateWorkPackage(ctx context.Context, wp *catalog.WorkPackage) error {
	row := catalogDatamodel.WorkPackage{
		ProjectID:   wp.ProjectID,
		Title:       wp.Title,
		Description: wp.Description,
		StartDate:   wp.StartDate,
		EndDate:     wp.EndDate,
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	switch {
	case err == nil:
		wp.ID = row.ID
		return nil
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.NewConstraintError("work package references a missing project", apperrors.ErrCodeConstraintViolation).WithCause(err)
	default:
		return apperrors.NewUnavailableError("failed to create work package", err)
	}
}

func (r *CatalogRepository) GetWorkPackage(ctx context.Context, workPackageID int64) (*catalog.WorkPackage, error) {
	var row catalogDatamodel.WorkPackage
	err := r.db.WithContext(ctx).First(&row, workPackageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWorkPackageNotFound
		}
		return nil, apperrors.NewUnavailableError("failed to read work package", err)
	}

	wp := toWorkPackage(row)
	return &wp, nil
}

func (r *CatalogRepository) UpdateWorkPackageWindow(ctx context.Context, workPackageID int64, start, end time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&catalogDatamodel.WorkPackage{}).
		Where("id = ?", workPackageID).
		UpdateColumns(map[string]interface{}{
			"start_date": start,
			"end_date":   end,
		})
	if tx.Error != nil {
		return apperrors.NewUnavailableError("failed to update work package window", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.ErrWorkPackageNotFound
	}
	return nil
}

func (r *CatalogRepository) DeleteWorkPackage(ctx context.Context, workPackageID int64) error {
	tx := r.db.WithContext(ctx).Delete(&catalogDatamodel.WorkPackage{}, workPackageID)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrForeignKeyViolated) {
			return apperrors.NewConflictError("work package still has tasks", apperrors.ErrCodeConstraintViolation)
		}
		return apperrors.NewUnavailableError("failed to delete work package", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.ErrWorkPackageNotFound
	}
	return nil
}

func (r *CatalogRepository) WorkPackagesByProject(ctx context.Context, projectID int64) ([]catalog.WorkPackage, error) {
	var rows []catalogDatamodel.WorkPackage
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("start_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to list work packages", err)
	}

	wps := make([]catalog.WorkPackage, len(rows))
	for i, row := range rows {
		wps[i] = toWorkPackage(row)
	}
	return wps, nil
}

func (r *CatalogRepository) CreateTask(ctx context.Context, task *catalog.Task) error {
	row := catalogDatamodel.Task{
		WorkPackageID: task.WorkPackageID,
		Title:         task.Title,
		Description:   task.Description,
		EffortHours:   task.EffortHours,
		DurationHours: task.DurationHours,
		Deadline:      task.Deadline,
		PriorityID:    task.PriorityID,
		StatusID:      task.StatusID,
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	switch {
	case err == nil:
		task.ID = row.ID
		return nil
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.NewConstraintError("task references a missing work package, priority or status", apperrors.ErrCodeConstraintViolation).WithCause(err)
	default:
		return apperrors.NewUnavailableError("failed to create task", err)
	}
}

func (r *CatalogRepository) DeleteTask(ctx context.Context, taskID int64) error {
	tx := r.db.WithContext(ctx).Delete(&catalogDatamodel.Task{}, taskID)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrForeignKeyViolated) {
			return apperrors.NewConflictError("task still has assignments or time entries", apperrors.ErrCodeConstraintViolation)
		}
		return apperrors.NewUnavailableError("failed to delete task", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

func (r *CatalogRepository) TasksByWorkPackage(ctx context.Context, workPackageID int64) ([]catalog.Task, error) {
	var rows []catalogDatamodel.Task
	err := r.db.WithContext(ctx).
		Where("work_package_id = ?", workPackageID).
		Order("deadline, id").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to list tasks", err)
	}
	return toTasks(rows), nil
}

func (r *CatalogRepository) TasksByProject(ctx context.Context, projectID int64) ([]catalog.Task, error) {
	var rows []catalogDatamodel.Task
	err := r.db.WithContext(ctx).
		Joins("JOIN work_packages ON work_packages.id = tasks.work_package_id").
		Where("work_packages.project_id = ?", projectID).
		Order("tasks.deadline, tasks.id").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to list project tasks", err)
	}
	return toTasks(rows), nil
}

func (r *CatalogRepository) GetTaskTitle(ctx context.Context, taskID int64) (string, error) {
	var row catalogDatamodel.Task
	err := r.db.WithContext(ctx).
		Select("id, title").
		First(&row, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrTaskNotFound
		}
		return "", apperrors.NewUnavailableError("failed to read task", err)
	}
	return row.Title, nil
}

func (r *CatalogRepository) CreateAssignment(ctx context.Context, taskID, userID int64, effortHypothetic int) error {
	row := trackingDatamodel.TaskAssignment{
		TaskID:           taskID,
		UserID:           userID,
		EffortHypothetic: effortHypothetic,
		EffortConsumed:   0,
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.NewConflictError("user is already assigned to this task", apperrors.ErrCodeDuplicateAssignment)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.NewConstraintError("assignment references a missing task or user", apperrors.ErrCodeConstraintViolation).WithCause(err)
	default:
		return apperrors.NewUnavailableError("failed to create task assignment", err)
	}
}

type assignmentRow struct {
	UserID           int64
	Email            string
	EffortConsumed   int
	EffortHypothetic int
}

func (r *CatalogRepository) AssignmentsByTask(ctx context.Context, taskID int64) ([]catalog.AssignmentInfo, error) {
	var rows []assignmentRow
	err := r.db.WithContext(ctx).
		Table("task_assignments").
		Select("task_assignments.user_id, users.email, task_assignments.effort_consumed, task_assignments.effort_hypothetic").
		Joins("JOIN users ON users.id = task_assignments.user_id").
		Where("task_assignments.task_id = ?", taskID).
		Order("task_assignments.user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to list task assignments", err)
	}

	infos := make([]catalog.AssignmentInfo, len(rows))
	for i, row := range rows {
		infos[i] = catalog.AssignmentInfo{
			UserID:           row.UserID,
			Email:            row.Email,
			EffortConsumed:   row.EffortConsumed,
			EffortHypothetic: row.EffortHypothetic,
		}
	}
	return infos, nil
}

func toProject(row catalogDatamodel.Project) catalog.Project {
	return catalog.Project{
		ID:               row.ID,
		Title:            row.Title,
		Description:      row.Description,
		SupervisorID:     row.SupervisorID,
		CreatedByAdminID: row.CreatedByAdminID,
		Archived:         row.Archived,
	}
}

func toWorkPackage(row catalogDatamodel.WorkPackage) catalog.WorkPackage {
	return catalog.WorkPackage{
		ID:          row.ID,
		ProjectID:   row.ProjectID,
		Title:       row.Title,
		Description: row.Description,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
	}
}

func toTasks(rows []catalogDatamodel.Task) []catalog.Task {
	tasks := make([]catalog.Task, len(rows))
	for i, row := range rows {
		tasks[i] = catalog.Task{
			ID:            row.ID,
			WorkPackageID: row.WorkPackageID,
			Title:         row.Title,
			Description:   row.Description,
			EffortHours:   row.EffortHours,
			DurationHours: row.DurationHours,
			Deadline:      row.Deadline,
			PriorityID:    row.PriorityID,
			StatusID:      row.StatusID,
		}
	}
	return tasks
}
