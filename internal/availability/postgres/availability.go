package postgres

import (
	"context"
	"time"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/availability"
	catalogDatamodel "github.com/mzavatta/effort-tracking/internal/core/datamodel/catalog"
	"gorm.io/gorm"
)

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) availability.Repository {
	return &AvailabilityRepository{db: db}
}

type taskRefRow struct {
	TaskID       int64
	TaskTitle    string
	ProjectID    int64
	ProjectTitle string
}

func (r *AvailabilityRepository) AssignedTasksWithoutEntry(ctx context.Context, userID int64, day time.Time) ([]availability.TaskRef, error) {
	var rows []taskRefRow
	err := r.db.WithContext(ctx).
		Table("tasks").
		Select("tasks.id AS task_id, tasks.title AS task_title, projects.id AS project_id, projects.title AS project_title").
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Joins("JOIN work_packages ON work_packages.id = tasks.work_package_id").
		Joins("JOIN projects ON projects.id = work_packages.project_id").
		Joins("JOIN project_visibility ON project_visibility.project_id = projects.id AND project_visibility.user_id = ?", userID).
		Where("task_assignments.user_id = ?", userID).
		Where("projects.archived = ?", false).
		Where("projects.title <> ?", catalogDatamodel.NonWorkingProjectTitle).
		Where("NOT EXISTS (SELECT 1 FROM time_entries WHERE time_entries.user_id = ? AND time_entries.task_id = tasks.id AND time_entries.entry_date = ?)", userID, day).
		Order("tasks.id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to query assigned tasks", err)
	}

	return toTaskRefs(rows), nil
}

func (r *AvailabilityRepository) NonWorkingTasks(ctx context.Context) ([]availability.TaskRef, error) {
	var rows []taskRefRow
	err := r.db.WithContext(ctx).
		Table("tasks").
		Select("tasks.id AS task_id, tasks.title AS task_title, projects.id AS project_id, projects.title AS project_title").
		Joins("JOIN work_packages ON work_packages.id = tasks.work_package_id").
		Joins("JOIN projects ON projects.id = work_packages.project_id").
		Where("projects.title = ?", catalogDatamodel.NonWorkingProjectTitle).
		Order("tasks.id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to query non-working catalogue", err)
	}

	return toTaskRefs(rows), nil
}

func toTaskRefs(rows []taskRefRow) []availability.TaskRef {
	refs := make([]availability.TaskRef, len(rows))
	for i, row := range rows {
		refs[i] = availability.TaskRef{
			TaskID:       row.TaskID,
			TaskTitle:    row.TaskTitle,
			ProjectID:    row.ProjectID,
			ProjectTitle: row.ProjectTitle,
		}
	}
	return refs
}
