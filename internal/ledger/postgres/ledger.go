package postgres

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	catalogDatamodel "github.com/mzavatta/effort-tracking/internal/core/datamodel/catalog"
	trackingDatamodel "github.com/mzavatta/effort-tracking/internal/core/datamodel/tracking"
	"github.com/mzavatta/effort-tracking/internal/ledger"
	"gorm.io/gorm"
)

// LedgerRepository implements ledger.Repository using GORM. Driver errors
// are translated to the application taxonomy at this boundary; nothing
// above it sees gorm error values.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) ledger.Repository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) InsertEntry(ctx context.Context, entry *ledger.Entry) error {
	row := trackingDatamodel.TimeEntry{
		UserID:    entry.UserID,
		TaskID:    entry.TaskID,
		EntryDate: entry.Day,
		Hours:     entry.Hours,
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrDuplicateEntry
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.NewConstraintError("time entry references a missing user or task", apperrors.ErrCodeConstraintViolation).WithCause(err)
	default:
		return apperrors.NewUnavailableError("failed to insert time entry", err)
	}
}

func (r *LedgerRepository) GetEntry(ctx context.Context, userID, taskID int64, day time.Time) (*ledger.Entry, error) {
	var row trackingDatamodel.TimeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ? AND entry_date = ?", userID, taskID, day).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, apperrors.NewUnavailableError("failed to read time entry", err)
	}

	return &ledger.Entry{
		UserID: row.UserID,
		TaskID: row.TaskID,
		Day:    row.EntryDate,
		Hours:  row.Hours,
	}, nil
}

func (r *LedgerRepository) DeleteEntry(ctx context.Context, userID, taskID int64, day time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ? AND entry_date = ?", userID, taskID, day).
		Delete(&trackingDatamodel.TimeEntry{})
	if tx.Error != nil {
		return 0, apperrors.NewUnavailableError("failed to delete time entry", tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *LedgerRepository) GetAssignment(ctx context.Context, taskID, userID int64) (*ledger.Assignment, error) {
	var row trackingDatamodel.TaskAssignment
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		return nil, apperrors.NewUnavailableError("failed to read task assignment", err)
	}

	return &ledger.Assignment{
		TaskID:           row.TaskID,
		UserID:           row.UserID,
		EffortHypothetic: row.EffortHypothetic,
		EffortConsumed:   row.EffortConsumed,
	}, nil
}

// AdjustConsumed runs the counter mutation as one UPDATE with the
// arithmetic in SQL, so concurrent adjustments serialize on the row
// instead of racing through read-modify-write cycles.
func (r *LedgerRepository) AdjustConsumed(ctx context.Context, taskID, userID int64, delta int, mode ledger.AdjustMode) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&trackingDatamodel.TaskAssignment{}).
		Where("task_id = ? AND user_id = ?", taskID, userID)

	switch mode {
	case ledger.AdjustAdd:
		tx = tx.UpdateColumn("effort_consumed", gorm.Expr("effort_consumed + ?", delta))
	case ledger.AdjustSubtract:
		tx = tx.UpdateColumn("effort_consumed", gorm.Expr("effort_consumed - ?", delta))
	case ledger.AdjustReplace:
		tx = tx.UpdateColumn("effort_consumed", delta)
	default:
		return 0, apperrors.NewValidationError("unknown adjust mode", apperrors.ErrCodeValidationFailed)
	}

	if tx.Error != nil {
		return 0, apperrors.NewUnavailableError("failed to adjust effort counter", tx.Error)
	}
	return tx.RowsAffected, nil
}

// SumTruncatedEntryHours truncates per row in Go rather than in SQL so the
// arithmetic is identical on every driver the repository runs against.
func (r *LedgerRepository) SumTruncatedEntryHours(ctx context.Context, taskID, userID int64) (int, error) {
	var hours []float64
	err := r.db.WithContext(ctx).
		Model(&trackingDatamodel.TimeEntry{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Pluck("hours", &hours).Error
	if err != nil {
		return 0, apperrors.NewUnavailableError("failed to sum entry hours", err)
	}

	total := 0
	for _, h := range hours {
		total += int(h)
	}
	return total, nil
}

func (r *LedgerRepository) IsNonWorkingTask(ctx context.Context, taskID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("tasks").
		Joins("JOIN work_packages ON work_packages.id = tasks.work_package_id").
		Joins("JOIN projects ON projects.id = work_packages.project_id").
		Where("tasks.id = ? AND projects.title = ?", taskID, catalogDatamodel.NonWorkingProjectTitle).
		Count(&count).Error
	if err != nil {
		return false, apperrors.NewUnavailableError("failed to classify task", err)
	}
	return count > 0, nil
}
