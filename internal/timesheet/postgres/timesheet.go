package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/timesheet"
)

// TimesheetRepository runs the range query over sqlx. The join recovers
// each entry's owning project so the service can build the nested
// aggregate from flat rows.
type TimesheetRepository struct {
	db      *sqlx.DB
	builder squirrel.StatementBuilderType
	logger  *slog.Logger
}

func NewTimesheetRepository(db *sqlx.DB, logger *slog.Logger) timesheet.Repository {
	return &TimesheetRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger:  logger.With("repository", "timesheet"),
	}
}

func (r *TimesheetRepository) EntriesInRange(ctx context.Context, userID int64, start, end time.Time) ([]timesheet.EntryRow, error) {
	query, args, err := r.builder.
		Select("te.entry_date", "wp.project_id", "te.task_id", "te.hours").
		From("time_entries te").
		Join("tasks t ON t.id = te.task_id").
		Join("work_packages wp ON wp.id = t.work_package_id").
		Where(squirrel.Eq{"te.user_id": userID}).
		Where(squirrel.GtOrEq{"te.entry_date": start}).
		Where(squirrel.LtOrEq{"te.entry_date": end}).
		OrderBy("te.entry_date", "wp.project_id", "te.task_id").
		ToSql()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build range query", err)
	}

	r.logger.Debug("range query", "sql", query, "args", args)

	rows := make([]timesheet.EntryRow, 0)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewUnavailableError("failed to query time entries", err)
	}

	return rows, nil
}
