package timesheet

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/core/common/dates"
)

// Service is the read side of the ledger: it reshapes flat entry rows into
// the nested day/project/task aggregate the tracking views render.
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

// AggregateRange folds the user's entries over [start, end] inclusive into
// day -> project -> task -> hours. A single-day call is just a one-day
// window of the same fold.
func (s *Service) AggregateRange(ctx context.Context, userID int64, start, end time.Time) (RangeTotals, error) {
	start, end = dates.DayOf(start), dates.DayOf(end)
	if end.Before(start) {
		return nil, apperrors.NewValidationError("end date precedes start date", apperrors.ErrCodeInvalidDateRange)
	}

	rows, err := s.repo.EntriesInRange(ctx, userID, start, end)
	if err != nil {
		s.logger.Error("failed to query entry range",
			"error", err, "user_id", userID,
			"start", dates.Format(start), "end", dates.Format(end))
		return nil, err
	}

	totals := make(RangeTotals)
	for _, row := range rows {
		day := dates.DayOf(row.EntryDate)
		projects, ok := totals[day]
		if !ok {
			projects = make(map[int64]map[int64]float64)
			totals[day] = projects
		}
		tasks, ok := projects[row.ProjectID]
		if !ok {
			tasks = make(map[int64]float64)
			projects[row.ProjectID] = tasks
		}
		tasks[row.TaskID] += row.Hours
	}

	return totals, nil
}

// WeeklyView aggregates the Monday..Sunday week containing anchor and
// renders one total per day, zero-filled for days without entries.
func (s *Service) WeeklyView(ctx context.Context, userID int64, anchor time.Time) (*WeeklyView, error) {
	monday := dates.WeekStart(anchor)
	sunday := dates.WeekEnd(anchor)

	totals, err := s.AggregateRange(ctx, userID, monday, sunday)
	if err != nil {
		return nil, err
	}

	view := &WeeklyView{
		WeekStart: monday,
		Days:      make([]DayTotal, 0, 7),
	}
	for _, day := range dates.Between(monday, sunday) {
		hours := totals.DayTotal(day)
		view.Days = append(view.Days, DayTotal{Date: day, Hours: hours})
		view.Total += hours
	}

	return view, nil
}

// DayAggregate returns the single-day slice of the range aggregate.
func (s *Service) DayAggregate(ctx context.Context, userID int64, day time.Time) (map[int64]map[int64]float64, error) {
	day = dates.DayOf(day)
	totals, err := s.AggregateRange(ctx, userID, day, day)
	if err != nil {
		return nil, err
	}
	return totals[day], nil
}
