package availability

import (
	"context"
	"log/slog"
	"time"

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

// AvailableTasks returns task label -> project label for every task the
// user may log against on the given day: assigned tasks not yet logged
// that day, unioned with the non-working catalogue. The catalogue is
// merged last, so on a label collision the catalogue entry wins.
func (s *Service) AvailableTasks(ctx context.Context, userID int64, day time.Time) (map[string]string, error) {
	day = dates.DayOf(day)

	assigned, err := s.repo.AssignedTasksWithoutEntry(ctx, userID, day)
	if err != nil {
		s.logger.Error("failed to resolve assigned tasks",
			"error", err, "user_id", userID, "day", dates.Format(day))
		return nil, err
	}

	catalogue, err := s.repo.NonWorkingTasks(ctx)
	if err != nil {
		s.logger.Error("failed to resolve non-working catalogue", "error", err)
		return nil, err
	}

	available := make(map[string]string, len(assigned)+len(catalogue))
	for _, ref := range assigned {
		available[ref.TaskLabel()] = ref.ProjectLabel()
	}
	for _, ref := range catalogue {
		available[ref.TaskLabel()] = ref.ProjectLabel()
	}

	return available, nil
}
