package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/core/common/dates"
	"github.com/mzavatta/effort-tracking/internal/core/events"
)

// Publisher is the slice of the event bus the ledger needs.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service owns the dual-write bookkeeping across time_entries and
// task_assignments. The two writes of RecordHours are independent
// statements, not a transaction: a failure after the entry insert is
// reported through ErrPartialWrite and the caller compensates by invoking
// RemoveHours for the same key.
type Service struct {
	repo   Repository
	bus    Publisher
	logger *slog.Logger
}

func NewService(repo Repository, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// RecordHours inserts a time entry and increments the assignment counter
// by the truncated hour count. A second entry for the same user/task/day
// is rejected with DuplicateEntry; the correction path is remove-then-record.
// Non-working catalogue tasks have no assignment row and skip the counter.
func (s *Service) RecordHours(ctx context.Context, userID, taskID int64, day time.Time, hours float64) (*Entry, error) {
	if hours <= 0 {
		return nil, apperrors.NewValidationError("hours must be greater than 0", apperrors.ErrCodeInvalidHours)
	}
	day = dates.DayOf(day)

	nonWorking, err := s.repo.IsNonWorkingTask(ctx, taskID)
	if err != nil {
		s.logger.Error("failed to classify task", "error", err, "task_id", taskID)
		return nil, err
	}

	if !nonWorking {
		if _, err := s.repo.GetAssignment(ctx, taskID, userID); err != nil {
			if appErr, ok := apperrors.IsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
				return nil, apperrors.NewConstraintError(
					fmt.Sprintf("user %d is not assigned to task %d", userID, taskID),
					apperrors.ErrCodeConstraintViolation)
			}
			return nil, err
		}
	}

	entry := &Entry{UserID: userID, TaskID: taskID, Day: day, Hours: hours}
	if err := s.repo.InsertEntry(ctx, entry); err != nil {
		s.logger.Error("failed to insert time entry",
			"error", err, "user_id", userID, "task_id", taskID, "entry_date", dates.Format(day))
		return nil, err
	}

	if !nonWorking {
		// The counter column is an integer; fractional hours are truncated
		// here and nowhere else.
		if _, err := s.AdjustConsumed(ctx, taskID, userID, int(hours), AdjustAdd); err != nil {
			s.logger.Error("counter update failed after entry insert",
				"error", err, "user_id", userID, "task_id", taskID, "entry_date", dates.Format(day))
			return nil, errors.Join(ErrPartialWrite, err)
		}
	}

	s.logger.Info("hours recorded",
		"user_id", userID, "task_id", taskID, "entry_date", dates.Format(day), "hours", hours)
	s.bus.Publish(ctx, events.NewEntryRecordedEvent(userID, taskID, day, hours))

	return entry, nil
}

// RemoveHours reverses a recorded entry: it re-reads the stored hours,
// decrements the counter by the portion the counter actually absorbed,
// then deletes the row. After a partial record the counter is short of the
// entry sum; that shortfall is excluded from the decrement so compensation
// lands the counter back on its pre-record value. The counter write goes
// first; if it fails the deletion is not attempted, so a stale counter is
// preferred over a silently lost decrement. Removing a missing entry is a
// no-op, which makes the compensation idempotent.
func (s *Service) RemoveHours(ctx context.Context, userID, taskID int64, day time.Time) (bool, error) {
	day = dates.DayOf(day)

	entry, err := s.repo.GetEntry(ctx, userID, taskID, day)
	if err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			s.logger.Debug("remove skipped, entry already absent",
				"user_id", userID, "task_id", taskID, "entry_date", dates.Format(day))
			return false, nil
		}
		return false, err
	}

	nonWorking, err := s.repo.IsNonWorkingTask(ctx, taskID)
	if err != nil {
		return false, err
	}

	if !nonWorking {
		delta, err := s.reversalDelta(ctx, taskID, userID, entry)
		if err != nil {
			return false, err
		}
		if delta > 0 {
			if _, err := s.AdjustConsumed(ctx, taskID, userID, delta, AdjustSubtract); err != nil {
				s.logger.Error("counter decrement failed, keeping entry",
					"error", err, "user_id", userID, "task_id", taskID, "entry_date", dates.Format(day))
				return false, err
			}
		}
	}

	if _, err := s.repo.DeleteEntry(ctx, userID, taskID, day); err != nil {
		return false, err
	}

	s.logger.Info("hours removed",
		"user_id", userID, "task_id", taskID, "entry_date", dates.Format(day), "hours", entry.Hours)
	s.bus.Publish(ctx, events.NewEntryRemovedEvent(userID, taskID, day, entry.Hours))

	return true, nil
}

// reversalDelta computes how much of the entry's truncated hours the
// counter has absorbed. The expected counter is the per-entry truncated
// sum, the same basis RecordHours advances by; when the counter lags it
// the shortfall never reached the counter, so only the remainder gets
// reversed.
func (s *Service) reversalDelta(ctx context.Context, taskID, userID int64, entry *Entry) (int, error) {
	assignment, err := s.repo.GetAssignment(ctx, taskID, userID)
	if err != nil {
		return 0, err
	}

	total, err := s.repo.SumTruncatedEntryHours(ctx, taskID, userID)
	if err != nil {
		return 0, err
	}

	delta := int(entry.Hours)
	if shortfall := total - assignment.EffortConsumed; shortfall > 0 {
		delta -= shortfall
	}
	if delta < 0 {
		delta = 0
	}
	return delta, nil
}

// AdjustConsumed is the single choke point through which every counter
// change flows. The store applies the delta as one atomic UPDATE, so
// concurrent adjustments on the same assignment cannot lose updates.
func (s *Service) AdjustConsumed(ctx context.Context, taskID, userID int64, delta int, mode AdjustMode) (bool, error) {
	if !mode.Valid() {
		return false, apperrors.NewValidationError("mode must be add, subtract or replace", apperrors.ErrCodeValidationFailed)
	}
	if delta < 0 {
		return false, apperrors.NewValidationError("delta must not be negative", apperrors.ErrCodeValidationFailed)
	}

	rows, err := s.repo.AdjustConsumed(ctx, taskID, userID, delta, mode)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, apperrors.ErrAssignmentNotFound
	}

	s.bus.Publish(ctx, events.NewCounterAdjustedEvent(userID, taskID, delta, string(mode)))

	return true, nil
}

// CheckConsistency compares the cached counter against the truncated sum
// of entry hours for an assignment and reports ConsistencyDrift on
// mismatch. Detection only; repair goes through RepairConsistency.
func (s *Service) CheckConsistency(ctx context.Context, taskID, userID int64) error {
	assignment, err := s.repo.GetAssignment(ctx, taskID, userID)
	if err != nil {
		return err
	}

	total, err := s.repo.SumTruncatedEntryHours(ctx, taskID, userID)
	if err != nil {
		return err
	}

	if assignment.EffortConsumed != total {
		return apperrors.NewConflictError(
			fmt.Sprintf("effort_consumed=%d but entries sum to %d for task %d user %d",
				assignment.EffortConsumed, total, taskID, userID),
			apperrors.ErrCodeConsistencyDrift)
	}

	return nil
}

// RepairConsistency rewrites the counter from the authoritative entry rows.
func (s *Service) RepairConsistency(ctx context.Context, taskID, userID int64) error {
	total, err := s.repo.SumTruncatedEntryHours(ctx, taskID, userID)
	if err != nil {
		return err
	}

	_, err = s.AdjustConsumed(ctx, taskID, userID, total, AdjustReplace)
	return err
}
