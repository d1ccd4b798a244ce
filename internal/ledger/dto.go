package ledger

import (
	"time"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/core/common/dates"
)

// RecordHoursDTO is the transport shape for logging hours against a task.
type RecordHoursDTO struct {
	TaskID int64   `json:"task_id"`
	Date   string  `json:"date"`
	Hours  float64 `json:"hours"`
}

func (dto RecordHoursDTO) Validate() error {
	if dto.TaskID <= 0 {
		return apperrors.NewValidationFieldError("task_id", "task_id is required", apperrors.ErrCodeValidationFailed)
	}
	if dto.Hours <= 0 {
		return apperrors.NewValidationFieldError("hours", "hours must be greater than 0", apperrors.ErrCodeInvalidHours)
	}
	if _, err := dates.Parse(dto.Date); err != nil {
		return apperrors.NewValidationFieldError("date", "date must be an ISO date (YYYY-MM-DD)", apperrors.ErrCodeInvalidDate)
	}
	return nil
}

func (dto RecordHoursDTO) Day() time.Time {
	day, _ := dates.Parse(dto.Date)
	return day
}

// AdjustConsumedDTO is the transport shape for direct counter adjustments.
type AdjustConsumedDTO struct {
	TaskID int64  `json:"task_id"`
	UserID int64  `json:"user_id"`
	Delta  int    `json:"delta"`
	Mode   string `json:"mode"`
}

func (dto AdjustConsumedDTO) Validate() error {
	if dto.TaskID <= 0 {
		return apperrors.NewValidationFieldError("task_id", "task_id is required", apperrors.ErrCodeValidationFailed)
	}
	if dto.UserID <= 0 {
		return apperrors.NewValidationFieldError("user_id", "user_id is required", apperrors.ErrCodeValidationFailed)
	}
	if !AdjustMode(dto.Mode).Valid() {
		return apperrors.NewValidationFieldError("mode", "mode must be add, subtract or replace", apperrors.ErrCodeValidationFailed)
	}
	if dto.Delta < 0 {
		return apperrors.NewValidationFieldError("delta", "delta must not be negative", apperrors.ErrCodeValidationFailed)
	}
	return nil
}

// RepairConsistencyDTO identifies the assignment whose counter gets
// rebuilt from its entry rows.
type RepairConsistencyDTO struct {
	TaskID int64 `json:"task_id"`
	UserID int64 `json:"user_id"`
}

func (dto RepairConsistencyDTO) Validate() error {
	if dto.TaskID <= 0 {
		return apperrors.NewValidationFieldError("task_id", "task_id is required", apperrors.ErrCodeValidationFailed)
	}
	if dto.UserID <= 0 {
		return apperrors.NewValidationFieldError("user_id", "user_id is required", apperrors.ErrCodeValidationFailed)
	}
	return nil
}
