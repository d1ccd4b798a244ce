package user

import (
	"net/mail"

	apperrors "github.com/mzavatta/effort-tracking/internal"
)

type CreateUserDTO struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	Role               string `json:"role"`
	WorkingHoursWeekly int    `json:"working_hours_weekly"`
}

func (d CreateUserDTO) Validate() error {
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return apperrors.NewValidationFieldError("email", "email must be a valid address", apperrors.ErrCodeValidationFailed)
	}
	if len(d.Password) < 8 {
		return apperrors.NewValidationFieldError("password", "password must be at least 8 characters", apperrors.ErrCodeValidationFailed)
	}
	if d.Role == "" {
		return apperrors.NewValidationFieldError("role", "role is required", apperrors.ErrCodeValidationFailed)
	}
	if d.WorkingHoursWeekly < 0 {
		return apperrors.NewValidationFieldError("working_hours_weekly", "working_hours_weekly must not be negative", apperrors.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateRoleDTO struct {
	Role string `json:"role"`
}

func (d UpdateRoleDTO) Validate() error {
	if d.Role == "" {
		return apperrors.NewValidationFieldError("role", "role is required", apperrors.ErrCodeValidationFailed)
	}
	return nil
}
