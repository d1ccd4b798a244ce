package auth

import apperrors "github.com/mzavatta/effort-tracking/internal"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	if dto.Email == "" {
		return apperrors.NewValidationFieldError("email", "email is required", apperrors.ErrCodeValidationFailed)
	}
	if dto.Password == "" {
		return apperrors.NewValidationFieldError("password", "password is required", apperrors.ErrCodeValidationFailed)
	}
	return nil
}
