package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeUnavailable  ErrorType = "STORE_UNAVAILABLE"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidHours     ErrorCode = "INVALID_HOURS"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidDateRange ErrorCode = "INVALID_DATE_RANGE"

	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	ErrCodeProjectNotFound     ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeWorkPackageNotFound ErrorCode = "WORK_PACKAGE_NOT_FOUND"
	ErrCodeTaskNotFound        ErrorCode = "TASK_NOT_FOUND"
	ErrCodeAssignmentNotFound  ErrorCode = "ASSIGNMENT_NOT_FOUND"
	ErrCodeEntryNotFound       ErrorCode = "TIME_ENTRY_NOT_FOUND"
	ErrCodeRoleNotFound        ErrorCode = "ROLE_NOT_FOUND"

	ErrCodeDuplicateEntry      ErrorCode = "DUPLICATE_TIME_ENTRY"
	ErrCodeDuplicateAssignment ErrorCode = "DUPLICATE_ASSIGNMENT"
	ErrCodeDuplicateUser       ErrorCode = "DUPLICATE_USER"

	ErrCodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"
	ErrCodeDeadlineOutOfRange  ErrorCode = "DEADLINE_OUT_OF_RANGE"
	ErrCodeConsistencyDrift    ErrorCode = "CONSISTENCY_DRIFT"
	ErrCodeStoreUnavailable    ErrorCode = "STORE_UNAVAILABLE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	msg := e.Message
	if v, ok := e.Details.(ValidationErrors); ok && len(v.Errors) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, v.Messages())
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Messages() string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewConstraintError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Code:       ErrCodeStoreUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrUserNotFound        = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrProjectNotFound     = NewNotFoundError("project not found", ErrCodeProjectNotFound)
	ErrWorkPackageNotFound = NewNotFoundError("work package not found", ErrCodeWorkPackageNotFound)
	ErrTaskNotFound        = NewNotFoundError("task not found", ErrCodeTaskNotFound)
	ErrAssignmentNotFound  = NewNotFoundError("task assignment not found", ErrCodeAssignmentNotFound)
	ErrEntryNotFound       = NewNotFoundError("time entry not found", ErrCodeEntryNotFound)
	ErrRoleNotFound        = NewNotFoundError("role not found", ErrCodeRoleNotFound)

	ErrDuplicateEntry = NewConflictError("a time entry already exists for this task and day", ErrCodeDuplicateEntry)

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
