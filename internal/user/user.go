package user

import "context"

type User struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	WorkingHoursWeekly int    `json:"working_hours_weekly"`
}

type Repository interface {
	CreateUser(ctx context.Context, email, passwordHash string, roleID int64, workingHoursWeekly int) (int64, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetRoleIDByName(ctx context.Context, roleName string) (int64, error)
	UpdateUserRole(ctx context.Context, userID, roleID int64) error
	UpdateWorkingHours(ctx context.Context, userID int64, workingHoursWeekly int) error
}
