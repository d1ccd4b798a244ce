package postgres

import (
	"context"
	"errors"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	userDatamodel "github.com/mzavatta/effort-tracking/internal/core/datamodel/user"
	"github.com/mzavatta/effort-tracking/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash string, roleID int64, workingHoursWeekly int) (int64, error) {
	row := userDatamodel.User{
		Email:              email,
		Password:           passwordHash,
		RoleID:             roleID,
		WorkingHoursWeekly: workingHoursWeekly,
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	switch {
	case err == nil:
		return row.ID, nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return 0, apperrors.NewConflictError("a user with this email already exists", apperrors.ErrCodeDuplicateUser)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return 0, apperrors.NewConstraintError("user references a missing role", apperrors.ErrCodeConstraintViolation).WithCause(err)
	default:
		return 0, apperrors.NewUnavailableError("failed to create user", err)
	}
}

type userRow struct {
	ID                 int64
	Email              string
	RoleName           string
	WorkingHoursWeekly int
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID int64) (*user.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.email, roles.role_name, users.working_hours_weekly").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.NewUnavailableError("failed to read user", err)
	}

	return &user.User{
		ID:                 row.ID,
		Email:              row.Email,
		Role:               row.RoleName,
		WorkingHoursWeekly: row.WorkingHoursWeekly,
	}, nil
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.email, roles.role_name, users.working_hours_weekly").
		Joins("JOIN roles ON roles.id = users.role_id").
		Order("users.id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to list users", err)
	}

	users := make([]user.User, len(rows))
	for i, row := range rows {
		users[i] = user.User{
			ID:                 row.ID,
			Email:              row.Email,
			Role:               row.RoleName,
			WorkingHoursWeekly: row.WorkingHoursWeekly,
		}
	}
	return users, nil
}

func (r *UserRepository) GetRoleIDByName(ctx context.Context, roleName string) (int64, error) {
	var row userDatamodel.Role
	err := r.db.WithContext(ctx).
		Where("role_name = ?", roleName).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrRoleNotFound
		}
		return 0, apperrors.NewUnavailableError("failed to read role", err)
	}
	return row.ID, nil
}

func (r *UserRepository) UpdateUserRole(ctx context.Context, userID, roleID int64) error {
	tx := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		UpdateColumn("role_id", roleID)
	if tx.Error != nil {
		return apperrors.NewUnavailableError("failed to update user role", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateWorkingHours(ctx context.Context, userID int64, workingHoursWeekly int) error {
	tx := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		UpdateColumn("working_hours_weekly", workingHoursWeekly)
	if tx.Error != nil {
		return apperrors.NewUnavailableError("failed to update working hours", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
