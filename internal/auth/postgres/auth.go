package postgres

import (
	"context"
	"errors"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/auth"
	"gorm.io/gorm"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.RepositoryAPI {
	return &AuthRepository{db: db}
}

type credentialRow struct {
	ID       int64
	Email    string
	Password string
	RoleName string
}

func (r *AuthRepository) GetCredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	var row credentialRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.email, users.password, roles.role_name").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.email = ?", email).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.NewUnavailableError("failed to read credentials", err)
	}

	return &auth.Credential{
		UserID:       row.ID,
		Email:        row.Email,
		PasswordHash: row.Password,
		Role:         row.RoleName,
	}, nil
}

type userRow struct {
	ID                 int64
	Email              string
	RoleName           string
	WorkingHoursWeekly int
}

func (r *AuthRepository) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
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

	return &auth.User{
		ID:                 row.ID,
		Email:              row.Email,
		Role:               row.RoleName,
		WorkingHoursWeekly: row.WorkingHoursWeekly,
	}, nil
}
