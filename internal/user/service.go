package user

import (
	"context"
	"log/slog"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/auth"
)

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// CreateUser registers an account under one of the seeded roles. The
// password is hashed here; the plaintext never reaches the repository.
func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	roleID, err := s.repo.GetRoleIDByName(ctx, dto.Role)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	userID, err := s.repo.CreateUser(ctx, dto.Email, hash, roleID, dto.WorkingHoursWeekly)
	if err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", userID, "role", dto.Role)
	return &User{
		ID:                 userID,
		Email:              dto.Email,
		Role:               dto.Role,
		WorkingHoursWeekly: dto.WorkingHoursWeekly,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetWorkingHoursWeekly reports the user's contracted weekly hours.
func (s *Service) GetWorkingHoursWeekly(ctx context.Context, userID int64) (int, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.WorkingHoursWeekly, nil
}

// UpdateRole changes a user's role. Administrators cannot change their
// own role, so the system always keeps at least the acting administrator.
func (s *Service) UpdateRole(ctx context.Context, actorID, userID int64, dto UpdateRoleDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if actorID == userID {
		return apperrors.NewForbiddenError("administrators cannot change their own role", apperrors.ErrCodeForbidden)
	}

	roleID, err := s.repo.GetRoleIDByName(ctx, dto.Role)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateUserRole(ctx, userID, roleID); err != nil {
		return err
	}

	s.logger.Info("user role updated", "user_id", userID, "role", dto.Role, "actor_id", actorID)
	return nil
}

func (s *Service) UpdateWorkingHours(ctx context.Context, userID int64, workingHoursWeekly int) error {
	if workingHoursWeekly < 0 {
		return apperrors.NewValidationFieldError("working_hours_weekly", "working_hours_weekly must not be negative", apperrors.ErrCodeValidationFailed)
	}
	return s.repo.UpdateWorkingHours(ctx, userID, workingHoursWeekly)
}
