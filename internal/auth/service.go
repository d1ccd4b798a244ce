package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/golang-jwt/jwt/v5"
)

type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns an access token.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	cred, err := s.repo.GetCredentialByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Warn("login failed, unknown email", "email", dto.Email)
		return AuthTokens{}, apperrors.ErrInvalidCredentials
	}

	if err := VerifyPassword(cred.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed, wrong password", "email", dto.Email)
		return AuthTokens{}, apperrors.ErrInvalidCredentials
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(cred.UserID, cred.Email)
	if err != nil {
		return AuthTokens{}, apperrors.NewInternalError("failed to sign access token", err)
	}

	return AuthTokens{AccessToken: accessToken}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, email string) (string, error) {
	expiresAt := time.Now().Add(j.AccessTokenTTL)

	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "effort-tracking",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
