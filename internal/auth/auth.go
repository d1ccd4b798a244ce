package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// User is the authenticated identity carried through request context.
// Core services never read it themselves; handlers unpack it and pass
// explicit user IDs down.
type User struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	WorkingHoursWeekly int    `json:"working_hours_weekly"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "Administrator"
}

func (u *User) IsSupervisor() bool {
	return u.Role == "Supervisor"
}

// Credential is the subset of the users row needed to verify a login.
type Credential struct {
	UserID       int64
	Email        string
	PasswordHash string
	Role         string
}

type RepositoryAPI interface {
	GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken string `json:"access_token"`
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
}

func NewJWTTokenGenerator(secret string, accessTokenTTL time.Duration) *JWTTokenGenerator {
	if accessTokenTTL <= 0 {
		accessTokenTTL = 15 * time.Minute
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: accessTokenTTL,
	}
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type userCtxKey string

const contextUserKey userCtxKey = "authUser"

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(contextUserKey).(*User)
	return user, ok
}
