package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/pkg/logger"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock repository for credential lookups
type mockAuthRepository struct {
	credentials map[string]*Credential
	users       map[int64]*User

	returnError   bool
	errorToReturn error
}

func newMockAuthRepository() *mockAuthRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockAuthRepository{
		credentials: map[string]*Credential{
			"researcher@lab.example": {UserID: 1, Email: "researcher@lab.example", PasswordHash: string(hashedPassword), Role: "Researcher"},
			"admin@lab.example":      {UserID: 2, Email: "admin@lab.example", PasswordHash: string(hashedPassword), Role: "Administrator"},
		},
		users: map[int64]*User{
			1: {ID: 1, Email: "researcher@lab.example", Role: "Researcher", WorkingHoursWeekly: 40},
			2: {ID: 2, Email: "admin@lab.example", Role: "Administrator", WorkingHoursWeekly: 40},
		},
	}
}

func (m *mockAuthRepository) GetCredentialByEmail(_ context.Context, email string) (*Credential, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	cred, exists := m.credentials[email]
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}
	return cred, nil
}

func (m *mockAuthRepository) GetUserByID(_ context.Context, userID int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	u, exists := m.users[userID]
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockAuthRepository
		tokenGen *JWTTokenGenerator
		ctx      context.Context

		secret    = "test-access-secret"
		accessTTL = 15 * time.Minute
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockAuthRepository()
		tokenGen = NewJWTTokenGenerator(secret, accessTTL)
		service = NewService(mockRepo, tokenGen, logger.LoggerWrapper())
		ctx = context.Background()
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return a signed access token", func() {
				// Given
				dto := LoginDTO{Email: "researcher@lab.example", Password: "correct_password"}

				// When
				tokens, err := service.Authenticate(ctx, dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
			})

			ginkgo.It("should carry the user identity in the claims", func() {
				// Given
				dto := LoginDTO{Email: "admin@lab.example", Password: "correct_password"}

				// When
				tokens, err := service.Authenticate(ctx, dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(2)))
				gomega.Expect(claims.Email).To(gomega.Equal("admin@lab.example"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return the same error for an unknown email", func() {
				// Given
				dto := LoginDTO{Email: "nobody@lab.example", Password: "any_password"}

				// When
				tokens, err := service.Authenticate(ctx, dto)

				// Then
				gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return the same error for a wrong password", func() {
				// Given
				dto := LoginDTO{Email: "researcher@lab.example", Password: "wrong_password"}

				// When
				tokens, err := service.Authenticate(ctx, dto)

				// Then
				gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should reject an empty email", func() {
				tokens, err := service.Authenticate(ctx, LoginDTO{Password: "password"})

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("email is required"))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should reject an empty password", func() {
				tokens, err := service.Authenticate(ctx, LoginDTO{Email: "researcher@lab.example"})

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the repository fails", func() {
			ginkgo.It("should hide the failure behind invalid credentials", func() {
				// Given
				mockRepo.returnError = true
				mockRepo.errorToReturn = errors.New("store down")

				// When
				tokens, err := service.Authenticate(ctx, LoginDTO{Email: "researcher@lab.example", Password: "correct_password"})

				// Then
				gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("should return claims for a valid token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Email: "researcher@lab.example", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(1)))
			gomega.Expect(claims.ExpiresAt).ToNot(gomega.BeNil())
		})

		ginkgo.It("should reject a malformed token", func() {
			claims, err := service.ValidateAccessToken("invalid.token")

			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidToken))
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should reject an empty token", func() {
			claims, err := service.ValidateAccessToken("")

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should reject an expired token", func() {
			// Given
			expiredGen := &JWTTokenGenerator{Secret: []byte(secret), AccessTokenTTL: -time.Hour}
			expiredToken, err := expiredGen.GenerateAccessToken(1, "researcher@lab.example")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			claims, err := service.ValidateAccessToken(expiredToken)

			// Then
			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrTokenExpired))
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should reject a token signed with another secret", func() {
			otherGen := NewJWTTokenGenerator("other-secret", accessTTL)
			token, err := otherGen.GenerateAccessToken(1, "researcher@lab.example")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(token)

			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidToken))
			gomega.Expect(claims).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("GetUser", func() {
		ginkgo.It("should return the user for a known ID", func() {
			u, err := service.GetUser(ctx, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Email).To(gomega.Equal("researcher@lab.example"))
			gomega.Expect(u.IsAdmin()).To(gomega.BeFalse())
		})

		ginkgo.It("should fail for an unknown ID", func() {
			u, err := service.GetUser(ctx, 404)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(u).To(gomega.BeNil())
		})
	})
})

var _ = ginkgo.Describe("HashPassword", func() {
	ginkgo.It("should produce a verifiable hash", func() {
		hash, err := HashPassword("test_password_123", bcrypt.MinCost)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(hash).ToNot(gomega.Equal("test_password_123"))
		gomega.Expect(VerifyPassword(hash, "test_password_123")).To(gomega.Succeed())
	})

	ginkgo.It("should salt each hash", func() {
		hash1, err1 := HashPassword("same_password", bcrypt.MinCost)
		hash2, err2 := HashPassword("same_password", bcrypt.MinCost)

		gomega.Expect(err1).ToNot(gomega.HaveOccurred())
		gomega.Expect(err2).ToNot(gomega.HaveOccurred())
		gomega.Expect(hash1).ToNot(gomega.Equal(hash2))
	})
})

var _ = ginkgo.Describe("Roles", func() {
	ginkgo.It("recognizes the administrator role", func() {
		u := &User{Role: "Administrator"}

		gomega.Expect(u.IsAdmin()).To(gomega.BeTrue())
		gomega.Expect(u.IsSupervisor()).To(gomega.BeFalse())
	})

	ginkgo.It("recognizes the supervisor role", func() {
		u := &User{Role: "Supervisor"}

		gomega.Expect(u.IsAdmin()).To(gomega.BeFalse())
		gomega.Expect(u.IsSupervisor()).To(gomega.BeTrue())
	})
})
