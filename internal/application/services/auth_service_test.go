package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/auth"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
)

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Hour)
}

func registrationUser(role entities.Role) *entities.User {
	user := &entities.User{
		Email:     "sam@example.com",
		FirstName: "Sam",
		LastName:  "Okafor",
		Role:      role,
	}
	switch role {
	case entities.RoleStudent:
		user.Student = &entities.StudentProfile{}
	case entities.RoleInstructor:
		user.Instructor = &entities.InstructorProfile{
			LicenseNumber:   "ADI-42",
			BadgeNumber:     "B-3141",
			HourlyRate:      50.0,
			ExperienceYears: 5,
		}
	}
	return user
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a student and issues a token", func(t *testing.T) {
		userRepo := new(mockUserRepository)
		service := NewAuthService(userRepo, testTokenManager(), nil, nil)

		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.User")).Return(nil)

		user, token, err := service.Register(ctx, registrationUser(entities.RoleStudent), "sup3rsecret")

		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, token)
		assert.NotEqual(t, "sup3rsecret", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("sup3rsecret")))
	})

	t.Run("registers an instructor with a fresh reputation", func(t *testing.T) {
		userRepo := new(mockUserRepository)
		searchRepo := new(mockSearchRepository)
		instructorService := NewInstructorService(userRepo, searchRepo)
		service := NewAuthService(userRepo, testTokenManager(), nil, instructorService)

		userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		searchRepo.On("Index", mock.Anything, mock.Anything).Return(nil)

		payload := registrationUser(entities.RoleInstructor)
		payload.Instructor.Rating = 4.9
		payload.Instructor.ReviewCount = 120
		payload.Instructor.IsVerified = true

		user, _, err := service.Register(ctx, payload, "sup3rsecret")

		require.NoError(t, err)
		assert.Zero(t, user.Instructor.Rating)
		assert.Zero(t, user.Instructor.ReviewCount)
		assert.False(t, user.Instructor.IsVerified)
		searchRepo.AssertCalled(t, "Index", mock.Anything, mock.Anything)
	})

	t.Run("rejects an instructor without a license number", func(t *testing.T) {
		service := NewAuthService(new(mockUserRepository), testTokenManager(), nil, nil)

		payload := registrationUser(entities.RoleInstructor)
		payload.Instructor.LicenseNumber = ""

		_, _, err := service.Register(ctx, payload, "sup3rsecret")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "license number")
	})

	t.Run("rejects an instructor without a badge number", func(t *testing.T) {
		service := NewAuthService(new(mockUserRepository), testTokenManager(), nil, nil)

		payload := registrationUser(entities.RoleInstructor)
		payload.Instructor.BadgeNumber = ""

		_, _, err := service.Register(ctx, payload, "sup3rsecret")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "badge number")
	})

	t.Run("rejects an hourly rate below the floor", func(t *testing.T) {
		service := NewAuthService(new(mockUserRepository), testTokenManager(), nil, nil)

		payload := registrationUser(entities.RoleInstructor)
		payload.Instructor.HourlyRate = 15.0

		_, _, err := service.Register(ctx, payload, "sup3rsecret")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "hourly rate")
	})

	t.Run("rejects an hourly rate above the ceiling", func(t *testing.T) {
		service := NewAuthService(new(mockUserRepository), testTokenManager(), nil, nil)

		payload := registrationUser(entities.RoleInstructor)
		payload.Instructor.HourlyRate = 120.0

		_, _, err := service.Register(ctx, payload, "sup3rsecret")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("accepts an hourly rate inside the bounds", func(t *testing.T) {
		userRepo := new(mockUserRepository)
		service := NewAuthService(userRepo, testTokenManager(), nil, nil)

		userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		payload := registrationUser(entities.RoleInstructor)
		payload.Instructor.HourlyRate = 50.0

		_, _, err := service.Register(ctx, payload, "sup3rsecret")

		assert.NoError(t, err)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		service := NewAuthService(new(mockUserRepository), testTokenManager(), nil, nil)

		_, _, err := service.Register(ctx, registrationUser(entities.RoleStudent), "short")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects an invalid email", func(t *testing.T) {
		service := NewAuthService(new(mockUserRepository), testTokenManager(), nil, nil)

		payload := registrationUser(entities.RoleStudent)
		payload.Email = "not-an-email"

		_, _, err := service.Register(ctx, payload, "sup3rsecret")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("surfaces a duplicate email as a conflict", func(t *testing.T) {
		userRepo := new(mockUserRepository)
		service := NewAuthService(userRepo, testTokenManager(), nil, nil)

		userRepo.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.NewConflictError("email already registered"))

		_, _, err := service.Register(ctx, registrationUser(entities.RoleStudent), "sup3rsecret")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &entities.User{
		ID:           "user-1",
		Email:        "sam@example.com",
		PasswordHash: string(hash),
		Role:         entities.RoleStudent,
		IsActive:     true,
	}

	t.Run("returns a token for valid credentials", func(t *testing.T) {
		userRepo := new(mockUserRepository)
		service := NewAuthService(userRepo, testTokenManager(), nil, nil)

		userRepo.On("GetByEmail", mock.Anything, "sam@example.com").Return(account, nil)

		user, token, err := service.Login(ctx, "Sam@Example.com", "sup3rsecret")

		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)

		claims, err := testTokenManager().Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, entities.RoleStudent, claims.Role)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		userRepo := new(mockUserRepository)
		service := NewAuthService(userRepo, testTokenManager(), nil, nil)

		userRepo.On("GetByEmail", mock.Anything, "sam@example.com").Return(account, nil)

		_, _, err := service.Login(ctx, "sam@example.com", "wrong")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})

	t.Run("does not reveal whether the account exists", func(t *testing.T) {
		userRepo := new(mockUserRepository)
		service := NewAuthService(userRepo, testTokenManager(), nil, nil)

		userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, apperrors.NewNotFoundError("user not found"))

		_, _, err := service.Login(ctx, "ghost@example.com", "whatever")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
		assert.Contains(t, err.Error(), "invalid email or password")
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a token hash and emails the user", func(t *testing.T) {
		userRepo := new(mockUserRepository)
		sender := new(mockEmailSender)
		service := NewAuthService(userRepo, testTokenManager(), sender, nil)

		account := &entities.User{ID: "user-1", Email: "sam@example.com", FirstName: "Sam"}
		userRepo.On("GetByEmail", mock.Anything, "sam@example.com").Return(account, nil)
		userRepo.On("SetResetToken", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(nil)
		sender.On("Send", mock.Anything, "sam@example.com", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, service.ForgotPassword(ctx, "sam@example.com"))
		userRepo.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("succeeds silently for an unknown email", func(t *testing.T) {
		userRepo := new(mockUserRepository)
		sender := new(mockEmailSender)
		service := NewAuthService(userRepo, testTokenManager(), sender, nil)

		userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, apperrors.NewNotFoundError("user not found"))

		require.NoError(t, service.ForgotPassword(ctx, "ghost@example.com"))
		sender.AssertNotCalled(t, "Send")
	})

	t.Run("succeeds even when the email cannot be sent", func(t *testing.T) {
		userRepo := new(mockUserRepository)
		sender := new(mockEmailSender)
		service := NewAuthService(userRepo, testTokenManager(), sender, nil)

		account := &entities.User{ID: "user-1", Email: "sam@example.com", FirstName: "Sam"}
		userRepo.On("GetByEmail", mock.Anything, "sam@example.com").Return(account, nil)
		userRepo.On("SetResetToken", mock.Anything, "user-1", mock.Anything).Return(nil)
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(assert.AnError)

		assert.NoError(t, service.ForgotPassword(ctx, "sam@example.com"))
	})
}
