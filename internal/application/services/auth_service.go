package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/providers"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/auth"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
	"github.com/drivehub/drivehub-backend/pkg/utils"
)

const minPasswordLength = 8

// AuthService handles registration, login and password recovery.
type AuthService struct {
	userRepo          repositories.UserRepository
	tokens            *auth.TokenManager
	emailSender       providers.EmailSender
	instructorService *InstructorService
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	tokens *auth.TokenManager,
	emailSender providers.EmailSender,
	instructorService *InstructorService,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		tokens:            tokens,
		emailSender:       emailSender,
		instructorService: instructorService,
	}
}

// Register creates a new account and returns it with a signed token.
// The caller supplies the plaintext password separately; it is stored
// only as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, user *entities.User, password string) (*entities.User, string, error) {
	if err := s.validateRegistration(user, password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user.ID = uuid.New().String()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.PasswordHash = string(hash)
	user.IsActive = true
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Instructor != nil {
		// Reputation is earned through reviews, never self-declared.
		user.Instructor.Rating = 0
		user.Instructor.ReviewCount = 0
		user.Instructor.IsVerified = false
		user.Instructor.Specialties = utils.NormalizeSpecialties(user.Instructor.Specialties)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	if user.Role == entities.RoleInstructor && s.instructorService != nil {
		s.instructorService.IndexInstructor(ctx, user)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

func (s *AuthService) validateRegistration(user *entities.User, password string) error {
	if user == nil {
		return apperrors.NewValidationError("registration payload is required")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return apperrors.NewValidationError("a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if user.FirstName == "" || user.LastName == "" {
		return apperrors.NewValidationError("first and last name are required")
	}
	if !user.Role.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid role: %s", user.Role))
	}

	switch user.Role {
	case entities.RoleStudent:
		if user.Student == nil {
			return apperrors.NewValidationError("student profile is required")
		}
	case entities.RoleInstructor:
		if user.Instructor == nil {
			return apperrors.NewValidationError("instructor profile is required")
		}
		p := user.Instructor
		if p.LicenseNumber == "" {
			return apperrors.NewValidationError("instructor license number is required")
		}
		if p.BadgeNumber == "" {
			return apperrors.NewValidationError("instructor badge number is required")
		}
		if p.HourlyRate < entities.MinHourlyRate || p.HourlyRate > entities.MaxHourlyRate {
			return apperrors.NewValidationError(
				fmt.Sprintf("hourly rate must be between %.0f and %.0f", entities.MinHourlyRate, entities.MaxHourlyRate))
		}
		if p.ExperienceYears < 0 {
			return apperrors.NewValidationError("experience years must not be negative")
		}
	}
	return nil
}

// Login verifies credentials and returns the account with a fresh token.
// Unknown email and bad password produce the same error so the response
// does not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entities.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", apperrors.NewValidationError("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, "", apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", apperrors.NewUnauthorizedError("account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// ForgotPassword starts a password reset. It always reports success to
// the caller; whether the email exists, and whether the reset mail could
// be delivered, is never exposed.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperrors.NewValidationError("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			log.Ctx(ctx).Error().Err(err).Msg("password reset lookup failed")
		}
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to generate reset token")
		return nil
	}
	digest := sha256.Sum256([]byte(token))
	if err := s.userRepo.SetResetToken(ctx, user.ID, hex.EncodeToString(digest[:])); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("failed to store reset token")
		return nil
	}

	if s.emailSender != nil {
		body := fmt.Sprintf("Hi %s,\n\nUse this code to reset your DriveHub password: %s\n\nIf you did not request a reset, ignore this email.", user.FirstName, token)
		if err := s.emailSender.Send(ctx, user.Email, "Reset your DriveHub password", body); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("failed to send reset email")
		}
	}
	return nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
