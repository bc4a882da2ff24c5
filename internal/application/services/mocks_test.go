package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
)

type mockBookingRepository struct {
	mock.Mock
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *entities.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockBookingRepository) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *mockBookingRepository) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Booking), args.Int(1), args.Error(2)
}

func (m *mockBookingRepository) ListForInstructorDate(ctx context.Context, instructorID string, date time.Time) ([]*entities.Booking, error) {
	args := m.Called(ctx, instructorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Booking), args.Error(1)
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus, note string) error {
	args := m.Called(ctx, id, status, note)
	return args.Error(0)
}

func (m *mockBookingRepository) Stats(ctx context.Context, from, to *time.Time) (*entities.BookingStats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BookingStats), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) UpdateInstructorRating(ctx context.Context, instructorID string, rating float64, reviewCount int) error {
	args := m.Called(ctx, instructorID, rating, reviewCount)
	return args.Error(0)
}

func (m *mockUserRepository) ListInstructors(ctx context.Context, filter repositories.InstructorFilter) ([]*entities.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepository) SetResetToken(ctx context.Context, userID, tokenHash string) error {
	args := m.Called(ctx, userID, tokenHash)
	return args.Error(0)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *entities.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByBookingID(ctx context.Context, bookingID string) (*entities.Review, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByInstructor(ctx context.Context, instructorID string, limit, offset int) ([]*entities.Review, int, error) {
	args := m.Called(ctx, instructorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) AverageForInstructor(ctx context.Context, instructorID string) (float64, int, error) {
	args := m.Called(ctx, instructorID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type mockSearchRepository struct {
	mock.Mock
}

func (m *mockSearchRepository) Search(ctx context.Context, query string, filter repositories.InstructorFilter) ([]*entities.User, int, error) {
	args := m.Called(ctx, query, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.User), args.Int(1), args.Error(2)
}

func (m *mockSearchRepository) Index(ctx context.Context, instructor *entities.User) error {
	args := m.Called(ctx, instructor)
	return args.Error(0)
}

func (m *mockSearchRepository) Delete(ctx context.Context, instructorID string) error {
	args := m.Called(ctx, instructorID)
	return args.Error(0)
}

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}
