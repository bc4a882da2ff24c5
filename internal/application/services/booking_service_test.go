package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
)

func validBooking() *entities.Booking {
	return &entities.Booking{
		StudentID:      "student-1",
		InstructorID:   "instructor-1",
		LessonType:     entities.LessonTypeStandard,
		LessonDate:     time.Now().AddDate(0, 0, 3),
		StartTime:      "10:00",
		DurationHours:  1,
		PickupLocation: "12 High Street",
		Price: entities.Price{
			LessonCost: 35.0,
			BookingFee: 2.5,
			Total:      37.5,
		},
	}
}

func activeInstructor(id string) *entities.User {
	return &entities.User{
		ID:       id,
		Email:    "jo@example.com",
		Role:     entities.RoleInstructor,
		IsActive: true,
		Instructor: &entities.InstructorProfile{
			LicenseNumber: "ADI-123",
			HourlyRate:    35.0,
		},
	}
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending booking", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		userRepo := new(mockUserRepository)
		service := NewBookingService(bookingRepo, userRepo, nil, nil)

		userRepo.On("GetByID", mock.Anything, "instructor-1").Return(activeInstructor("instructor-1"), nil)
		bookingRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Booking")).Return(nil)

		booking := validBooking()
		err := service.CreateBooking(ctx, booking)

		require.NoError(t, err)
		assert.NotEmpty(t, booking.ID)
		assert.Equal(t, entities.BookingStatusPending, booking.Status)
		assert.Equal(t, entities.PaymentStatusPending, booking.Payment.Status)
		assert.Equal(t, 0, booking.LessonDate.Hour())
		bookingRepo.AssertExpectations(t)
	})

	t.Run("rejects a past lesson date", func(t *testing.T) {
		service := NewBookingService(new(mockBookingRepository), new(mockUserRepository), nil, nil)

		booking := validBooking()
		booking.LessonDate = time.Now().AddDate(0, 0, -1)

		err := service.CreateBooking(ctx, booking)

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "past date")
	})

	t.Run("accepts a booking for today", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		userRepo := new(mockUserRepository)
		service := NewBookingService(bookingRepo, userRepo, nil, nil)

		userRepo.On("GetByID", mock.Anything, "instructor-1").Return(activeInstructor("instructor-1"), nil)
		bookingRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		booking := validBooking()
		booking.LessonDate = time.Now()

		assert.NoError(t, service.CreateBooking(ctx, booking))
	})

	t.Run("accepts today's date parsed as UTC on a server west of UTC", func(t *testing.T) {
		restore := time.Local
		time.Local = time.FixedZone("UTC-8", -8*60*60)
		defer func() { time.Local = restore }()

		bookingRepo := new(mockBookingRepository)
		userRepo := new(mockUserRepository)
		service := NewBookingService(bookingRepo, userRepo, nil, nil)

		userRepo.On("GetByID", mock.Anything, "instructor-1").Return(activeInstructor("instructor-1"), nil)
		bookingRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		// The wire layer parses lesson_date at UTC midnight of the local
		// calendar day, while the service clock runs in local time.
		now := time.Now()
		booking := validBooking()
		booking.LessonDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		assert.NoError(t, service.CreateBooking(ctx, booking))
	})

	t.Run("rejects missing required fields with field-specific messages", func(t *testing.T) {
		service := NewBookingService(new(mockBookingRepository), new(mockUserRepository), nil, nil)

		tests := []struct {
			name    string
			mutate  func(*entities.Booking)
			wantMsg string
		}{
			{"missing student", func(b *entities.Booking) { b.StudentID = "" }, "student id"},
			{"missing instructor", func(b *entities.Booking) { b.InstructorID = "" }, "instructor id"},
			{"bad lesson type", func(b *entities.Booking) { b.LessonType = "joyride" }, "lesson type"},
			{"missing start time", func(b *entities.Booking) { b.StartTime = "" }, "start time"},
			{"off-template start time", func(b *entities.Booking) { b.StartTime = "06:30" }, "lesson hours"},
			{"missing pickup", func(b *entities.Booking) { b.PickupLocation = "" }, "pickup location"},
			{"zero duration", func(b *entities.Booking) { b.DurationHours = 0 }, "duration"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				booking := validBooking()
				tt.mutate(booking)

				err := service.CreateBooking(ctx, booking)

				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
				assert.Contains(t, err.Error(), tt.wantMsg)
			})
		}
	})

	t.Run("rejects a price total that does not add up", func(t *testing.T) {
		service := NewBookingService(new(mockBookingRepository), new(mockUserRepository), nil, nil)

		booking := validBooking()
		booking.Price.Total = 50.0

		err := service.CreateBooking(ctx, booking)

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("surfaces a conflict when the slot is already taken", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		userRepo := new(mockUserRepository)
		service := NewBookingService(bookingRepo, userRepo, nil, nil)

		userRepo.On("GetByID", mock.Anything, "instructor-1").Return(activeInstructor("instructor-1"), nil)
		bookingRepo.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.NewConflictError("slot 10:00 on 2026-09-03 is already booked"))

		err := service.CreateBooking(ctx, validBooking())

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})

	t.Run("rejects booking against a non-instructor account", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		userRepo := new(mockUserRepository)
		service := NewBookingService(bookingRepo, userRepo, nil, nil)

		student := &entities.User{ID: "instructor-1", Role: entities.RoleStudent, IsActive: true}
		userRepo.On("GetByID", mock.Anything, "instructor-1").Return(student, nil)

		err := service.CreateBooking(ctx, validBooking())

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		bookingRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects booking against an unknown instructor", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		userRepo := new(mockUserRepository)
		service := NewBookingService(bookingRepo, userRepo, nil, nil)

		userRepo.On("GetByID", mock.Anything, "instructor-1").
			Return(nil, apperrors.NewNotFoundError("user not found"))

		err := service.CreateBooking(ctx, validBooking())

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestBookingService_UpdateBookingStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("updates to a valid status", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		service := NewBookingService(bookingRepo, new(mockUserRepository), nil, nil)

		updated := validBooking()
		updated.ID = "booking-1"
		updated.Status = entities.BookingStatusConfirmed

		bookingRepo.On("UpdateStatus", mock.Anything, "booking-1", entities.BookingStatusConfirmed, "see you there").Return(nil)
		bookingRepo.On("GetByID", mock.Anything, "booking-1").Return(updated, nil)

		booking, err := service.UpdateBookingStatus(ctx, "booking-1", entities.BookingStatusConfirmed, "see you there")

		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, booking.Status)
		bookingRepo.AssertExpectations(t)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		service := NewBookingService(bookingRepo, new(mockUserRepository), nil, nil)

		_, err := service.UpdateBookingStatus(ctx, "booking-1", "postponed", "")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		bookingRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("propagates not found from the repository", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		service := NewBookingService(bookingRepo, new(mockUserRepository), nil, nil)

		bookingRepo.On("UpdateStatus", mock.Anything, "nope", entities.BookingStatusCancelled, "").
			Return(apperrors.NewNotFoundError("booking not found"))

		_, err := service.UpdateBookingStatus(ctx, "nope", entities.BookingStatusCancelled, "")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestBookingService_ListBookings(t *testing.T) {
	ctx := context.Background()

	t.Run("computes pagination from the total", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		service := NewBookingService(bookingRepo, new(mockUserRepository), nil, nil)

		bookingRepo.On("List", mock.Anything, mock.MatchedBy(func(f repositories.BookingFilter) bool {
			return f.Limit == 10 && f.Offset == 10
		})).Return([]*entities.Booking{validBooking()}, 27, nil)

		_, pagination, err := service.ListBookings(ctx, repositories.BookingFilter{}, 2)

		require.NoError(t, err)
		assert.Equal(t, 27, pagination.Total)
		assert.Equal(t, 2, pagination.Page)
		assert.Equal(t, 3, pagination.Pages)
		assert.Equal(t, 10, pagination.Limit)
	})

	t.Run("rejects an invalid status filter", func(t *testing.T) {
		service := NewBookingService(new(mockBookingRepository), new(mockUserRepository), nil, nil)

		_, _, err := service.ListBookings(ctx, repositories.BookingFilter{Status: "postponed"}, 1)

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("caps the page size", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		service := NewBookingService(bookingRepo, new(mockUserRepository), nil, nil)

		bookingRepo.On("List", mock.Anything, mock.MatchedBy(func(f repositories.BookingFilter) bool {
			return f.Limit == 100
		})).Return([]*entities.Booking{}, 0, nil)

		_, _, err := service.ListBookings(ctx, repositories.BookingFilter{Limit: 500}, 1)

		require.NoError(t, err)
	})
}

func TestBookingService_GetStats(t *testing.T) {
	ctx := context.Background()

	t.Run("returns aggregated stats", func(t *testing.T) {
		bookingRepo := new(mockBookingRepository)
		service := NewBookingService(bookingRepo, new(mockUserRepository), nil, nil)

		stats := &entities.BookingStats{
			Pending:       2,
			Confirmed:     3,
			Completed:     4,
			Cancelled:     1,
			NoShow:        1,
			TotalBookings: 11,
			TotalRevenue:  150.0,
		}
		bookingRepo.On("Stats", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).Return(stats, nil)

		got, err := service.GetStats(ctx, nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 11, got.TotalBookings)
		assert.Equal(t, 150.0, got.TotalRevenue)
	})

	t.Run("rejects an inverted date range", func(t *testing.T) {
		service := NewBookingService(new(mockBookingRepository), new(mockUserRepository), nil, nil)

		from := time.Now()
		to := from.AddDate(0, 0, -7)

		_, err := service.GetStats(ctx, &from, &to)

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}
