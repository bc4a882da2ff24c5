package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
)

func containsAll(s string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(s, part) {
			return false
		}
	}
	return true
}

func notifiableBooking() *entities.Booking {
	return &entities.Booking{
		ID:             "bk-1",
		StudentID:      "stu-1",
		InstructorID:   "ins-1",
		LessonType:     entities.LessonTypeStandard,
		LessonDate:     time.Date(2027, 3, 4, 0, 0, 0, 0, time.UTC),
		StartTime:      "10:00",
		Status:         entities.BookingStatusPending,
		PickupLocation: "12 Wilmslow Road",
		Price:          entities.Price{LessonCost: 35, BookingFee: 2.5, Total: 37.5},
	}
}

func TestNotifyBookingCreated_EmailsBothParties(t *testing.T) {
	sender := new(mockEmailSender)
	userRepo := new(mockUserRepository)
	service := NewNotificationService(sender, userRepo)

	booking := notifiableBooking()
	instructor := &entities.User{
		ID: "ins-1", Email: "sarah@example.com",
		FirstName: "Sarah", LastName: "Mitchell",
		Role: entities.RoleInstructor,
	}
	student := &entities.User{
		ID: "stu-1", Email: "tom@example.com",
		FirstName: "Tom", Role: entities.RoleStudent,
	}

	userRepo.On("GetByID", mock.Anything, "stu-1").Return(student, nil)
	sender.On("Send", mock.Anything, "tom@example.com", "Your driving lesson is booked",
		mock.MatchedBy(func(body string) bool {
			return containsAll(body, "Tom", "Sarah Mitchell", "Thursday, 4 March 2027", "10:00")
		})).Return(nil)
	sender.On("Send", mock.Anything, "sarah@example.com", "New lesson booking",
		mock.MatchedBy(func(body string) bool {
			return containsAll(body, "Sarah", "Thursday, 4 March 2027", "12 Wilmslow Road")
		})).Return(nil)

	service.NotifyBookingCreated(context.Background(), booking, instructor)

	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestNotifyBookingCreated_InstructorStillEmailedWhenStudentLookupFails(t *testing.T) {
	sender := new(mockEmailSender)
	userRepo := new(mockUserRepository)
	service := NewNotificationService(sender, userRepo)

	instructor := &entities.User{
		ID: "ins-1", Email: "sarah@example.com",
		FirstName: "Sarah", Role: entities.RoleInstructor,
	}
	userRepo.On("GetByID", mock.Anything, "stu-1").
		Return(nil, apperrors.NewNotFoundError("user not found"))
	sender.On("Send", mock.Anything, "sarah@example.com", mock.Anything, mock.Anything).Return(nil)

	service.NotifyBookingCreated(context.Background(), notifiableBooking(), instructor)

	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestNotifyBookingStatusChanged_EmailsStudent(t *testing.T) {
	sender := new(mockEmailSender)
	userRepo := new(mockUserRepository)
	service := NewNotificationService(sender, userRepo)

	booking := notifiableBooking()
	booking.Status = entities.BookingStatusConfirmed
	student := &entities.User{ID: "stu-1", Email: "tom@example.com", FirstName: "Tom"}

	userRepo.On("GetByID", mock.Anything, "stu-1").Return(student, nil)
	sender.On("Send", mock.Anything, "tom@example.com", "Booking confirmed",
		mock.MatchedBy(func(body string) bool {
			return containsAll(body, "Tom", "confirmed")
		})).Return(nil)

	service.NotifyBookingStatusChanged(context.Background(), booking)

	sender.AssertExpectations(t)
}

func TestNotifications_SendFailureIsSwallowed(t *testing.T) {
	sender := new(mockEmailSender)
	userRepo := new(mockUserRepository)
	service := NewNotificationService(sender, userRepo)

	booking := notifiableBooking()
	student := &entities.User{ID: "stu-1", Email: "tom@example.com", FirstName: "Tom"}
	userRepo.On("GetByID", mock.Anything, "stu-1").Return(student, nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.NewExternalError("mail API down", nil))

	assert.NotPanics(t, func() {
		service.NotifyBookingStatusChanged(context.Background(), booking)
	})
}

func TestNotifications_NilSenderIsNoop(t *testing.T) {
	service := NewNotificationService(nil, new(mockUserRepository))

	assert.NotPanics(t, func() {
		service.NotifyBookingCreated(context.Background(), notifiableBooking(), &entities.User{})
		service.NotifyBookingStatusChanged(context.Background(), notifiableBooking())
	})
}
