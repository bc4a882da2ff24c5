package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/providers"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
)

// NotificationService sends booking emails to students and instructors.
// Delivery is best effort: a lesson is booked whether or not anyone got
// mail about it, so failures are logged and swallowed.
type NotificationService struct {
	sender   providers.EmailSender
	userRepo repositories.UserRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(sender providers.EmailSender, userRepo repositories.UserRepository) *NotificationService {
	return &NotificationService{
		sender:   sender,
		userRepo: userRepo,
	}
}

// NotifyBookingCreated emails both parties about a new booking.
func (n *NotificationService) NotifyBookingCreated(ctx context.Context, booking *entities.Booking, instructor *entities.User) {
	if n == nil || n.sender == nil {
		return
	}
	date := booking.LessonDate.Format("Monday, 2 January 2006")

	student, err := n.userRepo.GetByID(ctx, booking.StudentID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("student_id", booking.StudentID).Msg("could not load student for booking email")
	} else {
		body := fmt.Sprintf(
			"Hi %s,\n\nYour %s lesson with %s %s is booked for %s at %s.\nPickup: %s\nTotal: %.2f\n\nSee you on the road!",
			student.FirstName, booking.LessonType, instructor.FirstName, instructor.LastName,
			date, booking.StartTime, booking.PickupLocation, booking.Price.Total,
		)
		n.send(ctx, student.Email, "Your driving lesson is booked", body)
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYou have a new %s lesson on %s at %s.\nPickup: %s\n\nLog in to confirm the booking.",
		instructor.FirstName, booking.LessonType, date, booking.StartTime, booking.PickupLocation,
	)
	n.send(ctx, instructor.Email, "New lesson booking", body)
}

// NotifyBookingStatusChanged tells the student their booking moved to a
// new state.
func (n *NotificationService) NotifyBookingStatusChanged(ctx context.Context, booking *entities.Booking) {
	if n == nil || n.sender == nil {
		return
	}
	student, err := n.userRepo.GetByID(ctx, booking.StudentID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("student_id", booking.StudentID).Msg("could not load student for status email")
		return
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour lesson on %s at %s is now %s.",
		student.FirstName, booking.LessonDate.Format("Monday, 2 January 2006"), booking.StartTime, booking.Status,
	)
	n.send(ctx, student.Email, fmt.Sprintf("Booking %s", booking.Status), body)
}

func (n *NotificationService) send(ctx context.Context, to, subject, body string) {
	if err := n.sender.Send(ctx, to, subject, body); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("to", to).Str("subject", subject).Msg("failed to send booking email")
	}
}
