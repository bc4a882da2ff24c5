package services

import (
	"context"
	"sort"
	"time"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
)

// lessonSlots is the set of bookable start times. Every lesson starts on
// the hour between 09:00 and 18:00; an instructor's declared weekly
// availability can only narrow this template, never extend it.
var lessonSlots = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00", "18:00",
}

func isLessonSlot(start string) bool {
	for _, slot := range lessonSlots {
		if slot == start {
			return true
		}
	}
	return false
}

// AvailabilityService computes open lesson slots per instructor and day.
type AvailabilityService struct {
	bookingRepo repositories.BookingRepository
	userRepo    repositories.UserRepository
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(bookingRepo repositories.BookingRepository, userRepo repositories.UserRepository) *AvailabilityService {
	return &AvailabilityService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
	}
}

// GetDayAvailability returns the open and booked slots for an instructor
// on a given date. Candidate slots are the lesson-hours template
// intersected with the instructor's declared availability for that
// weekday; pending and confirmed bookings then block their start times.
// The result is deterministic for a fixed booking set.
func (s *AvailabilityService) GetDayAvailability(ctx context.Context, instructorID string, date time.Time) (*entities.DayAvailability, error) {
	if instructorID == "" {
		return nil, apperrors.NewValidationError("instructor id is required")
	}
	day := dateOnly(date)
	if day.Before(dateOnly(time.Now())) {
		return nil, apperrors.NewValidationError("cannot query availability for a past date")
	}

	instructor, err := s.userRepo.GetByID(ctx, instructorID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewNotFoundError("instructor not found")
		}
		return nil, err
	}
	if instructor.Role != entities.RoleInstructor || instructor.Instructor == nil {
		return nil, apperrors.NewNotFoundError("instructor not found")
	}

	candidates := s.candidateSlots(instructor, day)

	bookings, err := s.bookingRepo.ListForInstructorDate(ctx, instructorID, day)
	if err != nil {
		return nil, err
	}
	blocked := make(map[string]bool)
	for _, b := range bookings {
		if b.Status.BlocksSlot() {
			blocked[b.StartTime] = true
		}
	}

	available := make([]string, 0, len(candidates))
	for _, slot := range candidates {
		if !blocked[slot] {
			available = append(available, slot)
		}
	}
	// Booked reports every live start time, even one outside the current
	// candidate set (booked before the instructor narrowed their schedule).
	booked := make([]string, 0, len(blocked))
	for slot := range blocked {
		booked = append(booked, slot)
	}
	sort.Strings(available)
	sort.Strings(booked)

	return &entities.DayAvailability{
		InstructorID:   instructorID,
		Date:           day.Format("2006-01-02"),
		AvailableSlots: available,
		BookedSlots:    booked,
	}, nil
}

// candidateSlots intersects the lesson-hours template with the
// instructor's declared slots for the weekday. An instructor with no
// declared schedule for the day is treated as fully available.
func (s *AvailabilityService) candidateSlots(instructor *entities.User, day time.Time) []string {
	declared := instructor.Instructor.Availability.SlotsFor(day)
	if len(declared) == 0 {
		out := make([]string, len(lessonSlots))
		copy(out, lessonSlots)
		return out
	}
	declaredSet := make(map[string]bool, len(declared))
	for _, slot := range declared {
		declaredSet[slot] = true
	}
	out := make([]string, 0, len(declared))
	for _, slot := range lessonSlots {
		if declaredSet[slot] {
			out = append(out, slot)
		}
	}
	return out
}
