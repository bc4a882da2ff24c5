package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/observability"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// priceTolerance absorbs float rounding when checking that the quoted
	// total matches lesson cost plus booking fee.
	priceTolerance = 0.01
)

// BookingService handles the lesson booking lifecycle.
type BookingService struct {
	repo                repositories.BookingRepository
	userRepo            repositories.UserRepository
	notificationService *NotificationService
	metrics             *observability.Metrics
}

// NewBookingService creates a new booking service
func NewBookingService(
	repo repositories.BookingRepository,
	userRepo repositories.UserRepository,
	notificationService *NotificationService,
	metrics *observability.Metrics,
) *BookingService {
	return &BookingService{
		repo:                repo,
		userRepo:            userRepo,
		notificationService: notificationService,
		metrics:             metrics,
	}
}

// CreateBooking validates and persists a new lesson booking. The slot
// itself is claimed by the database's partial unique index, so two
// concurrent requests for the same instructor, date and start time
// cannot both succeed.
func (s *BookingService) CreateBooking(ctx context.Context, booking *entities.Booking) error {
	if err := s.validateBookingRequest(booking); err != nil {
		return err
	}

	instructor, err := s.userRepo.GetByID(ctx, booking.InstructorID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return apperrors.NewNotFoundError("instructor not found")
		}
		return fmt.Errorf("failed to load instructor: %w", err)
	}
	if instructor.Role != entities.RoleInstructor || instructor.Instructor == nil {
		return apperrors.NewNotFoundError("instructor not found")
	}
	if !instructor.IsActive {
		return apperrors.NewValidationError("instructor is not accepting bookings")
	}

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	booking.Status = entities.BookingStatusPending
	if booking.Payment.Status == "" {
		booking.Payment.Status = entities.PaymentStatusPending
	}
	booking.LessonDate = dateOnly(booking.LessonDate)
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if err := s.repo.Create(ctx, booking); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			observability.RecordBookingConflict(ctx, s.metrics)
		}
		return err
	}
	observability.RecordBookingCreated(ctx, s.metrics, string(booking.LessonType))

	if s.notificationService != nil {
		s.notificationService.NotifyBookingCreated(ctx, booking, instructor)
	}
	return nil
}

func (s *BookingService) validateBookingRequest(booking *entities.Booking) error {
	if booking == nil {
		return apperrors.NewValidationError("booking payload is required")
	}
	if booking.StudentID == "" {
		return apperrors.NewValidationError("student id is required")
	}
	if booking.InstructorID == "" {
		return apperrors.NewValidationError("instructor id is required")
	}
	if !booking.LessonType.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid lesson type: %s", booking.LessonType))
	}
	if booking.LessonDate.IsZero() {
		return apperrors.NewValidationError("lesson date is required")
	}
	if dateOnly(booking.LessonDate).Before(dateOnly(time.Now())) {
		return apperrors.NewValidationError("cannot book a lesson on a past date")
	}
	if booking.StartTime == "" {
		return apperrors.NewValidationError("start time is required")
	}
	if !isLessonSlot(booking.StartTime) {
		return apperrors.NewValidationError(fmt.Sprintf("start time %s is outside lesson hours", booking.StartTime))
	}
	if booking.DurationHours <= 0 {
		return apperrors.NewValidationError("duration must be positive")
	}
	if booking.PickupLocation == "" {
		return apperrors.NewValidationError("pickup location is required")
	}
	if booking.Price.Total <= 0 {
		return apperrors.NewValidationError("price total must be positive")
	}
	if math.Abs(booking.Price.LessonCost+booking.Price.BookingFee-booking.Price.Total) > priceTolerance {
		return apperrors.NewValidationError("price total does not match lesson cost plus booking fee")
	}
	return nil
}

// GetBooking returns a single booking by id.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*entities.Booking, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("booking id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// ListBookings returns a filtered page of bookings ordered newest first.
func (s *BookingService) ListBookings(ctx context.Context, filter repositories.BookingFilter, page int) ([]*entities.Booking, repositories.Pagination, error) {
	if filter.Status != "" && !entities.BookingStatus(filter.Status).IsValid() {
		return nil, repositories.Pagination{}, apperrors.NewValidationError(fmt.Sprintf("invalid booking status: %s", filter.Status))
	}
	if page < 1 {
		page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	filter.Offset = (page - 1) * filter.Limit

	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, repositories.Pagination{}, err
	}
	return bookings, repositories.NewPagination(total, page, filter.Limit), nil
}

// UpdateBookingStatus moves a booking to a new lifecycle state. Any valid
// status is accepted as a target; cancelled, completed and no-show
// bookings release their slot for rebooking.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, id string, status entities.BookingStatus, note string) (*entities.Booking, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("booking id is required")
	}
	if !status.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid booking status: %s", status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status, note); err != nil {
		return nil, err
	}
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		s.notificationService.NotifyBookingStatusChanged(ctx, booking)
	} else {
		log.Ctx(ctx).Debug().Str("booking_id", id).Str("status", string(status)).Msg("booking status updated")
	}
	return booking, nil
}

// GetStats aggregates booking counts per status and total revenue from
// completed lessons, optionally bounded to a date range.
func (s *BookingService) GetStats(ctx context.Context, from, to *time.Time) (*entities.BookingStats, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperrors.NewValidationError("date range end must not precede start")
	}
	return s.repo.Stats(ctx, from, to)
}

// dateOnly maps a time to its calendar day at UTC midnight. Wire dates
// parse as UTC while the clock runs in server-local time; pinning both
// sides to UTC keeps "today" comparisons location-independent.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
