package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
)

// ReviewService handles lesson reviews and keeps each instructor's
// aggregate rating in sync with them.
type ReviewService struct {
	reviewRepo        repositories.ReviewRepository
	bookingRepo       repositories.BookingRepository
	userRepo          repositories.UserRepository
	instructorService *InstructorService
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	bookingRepo repositories.BookingRepository,
	userRepo repositories.UserRepository,
	instructorService *InstructorService,
) *ReviewService {
	return &ReviewService{
		reviewRepo:        reviewRepo,
		bookingRepo:       bookingRepo,
		userRepo:          userRepo,
		instructorService: instructorService,
	}
}

// CreateReview records a student's review of a completed lesson. Each
// booking can be reviewed once; the review is immutable after creation.
func (s *ReviewService) CreateReview(ctx context.Context, review *entities.Review) error {
	if review == nil {
		return apperrors.NewValidationError("review payload is required")
	}
	if review.BookingID == "" {
		return apperrors.NewValidationError("booking id is required")
	}
	if review.Rating < 1 || review.Rating > 5 {
		return apperrors.NewValidationError("rating must be between 1 and 5")
	}

	booking, err := s.bookingRepo.GetByID(ctx, review.BookingID)
	if err != nil {
		return err
	}
	if booking.Status != entities.BookingStatusCompleted {
		return apperrors.NewValidationError("only completed lessons can be reviewed")
	}
	if review.StudentID != "" && review.StudentID != booking.StudentID {
		return apperrors.NewValidationError("review must come from the lesson's student")
	}

	review.ID = uuid.New().String()
	review.StudentID = booking.StudentID
	review.InstructorID = booking.InstructorID
	review.IsVerified = true
	review.CreatedAt = time.Now()

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return err
	}

	s.refreshInstructorRating(ctx, review.InstructorID)
	return nil
}

// ListInstructorReviews returns a page of reviews for an instructor,
// newest first.
func (s *ReviewService) ListInstructorReviews(ctx context.Context, instructorID string, page, limit int) ([]*entities.Review, repositories.Pagination, error) {
	if instructorID == "" {
		return nil, repositories.Pagination{}, apperrors.NewValidationError("instructor id is required")
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	reviews, total, err := s.reviewRepo.ListByInstructor(ctx, instructorID, limit, (page-1)*limit)
	if err != nil {
		return nil, repositories.Pagination{}, err
	}
	return reviews, repositories.NewPagination(total, page, limit), nil
}

// refreshInstructorRating recomputes the aggregate from stored reviews
// and writes it back. A stale aggregate is tolerable; the next review
// fixes it, so failures are only logged.
func (s *ReviewService) refreshInstructorRating(ctx context.Context, instructorID string) {
	avg, count, err := s.reviewRepo.AverageForInstructor(ctx, instructorID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("instructor_id", instructorID).Msg("failed to compute instructor rating")
		return
	}
	if err := s.userRepo.UpdateInstructorRating(ctx, instructorID, avg, count); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("instructor_id", instructorID).Msg("failed to update instructor rating")
		return
	}
	if s.instructorService != nil {
		if instructor, err := s.userRepo.GetByID(ctx, instructorID); err == nil {
			s.instructorService.IndexInstructor(ctx, instructor)
		}
	}
}
