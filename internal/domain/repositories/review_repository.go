package repositories

import (
	"context"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations. Reviews are
// write-once: no update or delete exists.
type ReviewRepository interface {
	// Create creates a new review
	Create(ctx context.Context, review *entities.Review) error

	// GetByBookingID retrieves the review for a booking, if any
	GetByBookingID(ctx context.Context, bookingID string) (*entities.Review, error)

	// ListByInstructor retrieves reviews for an instructor, newest first,
	// together with the total count.
	ListByInstructor(ctx context.Context, instructorID string, limit, offset int) ([]*entities.Review, int, error)

	// AverageForInstructor returns the mean rating and review count of an
	// instructor.
	AverageForInstructor(ctx context.Context, instructorID string) (float64, int, error)
}
