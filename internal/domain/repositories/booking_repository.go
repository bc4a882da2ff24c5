package repositories

import (
	"context"
	"time"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
)

// BookingRepository defines the interface for booking data operations
type BookingRepository interface {
	// Create persists a new booking. Returns a conflict error if another
	// pending or confirmed booking already holds the same instructor,
	// date and start time.
	Create(ctx context.Context, booking *entities.Booking) error

	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id string) (*entities.Booking, error)

	// List retrieves bookings matching the filter, newest first, together
	// with the total match count (ignoring pagination).
	List(ctx context.Context, filter BookingFilter) ([]*entities.Booking, int, error)

	// ListForInstructorDate retrieves all bookings of an instructor on a
	// calendar date, regardless of status.
	ListForInstructorDate(ctx context.Context, instructorID string, date time.Time) ([]*entities.Booking, error)

	// UpdateStatus sets the booking status, optionally appending a note.
	UpdateStatus(ctx context.Context, id string, status entities.BookingStatus, note string) error

	// Stats aggregates bookings whose lesson date falls in the given range;
	// either bound may be nil for an open end.
	Stats(ctx context.Context, from, to *time.Time) (*entities.BookingStats, error)
}

// BookingFilter defines filters for listing bookings. All supplied predicates
// are combined with AND; DateFrom/DateTo bound the lesson date inclusively.
type BookingFilter struct {
	StudentID    string
	InstructorID string
	Status       entities.BookingStatus
	DateFrom     *time.Time
	DateTo       *time.Time
	Limit        int
	Offset       int
}

// Pagination is the uniform list-endpoint metadata.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

// NewPagination computes page metadata for a total count. Pages is
// ceil(total/limit).
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Pages: pages, Limit: limit}
}
