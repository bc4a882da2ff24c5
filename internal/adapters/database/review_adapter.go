package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
)

var reviewColumns = []interface{}{
	"id", "booking_id", "student_id", "instructor_id", "rating", "comment",
	"is_verified", "created_at",
}

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new review. The unique constraint on booking_id makes
// reviews write-once per booking.
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	query, args, err := a.db.Insert("reviews").Rows(goqu.Record{
		"id":            review.ID,
		"booking_id":    review.BookingID,
		"student_id":    review.StudentID,
		"instructor_id": review.InstructorID,
		"rating":        review.Rating,
		"comment":       review.Comment,
		"is_verified":   review.IsVerified,
		"created_at":    review.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("booking %s already has a review", review.BookingID))
		}
		return apperrors.NewInternalError("failed to create review", err)
	}
	return nil
}

// GetByBookingID retrieves the review for a booking, if any.
func (a *ReviewAdapter) GetByBookingID(ctx context.Context, bookingID string) (*entities.Review, error) {
	query, args, err := a.db.Select(reviewColumns...).
		From("reviews").
		Where(goqu.Ex{"booking_id": bookingID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	review := &entities.Review{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&review.ID,
		&review.BookingID,
		&review.StudentID,
		&review.InstructorID,
		&review.Rating,
		&review.Comment,
		&review.IsVerified,
		&review.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no review for booking %s", bookingID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get review", err)
	}
	return review, nil
}

// ListByInstructor retrieves reviews for an instructor, newest first, plus
// the total count.
func (a *ReviewAdapter) ListByInstructor(ctx context.Context, instructorID string, limit, offset int) ([]*entities.Review, int, error) {
	countQuery, countArgs, err := a.db.Select(goqu.COUNT("*")).
		From("reviews").
		Where(goqu.Ex{"instructor_id": instructorID}).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count reviews", err)
	}

	ds := a.db.Select(reviewColumns...).
		From("reviews").
		Where(goqu.Ex{"instructor_id": instructorID}).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list reviews", err)
	}
	defer rows.Close()

	var reviews []*entities.Review
	for rows.Next() {
		review := &entities.Review{}
		err := rows.Scan(
			&review.ID,
			&review.BookingID,
			&review.StudentID,
			&review.InstructorID,
			&review.Rating,
			&review.Comment,
			&review.IsVerified,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, 0, apperrors.NewInternalError("failed to scan review", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewInternalError("error iterating reviews", err)
	}

	return reviews, total, nil
}

// AverageForInstructor returns the mean rating and review count.
func (a *ReviewAdapter) AverageForInstructor(ctx context.Context, instructorID string) (float64, int, error) {
	query, args, err := a.db.Select(
		goqu.COALESCE(goqu.AVG("rating"), 0),
		goqu.COUNT("*"),
	).From("reviews").
		Where(goqu.Ex{"instructor_id": instructorID}).
		ToSQL()
	if err != nil {
		return 0, 0, apperrors.NewInternalError("failed to build query", err)
	}

	var avg float64
	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&avg, &count); err != nil {
		return 0, 0, apperrors.NewInternalError("failed to aggregate reviews", err)
	}
	return avg, count, nil
}
