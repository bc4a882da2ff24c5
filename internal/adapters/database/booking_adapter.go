package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
)

var bookingColumns = []interface{}{
	"id", "student_id", "instructor_id", "lesson_type", "lesson_date",
	"start_time", "duration_hours", "status", "pickup_location",
	"dropoff_location", "special_requests", "lesson_cost", "booking_fee",
	"price_total", "payment_status", "payment_method",
	"payment_transaction_id", "payment_paid_at", "student_notes",
	"instructor_notes", "created_at", "updated_at",
}

// BookingAdapter implements the BookingRepository interface
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new booking. The partial unique index on
// (instructor_id, lesson_date, start_time) over live bookings turns a lost
// race into a conflict error instead of a double booking.
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	record := goqu.Record{
		"id":                     booking.ID,
		"student_id":             booking.StudentID,
		"instructor_id":          booking.InstructorID,
		"lesson_type":            booking.LessonType,
		"lesson_date":            booking.LessonDate,
		"start_time":             booking.StartTime,
		"duration_hours":         booking.DurationHours,
		"status":                 booking.Status,
		"pickup_location":        booking.PickupLocation,
		"dropoff_location":       booking.DropoffLocation,
		"special_requests":       booking.SpecialRequests,
		"lesson_cost":            booking.Price.LessonCost,
		"booking_fee":            booking.Price.BookingFee,
		"price_total":            booking.Price.Total,
		"payment_status":         booking.Payment.Status,
		"payment_method":         booking.Payment.Method,
		"payment_transaction_id": booking.Payment.TransactionID,
		"payment_paid_at":        booking.Payment.PaidAt,
		"student_notes":          booking.StudentNotes,
		"instructor_notes":       booking.InstructorNotes,
		"created_at":             booking.CreatedAt,
		"updated_at":             booking.UpdatedAt,
	}

	query, args, err := a.db.Insert("bookings").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf(
				"slot %s on %s is already booked for this instructor",
				booking.StartTime, booking.LessonDate.Format("2006-01-02"),
			))
		}
		return apperrors.NewInternalError("failed to create booking", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (a *BookingAdapter) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get booking", err)
	}

	return booking, nil
}

// List retrieves bookings matching the filter, newest first, plus the total
// match count.
func (a *BookingAdapter) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, int, error) {
	where := bookingFilterExpressions(filter)

	countQuery, countArgs, err := a.db.Select(goqu.COUNT("*")).
		From("bookings").
		Where(where...).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count bookings", err)
	}

	ds := a.db.Select(bookingColumns...).
		From("bookings").
		Where(where...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListForInstructorDate retrieves all bookings of an instructor on a date.
func (a *BookingAdapter) ListForInstructorDate(ctx context.Context, instructorID string, date time.Time) ([]*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(goqu.Ex{
			"instructor_id": instructorID,
			"lesson_date":   date,
		}).
		Order(goqu.I("start_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// UpdateStatus sets the booking status, optionally recording a note.
func (a *BookingAdapter) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus, note string) error {
	record := goqu.Record{
		"status":     status,
		"updated_at": time.Now(),
	}
	if note != "" {
		record["instructor_notes"] = note
	}

	query, args, err := a.db.Update("bookings").
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update booking status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}

	return nil
}

// Stats aggregates bookings whose lesson date falls in [from, to]. Revenue
// sums price totals of completed bookings only.
func (a *BookingAdapter) Stats(ctx context.Context, from, to *time.Time) (*entities.BookingStats, error) {
	ds := a.db.Select(
		goqu.C("status"),
		goqu.COUNT("*").As("n"),
		goqu.SUM("price_total").As("revenue"),
	).From("bookings")

	if from != nil {
		ds = ds.Where(goqu.C("lesson_date").Gte(*from))
	}
	if to != nil {
		ds = ds.Where(goqu.C("lesson_date").Lte(*to))
	}
	ds = ds.GroupBy("status")

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build stats query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate bookings", err)
	}
	defer rows.Close()

	stats := &entities.BookingStats{}
	for rows.Next() {
		var status entities.BookingStatus
		var n int
		var revenue sql.NullFloat64

		if err := rows.Scan(&status, &n, &revenue); err != nil {
			return nil, apperrors.NewInternalError("failed to scan stats row", err)
		}

		stats.TotalBookings += n
		switch status {
		case entities.BookingStatusPending:
			stats.Pending = n
		case entities.BookingStatusConfirmed:
			stats.Confirmed = n
		case entities.BookingStatusCompleted:
			stats.Completed = n
			stats.TotalRevenue += revenue.Float64
		case entities.BookingStatusCancelled:
			stats.Cancelled = n
		case entities.BookingStatusNoShow:
			stats.NoShow = n
		}
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating stats rows", err)
	}

	return stats, nil
}

func bookingFilterExpressions(filter repositories.BookingFilter) []goqu.Expression {
	where := []goqu.Expression{}

	if filter.StudentID != "" {
		where = append(where, goqu.Ex{"student_id": filter.StudentID})
	}
	if filter.InstructorID != "" {
		where = append(where, goqu.Ex{"instructor_id": filter.InstructorID})
	}
	if filter.Status != "" {
		where = append(where, goqu.Ex{"status": filter.Status})
	}
	if filter.DateFrom != nil {
		where = append(where, goqu.C("lesson_date").Gte(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where = append(where, goqu.C("lesson_date").Lte(*filter.DateTo))
	}

	return where
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*entities.Booking, error) {
	booking := &entities.Booking{}
	var paidAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.InstructorID,
		&booking.LessonType,
		&booking.LessonDate,
		&booking.StartTime,
		&booking.DurationHours,
		&booking.Status,
		&booking.PickupLocation,
		&booking.DropoffLocation,
		&booking.SpecialRequests,
		&booking.Price.LessonCost,
		&booking.Price.BookingFee,
		&booking.Price.Total,
		&booking.Payment.Status,
		&booking.Payment.Method,
		&booking.Payment.TransactionID,
		&paidAt,
		&booking.StudentNotes,
		&booking.InstructorNotes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paidAt.Valid {
		booking.Payment.PaidAt = &paidAt.Time
	}
	return booking, nil
}

func collectBookings(rows *sql.Rows) ([]*entities.Booking, error) {
	var bookings []*entities.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating bookings", err)
	}
	return bookings, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
