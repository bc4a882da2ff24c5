package entities

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no-show"
)

// IsValid reports whether the status is one of the defined values.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

// BlocksSlot reports whether a booking in this status holds its time slot.
// Cancelled, completed and no-show bookings release the slot.
func (s BookingStatus) BlocksSlot() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// LessonType represents the kind of lesson booked
type LessonType string

const (
	LessonTypeStandard  LessonType = "standard"
	LessonTypeIntensive LessonType = "intensive"
	LessonTypeRefresher LessonType = "refresher"
	LessonTypeTestPrep  LessonType = "test-prep"
)

// IsValid reports whether the lesson type is one of the defined values.
func (l LessonType) IsValid() bool {
	switch l {
	case LessonTypeStandard, LessonTypeIntensive, LessonTypeRefresher, LessonTypeTestPrep:
		return true
	}
	return false
}

// PaymentStatus represents the state of a booking's payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Booking represents a scheduled driving lesson between a student and an
// instructor. LessonDate holds the calendar day at midnight UTC; StartTime is
// the slot label ("09:00".."18:00").
type Booking struct {
	ID              string        `json:"id" db:"id"`
	StudentID       string        `json:"student_id" db:"student_id"`
	InstructorID    string        `json:"instructor_id" db:"instructor_id"`
	LessonType      LessonType    `json:"lesson_type" db:"lesson_type"`
	LessonDate      time.Time     `json:"lesson_date" db:"lesson_date"`
	StartTime       string        `json:"start_time" db:"start_time"`
	DurationHours   float64       `json:"duration_hours" db:"duration_hours"`
	Status          BookingStatus `json:"status" db:"status"`
	PickupLocation  string        `json:"pickup_location" db:"pickup_location"`
	DropoffLocation string        `json:"dropoff_location,omitempty" db:"dropoff_location"`
	SpecialRequests string        `json:"special_requests,omitempty" db:"special_requests"`
	Price           Price         `json:"price" db:"-"`
	Payment         Payment       `json:"payment" db:"-"`
	StudentNotes    string        `json:"student_notes,omitempty" db:"student_notes"`
	InstructorNotes string        `json:"instructor_notes,omitempty" db:"instructor_notes"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// Price is the booking's cost breakdown. Total must equal
// LessonCost + BookingFee.
type Price struct {
	LessonCost float64 `json:"lesson_cost" db:"lesson_cost"`
	BookingFee float64 `json:"booking_fee" db:"booking_fee"`
	Total      float64 `json:"total" db:"price_total"`
}

// Payment is the booking's payment sub-record.
type Payment struct {
	Status        PaymentStatus `json:"status" db:"payment_status"`
	Method        string        `json:"method,omitempty" db:"payment_method"`
	TransactionID string        `json:"transaction_id,omitempty" db:"payment_transaction_id"`
	PaidAt        *time.Time    `json:"paid_at,omitempty" db:"payment_paid_at"`
}

// BookingStats aggregates bookings over a date range. TotalBookings equals
// the sum of the five per-status counts; TotalRevenue sums price totals of
// completed bookings only.
type BookingStats struct {
	TotalBookings int     `json:"total_bookings"`
	Pending       int     `json:"pending"`
	Confirmed     int     `json:"confirmed"`
	Completed     int     `json:"completed"`
	Cancelled     int     `json:"cancelled"`
	NoShow        int     `json:"no_show"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// DayAvailability is the availability of one instructor on one date.
type DayAvailability struct {
	InstructorID   string   `json:"instructor_id"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
	BookedSlots    []string `json:"booked_slots"`
}
