package entities

import "time"

// Review is a student's write-once review of an instructor after a booking.
type Review struct {
	ID           string    `json:"id" db:"id"`
	BookingID    string    `json:"booking_id" db:"booking_id"`
	StudentID    string    `json:"student_id" db:"student_id"`
	InstructorID string    `json:"instructor_id" db:"instructor_id"`
	Rating       int       `json:"rating" db:"rating"` // 1-5
	Comment      string    `json:"comment" db:"comment"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
