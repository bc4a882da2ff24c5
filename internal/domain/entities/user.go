package entities

import (
	"time"
)

// Role identifies the kind of account a user holds. Role is fixed at
// registration; no operation reassigns it.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// IsValid reports whether the role is one of the defined values.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// Instructor hourly rate bounds and rating range.
const (
	MinHourlyRate = 20.0
	MaxHourlyRate = 100.0
	MaxRating     = 5.0
)

// User represents an account. Role-specific fields live on the profile
// pointers so an instructor-only field can never appear on a student record:
// exactly the profile matching Role is non-nil.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Phone        string    `json:"phone" db:"phone"`
	Role         Role      `json:"role" db:"role"`
	Address      *Address  `json:"address,omitempty" db:"-"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Student    *StudentProfile    `json:"student,omitempty" db:"-"`
	Instructor *InstructorProfile `json:"instructor,omitempty" db:"-"`
}

// Address represents a postal address
type Address struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	ZipCode string `json:"zip_code" db:"zip_code"`
	Country string `json:"country" db:"country"`
}

// StudentProfile holds the student-only fields.
type StudentProfile struct {
	LicenseNumber     string              `json:"license_number,omitempty" db:"license_number"`
	EmergencyContact  string              `json:"emergency_contact,omitempty" db:"emergency_contact"`
	MedicalConditions []string            `json:"medical_conditions,omitempty" db:"-"`
	Preferences       BookingPreferences  `json:"preferences" db:"-"`
}

// BookingPreferences captures a student's default lesson preferences.
type BookingPreferences struct {
	InstructorGender string `json:"instructor_gender,omitempty" db:"instructor_gender"`
	Transmission     string `json:"transmission,omitempty" db:"transmission"`
	LessonDuration   int    `json:"lesson_duration,omitempty" db:"lesson_duration"`
}

// InstructorProfile holds the instructor-only fields.
type InstructorProfile struct {
	LicenseNumber   string             `json:"license_number" db:"license_number"`
	BadgeNumber     string             `json:"badge_number" db:"badge_number"`
	ExperienceYears int                `json:"experience_years" db:"experience_years"`
	Specialties     []string           `json:"specialties,omitempty" db:"-"`
	HourlyRate      float64            `json:"hourly_rate" db:"hourly_rate"`
	Availability    WeeklyAvailability `json:"availability,omitempty" db:"-"`
	Location        ServiceLocation    `json:"location" db:"-"`
	Vehicle         Vehicle            `json:"vehicle" db:"-"`
	Rating          float64            `json:"rating" db:"rating"`
	ReviewCount     int                `json:"review_count" db:"review_count"`
	IsVerified      bool               `json:"is_verified" db:"is_verified"`
	Documents       Documents          `json:"documents,omitempty" db:"-"`
}

// WeeklyAvailability maps a lowercase day name ("monday".."sunday") to the
// slot labels the instructor works that day.
type WeeklyAvailability map[string][]string

// SlotsFor returns the declared slots for the weekday of the given date.
func (w WeeklyAvailability) SlotsFor(date time.Time) []string {
	if w == nil {
		return nil
	}
	day := dayNames[date.Weekday()]
	return w[day]
}

var dayNames = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

// ServiceLocation is where an instructor operates.
type ServiceLocation struct {
	City         string    `json:"city" db:"city"`
	ServiceAreas []string  `json:"service_areas,omitempty" db:"-"`
	Coordinates  *Location `json:"coordinates,omitempty" db:"-"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Vehicle describes the instructor's teaching car.
type Vehicle struct {
	Make         string `json:"make" db:"vehicle_make"`
	Model        string `json:"model" db:"vehicle_model"`
	Year         int    `json:"year" db:"vehicle_year"`
	Transmission string `json:"transmission" db:"vehicle_transmission"`
	DualControls bool   `json:"dual_controls" db:"vehicle_dual_controls"`
}

// Documents holds references to uploaded verification documents.
type Documents struct {
	License         string `json:"license,omitempty" db:"doc_license"`
	Badge           string `json:"badge,omitempty" db:"doc_badge"`
	Insurance       string `json:"insurance,omitempty" db:"doc_insurance"`
	BackgroundCheck string `json:"background_check,omitempty" db:"doc_background_check"`
}
