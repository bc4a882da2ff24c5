package repositories

import (
	"context"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user with its role profile
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// Update updates a user and its role profile
	Update(ctx context.Context, user *entities.User) error

	// UpdateInstructorRating sets the aggregate rating and review count of
	// an instructor
	UpdateInstructorRating(ctx context.Context, instructorID string, rating float64, reviewCount int) error

	// ListInstructors retrieves active instructors matching the filter,
	// together with the total match count (ignoring pagination).
	ListInstructors(ctx context.Context, filter InstructorFilter) ([]*entities.User, int, error)

	// SetResetToken stores a password-reset token hash for a user
	SetResetToken(ctx context.Context, userID, tokenHash string) error
}

// InstructorFilter defines filters for listing instructors. Specialties
// are conjunctive: an instructor must cover every listed one. An "all"
// (or empty) entry means no specialty filter.
type InstructorFilter struct {
	City        string
	Specialties []string
	MinRating   float64
	MaxRate     float64
	SortBy      InstructorSort
	Limit       int
	Offset      int
}

// InstructorSort selects the listing order. All orders fall back to
// review_count DESC, id ASC so pages are deterministic.
type InstructorSort string

const (
	SortByRating     InstructorSort = "rating"     // rating DESC (default)
	SortByRate       InstructorSort = "rate"       // hourly_rate ASC
	SortByExperience InstructorSort = "experience" // experience_years DESC
)

// InstructorSearchRepository defines the interface for instructor search
// index operations (e.g. Typesense).
type InstructorSearchRepository interface {
	// Search finds instructors by free-text query plus filters
	Search(ctx context.Context, query string, filter InstructorFilter) ([]*entities.User, int, error)

	// Index adds or replaces an instructor in the index
	Index(ctx context.Context, instructor *entities.User) error

	// Delete removes an instructor from the index
	Delete(ctx context.Context, id string) error
}
