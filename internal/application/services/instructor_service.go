package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
	"github.com/drivehub/drivehub-backend/pkg/utils"
)

// InstructorService handles instructor discovery and lookup. Free-text
// queries go through the search index when one is configured; structured
// filtering falls back to the primary database.
type InstructorService struct {
	userRepo   repositories.UserRepository
	searchRepo repositories.InstructorSearchRepository
}

// NewInstructorService creates a new instructor service
func NewInstructorService(userRepo repositories.UserRepository, searchRepo repositories.InstructorSearchRepository) *InstructorService {
	return &InstructorService{
		userRepo:   userRepo,
		searchRepo: searchRepo,
	}
}

// ListInstructors returns a page of active instructors matching the
// filter. When query is non-empty and a search index is available, the
// index serves the request; on index errors the database result is used
// instead so discovery degrades rather than fails.
func (s *InstructorService) ListInstructors(ctx context.Context, query string, filter repositories.InstructorFilter, page int) ([]*entities.User, repositories.Pagination, error) {
	if filter.MinRating < 0 || filter.MinRating > entities.MaxRating {
		return nil, repositories.Pagination{}, apperrors.NewValidationError("min rating must be between 0 and 5")
	}
	if filter.MaxRate < 0 {
		return nil, repositories.Pagination{}, apperrors.NewValidationError("max hourly rate must not be negative")
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
	if len(filter.Specialties) > 0 {
		wanted := make([]string, 0, len(filter.Specialties))
		for _, specialty := range filter.Specialties {
			if specialty == "" || specialty == "all" {
				continue
			}
			wanted = append(wanted, specialty)
		}
		filter.Specialties = utils.NormalizeSpecialties(wanted)
	}

	if query != "" && s.searchRepo != nil {
		instructors, total, err := s.searchRepo.Search(ctx, query, filter)
		if err == nil {
			return instructors, repositories.NewPagination(total, page, filter.Limit), nil
		}
		log.Ctx(ctx).Warn().Err(err).Str("query", query).Msg("instructor search failed, falling back to database")
	}

	instructors, total, err := s.userRepo.ListInstructors(ctx, filter)
	if err != nil {
		return nil, repositories.Pagination{}, err
	}
	return instructors, repositories.NewPagination(total, page, filter.Limit), nil
}

// GetInstructor returns a single instructor profile by id.
func (s *InstructorService) GetInstructor(ctx context.Context, id string) (*entities.User, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("instructor id is required")
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != entities.RoleInstructor || user.Instructor == nil {
		return nil, apperrors.NewNotFoundError("instructor not found")
	}
	return user, nil
}

// IndexInstructor pushes an instructor document into the search index.
// Index failures are logged, never surfaced: the database remains the
// source of truth.
func (s *InstructorService) IndexInstructor(ctx context.Context, instructor *entities.User) {
	if s.searchRepo == nil || instructor == nil || instructor.Instructor == nil {
		return
	}
	if err := s.searchRepo.Index(ctx, instructor); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("instructor_id", instructor.ID).Msg("failed to index instructor")
	}
}
