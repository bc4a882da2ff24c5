package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
)

// InstructorService defines the interface for instructor discovery
type InstructorService interface {
	ListInstructors(ctx context.Context, query string, filter repositories.InstructorFilter, page int) ([]*entities.User, repositories.Pagination, error)
	GetInstructor(ctx context.Context, id string) (*entities.User, error)
}

// AvailabilityService defines the interface for slot computation
type AvailabilityService interface {
	GetDayAvailability(ctx context.Context, instructorID string, date time.Time) (*entities.DayAvailability, error)
}

// ReviewReader lists stored reviews for an instructor
type ReviewReader interface {
	ListInstructorReviews(ctx context.Context, instructorID string, page, limit int) ([]*entities.Review, repositories.Pagination, error)
}

// InstructorHandler handles instructor discovery requests
type InstructorHandler struct {
	service      InstructorService
	availability AvailabilityService
	reviews      ReviewReader
}

// NewInstructorHandler creates a new instructor handler
func NewInstructorHandler(service InstructorService, availability AvailabilityService, reviews ReviewReader) *InstructorHandler {
	return &InstructorHandler{
		service:      service,
		availability: availability,
		reviews:      reviews,
	}
}

// ListInstructors handles GET /api/instructors
func (h *InstructorHandler) ListInstructors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.InstructorFilter{
		City:        query.Get("city"),
		Specialties: parseSpecialtyParams(query["specialty"]),
		SortBy:      repositories.InstructorSort(query.Get("sort_by")),
		Limit:       parseIntParam(query.Get("limit"), 0),
	}
	if v := query.Get("min_rating"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid min_rating")
			return
		}
		filter.MinRating = parsed
	}
	if v := query.Get("max_rate"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid max_rate")
			return
		}
		filter.MaxRate = parsed
	}

	page := parseIntParam(query.Get("page"), 1)

	instructors, pagination, err := h.service.ListInstructors(r.Context(), query.Get("q"), filter, page)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	publics := make([]*publicUser, 0, len(instructors))
	for _, instructor := range instructors {
		publics = append(publics, toPublicUser(instructor))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"instructors": publics,
		"pagination":  pagination,
	})
}

// GetInstructor handles GET /api/instructors/{id}
func (h *InstructorHandler) GetInstructor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "instructor ID is required")
		return
	}

	instructor, err := h.service.GetInstructor(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toPublicUser(instructor))
}

// GetAvailability handles GET /api/instructors/{id}/availability
func (h *InstructorHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "instructor ID is required")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		respondWithError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return
	}

	availability, err := h.availability.GetDayAvailability(r.Context(), id, date)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, availability)
}

// ListReviews handles GET /api/instructors/{id}/reviews
func (h *InstructorHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "instructor ID is required")
		return
	}

	query := r.URL.Query()
	page := parseIntParam(query.Get("page"), 1)
	limit := parseIntParam(query.Get("limit"), 0)

	reviews, pagination, err := h.reviews.ListInstructorReviews(r.Context(), id, page, limit)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews":    reviews,
		"pagination": pagination,
	})
}

// parseSpecialtyParams flattens repeated specialty params and comma
// lists into one slice; the entries are required conjunctively.
func parseSpecialtyParams(values []string) []string {
	var specialties []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				specialties = append(specialties, part)
			}
		}
	}
	return specialties
}
