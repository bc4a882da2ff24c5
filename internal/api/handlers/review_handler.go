package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/drivehub/drivehub-backend/internal/api/middleware"
	"github.com/drivehub/drivehub-backend/internal/domain/entities"
)

// ReviewService defines the interface for review submission
type ReviewService interface {
	CreateReview(ctx context.Context, review *entities.Review) error
}

// ReviewHandler handles review submissions
type ReviewHandler struct {
	service ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type createReviewRequest struct {
	BookingID string `json:"booking_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// CreateReview handles POST /api/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var payload createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	review := &entities.Review{
		BookingID: payload.BookingID,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok && claims.Role == entities.RoleStudent {
		review.StudentID = claims.Subject
	}

	if err := h.service.CreateReview(r.Context(), review); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, review)
}
