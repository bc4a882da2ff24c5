package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/drivehub/drivehub-backend/internal/api/middleware"
	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
)

const dateLayout = "2006-01-02"

// BookingService defines the interface for booking operations
type BookingService interface {
	CreateBooking(ctx context.Context, booking *entities.Booking) error
	GetBooking(ctx context.Context, id string) (*entities.Booking, error)
	ListBookings(ctx context.Context, filter repositories.BookingFilter, page int) ([]*entities.Booking, repositories.Pagination, error)
	UpdateBookingStatus(ctx context.Context, id string, status entities.BookingStatus, note string) (*entities.Booking, error)
	GetStats(ctx context.Context, from, to *time.Time) (*entities.BookingStats, error)
}

// BookingHandler handles booking requests
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type createBookingRequest struct {
	StudentID       string              `json:"student_id"`
	InstructorID    string              `json:"instructor_id"`
	LessonType      entities.LessonType `json:"lesson_type"`
	LessonDate      string              `json:"lesson_date"`
	StartTime       string              `json:"start_time"`
	DurationHours   float64             `json:"duration_hours"`
	PickupLocation  string              `json:"pickup_location"`
	DropoffLocation string              `json:"dropoff_location"`
	SpecialRequests string              `json:"special_requests"`
	StudentNotes    string              `json:"student_notes"`
	PaymentMethod   string              `json:"payment_method"`
	Price           entities.Price      `json:"price"`
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var payload createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	var lessonDate time.Time
	if payload.LessonDate != "" {
		parsed, err := time.Parse(dateLayout, payload.LessonDate)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid lesson_date format (use YYYY-MM-DD)")
			return
		}
		lessonDate = parsed
	}

	booking := &entities.Booking{
		StudentID:       payload.StudentID,
		InstructorID:    payload.InstructorID,
		LessonType:      payload.LessonType,
		LessonDate:      lessonDate,
		StartTime:       payload.StartTime,
		DurationHours:   payload.DurationHours,
		PickupLocation:  payload.PickupLocation,
		DropoffLocation: payload.DropoffLocation,
		SpecialRequests: payload.SpecialRequests,
		StudentNotes:    payload.StudentNotes,
		Price:           payload.Price,
		Payment: entities.Payment{
			Method: payload.PaymentMethod,
		},
	}

	// Students always book for themselves, whatever the payload says.
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok && claims.Role == entities.RoleStudent {
		booking.StudentID = claims.Subject
	}

	if err := h.service.CreateBooking(r.Context(), booking); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, booking)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "booking ID is required")
		return
	}

	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, booking)
}

// ListBookings handles GET /api/bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.BookingFilter{
		StudentID:    query.Get("student_id"),
		InstructorID: query.Get("instructor_id"),
		Status:       entities.BookingStatus(query.Get("status")),
		Limit:        parseIntParam(query.Get("limit"), 0),
	}

	if v := query.Get("date_from"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid date_from format (use YYYY-MM-DD)")
			return
		}
		filter.DateFrom = &parsed
	}
	if v := query.Get("date_to"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid date_to format (use YYYY-MM-DD)")
			return
		}
		filter.DateTo = &parsed
	}

	page := parseIntParam(query.Get("page"), 1)

	bookings, pagination, err := h.service.ListBookings(r.Context(), filter, page)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"bookings":   bookings,
		"pagination": pagination,
	})
}

type updateBookingStatusRequest struct {
	Status entities.BookingStatus `json:"status"`
	Note   string                 `json:"note"`
}

// UpdateBookingStatus handles PATCH /api/bookings/{id}
func (h *BookingHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "booking ID is required")
		return
	}

	var payload updateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	booking, err := h.service.UpdateBookingStatus(r.Context(), id, payload.Status, payload.Note)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, booking)
}

// GetStats handles GET /api/admin/stats
func (h *BookingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var from, to *time.Time
	if v := query.Get("date_from"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid date_from format (use YYYY-MM-DD)")
			return
		}
		from = &parsed
	}
	if v := query.Get("date_to"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid date_to format (use YYYY-MM-DD)")
			return
		}
		to = &parsed
	}

	stats, err := h.service.GetStats(r.Context(), from, to)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
