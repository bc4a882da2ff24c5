package routes

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/drivehub/drivehub-backend/internal/api/handlers"
	"github.com/drivehub/drivehub-backend/internal/api/middleware"
	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/auth"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler       *handlers.AuthHandler
	instructorHandler *handlers.InstructorHandler
	bookingHandler    *handlers.BookingHandler
	reviewHandler     *handlers.ReviewHandler

	tokens          *auth.TokenManager
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	logger          zerolog.Logger
	allowedOrigins  []string
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	instructorHandler *handlers.InstructorHandler,
	bookingHandler *handlers.BookingHandler,
	reviewHandler *handlers.ReviewHandler,
	tokens *auth.TokenManager,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		authHandler:       authHandler,
		instructorHandler: instructorHandler,
		bookingHandler:    bookingHandler,
		reviewHandler:     reviewHandler,
		tokens:            tokens,
		cacheMiddleware:   cacheMiddleware,
		metrics:           metrics,
		logger:            logger,
		allowedOrigins:    allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	requireAuth := middleware.RequireAuth(r.tokens)
	requireAdmin := func(h http.Handler) http.Handler {
		return requireAuth(middleware.RequireRole(entities.RoleAdmin)(h))
	}

	// Auth endpoints
	r.mux.HandleFunc("POST /api/auth/register", r.authHandler.Register)
	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/auth/forgot-password", r.authHandler.ForgotPassword)

	// Instructor discovery endpoints
	r.mux.HandleFunc("GET /api/instructors", r.instructorHandler.ListInstructors)
	r.mux.HandleFunc("GET /api/instructors/{id}", r.instructorHandler.GetInstructor)
	r.mux.HandleFunc("GET /api/instructors/{id}/availability", r.instructorHandler.GetAvailability)
	r.mux.HandleFunc("GET /api/instructors/{id}/reviews", r.instructorHandler.ListReviews)

	// Booking endpoints
	r.mux.Handle("POST /api/bookings", requireAuth(http.HandlerFunc(r.bookingHandler.CreateBooking)))
	r.mux.Handle("GET /api/bookings", requireAuth(http.HandlerFunc(r.bookingHandler.ListBookings)))
	r.mux.Handle("GET /api/bookings/{id}", requireAuth(http.HandlerFunc(r.bookingHandler.GetBooking)))
	r.mux.Handle("PATCH /api/bookings/{id}", requireAuth(http.HandlerFunc(r.bookingHandler.UpdateBookingStatus)))

	// Review endpoints
	r.mux.Handle("POST /api/reviews", requireAuth(http.HandlerFunc(r.reviewHandler.CreateReview)))

	// Admin endpoints
	r.mux.Handle("GET /api/admin/stats", requireAdmin(http.HandlerFunc(r.bookingHandler.GetStats)))

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(r.logger)(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.Compression(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
