package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/drivehub/drivehub-backend/internal/api/handlers"
	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
)

// MockInstructorService defines the mock discovery service
type MockInstructorService struct {
	mock.Mock
}

func (m *MockInstructorService) ListInstructors(ctx context.Context, query string, filter repositories.InstructorFilter, page int) ([]*entities.User, repositories.Pagination, error) {
	args := m.Called(ctx, query, filter, page)
	if args.Get(0) == nil {
		return nil, repositories.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]*entities.User), args.Get(1).(repositories.Pagination), args.Error(2)
}

func (m *MockInstructorService) GetInstructor(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

// MockAvailabilityService defines the mock slot computation service
type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) GetDayAvailability(ctx context.Context, instructorID string, date time.Time) (*entities.DayAvailability, error) {
	args := m.Called(ctx, instructorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DayAvailability), args.Error(1)
}

// MockReviewReader defines the mock review listing service
type MockReviewReader struct {
	mock.Mock
}

func (m *MockReviewReader) ListInstructorReviews(ctx context.Context, instructorID string, page, limit int) ([]*entities.Review, repositories.Pagination, error) {
	args := m.Called(ctx, instructorID, page, limit)
	if args.Get(0) == nil {
		return nil, repositories.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]*entities.Review), args.Get(1).(repositories.Pagination), args.Error(2)
}

func sampleInstructor(id string) *entities.User {
	return &entities.User{
		ID:           id,
		Email:        "jo@example.com",
		FirstName:    "Jo",
		LastName:     "Adeyemi",
		Role:         entities.RoleInstructor,
		IsActive:     true,
		PasswordHash: "should-never-leak",
		Instructor: &entities.InstructorProfile{
			LicenseNumber: "ADI-123",
			HourlyRate:    40.0,
			Rating:        4.8,
			ReviewCount:   52,
		},
	}
}

func TestInstructorHandler_ListInstructors(t *testing.T) {
	t.Run("lists instructors with filters", func(t *testing.T) {
		mockService := new(MockInstructorService)
		handler := handlers.NewInstructorHandler(mockService, new(MockAvailabilityService), new(MockReviewReader))

		mockService.On("ListInstructors", mock.Anything, "patient", mock.MatchedBy(func(f repositories.InstructorFilter) bool {
			return f.City == "Leeds" && f.MinRating == 4.0 && f.MaxRate == 45.0
		}), 1).Return([]*entities.User{sampleInstructor("instructor-1")}, repositories.Pagination{Total: 1, Page: 1, Pages: 1, Limit: 10}, nil)

		req := httptest.NewRequest("GET", "/api/instructors?q=patient&city=Leeds&min_rating=4.0&max_rate=45.0", nil)
		w := httptest.NewRecorder()

		handler.ListInstructors(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "should-never-leak")

		var resp struct {
			Instructors []map[string]interface{} `json:"instructors"`
			Pagination  repositories.Pagination  `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Instructors, 1)
		assert.Equal(t, 1, resp.Pagination.Total)
	})

	t.Run("collects repeated and comma-separated specialty params", func(t *testing.T) {
		mockService := new(MockInstructorService)
		handler := handlers.NewInstructorHandler(mockService, new(MockAvailabilityService), new(MockReviewReader))

		mockService.On("ListInstructors", mock.Anything, "", mock.MatchedBy(func(f repositories.InstructorFilter) bool {
			return assert.ObjectsAreEqual([]string{"manual", "night-driving", "motorway"}, f.Specialties)
		}), 1).Return([]*entities.User{}, repositories.Pagination{Page: 1, Pages: 1, Limit: 10}, nil)

		req := httptest.NewRequest("GET", "/api/instructors?specialty=manual&specialty=night-driving,%20motorway", nil)
		w := httptest.NewRecorder()

		handler.ListInstructors(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a non-numeric rating filter", func(t *testing.T) {
		mockService := new(MockInstructorService)
		handler := handlers.NewInstructorHandler(mockService, new(MockAvailabilityService), new(MockReviewReader))

		req := httptest.NewRequest("GET", "/api/instructors?min_rating=high", nil)
		w := httptest.NewRecorder()

		handler.ListInstructors(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "ListInstructors")
	})
}

func TestInstructorHandler_GetInstructor(t *testing.T) {
	t.Run("returns the profile without credentials", func(t *testing.T) {
		mockService := new(MockInstructorService)
		handler := handlers.NewInstructorHandler(mockService, new(MockAvailabilityService), new(MockReviewReader))

		mockService.On("GetInstructor", mock.Anything, "instructor-1").Return(sampleInstructor("instructor-1"), nil)

		req := httptest.NewRequest("GET", "/api/instructors/instructor-1", nil)
		req.SetPathValue("id", "instructor-1")
		w := httptest.NewRecorder()

		handler.GetInstructor(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "should-never-leak")
	})

	t.Run("maps not found to 404", func(t *testing.T) {
		mockService := new(MockInstructorService)
		handler := handlers.NewInstructorHandler(mockService, new(MockAvailabilityService), new(MockReviewReader))

		mockService.On("GetInstructor", mock.Anything, "ghost").
			Return(nil, apperrors.NewNotFoundError("instructor not found"))

		req := httptest.NewRequest("GET", "/api/instructors/ghost", nil)
		req.SetPathValue("id", "ghost")
		w := httptest.NewRecorder()

		handler.GetInstructor(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestInstructorHandler_GetAvailability(t *testing.T) {
	t.Run("returns open and booked slots", func(t *testing.T) {
		mockAvailability := new(MockAvailabilityService)
		handler := handlers.NewInstructorHandler(new(MockInstructorService), mockAvailability, new(MockReviewReader))

		date, _ := time.Parse("2006-01-02", "2027-03-04")
		mockAvailability.On("GetDayAvailability", mock.Anything, "instructor-1", date).
			Return(&entities.DayAvailability{
				InstructorID:   "instructor-1",
				Date:           "2027-03-04",
				AvailableSlots: []string{"09:00", "11:00"},
				BookedSlots:    []string{"10:00"},
			}, nil)

		req := httptest.NewRequest("GET", "/api/instructors/instructor-1/availability?date=2027-03-04", nil)
		req.SetPathValue("id", "instructor-1")
		w := httptest.NewRecorder()

		handler.GetAvailability(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp entities.DayAvailability
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"09:00", "11:00"}, resp.AvailableSlots)
		assert.Equal(t, []string{"10:00"}, resp.BookedSlots)
	})

	t.Run("requires a date parameter", func(t *testing.T) {
		mockAvailability := new(MockAvailabilityService)
		handler := handlers.NewInstructorHandler(new(MockInstructorService), mockAvailability, new(MockReviewReader))

		req := httptest.NewRequest("GET", "/api/instructors/instructor-1/availability", nil)
		req.SetPathValue("id", "instructor-1")
		w := httptest.NewRecorder()

		handler.GetAvailability(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockAvailability.AssertNotCalled(t, "GetDayAvailability")
	})

	t.Run("maps a past date to 400", func(t *testing.T) {
		mockAvailability := new(MockAvailabilityService)
		handler := handlers.NewInstructorHandler(new(MockInstructorService), mockAvailability, new(MockReviewReader))

		mockAvailability.On("GetDayAvailability", mock.Anything, "instructor-1", mock.Anything).
			Return(nil, apperrors.NewValidationError("cannot query availability for a past date"))

		req := httptest.NewRequest("GET", "/api/instructors/instructor-1/availability?date=2020-01-01", nil)
		req.SetPathValue("id", "instructor-1")
		w := httptest.NewRecorder()

		handler.GetAvailability(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInstructorHandler_ListReviews(t *testing.T) {
	t.Run("lists reviews newest first", func(t *testing.T) {
		mockReviews := new(MockReviewReader)
		handler := handlers.NewInstructorHandler(new(MockInstructorService), new(MockAvailabilityService), mockReviews)

		mockReviews.On("ListInstructorReviews", mock.Anything, "instructor-1", 1, 0).
			Return([]*entities.Review{{ID: "review-1", Rating: 5}}, repositories.Pagination{Total: 1, Page: 1, Pages: 1, Limit: 10}, nil)

		req := httptest.NewRequest("GET", "/api/instructors/instructor-1/reviews", nil)
		req.SetPathValue("id", "instructor-1")
		w := httptest.NewRecorder()

		handler.ListReviews(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Reviews []*entities.Review `json:"reviews"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Reviews, 1)
	})
}
