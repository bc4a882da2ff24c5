package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
)

// AuthService defines the interface for account operations
type AuthService interface {
	Register(ctx context.Context, user *entities.User, password string) (*entities.User, string, error)
	Login(ctx context.Context, email, password string) (*entities.User, string, error)
	ForgotPassword(ctx context.Context, email string) error
}

// AuthHandler handles registration and login requests
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Email      string                      `json:"email"`
	Password   string                      `json:"password"`
	FirstName  string                      `json:"first_name"`
	LastName   string                      `json:"last_name"`
	Phone      string                      `json:"phone"`
	Role       entities.Role               `json:"role"`
	Address    *entities.Address           `json:"address,omitempty"`
	Student    *entities.StudentProfile    `json:"student_profile,omitempty"`
	Instructor *entities.InstructorProfile `json:"instructor_profile,omitempty"`
}

type authResponse struct {
	User  *publicUser `json:"user"`
	Token string      `json:"token"`
}

// publicUser is the wire shape of an account, without credential fields.
type publicUser struct {
	ID         string                      `json:"id"`
	Email      string                      `json:"email"`
	FirstName  string                      `json:"first_name"`
	LastName   string                      `json:"last_name"`
	Phone      string                      `json:"phone,omitempty"`
	Role       entities.Role               `json:"role"`
	Address    *entities.Address           `json:"address,omitempty"`
	Student    *entities.StudentProfile    `json:"student_profile,omitempty"`
	Instructor *entities.InstructorProfile `json:"instructor_profile,omitempty"`
}

func toPublicUser(user *entities.User) *publicUser {
	return &publicUser{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Phone:      user.Phone,
		Role:       user.Role,
		Address:    user.Address,
		Student:    user.Student,
		Instructor: user.Instructor,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user := &entities.User{
		Email:      payload.Email,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Phone:      payload.Phone,
		Role:       payload.Role,
		Address:    payload.Address,
		Student:    payload.Student,
		Instructor: payload.Instructor,
	}

	created, token, err := h.service.Register(r.Context(), user, payload.Password)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, authResponse{User: toPublicUser(created), Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, token, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, authResponse{User: toPublicUser(user), Token: token})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.ForgotPassword(r.Context(), payload.Email); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	// Same response whether or not the account exists.
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "if the account exists, a reset email has been sent",
	})
}
