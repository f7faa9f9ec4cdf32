package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell/backend/internal/middleware"
	"github.com/inkwell/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for account business logic.
type AuthService interface {
	// Register validates the payload, ensures email uniqueness and creates a
	// user with the default Author role.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error)
	// Login verifies credentials and returns a signed bearer token.
	Login(ctx context.Context, req *models.LoginRequest) (string, error)
	// UpdateUserDetails applies the supplied profile fields to the user.
	UpdateUserDetails(ctx context.Context, userID int, req *models.UpdateUserRequest) (*models.UserResponse, error)
}

// AuthHandler handles account-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all account routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/account", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(authMiddleware).Patch("/update", h.Update)
	})
}

// Register handles POST /account/register
// @Summary Register a new user
// @Description Register a new user with name, email, password and optional bio and picture URL.
// @Tags account
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} map[string]string "Validation failed"
// @Failure 409 {object} map[string]string "Email already in use"
// @Router /account/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, user)
}

// Login handles POST /account/login
// @Summary Login user
// @Description Authenticate with email and password. Returns a bearer token valid for 60 minutes.
// @Tags account
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /account/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.TokenResponse{Token: token})
}

// Update handles PATCH /account/update
// @Summary Update own profile
// @Description Apply the supplied fields to the caller's profile. Password is re-hashed only when supplied non-empty.
// @Tags account
// @Accept json
// @Produce json
// @Param request body models.UpdateUserRequest true "Profile update"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} map[string]string "User not found"
// @Failure 409 {object} map[string]string "Email already in use"
// @Security ApiKeyAuth
// @Router /account/update [patch]
func (h *AuthHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.UpdateUserDetails(r.Context(), claims.UserID, &req)
	if err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}
