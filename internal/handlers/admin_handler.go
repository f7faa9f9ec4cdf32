package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell/backend/internal/models"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for user administration.
type AdminService interface {
	// ListUsers lists users with pagination and optional role/search filters.
	ListUsers(ctx context.Context, page, count int, role *models.Role, search string) ([]models.UserResponse, error)
	// GetUser retrieves a single user profile.
	GetUser(ctx context.Context, userID int) (*models.UserResponse, error)
	// SetActive bans or unbans a user.
	SetActive(ctx context.Context, userID int, active bool) error
}

// AdminHandler handles user administration HTTP requests
type AdminHandler struct {
	BaseHandler
	adminService AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		adminService: adminService,
	}
}

// RegisterRoutes registers all admin routes.
// The caller is expected to guard the group with the Admin role middleware.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Post("/{id}/ban", h.Ban)
		r.Post("/{id}/unban", h.Unban)
	})
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Tags admin
// @Produce json
// @Param pageNumber query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 10)"
// @Param role query string false "Filter by role: Admin, Author or Reader"
// @Param search query string false "Substring search over name and email"
// @Success 200 {array} models.UserResponse
// @Security ApiKeyAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var role *models.Role
	if roleStr := r.URL.Query().Get("role"); roleStr != "" {
		parsed := models.Role(roleStr)
		if !parsed.Valid() {
			h.RespondError(w, http.StatusBadRequest, "unknown role")
			return
		}
		role = &parsed
	}

	users, err := h.adminService.ListUsers(
		r.Context(),
		queryInt(r, "pageNumber", 1),
		queryInt(r, "pageSize", 10),
		role,
		r.URL.Query().Get("search"),
	)
	if err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// GetUser handles GET /admin/users/{id}
// @Summary Get a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} map[string]string "User not found"
// @Security ApiKeyAuth
// @Router /admin/users/{id} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.adminService.GetUser(r.Context(), userID)
	if err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// Ban handles POST /admin/users/{id}/ban
// @Summary Ban a user
// @Description A banned user cannot log in.
// @Tags admin
// @Param id path int true "User ID"
// @Success 204 "Banned"
// @Failure 404 {object} map[string]string "User not found"
// @Security ApiKeyAuth
// @Router /admin/users/{id}/ban [post]
func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// Unban handles POST /admin/users/{id}/unban
// @Summary Unban a user
// @Tags admin
// @Param id path int true "User ID"
// @Success 204 "Unbanned"
// @Failure 404 {object} map[string]string "User not found"
// @Security ApiKeyAuth
// @Router /admin/users/{id}/unban [post]
func (h *AdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.adminService.SetActive(r.Context(), userID, active); err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// userID parses the {id} path parameter
func (h *AdminHandler) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || userID < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return userID, true
}
