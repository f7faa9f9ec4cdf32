package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell/backend/internal/middleware"
	"github.com/inkwell/backend/internal/models"
	"go.uber.org/zap"
)

// PostService is the interface that wraps methods for blog post business
// logic.
type PostService interface {
	// List returns one page of the filtered, sorted post collection.
	List(ctx context.Context, filter models.PostFilter) (*models.PagedResult[models.PostResponse], error)
	// Get retrieves a single post.
	Get(ctx context.Context, postID int) (*models.PostResponse, error)
	// ListByAuthor retrieves the caller's own posts.
	ListByAuthor(ctx context.Context, userID int) ([]models.PostResponse, error)
	// GetAuthorPost retrieves one of the caller's own posts.
	GetAuthorPost(ctx context.Context, userID, postID int) (*models.PostResponse, error)
	// Create inserts a post owned by the caller.
	Create(ctx context.Context, input *models.PostInput, userID int) (*models.PostResponse, error)
	// Update replaces a post's content under the ownership policy.
	Update(ctx context.Context, postID int, input *models.PostInput, callerID int, callerRole models.Role) error
	// Delete removes a post under the ownership policy.
	Delete(ctx context.Context, postID int, callerID int, callerRole models.Role) error
}

// PostHandler handles blog post HTTP requests
type PostHandler struct {
	BaseHandler
	postService PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		BaseHandler: BaseHandler{Logger: logger},
		postService: postService,
	}
}

// RegisterRoutes registers all post routes. Reading is open to every
// authenticated role; writing to Admin and Author only.
func (h *PostHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	readers := middleware.RequireRoles(models.RoleAdmin, models.RoleAuthor, models.RoleReader)
	writers := middleware.RequireRoles(models.RoleAdmin, models.RoleAuthor)

	r.Route("/posts", func(r chi.Router) {
		r.Use(authMiddleware)
		r.With(readers).Get("/", h.List)
		r.With(writers).Get("/mine", h.MyPosts)
		r.With(writers).Get("/mine/{id}", h.MyPost)
		r.With(readers).Get("/{id}", h.Get)
		r.With(writers).Post("/", h.Create)
		r.With(writers).Put("/{id}", h.Update)
		r.With(writers).Delete("/{id}", h.Delete)
	})
}

// List handles GET /posts
// @Summary List blog posts
// @Description Filtered, sorted, paginated post listing.
// @Tags posts
// @Produce json
// @Param author query string false "Filter by author display name"
// @Param tag query string false "Filter by tag name"
// @Param category query string false "Filter by category"
// @Param search query string false "Substring search over title, content and category"
// @Param sortBy query string false "Sort key: title, createdAt or author"
// @Param isDescending query bool false "Sort direction"
// @Param pageNumber query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 10)"
// @Success 200 {object} models.PagedResult[models.PostResponse]
// @Security ApiKeyAuth
// @Router /posts [get]
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.PostFilter{
		Author:     r.URL.Query().Get("author"),
		Tag:        r.URL.Query().Get("tag"),
		Category:   r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("search"),
		SortBy:     r.URL.Query().Get("sortBy"),
		Descending: queryBool(r, "isDescending"),
		PageNumber: queryInt(r, "pageNumber", 1),
		PageSize:   queryInt(r, "pageSize", 10),
	}

	result, err := h.postService.List(r.Context(), filter)
	if err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// Get handles GET /posts/{id}
// @Summary Get a blog post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.PostResponse
// @Failure 404 {object} map[string]string "Post not found"
// @Security ApiKeyAuth
// @Router /posts/{id} [get]
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.postID(w, r)
	if !ok {
		return
	}

	post, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, post)
}

// MyPosts handles GET /posts/mine
// @Summary List own blog posts
// @Tags posts
// @Produce json
// @Success 200 {array} models.PostResponse
// @Security ApiKeyAuth
// @Router /posts/mine [get]
func (h *PostHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	posts, err := h.postService.ListByAuthor(r.Context(), claims.UserID)
	if err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, posts)
}

// MyPost handles GET /posts/mine/{id}
// @Summary Get one of the caller's own blog posts
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.PostResponse
// @Failure 404 {object} map[string]string "Post not found"
// @Security ApiKeyAuth
// @Router /posts/mine/{id} [get]
func (h *PostHandler) MyPost(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	postID, ok := h.postID(w, r)
	if !ok {
		return
	}

	post, err := h.postService.GetAuthorPost(r.Context(), claims.UserID, postID)
	if err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, post)
}

// Create handles POST /posts
// @Summary Create a blog post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body models.PostInput true "Post payload"
// @Success 201 {object} models.PostResponse
// @Failure 400 {object} map[string]string "Validation failed"
// @Security ApiKeyAuth
// @Router /posts [post]
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input models.PostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), &input, claims.UserID)
	if err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, post)
}

// Update handles PUT /posts/{id}
// @Summary Update a blog post
// @Description Replaces title, content, category and tags. Owner or Admin only.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body models.PostInput true "Post payload"
// @Success 204 "Updated"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Post not found"
// @Failure 409 {object} map[string]string "Concurrent modification"
// @Security ApiKeyAuth
// @Router /posts/{id} [put]
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	postID, ok := h.postID(w, r)
	if !ok {
		return
	}

	var input models.PostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.postService.Update(r.Context(), postID, &input, claims.UserID, claims.Role); err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /posts/{id}
// @Summary Delete a blog post
// @Description Removes the post and its tag associations. Owner or Admin only.
// @Tags posts
// @Param id path int true "Post ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Post not found"
// @Security ApiKeyAuth
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	postID, ok := h.postID(w, r)
	if !ok {
		return
	}

	if err := h.postService.Delete(r.Context(), postID, claims.UserID, claims.Role); err != nil {
		h.RespondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// postID parses the {id} path parameter
func (h *PostHandler) postID(w http.ResponseWriter, r *http.Request) (int, bool) {
	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || postID < 1 {
		h.RespondError(w, http.StatusBadRequest, "invalid post id")
		return 0, false
	}
	return postID, true
}

// queryInt parses an integer query parameter with a fallback
func queryInt(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// queryBool parses a boolean query parameter, defaulting to false
func queryBool(r *http.Request, name string) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return false
	}
	return value
}
