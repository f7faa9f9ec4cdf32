package services

import (
	"context"

	"github.com/inkwell/backend/internal/models"
	"go.uber.org/zap"
)

// Listing defaults
const (
	defaultPageNumber = 1
	defaultPageSize   = 10
)

// PostRepository is the interface that wraps methods for blog post data
// access.
type PostRepository interface {
	// List returns one page of matching posts plus the total match count.
	List(ctx context.Context, filter models.PostFilter) ([]models.PostResponse, int, error)
	// GetByID retrieves a single post.
	// Returns models.ErrPostNotFound when the id does not resolve.
	GetByID(ctx context.Context, postID int) (*models.PostResponse, error)
	// GetByAuthor retrieves all posts owned by the user.
	GetByAuthor(ctx context.Context, userID int) ([]models.PostResponse, error)
	// GetAuthorPost retrieves one post only if owned by the user.
	GetAuthorPost(ctx context.Context, userID, postID int) (*models.PostResponse, error)
	// Create inserts a post for an existing user.
	// Returns models.ErrUserNotFound when the owner does not exist.
	Create(ctx context.Context, input *models.PostInput, userID int) (*models.PostResponse, error)
	// Ownership returns the owning user id and current version of a post.
	Ownership(ctx context.Context, postID int) (int, int, error)
	// Update replaces the mutable fields of a post at the given version.
	// Returns models.ErrConcurrencyConflict on a stale version.
	Update(ctx context.Context, postID int, input *models.PostInput, version int) error
	// Delete removes a post.
	Delete(ctx context.Context, postID int) error
}

// postService implements listing, retrieval and ownership-checked mutation
// of blog posts.
type postService struct {
	postRepo PostRepository
	logger   *zap.Logger
}

// NewPostService creates a new post service
func NewPostService(postRepo PostRepository, logger *zap.Logger) *postService {
	return &postService{
		postRepo: postRepo,
		logger:   logger,
	}
}

// List returns a filtered, sorted, paginated page of posts. Out-of-range
// paging inputs are clamped; an empty match is a valid empty page.
func (s *postService) List(ctx context.Context, filter models.PostFilter) (*models.PagedResult[models.PostResponse], error) {
	if filter.PageNumber < 1 {
		filter.PageNumber = defaultPageNumber
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}

	items, total, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.PostResponse{}
	}

	return &models.PagedResult[models.PostResponse]{
		Items:      items,
		TotalItems: total,
		PageNumber: filter.PageNumber,
		PageSize:   filter.PageSize,
	}, nil
}

// Get retrieves a single post
func (s *postService) Get(ctx context.Context, postID int) (*models.PostResponse, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// ListByAuthor retrieves the caller's own posts
func (s *postService) ListByAuthor(ctx context.Context, userID int) ([]models.PostResponse, error) {
	posts, err := s.postRepo.GetByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.PostResponse{}
	}
	return posts, nil
}

// GetAuthorPost retrieves one of the caller's own posts
func (s *postService) GetAuthorPost(ctx context.Context, userID, postID int) (*models.PostResponse, error) {
	return s.postRepo.GetAuthorPost(ctx, userID, postID)
}

// Create validates the input and inserts a post owned by userID
func (s *postService) Create(ctx context.Context, input *models.PostInput, userID int) (*models.PostResponse, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	input.Tags = dedupTags(input.Tags)

	post, err := s.postRepo.Create(ctx, input, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("post created", zap.Int("postId", post.ID), zap.Int("userId", userID))
	return post, nil
}

// Update replaces a post's content. The owning user may update their own
// post; Admin may update any post; anyone else gets ErrForbidden.
func (s *postService) Update(ctx context.Context, postID int, input *models.PostInput, callerID int, callerRole models.Role) error {
	if err := input.Validate(); err != nil {
		return err
	}

	ownerID, version, err := s.postRepo.Ownership(ctx, postID)
	if err != nil {
		return err
	}
	if ownerID != callerID && callerRole != models.RoleAdmin {
		return models.ErrForbidden
	}

	input.Tags = dedupTags(input.Tags)
	if err := s.postRepo.Update(ctx, postID, input, version); err != nil {
		return err
	}

	s.logger.Info("post updated", zap.Int("postId", postID), zap.Int("userId", callerID))
	return nil
}

// Delete removes a post under the same ownership policy as Update
func (s *postService) Delete(ctx context.Context, postID int, callerID int, callerRole models.Role) error {
	ownerID, _, err := s.postRepo.Ownership(ctx, postID)
	if err != nil {
		return err
	}
	if ownerID != callerID && callerRole != models.RoleAdmin {
		return models.ErrForbidden
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	s.logger.Info("post deleted", zap.Int("postId", postID), zap.Int("userId", callerID))
	return nil
}

// dedupTags drops duplicates and blank entries, keeping first-occurrence
// order. Matching is exact and case-sensitive.
func dedupTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	deduped := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		deduped = append(deduped, tag)
	}
	return deduped
}
