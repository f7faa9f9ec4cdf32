package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inkwell/backend/internal/models"
	"go.uber.org/zap"
)

// postRepository implements blog post data access: filtered, sorted and
// paginated queries over blog_posts joined with users and tags.
type postRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *sql.DB, logger *zap.Logger) *postRepository {
	return &postRepository{
		db:     db,
		logger: logger,
	}
}

const postColumns = `p.id, p.title, p.content, p.category, u.name, p.created_at, p.updated_at`

const postFrom = `FROM blog_posts p JOIN users u ON u.id = p.user_id`

// List returns the requested page of posts matching the filter, together
// with the total match count computed before pagination.
func (r *postRepository) List(ctx context.Context, filter models.PostFilter) ([]models.PostResponse, int, error) {
	where, args := buildPostFilter(filter)

	// Total count before LIMIT/OFFSET
	countQuery := `SELECT COUNT(*) ` + postFrom + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count posts", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := `SELECT ` + postColumns + ` ` + postFrom + where +
		` ORDER BY ` + orderClause(filter.SortBy, filter.Descending) +
		` LIMIT ? OFFSET ?`
	pageArgs := append(args, filter.PageSize, filter.PageSize*(filter.PageNumber-1))

	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		r.logger.Error("failed to query posts", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachTags(ctx, posts); err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// GetByID retrieves a single post with its author name and tags
func (r *postRepository) GetByID(ctx context.Context, postID int) (*models.PostResponse, error) {
	query := `SELECT ` + postColumns + ` ` + postFrom + ` WHERE p.id = ? LIMIT 1`
	return r.getOne(ctx, query, postID)
}

// GetByAuthor retrieves all posts owned by the given user
func (r *postRepository) GetByAuthor(ctx context.Context, userID int) ([]models.PostResponse, error) {
	query := `SELECT ` + postColumns + ` ` + postFrom +
		` WHERE p.user_id = ? ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query author posts", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to query author posts: %w", err)
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachTags(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// GetAuthorPost retrieves one post only if it is owned by the given user
func (r *postRepository) GetAuthorPost(ctx context.Context, userID, postID int) (*models.PostResponse, error) {
	query := `SELECT ` + postColumns + ` ` + postFrom +
		` WHERE p.id = ? AND p.user_id = ? LIMIT 1`
	return r.getOne(ctx, query, postID, userID)
}

// Create inserts a post for an existing user, resolving tags by name and
// creating missing ones.
func (r *postRepository) Create(ctx context.Context, input *models.PostInput, userID int) (*models.PostResponse, error) {
	var authorName string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM users WHERE id = ?`, userID).Scan(&authorName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up author: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)
	result, err := tx.ExecContext(ctx,
		`INSERT INTO blog_posts (title, content, category, user_id, created_at, version) VALUES (?, ?, ?, ?, ?, 1)`,
		input.Title, input.Content, input.Category, userID, now,
	)
	if err != nil {
		r.logger.Error("failed to insert post", zap.Error(err))
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	postID64, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	postID := int(postID64)

	if err := associateTags(ctx, tx, postID, input.Tags); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.PostResponse{
		ID:         postID,
		Title:      input.Title,
		Content:    input.Content,
		Category:   input.Category,
		AuthorName: authorName,
		Tags:       input.Tags,
		CreatedAt:  now,
	}, nil
}

// Ownership returns the owning user id and current version of a post
func (r *postRepository) Ownership(ctx context.Context, postID int) (int, int, error) {
	var ownerID, version int
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, version FROM blog_posts WHERE id = ? LIMIT 1`, postID,
	).Scan(&ownerID, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, models.ErrPostNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to look up post ownership: %w", err)
	}

	return ownerID, version, nil
}

// Update replaces title, content, category and tags of a post. The version
// argument must match the stored row or ErrConcurrencyConflict is returned.
func (r *postRepository) Update(ctx context.Context, postID int, input *models.PostInput, version int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)
	result, err := tx.ExecContext(ctx,
		`UPDATE blog_posts SET title = ?, content = ?, category = ?, updated_at = ?, version = version + 1 WHERE id = ? AND version = ?`,
		input.Title, input.Content, input.Category, now, postID, version,
	)
	if err != nil {
		r.logger.Error("failed to update post", zap.Error(err), zap.Int("postId", postID))
		return fmt.Errorf("failed to update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Either the post vanished or the version is stale
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT * FROM blog_posts WHERE id = ?)`, postID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check post existence: %w", err)
		}
		if !exists {
			return models.ErrPostNotFound
		}
		return models.ErrConcurrencyConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("failed to clear post tags: %w", err)
	}

	if err := associateTags(ctx, tx, postID, input.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a post. The post_tags rows cascade; shared tags survive.
func (r *postRepository) Delete(ctx context.Context, postID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, postID)
	if err != nil {
		r.logger.Error("failed to delete post", zap.Error(err), zap.Int("postId", postID))
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrPostNotFound
	}

	return nil
}

// getOne runs a single-post query and attaches tags
func (r *postRepository) getOne(ctx context.Context, query string, args ...any) (*models.PostResponse, error) {
	var post models.PostResponse
	var updatedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Category,
		&post.AuthorName,
		&post.CreatedAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPostNotFound
	}
	if err != nil {
		r.logger.Error("failed to get post", zap.Error(err))
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if updatedAt.Valid {
		t := updatedAt.Time
		post.UpdatedAt = &t
	}

	posts := []models.PostResponse{post}
	if err := r.attachTags(ctx, posts); err != nil {
		return nil, err
	}

	return &posts[0], nil
}

// attachTags loads the tag names of the given posts in one query
func (r *postRepository) attachTags(ctx context.Context, posts []models.PostResponse) error {
	for i := range posts {
		posts[i].Tags = []string{}
	}
	if len(posts) == 0 {
		return nil
	}

	placeholders := make([]string, len(posts))
	args := make([]any, len(posts))
	index := make(map[int]int, len(posts))
	for i := range posts {
		placeholders[i] = "?"
		args[i] = posts[i].ID
		index[posts[i].ID] = i
	}

	query := fmt.Sprintf(`
		SELECT pt.post_id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (%s)
		ORDER BY t.name
	`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query post tags", zap.Error(err))
		return fmt.Errorf("failed to query post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID int
		var name string
		if err := rows.Scan(&postID, &name); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Tags = append(posts[i].Tags, name)
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	return nil
}

// associateTags resolves tags by exact name, creating missing ones, and
// links them to the post.
func associateTags(ctx context.Context, tx *sql.Tx, postID int, tags []string) error {
	for _, name := range tags {
		var tagID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ? LIMIT 1`, name).Scan(&tagID)
		if errors.Is(err, sql.ErrNoRows) {
			result, err := tx.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, name)
			if err != nil {
				return fmt.Errorf("failed to create tag %q: %w", name, err)
			}
			tagID, err = result.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get tag id: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to look up tag %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID,
		); err != nil {
			return fmt.Errorf("failed to associate tag %q: %w", name, err)
		}
	}

	return nil
}

// buildPostFilter translates the filter into a WHERE clause and args
func buildPostFilter(filter models.PostFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Author != "" {
		conditions = append(conditions, "u.name = ?")
		args = append(args, filter.Author)
	}
	if filter.Tag != "" {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.name = ?)`)
		args = append(args, filter.Tag)
	}
	if filter.Category != "" {
		conditions = append(conditions, "p.category = ?")
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(p.title LIKE ? OR p.content LIKE ? OR p.category LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// orderClause maps a sort key to a whitelisted ORDER BY expression.
// Unrecognized or absent keys fall back to newest-first.
func orderClause(sortBy string, descending bool) string {
	direction := "ASC"
	if descending {
		direction = "DESC"
	}

	switch strings.ToLower(sortBy) {
	case "title":
		return "p.title " + direction
	case "createdat":
		return "p.created_at " + direction
	case "author":
		return "u.name " + direction
	default:
		return "p.created_at DESC"
	}
}

// scanPosts scans the joined post rows
func scanPosts(rows *sql.Rows) ([]models.PostResponse, error) {
	var posts []models.PostResponse
	for rows.Next() {
		var post models.PostResponse
		var updatedAt sql.NullTime
		err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.Category,
			&post.AuthorName,
			&post.CreatedAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			post.UpdatedAt = &t
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return posts, nil
}
