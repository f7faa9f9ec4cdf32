package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/inkwell/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupPostTestRepository creates a post repository with a mock database
func setupPostTestRepository(t *testing.T) (*postRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func postRowColumns() []string {
	return []string{"id", "title", "content", "category", "name", "created_at", "updated_at"}
}

func tagRowColumns() []string {
	return []string{"post_id", "name"}
}

func TestPostRepository_List(t *testing.T) {
	createdAt := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	t.Run("no filters default sort", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM blog_posts p JOIN users u ON u\.id = p\.user_id`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows(postRowColumns()).
			AddRow(2, "Second", "content b", "go", "Alice", createdAt, nil).
			AddRow(1, "First", "content a", "go", "Bob", createdAt.Add(-time.Hour), nil)
		mock.ExpectQuery(`ORDER BY p\.created_at DESC LIMIT \? OFFSET \?`).
			WithArgs(10, 0).
			WillReturnRows(rows)

		tagRows := sqlmock.NewRows(tagRowColumns()).
			AddRow(2, "golang").
			AddRow(2, "web")
		mock.ExpectQuery(`FROM post_tags pt`).
			WithArgs(2, 1).
			WillReturnRows(tagRows)

		posts, total, err := repo.List(context.Background(), models.PostFilter{PageNumber: 1, PageSize: 10})

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, posts, 2)
		assert.Equal(t, []string{"golang", "web"}, posts[0].Tags)
		assert.Equal(t, []string{}, posts[1].Tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters and sort by title", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs("Alice", "golang", "tech", "%api%", "%api%", "%api%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows(postRowColumns()).
			AddRow(3, "API design", "content", "tech", "Alice", createdAt, nil)
		mock.ExpectQuery(`ORDER BY p\.title ASC LIMIT \? OFFSET \?`).
			WithArgs("Alice", "golang", "tech", "%api%", "%api%", "%api%", 5, 0).
			WillReturnRows(rows)

		mock.ExpectQuery(`FROM post_tags pt`).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(tagRowColumns()).AddRow(3, "golang"))

		filter := models.PostFilter{
			Author:     "Alice",
			Tag:        "golang",
			Category:   "tech",
			Search:     "api",
			SortBy:     "Title",
			PageNumber: 1,
			PageSize:   5,
		}
		posts, total, err := repo.List(context.Background(), filter)

		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, posts, 1)
		assert.Equal(t, []string{"golang"}, posts[0].Tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second page offset", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

		rows := sqlmock.NewRows(postRowColumns())
		for i := 11; i <= 20; i++ {
			rows.AddRow(i, "Post", "content", "go", "Alice", createdAt, nil)
		}
		mock.ExpectQuery(`LIMIT \? OFFSET \?`).
			WithArgs(10, 10).
			WillReturnRows(rows)

		mock.ExpectQuery(`FROM post_tags pt`).
			WillReturnRows(sqlmock.NewRows(tagRowColumns()))

		posts, total, err := repo.List(context.Background(), models.PostFilter{PageNumber: 2, PageSize: 10})

		require.NoError(t, err)
		assert.Equal(t, 25, total)
		assert.Len(t, posts, 10)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`LIMIT \? OFFSET \?`).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(postRowColumns()))

		posts, total, err := repo.List(context.Background(), models.PostFilter{PageNumber: 1, PageSize: 10})

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, posts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_GetByID(t *testing.T) {
	createdAt := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	updatedAt := createdAt.Add(2 * time.Hour)

	t.Run("success with tags", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(postRowColumns()).
			AddRow(4, "Title", "content", "go", "Alice", createdAt, updatedAt)
		mock.ExpectQuery(`WHERE p\.id = \? LIMIT 1`).
			WithArgs(4).
			WillReturnRows(rows)

		mock.ExpectQuery(`FROM post_tags pt`).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows(tagRowColumns()).AddRow(4, "golang").AddRow(4, "testing"))

		post, err := repo.GetByID(context.Background(), 4)

		require.NoError(t, err)
		assert.Equal(t, 4, post.ID)
		assert.Equal(t, "Alice", post.AuthorName)
		require.NotNil(t, post.UpdatedAt)
		assert.Equal(t, updatedAt, *post.UpdatedAt)
		assert.Equal(t, []string{"golang", "testing"}, post.Tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`WHERE p\.id = \? LIMIT 1`).
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)

		post, err := repo.GetByID(context.Background(), 99)

		assert.ErrorIs(t, err, models.ErrPostNotFound)
		assert.Nil(t, post)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_GetAuthorPost(t *testing.T) {
	repo, mock, cleanup := setupPostTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`WHERE p\.id = \? AND p\.user_id = \? LIMIT 1`).
		WithArgs(4, 2).
		WillReturnError(sql.ErrNoRows)

	post, err := repo.GetAuthorPost(context.Background(), 2, 4)

	assert.ErrorIs(t, err, models.ErrPostNotFound)
	assert.Nil(t, post)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Create(t *testing.T) {
	t.Run("success with existing and new tags", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT name FROM users WHERE id = \?`).
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Alice"))

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO blog_posts`).
			WillReturnResult(sqlmock.NewResult(10, 1))

		// "golang" already exists
		mock.ExpectQuery(`SELECT id FROM tags WHERE name = \?`).
			WithArgs("golang").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec(`INSERT INTO post_tags`).
			WithArgs(10, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// "testing" is created on the fly
		mock.ExpectQuery(`SELECT id FROM tags WHERE name = \?`).
			WithArgs("testing").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(`INSERT INTO tags`).
			WithArgs("testing").
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectExec(`INSERT INTO post_tags`).
			WithArgs(10, int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		input := &models.PostInput{
			Title:    "New post",
			Content:  "content",
			Category: "go",
			Tags:     []string{"golang", "testing"},
		}
		post, err := repo.Create(context.Background(), input, 2)

		require.NoError(t, err)
		assert.Equal(t, 10, post.ID)
		assert.Equal(t, "Alice", post.AuthorName)
		assert.Equal(t, []string{"golang", "testing"}, post.Tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("author not found", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT name FROM users WHERE id = \?`).
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)

		post, err := repo.Create(context.Background(), &models.PostInput{Title: "x", Content: "y"}, 99)

		assert.ErrorIs(t, err, models.ErrUserNotFound)
		assert.Nil(t, post)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error rolls back", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT name FROM users WHERE id = \?`).
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Alice"))
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO blog_posts`).
			WillReturnError(errors.New("database error"))
		mock.ExpectRollback()

		post, err := repo.Create(context.Background(), &models.PostInput{Title: "x", Content: "y"}, 2)

		require.Error(t, err)
		assert.Nil(t, post)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_Ownership(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT user_id, version FROM blog_posts WHERE id = \?`).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "version"}).AddRow(2, 3))

		ownerID, version, err := repo.Ownership(context.Background(), 4)

		require.NoError(t, err)
		assert.Equal(t, 2, ownerID)
		assert.Equal(t, 3, version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT user_id, version FROM blog_posts WHERE id = \?`).
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)

		_, _, err := repo.Ownership(context.Background(), 99)

		assert.ErrorIs(t, err, models.ErrPostNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_Update(t *testing.T) {
	input := &models.PostInput{
		Title:    "Updated",
		Content:  "new content",
		Category: "go",
		Tags:     []string{"golang"},
	}

	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE blog_posts SET title = \?, content = \?, category = \?, updated_at = \?, version = version \+ 1 WHERE id = \? AND version = \?`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM post_tags WHERE post_id = \?`).
			WithArgs(4).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectQuery(`SELECT id FROM tags WHERE name = \?`).
			WithArgs("golang").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec(`INSERT INTO post_tags`).
			WithArgs(4, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Update(context.Background(), 4, input, 3)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE blog_posts`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS\(SELECT \* FROM blog_posts WHERE id = \?\)`).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := repo.Update(context.Background(), 4, input, 1)

		assert.ErrorIs(t, err, models.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("post vanished", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE blog_posts`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS\(SELECT \* FROM blog_posts WHERE id = \?\)`).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		err := repo.Update(context.Background(), 4, input, 1)

		assert.ErrorIs(t, err, models.ErrPostNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_Delete(t *testing.T) {
	tests := []struct {
		name          string
		postID        int
		rowsAffected  int64
		expectedError error
	}{
		{name: "success", postID: 4, rowsAffected: 1},
		{name: "not found", postID: 99, rowsAffected: 0, expectedError: models.ErrPostNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPostTestRepository(t)
			defer cleanup()

			mock.ExpectExec(`DELETE FROM blog_posts WHERE id = \?`).
				WithArgs(tt.postID).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			err := repo.Delete(context.Background(), tt.postID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		name       string
		sortBy     string
		descending bool
		expected   string
	}{
		{name: "title ascending", sortBy: "title", descending: false, expected: "p.title ASC"},
		{name: "title mixed case", sortBy: "Title", descending: true, expected: "p.title DESC"},
		{name: "created at", sortBy: "createdat", descending: true, expected: "p.created_at DESC"},
		{name: "author", sortBy: "author", descending: false, expected: "u.name ASC"},
		{name: "unknown falls back", sortBy: "id; DROP TABLE users", descending: false, expected: "p.created_at DESC"},
		{name: "empty falls back", sortBy: "", descending: true, expected: "p.created_at DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, orderClause(tt.sortBy, tt.descending))
		})
	}
}
