package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/inkwell/backend/internal/models"
	"go.uber.org/zap"
)

// userRepository implements user data access on top of the users table
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, bio, picture_url, role, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.PasswordHash,
		nullString(user.Bio), nullString(user.PictureURL),
		string(user.Role), user.Active,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("failed to create user: %w", models.ErrDuplicateEmail)
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// GetByEmail retrieves a user by normalized email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, bio, picture_url, role, active, created_at
		FROM users
		WHERE email = ?
		LIMIT 1
	`

	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, bio, picture_url, role, active, created_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`

	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// EmailTakenByOther checks if another user already holds the given email
func (r *userRepository) EmailTakenByOther(ctx context.Context, email string, userID int) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE email = ? AND id <> ?)`

	var taken bool
	err := r.db.QueryRowContext(ctx, query, email, userID).Scan(&taken)
	if err != nil {
		r.logger.Error("failed to check email ownership", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email ownership: %w", err)
	}

	return taken, nil
}

// Update persists the mutable profile fields of a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, bio = ?, picture_url = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.PasswordHash,
		nullString(user.Bio), nullString(user.PictureURL),
		user.ID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("failed to update user: %w", models.ErrDuplicateEmail)
		}
		r.logger.Error("failed to update user", zap.Error(err), zap.Int("userId", user.ID))
		return fmt.Errorf("failed to update user: %w", err)
	}

	// RowsAffected is zero both for a missing row and for a no-op update, so
	// a missing user is detected by the preceding GetByID in the service.
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	return nil
}

// UpdateActive updates the ban state of a user
func (r *userRepository) UpdateActive(ctx context.Context, userID int, active bool) error {
	query := `UPDATE users SET active = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, active, userID)
	if err != nil {
		r.logger.Error("failed to update active state", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to update active state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// GetAll retrieves users with pagination, optional role filter and
// name/email substring search.
func (r *userRepository) GetAll(ctx context.Context, page, count int, role *models.Role, search string) ([]models.UserResponse, error) {
	query := `SELECT id, name, email, bio, picture_url, role FROM users`

	var conditions []string
	var args []any

	if role != nil {
		conditions = append(conditions, "role = ?")
		args = append(args, string(*role))
	}
	if search != "" {
		conditions = append(conditions, "(email LIKE ? OR name LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY email LIMIT ? OFFSET ?"
	args = append(args, count, count*(page-1))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query users", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.UserResponse
	for rows.Next() {
		var user models.UserResponse
		var bio, pictureURL sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &bio, &pictureURL, &user.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Bio = bio.String
		user.PictureURL = pictureURL.String
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// scanUser scans a full user row
func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var bio, pictureURL sql.NullString
	var role string

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&bio,
		&pictureURL,
		&role,
		&user.Active,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Bio = bio.String
	user.PictureURL = pictureURL.String
	user.Role = models.Role(role)
	return user, nil
}

// nullString maps "" to NULL for optional columns
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isDuplicateEntry reports whether err is a MySQL unique constraint violation
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Error 1062")
}
