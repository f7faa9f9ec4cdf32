package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkwell/backend/internal/auth"
	"github.com/inkwell/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for users table data
// access needed by the auth service.
type UserRepository interface {
	// Create inserts a new user and fills in its assigned ID.
	Create(ctx context.Context, user *models.User) error
	// GetByEmail retrieves a user by normalized email.
	// Returns models.ErrUserNotFound when no such user exists.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID retrieves a user by ID.
	// Returns models.ErrUserNotFound when no such user exists.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// EmailTakenByOther checks if a different user already holds the email.
	EmailTakenByOther(ctx context.Context, email string, userID int) (bool, error)
	// Update persists the mutable profile fields of a user.
	Update(ctx context.Context, user *models.User) error
}

// authService implements registration, login and profile updates
type authService struct {
	userRepo     UserRepository
	tokenManager *auth.TokenManager
	logger       *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokenManager *auth.TokenManager, logger *zap.Logger) *authService {
	return &authService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		logger:       logger,
	}
}

// Register creates a new user account with the default Author role
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	// Normalize before validation so padded input like " User@Host " passes
	// the email format rule and uniqueness is checked on the canonical form.
	email := normalizeEmail(req.Email)
	req.Email = email

	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, models.ErrDuplicateEmail
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(passwordHash),
		Bio:          req.Bio,
		PictureURL:   req.PictureURL,
		Role:         models.RoleAuthor, // Default role
		Active:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int("userId", user.ID))
	return user.ToResponse(), nil
}

// Login authenticates a user and issues a signed bearer token.
// Unknown email and wrong password fail identically.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, models.ErrUserNotFound) {
		return "", models.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	if !user.Active {
		return "", models.ErrAccountDisabled
	}

	token, err := s.tokenManager.Generate(user)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in", zap.Int("userId", user.ID))
	return token, nil
}

// UpdateUserDetails applies the supplied profile fields to an existing user.
// The password is re-hashed only when a non-empty new password is supplied.
func (s *authService) UpdateUserDetails(ctx context.Context, userID int, req *models.UpdateUserRequest) (*models.UserResponse, error) {
	if req.Email != nil {
		normalized := normalizeEmail(*req.Email)
		req.Email = &normalized
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			taken, err := s.userRepo.EmailTakenByOther(ctx, email, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if taken {
				return nil, models.ErrDuplicateEmail
			}
			user.Email = email
		}
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.PictureURL != nil {
		user.PictureURL = *req.PictureURL
	}

	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(passwordHash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user profile updated", zap.Int("userId", userID))
	return user.ToResponse(), nil
}

// normalizeEmail trims and lowercases an email address. The normalized form
// is the uniqueness key.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
