package services

import (
	"context"

	"github.com/inkwell/backend/internal/models"
	"go.uber.org/zap"
)

// AdminUserRepository is the interface that wraps methods for users table
// data access needed by the admin service.
type AdminUserRepository interface {
	// GetAll retrieves users with pagination and optional role/search filters.
	GetAll(ctx context.Context, page, count int, role *models.Role, search string) ([]models.UserResponse, error)
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// UpdateActive updates the ban state of a user.
	UpdateActive(ctx context.Context, userID int, active bool) error
}

// adminService implements user administration
type adminService struct {
	userRepo AdminUserRepository
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo AdminUserRepository, logger *zap.Logger) *adminService {
	return &adminService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// ListUsers lists users with pagination and optional role/search filters
func (s *adminService) ListUsers(ctx context.Context, page, count int, role *models.Role, search string) ([]models.UserResponse, error) {
	if page < 1 {
		page = defaultPageNumber
	}
	if count <= 0 {
		count = defaultPageSize
	}

	users, err := s.userRepo.GetAll(ctx, page, count, role, search)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.UserResponse{}
	}
	return users, nil
}

// GetUser retrieves a single user profile
func (s *adminService) GetUser(ctx context.Context, userID int) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// SetActive bans (active=false) or unbans (active=true) a user.
// Banned users cannot log in; their previously issued tokens expire on
// their own schedule.
func (s *adminService) SetActive(ctx context.Context, userID int, active bool) error {
	if err := s.userRepo.UpdateActive(ctx, userID, active); err != nil {
		return err
	}

	s.logger.Info("user active state changed", zap.Int("userId", userID), zap.Bool("active", active))
	return nil
}
