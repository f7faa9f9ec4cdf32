package models

import "time"

// Role is the authorization level of a user.
// Stored and serialized as a string, checked against per-endpoint allow-lists.
type Role string

// User roles
const (
	RoleAdmin  Role = "Admin"
	RoleAuthor Role = "Author"
	RoleReader Role = "Reader"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleReader:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Bio          string    `json:"bio,omitempty"`
	PictureURL   string    `json:"pictureUrl,omitempty"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Bio        string `json:"bio,omitempty"`
	PictureURL string `json:"pictureUrl,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest represents a profile update. Nil fields are left untouched.
type UpdateUserRequest struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	PictureURL *string `json:"pictureUrl,omitempty"`
	Password   *string `json:"password,omitempty"`
}

// UserResponse is the client-visible shape of a user profile
type UserResponse struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Bio        string `json:"bio,omitempty"`
	PictureURL string `json:"pictureUrl,omitempty"`
	Role       Role   `json:"role"`
}

// TokenResponse wraps an issued bearer token
type TokenResponse struct {
	Token string `json:"token"`
}

// ToResponse maps a user to its client-visible shape
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Bio:        u.Bio,
		PictureURL: u.PictureURL,
		Role:       u.Role,
	}
}
