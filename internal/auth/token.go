// Package auth issues and validates the signed bearer tokens used for
// authentication and role-based authorization.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/inkwell/backend/internal/models"
)

// Claims is the trusted identity extracted from a validated token.
// It is served from the token itself, without a database round-trip.
type Claims struct {
	UserID int
	Email  string
	Name   string
	Role   models.Role
}

// TokenManager handles JWT token generation and validation
type TokenManager struct {
	secret   string
	issuer   string
	audience string
	expiry   time.Duration
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret, issuer, audience string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		expiry:   expiry,
	}
}

// Generate creates a signed token embedding the user's id, email, display
// name and role.
func (tm *TokenManager) Generate(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.Itoa(user.ID),
		"email": user.Email,
		"name":  user.Name,
		"role":  string(user.Role),
		"iss":   tm.issuer,
		"aud":   tm.audience,
		"iat":   now.Unix(),
		"exp":   now.Add(tm.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate checks signature, issuer, audience and expiry, and returns the
// embedded claims.
func (tm *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	}, jwt.WithIssuer(tm.issuer), jwt.WithAudience(tm.audience), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("subject not found in token")
	}
	userID, err := strconv.Atoi(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid subject in token: %w", err)
	}

	email, ok := mapClaims["email"].(string)
	if !ok {
		return nil, fmt.Errorf("email not found in token")
	}

	name, ok := mapClaims["name"].(string)
	if !ok {
		return nil, fmt.Errorf("name not found in token")
	}

	roleStr, ok := mapClaims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("role not found in token")
	}
	role := models.Role(roleStr)
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q in token", roleStr)
	}

	return &Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   role,
	}, nil
}
