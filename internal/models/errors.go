package models

import "errors"

// Domain errors. Services and repositories wrap these with fmt.Errorf("%w")
// and handlers translate them to HTTP statuses with errors.Is.
var (
	// ErrDuplicateEmail is returned when the normalized email is already taken.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is returned on login for banned accounts.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("user not found")

	// ErrPostNotFound is returned when a post id does not resolve.
	ErrPostNotFound = errors.New("post not found")

	// ErrForbidden is returned when the caller is authenticated but not
	// allowed to act on the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrConcurrencyConflict is returned when a stale post update is
	// detected. The caller should re-fetch and retry.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
)
