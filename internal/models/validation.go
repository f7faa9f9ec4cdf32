package models

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Validate checks a registration payload. Violations come back as
// validation.Errors with per-field messages.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		// bcrypt input is capped at 72 bytes
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

// Validate checks a login payload
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// Validate checks a profile update payload. Nil fields are skipped.
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 100)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password, validation.Length(8, 72)),
	)
}

// Validate checks a blog post payload
func (p PostInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Content, validation.Required),
		validation.Field(&p.Tags, validation.Each(validation.Length(1, 50))),
	)
}
