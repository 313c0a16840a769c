// Package types provides request, response and enum types shared by the hiring tracker's API and services.
package types

import (
	"time"

	"github.com/google/uuid"
)

// CreateUserRequest represents a candidate self-registration.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=40"`
}

// CreateStaffRequest represents an admin creating a staff (or candidate) account.
type CreateStaffRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Role     string `json:"role" validate:"required,role"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents a user profile for API responses (password hash never included).
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	PasswordSet  bool       `json:"password_set"`
	CVPath       string     `json:"cv_path,omitempty"`
	CVUploadedAt *time.Time `json:"cv_uploaded_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LoginResponse represents the login/register response with user data and session token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdatePasswordRequest represents a password update request.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Validate validates the CreateUserRequest.
func (r *CreateUserRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the CreateStaffRequest.
func (r *CreateStaffRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the LoginRequest.
func (r *LoginRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the UpdatePasswordRequest.
func (r *UpdatePasswordRequest) Validate() error {
	return Validator().Struct(r)
}
