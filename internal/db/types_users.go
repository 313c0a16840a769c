package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// User represents an account: a candidate or a member of the hiring staff.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Role         types.Role `json:"role"`
	PasswordHash string     `json:"-"` // Never serialize to JSON
	PasswordSet  bool       `json:"password_set"`
	CVPath       string     `json:"cv_path,omitempty"`
	CVUploadedAt *time.Time `json:"cv_uploaded_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
