// Package server provides the HTTP REST API for the hiring tracker.
package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/ats"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Anything unrecognised is an internal error.
func HTTPStatus(err error) int {
	var (
		validation  *ats.ErrValidation
		notFound    *ats.ErrNotFound
		conflict    *ats.ErrConflict
		forbidden   *ats.ErrForbidden
		unauth      *ats.ErrUnauthorized
		unavailable *ats.ErrUnavailable
		emailTaken  *ErrEmailAlreadyExists
		badCreds    *ErrInvalidCredentials
		mismatch    *ErrPasswordMismatch
		noUser      *ErrUserNotFound
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unauth), errors.As(err, &badCreds), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &notFound), errors.As(err, &noUser):
		return http.StatusNotFound
	case errors.As(err, &conflict), errors.As(err, &emailTaken):
		return http.StatusConflict
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and writes {"error": ...}. Validation errors
// also carry the failing field. Internal errors are logged and never exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[server] %s %s failed: %v", r.Method, r.URL.Path, err)
		s.errorResponse(w, status, "internal server error")
		return
	}

	var validation *ats.ErrValidation
	if errors.As(err, &validation) {
		s.jsonResponse(w, status, map[string]string{
			"error": validation.Error(),
			"field": validation.Field,
		})
		return
	}
	s.errorResponse(w, status, err.Error())
}
