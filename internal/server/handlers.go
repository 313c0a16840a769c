package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/ats"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/server/middleware"
)

// maxJSONBody bounds request bodies other than CV uploads.
const maxJSONBody = 1 << 20

// decode reads a JSON body into dst, writing a 400 and returning false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, r, &ats.ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// actor returns the authenticated caller, or the zero Actor for anonymous requests.
func actor(r *http.Request) ats.Actor {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		return ats.Actor{}
	}
	return ats.Actor{ID: id.UserID, Role: id.Role}
}

// extractValidationErrors converts a validator failure into an *ats.ErrValidation
// naming the first failing field.
func extractValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return &ats.ErrValidation{Field: ve.Field(), Message: fmt.Sprintf("failed on '%s'", ve.Tag())}
	}
	return &ats.ErrValidation{Field: "body", Message: "invalid request"}
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ats.ErrValidation{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}

func queryID(r *http.Request, name string) (uuid.UUID, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return uuid.Nil, &ats.ErrValidation{Field: name, Message: "is required"}
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, &ats.ErrValidation{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}

func queryOrder(r *http.Request) (int, error) {
	order, err := strconv.Atoi(r.URL.Query().Get("order"))
	if err != nil || order < 1 {
		return 0, &ats.ErrValidation{Field: "order", Message: "must be a positive integer"}
	}
	return order, nil
}

// queryLimit parses ?limit=, returning 0 (service default) when absent.
func queryLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &ats.ErrValidation{Field: "limit", Message: "must be a non-negative integer"}
	}
	return n, nil
}

// queryApplicationKey reads job_id, candidate_id and applied_at (RFC 3339) from the query.
func queryApplicationKey(r *http.Request) (db.ApplicationKey, error) {
	q := r.URL.Query()
	var appliedAt time.Time
	if v := q.Get("applied_at"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return db.ApplicationKey{}, &ats.ErrValidation{Field: "applied_at", Message: "must be an RFC 3339 timestamp"}
		}
		appliedAt = t
	}
	return ats.ParseApplicationKey(q.Get("job_id"), q.Get("candidate_id"), appliedAt)
}
