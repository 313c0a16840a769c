package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/ats"
	"github.com/jonathan/hiring-tracker/internal/types"
)

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req types.ApplyRequest
	if !s.decode(w, r, &req) {
		return
	}
	app, err := s.service.Apply(r.Context(), actor(r), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, types.ApplyResponse{
		JobID:       app.JobID.String(),
		CandidateID: app.CandidateID.String(),
		AppliedAt:   app.AppliedAt,
		Status:      string(app.Status),
	})
}

// handleListApplications lists by job_id or candidate_id. With both ids and
// applied_at it returns that single application.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("job_id") != "" && q.Get("candidate_id") != "" && q.Get("applied_at") != "":
		key, err := queryApplicationKey(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		app, err := s.service.GetApplication(r.Context(), actor(r), key)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, app)

	case q.Get("job_id") != "":
		jobID, err := queryID(r, "job_id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		apps, err := s.service.ListApplicationsByJob(r.Context(), actor(r), jobID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, apps)

	case q.Get("candidate_id") != "":
		candidateID, err := queryID(r, "candidate_id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		apps, err := s.service.ListApplicationsByCandidate(r.Context(), actor(r), candidateID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, apps)

	default:
		s.writeError(w, r, &ats.ErrValidation{Field: "job_id", Message: "job_id or candidate_id is required"})
	}
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateApplicationRequest
	if !s.decode(w, r, &req) {
		return
	}
	app, err := s.service.UpdateApplication(r.Context(), actor(r), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	key, err := queryApplicationKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.service.DeleteApplication(r.Context(), actor(r), key); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleRecentApplications(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	feed, err := s.service.RecentApplications(r.Context(), actor(r), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, feed)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.ApplicationKeyRequest
	if !s.decode(w, r, &req) {
		return
	}
	key, err := ats.ParseApplicationKey(req.JobID, req.CandidateID, req.AppliedAt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.service.Match(r.Context(), actor(r), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req types.DecisionRequest
	if !s.decode(w, r, &req) {
		return
	}
	app, err := s.service.Decide(r.Context(), actor(r), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// roundPair reads the job_id and candidate_id query parameters.
func roundPair(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	jobID, err := queryID(r, "job_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	candidateID, err := queryID(r, "candidate_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return jobID, candidateID, nil
}
