package server

import (
	"net/http"

	"github.com/jonathan/hiring-tracker/internal/types"
)

func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	jobID, candidateID, err := roundPair(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rounds, err := s.service.ListRounds(r.Context(), actor(r), jobID, candidateID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rounds)
}

func (s *Server) handleAddRound(w http.ResponseWriter, r *http.Request) {
	var req types.CreateRoundRequest
	if !s.decode(w, r, &req) {
		return
	}
	round, err := s.service.AddRound(r.Context(), actor(r), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, round)
}

func (s *Server) handleUpdateRound(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateRoundRequest
	if !s.decode(w, r, &req) {
		return
	}
	round, err := s.service.UpdateRound(r.Context(), actor(r), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, round)
}

func (s *Server) handleDeleteRound(w http.ResponseWriter, r *http.Request) {
	jobID, candidateID, err := roundPair(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	order, err := queryOrder(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.service.DeleteRound(r.Context(), actor(r), jobID, candidateID, order); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleScheduleInterview(w http.ResponseWriter, r *http.Request) {
	var req types.ScheduleInterviewRequest
	if !s.decode(w, r, &req) {
		return
	}
	round, err := s.service.ScheduleInterview(r.Context(), actor(r), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, round)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateScheduleRequest
	if !s.decode(w, r, &req) {
		return
	}
	round, err := s.service.UpdateSchedule(r.Context(), actor(r), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, round)
}

func (s *Server) handleCancelSchedule(w http.ResponseWriter, r *http.Request) {
	jobID, candidateID, err := roundPair(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	order, err := queryOrder(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	round, err := s.service.CancelSchedule(r.Context(), actor(r), jobID, candidateID, order)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, round)
}
