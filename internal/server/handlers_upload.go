package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/hiring-tracker/internal/ats"
)

// multipart framing allowance on top of the CV itself
const uploadOverhead = 64 << 10

func (s *Server) handleUploadCV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ats.MaxCVBytes+uploadOverhead)
	if err := r.ParseMultipartForm(ats.MaxCVBytes + uploadOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, &ats.ErrValidation{Field: "cv", Message: "must be at most 5 MiB"})
			return
		}
		s.writeError(w, r, &ats.ErrValidation{Field: "cv", Message: "expected a multipart form"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("cv")
	if err != nil {
		s.writeError(w, r, &ats.ErrValidation{Field: "cv", Message: "is required"})
		return
	}
	defer func() { _ = file.Close() }()

	// One byte past the limit is enough for AttachCV to reject it.
	data, err := io.ReadAll(io.LimitReader(file, ats.MaxCVBytes+1))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	path, err := s.service.AttachCV(r.Context(), actor(r), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"cv_path": path})
}
