package ats

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jonathan/hiring-tracker/internal/types"
)

// MaxCVBytes is the largest CV accepted for upload.
const MaxCVBytes = 5 << 20

// AttachCV stores the calling candidate's CV and records its location. Only PDFs
// are accepted; a new upload replaces the previous one.
func (s *Service) AttachCV(ctx context.Context, actor Actor, data []byte) (string, error) {
	if err := canReadCandidate(actor, actor.ID); err != nil {
		return "", err
	}
	if actor.Role != types.RoleCandidate {
		return "", &ErrForbidden{Message: "only candidates can upload a CV"}
	}
	if len(data) == 0 {
		return "", &ErrValidation{Field: "cv", Message: "is required"}
	}
	if len(data) > MaxCVBytes {
		return "", &ErrValidation{Field: "cv", Message: "must be at most 5 MiB"}
	}
	if http.DetectContentType(data) != "application/pdf" {
		return "", &ErrValidation{Field: "cv", Message: "must be a PDF"}
	}

	dir := filepath.Join(s.uploadDir, "cv")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	path := filepath.Join(dir, actor.ID.String()+".pdf")
	if err := writeFileAtomic(dir, path, data); err != nil {
		return "", err
	}

	if err := s.store.UpdateUserCV(ctx, actor.ID, path, s.timestamp()); err != nil {
		return "", fmt.Errorf("failed to record cv: %w", err)
	}
	return path, nil
}

// writeFileAtomic writes data to a uniquely named temp file in dir and renames it
// over path, so concurrent uploads never interleave and readers see whole files.
func writeFileAtomic(dir, path string, data []byte) error {
	f, err := os.CreateTemp(dir, "*.pdf.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cv temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write cv: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write cv: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write cv: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to store cv: %w", err)
	}
	return nil
}
