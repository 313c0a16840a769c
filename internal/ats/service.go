// Package ats implements the hiring workflow: jobs and their public listing,
// applications, interview rounds, interview scheduling and hiring decisions.
//
// The Service keeps the denormalized storage projections consistent. Every write
// that spans several projections goes to the Store as one call so the store can
// apply it atomically.
package ats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/notify"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// UserStore reads and updates accounts.
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	UpdateUserCV(ctx context.Context, id uuid.UUID, path string, uploadedAt time.Time) error
}

// JobStore persists jobs together with their recruiter and public projections.
type JobStore interface {
	GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error)
	CreateJob(ctx context.Context, job *db.Job, view []db.PublicViewOp) error
	UpdateJob(ctx context.Context, job *db.Job, previousRecruiter uuid.UUID, view []db.PublicViewOp) error
	DeleteJob(ctx context.Context, job *db.Job) error
	ListPublicJobs(ctx context.Context, now time.Time, limit int) ([]db.PublicJob, error)
	ListJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]db.RecruiterJob, error)
}

// ApplicationStore persists applications across their projections.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, in *db.NewApplication) error
	GetApplication(ctx context.Context, key db.ApplicationKey) (*db.Application, error)
	FindApplication(ctx context.Context, jobID, candidateID uuid.UUID) (*db.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]db.Application, error)
	ListApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]db.CandidateApplication, error)
	ListRecentApplications(ctx context.Context, recruiterID uuid.UUID, limit int) ([]db.RecentApplication, error)
	UpdateApplicationStatus(ctx context.Context, key db.ApplicationKey, status types.ApplicationStatus) error
	UpdateApplicationFeedback(ctx context.Context, key db.ApplicationKey, summary *db.FeedbackSummary) error
	UpdateApplicationMatch(ctx context.Context, key db.ApplicationKey, match json.RawMessage) error
	DeleteApplication(ctx context.Context, key db.ApplicationKey) error
}

// RoundStore persists interview rounds and their order counter.
type RoundStore interface {
	AllocateRoundOrder(ctx context.Context, jobID, candidateID uuid.UUID) (int, error)
	UpsertRound(ctx context.Context, round *db.Round) error
	GetRound(ctx context.Context, jobID, candidateID uuid.UUID, order int) (*db.Round, error)
	ListRounds(ctx context.Context, jobID, candidateID uuid.UUID) ([]db.Round, error)
	DeleteRound(ctx context.Context, jobID, candidateID uuid.UUID, order int) error
}

// Store is everything the Service needs from storage. *db.DB implements it.
type Store interface {
	UserStore
	JobStore
	ApplicationStore
	RoundStore
}

// Publisher accepts domain events for asynchronous delivery. Publish must not block.
type Publisher interface {
	Publish(event notify.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(notify.Event) {}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Role types.Role
}

// Service implements the hiring workflow on top of a Store.
type Service struct {
	store     Store
	events    Publisher
	now       func() time.Time
	scorer    MatchScorer
	cvText    func(path string) (string, error)
	uploadDir string
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMatchScorer enables AI match scoring.
func WithMatchScorer(m MatchScorer) Option {
	return func(s *Service) { s.scorer = m }
}

// WithCVReader replaces the PDF text extractor used for match scoring.
func WithCVReader(fn func(path string) (string, error)) Option {
	return func(s *Service) { s.cvText = fn }
}

// WithUploadDir sets the directory uploaded CVs are stored under.
func WithUploadDir(dir string) Option {
	return func(s *Service) { s.uploadDir = dir }
}

// NewService creates a Service. A nil publisher discards events.
func NewService(store Store, events Publisher, opts ...Option) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	s := &Service{
		store:     store,
		events:    events,
		now:       time.Now,
		cvText:    defaultCVReader,
		uploadDir: "uploads",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp returns the current time at the precision the store keeps.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func requireStaff(actor Actor) error {
	if actor.ID == uuid.Nil {
		return &ErrUnauthorized{}
	}
	if !actor.Role.IsStaff() {
		return &ErrForbidden{Message: "staff role required"}
	}
	return nil
}

func requireCoordinator(actor Actor) error {
	if actor.ID == uuid.Nil {
		return &ErrUnauthorized{}
	}
	if !actor.Role.CanCoordinate() {
		return &ErrForbidden{Message: "coordinator or admin role required"}
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if actor.ID == uuid.Nil {
		return &ErrUnauthorized{}
	}
	if actor.Role != types.RoleAdmin {
		return &ErrForbidden{Message: "admin role required"}
	}
	return nil
}

func parseID(field, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, &ErrValidation{Field: field, Message: "is required"}
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: field, Message: "must be a UUID"}
	}
	return id, nil
}

// ParseApplicationKey validates the three parts of an application key.
func ParseApplicationKey(jobID, candidateID string, appliedAt time.Time) (db.ApplicationKey, error) {
	job, err := parseID("job_id", jobID)
	if err != nil {
		return db.ApplicationKey{}, err
	}
	candidate, err := parseID("candidate_id", candidateID)
	if err != nil {
		return db.ApplicationKey{}, err
	}
	if appliedAt.IsZero() {
		return db.ApplicationKey{}, &ErrValidation{Field: "applied_at", Message: "is required"}
	}
	return db.ApplicationKey{JobID: job, CandidateID: candidate, AppliedAt: appliedAt.UTC()}, nil
}
