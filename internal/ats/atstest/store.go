// Package atstest provides in-memory fakes for exercising the ats service
// without a database.
package atstest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/notify"
	"github.com/jonathan/hiring-tracker/internal/types"
)

type pairKey struct {
	JobID       uuid.UUID
	CandidateID uuid.UUID
}

type roundKey struct {
	pairKey
	Order int
}

// Store is an in-memory implementation of ats.Store with the same not-found and
// duplicate semantics as the PostgreSQL store.
type Store struct {
	mu sync.Mutex

	users        map[uuid.UUID]db.User
	jobs         map[uuid.UUID]db.Job
	byRecruiter  map[uuid.UUID]map[uuid.UUID]db.RecruiterJob
	public       map[db.PublicJobKey]db.PublicJob
	applications map[db.ApplicationKey]db.Application
	byCandidate  map[db.ApplicationKey]db.CandidateApplication
	byPair       map[pairKey]time.Time
	recent       map[db.ApplicationKey]db.RecentApplication
	rounds       map[roundKey]db.Round
	counters     map[pairKey]int

	failures map[string]error
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:        make(map[uuid.UUID]db.User),
		jobs:         make(map[uuid.UUID]db.Job),
		byRecruiter:  make(map[uuid.UUID]map[uuid.UUID]db.RecruiterJob),
		public:       make(map[db.PublicJobKey]db.PublicJob),
		applications: make(map[db.ApplicationKey]db.Application),
		byCandidate:  make(map[db.ApplicationKey]db.CandidateApplication),
		byPair:       make(map[pairKey]time.Time),
		recent:       make(map[db.ApplicationKey]db.RecentApplication),
		rounds:       make(map[roundKey]db.Round),
		counters:     make(map[pairKey]int),
		failures:     make(map[string]error),
	}
}

// FailOn makes every later call to the named method return err. A nil err clears it.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

func (s *Store) fail(method string) error {
	return s.failures[method]
}

// AddUser seeds a user and returns it.
func (s *Store) AddUser(name, email string, role types.Role) db.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	u := db.User{ID: uuid.New(), Name: name, Email: email, Role: role, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	return u
}

// PublicRows returns a snapshot of the public listing projection.
func (s *Store) PublicRows() []db.PublicJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]db.PublicJob, 0, len(s.public))
	for _, r := range s.public {
		rows = append(rows, r)
	}
	return rows
}

// Counts reports how many rows each application projection holds.
type Counts struct {
	Applications int
	ByCandidate  int
	ByPair       int
	Recent       int
	Rounds       int
}

// Counts returns the current projection sizes.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Applications: len(s.applications),
		ByCandidate:  len(s.byCandidate),
		ByPair:       len(s.byPair),
		Recent:       len(s.recent),
		Rounds:       len(s.rounds),
	}
}

// GetUser implements ats.UserStore.
func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUser"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// UpdateUserCV implements ats.UserStore.
func (s *Store) UpdateUserCV(_ context.Context, id uuid.UUID, path string, uploadedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, db.ErrNotFound)
	}
	u.CVPath = path
	u.CVUploadedAt = &uploadedAt
	s.users[id] = u
	return nil
}

// CreateUser inserts an account. Emails are unique case-insensitively.
func (s *Store) CreateUser(_ context.Context, name, email, phone string, role types.Role, passwordHash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateUser"); err != nil {
		return uuid.Nil, err
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return uuid.Nil, fmt.Errorf("email %s: %w", email, db.ErrDuplicate)
		}
	}
	now := time.Now().UTC()
	u := db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		Role:         role,
		PasswordHash: passwordHash,
		PasswordSet:  passwordHash != "",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	return u.ID, nil
}

// GetUserByEmail finds an account by email, ignoring case. Returns nil if not found.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

// UpdatePassword replaces an account's password hash.
func (s *Store) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, db.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	s.users[u.ID] = u
	return nil
}

// GetJob implements ats.JobStore.
func (s *Store) GetJob(_ context.Context, id uuid.UUID) (*db.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetJob"); err != nil {
		return nil, err
	}
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

// CreateJob implements ats.JobStore.
func (s *Store) CreateJob(_ context.Context, job *db.Job, view []db.PublicViewOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateJob"); err != nil {
		return err
	}
	s.jobs[job.ID] = *job
	s.putRecruiterJob(job)
	s.applyView(view)
	return nil
}

// UpdateJob implements ats.JobStore.
func (s *Store) UpdateJob(_ context.Context, job *db.Job, previousRecruiter uuid.UUID, view []db.PublicViewOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateJob"); err != nil {
		return err
	}
	if _, ok := s.jobs[job.ID]; !ok {
		return fmt.Errorf("job %s: %w", job.ID, db.ErrNotFound)
	}
	s.jobs[job.ID] = *job
	if previousRecruiter != uuid.Nil && previousRecruiter != job.RecruiterID {
		delete(s.byRecruiter[previousRecruiter], job.ID)
	}
	for k, r := range s.recent {
		if k.JobID == job.ID {
			r.RecruiterID = job.RecruiterID
			r.JobTitle = job.Title
			s.recent[k] = r
		}
	}
	for k, c := range s.byCandidate {
		if k.JobID == job.ID {
			c.JobTitle = job.Title
			s.byCandidate[k] = c
		}
	}
	s.putRecruiterJob(job)
	s.applyView(view)
	return nil
}

// DeleteJob implements ats.JobStore.
func (s *Store) DeleteJob(_ context.Context, job *db.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return fmt.Errorf("job %s: %w", job.ID, db.ErrNotFound)
	}
	delete(s.jobs, job.ID)
	delete(s.byRecruiter[job.RecruiterID], job.ID)
	for k := range s.public {
		if k.JobID == job.ID {
			delete(s.public, k)
		}
	}
	return nil
}

// ListPublicJobs implements ats.JobStore.
func (s *Store) ListPublicJobs(_ context.Context, now time.Time, limit int) ([]db.PublicJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := []db.PublicJob{}
	for k, r := range s.public {
		if k.Status == types.JobOpen && k.Visible && !k.PublishAt.After(now) {
			jobs = append(jobs, r)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].PublishAt.After(jobs[j].PublishAt) })
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// ListJobsByRecruiter implements ats.JobStore.
func (s *Store) ListJobsByRecruiter(_ context.Context, recruiterID uuid.UUID) ([]db.RecruiterJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := []db.RecruiterJob{}
	for _, r := range s.byRecruiter[recruiterID] {
		jobs = append(jobs, r)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

func (s *Store) putRecruiterJob(job *db.Job) {
	m, ok := s.byRecruiter[job.RecruiterID]
	if !ok {
		m = make(map[uuid.UUID]db.RecruiterJob)
		s.byRecruiter[job.RecruiterID] = m
	}
	m[job.ID] = db.RecruiterJob{
		RecruiterID: job.RecruiterID,
		JobID:       job.ID,
		Title:       job.Title,
		Status:      job.Status,
		Visible:     job.Visible,
		CreatedAt:   job.CreatedAt,
	}
}

func (s *Store) applyView(ops []db.PublicViewOp) {
	for _, op := range ops {
		switch op.Kind {
		case db.PublicViewDelete:
			delete(s.public, normalizeKey(op.Key))
		case db.PublicViewInsert, db.PublicViewUpsert:
			row := *op.Row
			s.public[normalizeKey(row.PublicJobKey)] = row
		}
	}
}

// normalizeKey strips location and monotonic data so equal instants compare equal.
func normalizeKey(k db.PublicJobKey) db.PublicJobKey {
	k.PublishAt = k.PublishAt.UTC().Round(0)
	return k
}

func normalizeAppKey(k db.ApplicationKey) db.ApplicationKey {
	k.AppliedAt = k.AppliedAt.UTC().Round(0)
	return k
}

// CreateApplication implements ats.ApplicationStore.
func (s *Store) CreateApplication(_ context.Context, in *db.NewApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateApplication"); err != nil {
		return err
	}
	app := in.Application
	key := normalizeAppKey(app.ApplicationKey)
	pk := pairKey{JobID: key.JobID, CandidateID: key.CandidateID}
	if _, ok := s.byPair[pk]; ok {
		return fmt.Errorf("application for job %s candidate %s: %w", key.JobID, key.CandidateID, db.ErrDuplicate)
	}

	s.byPair[pk] = key.AppliedAt
	s.applications[key] = app
	s.byCandidate[key] = db.CandidateApplication{
		CandidateID: key.CandidateID,
		JobID:       key.JobID,
		AppliedAt:   key.AppliedAt,
		JobTitle:    in.JobTitle,
		Status:      app.Status,
	}
	s.recent[key] = db.RecentApplication{
		RecruiterID:   in.RecruiterID,
		AppliedAt:     key.AppliedAt,
		JobID:         key.JobID,
		CandidateID:   key.CandidateID,
		JobTitle:      in.JobTitle,
		CandidateName: app.CandidateName,
		Status:        app.Status,
	}
	s.upsertRound(in.FirstRound)
	return nil
}

// GetApplication implements ats.ApplicationStore.
func (s *Store) GetApplication(_ context.Context, key db.ApplicationKey) (*db.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[normalizeAppKey(key)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// FindApplication implements ats.ApplicationStore.
func (s *Store) FindApplication(_ context.Context, jobID, candidateID uuid.UUID) (*db.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindApplication"); err != nil {
		return nil, err
	}
	appliedAt, ok := s.byPair[pairKey{JobID: jobID, CandidateID: candidateID}]
	if !ok {
		return nil, nil
	}
	a, ok := s.applications[db.ApplicationKey{JobID: jobID, CandidateID: candidateID, AppliedAt: appliedAt}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// ListApplicationsByJob implements ats.ApplicationStore.
func (s *Store) ListApplicationsByJob(_ context.Context, jobID uuid.UUID) ([]db.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apps := []db.Application{}
	for k, a := range s.applications {
		if k.JobID == jobID {
			apps = append(apps, a)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedAt.Before(apps[j].AppliedAt) })
	return apps, nil
}

// ListApplicationsByCandidate implements ats.ApplicationStore.
func (s *Store) ListApplicationsByCandidate(_ context.Context, candidateID uuid.UUID) ([]db.CandidateApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apps := []db.CandidateApplication{}
	for k, a := range s.byCandidate {
		if k.CandidateID == candidateID {
			apps = append(apps, a)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedAt.After(apps[j].AppliedAt) })
	return apps, nil
}

// ListRecentApplications implements ats.ApplicationStore.
func (s *Store) ListRecentApplications(_ context.Context, recruiterID uuid.UUID, limit int) ([]db.RecentApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed := []db.RecentApplication{}
	for _, r := range s.recent {
		if r.RecruiterID == recruiterID {
			feed = append(feed, r)
		}
	}
	sort.Slice(feed, func(i, j int) bool { return feed[i].AppliedAt.After(feed[j].AppliedAt) })
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}

// UpdateApplicationStatus implements ats.ApplicationStore.
func (s *Store) UpdateApplicationStatus(_ context.Context, key db.ApplicationKey, status types.ApplicationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateApplicationStatus"); err != nil {
		return err
	}
	key = normalizeAppKey(key)
	a, ok := s.applications[key]
	if !ok {
		return fmt.Errorf("application: %w", db.ErrNotFound)
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	s.applications[key] = a
	if c, ok := s.byCandidate[key]; ok {
		c.Status = status
		s.byCandidate[key] = c
	}
	if r, ok := s.recent[key]; ok {
		r.Status = status
		s.recent[key] = r
	}
	return nil
}

// UpdateApplicationFeedback implements ats.ApplicationStore.
func (s *Store) UpdateApplicationFeedback(_ context.Context, key db.ApplicationKey, summary *db.FeedbackSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key = normalizeAppKey(key)
	a, ok := s.applications[key]
	if !ok {
		return fmt.Errorf("application: %w", db.ErrNotFound)
	}
	if summary != nil {
		cp := *summary
		cp.Rounds = append([]db.RoundSummary(nil), summary.Rounds...)
		a.Feedback = &cp
	} else {
		a.Feedback = nil
	}
	s.applications[key] = a
	return nil
}

// UpdateApplicationMatch implements ats.ApplicationStore.
func (s *Store) UpdateApplicationMatch(_ context.Context, key db.ApplicationKey, match json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key = normalizeAppKey(key)
	a, ok := s.applications[key]
	if !ok {
		return fmt.Errorf("application: %w", db.ErrNotFound)
	}
	a.AIMatch = append(json.RawMessage(nil), match...)
	s.applications[key] = a
	return nil
}

// DeleteApplication implements ats.ApplicationStore.
func (s *Store) DeleteApplication(_ context.Context, key db.ApplicationKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key = normalizeAppKey(key)
	if _, ok := s.applications[key]; !ok {
		return fmt.Errorf("application: %w", db.ErrNotFound)
	}
	pk := pairKey{JobID: key.JobID, CandidateID: key.CandidateID}
	delete(s.applications, key)
	delete(s.byCandidate, key)
	delete(s.recent, key)
	if at, ok := s.byPair[pk]; ok && at.Equal(key.AppliedAt) {
		delete(s.byPair, pk)
	}
	for k := range s.rounds {
		if k.pairKey == pk {
			delete(s.rounds, k)
		}
	}
	delete(s.counters, pk)
	return nil
}

// AllocateRoundOrder implements ats.RoundStore.
func (s *Store) AllocateRoundOrder(_ context.Context, jobID, candidateID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := pairKey{JobID: jobID, CandidateID: candidateID}
	s.counters[pk]++
	return s.counters[pk], nil
}

// UpsertRound implements ats.RoundStore.
func (s *Store) UpsertRound(_ context.Context, round *db.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertRound"); err != nil {
		return err
	}
	s.upsertRound(*round)
	return nil
}

func (s *Store) upsertRound(r db.Round) {
	pk := pairKey{JobID: r.JobID, CandidateID: r.CandidateID}
	s.rounds[roundKey{pairKey: pk, Order: r.Order}] = r
	if s.counters[pk] < r.Order {
		s.counters[pk] = r.Order
	}
}

// GetRound implements ats.RoundStore.
func (s *Store) GetRound(_ context.Context, jobID, candidateID uuid.UUID, order int) (*db.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[roundKey{pairKey: pairKey{JobID: jobID, CandidateID: candidateID}, Order: order}]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// ListRounds implements ats.RoundStore.
func (s *Store) ListRounds(_ context.Context, jobID, candidateID uuid.UUID) ([]db.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := pairKey{JobID: jobID, CandidateID: candidateID}
	rounds := []db.Round{}
	for k, r := range s.rounds {
		if k.pairKey == pk {
			rounds = append(rounds, r)
		}
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Order < rounds[j].Order })
	return rounds, nil
}

// DeleteRound implements ats.RoundStore.
func (s *Store) DeleteRound(_ context.Context, jobID, candidateID uuid.UUID, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := roundKey{pairKey: pairKey{JobID: jobID, CandidateID: candidateID}, Order: order}
	if _, ok := s.rounds[k]; !ok {
		return fmt.Errorf("round %d: %w", order, db.ErrNotFound)
	}
	delete(s.rounds, k)
	return nil
}

// Recorder is an ats.Publisher that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

// Publish implements ats.Publisher.
func (r *Recorder) Publish(event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events in publish order.
func (r *Recorder) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}
