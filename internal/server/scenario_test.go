package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jonathan/hiring-tracker/internal/ats/atstest"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/notify"
	"github.com/jonathan/hiring-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) login(email string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": anyPassword}, "")
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody[types.LoginResponse](e.t, w).Token
}

func (e *testEnv) register(name, email string) (*types.User, string) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/register", map[string]string{"name": name, "email": email, "password": anyPassword}, "")
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody[types.LoginResponse](e.t, w)
	return resp.User, resp.Token
}

func (e *testEnv) uploadCV(token string, data []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("cv", "cv.pdf")
	require.NoError(e.t, err)
	_, err = part.Write(data)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/cv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func appQuery(app types.ApplyResponse) string {
	return url.Values{
		"job_id":       {app.JobID},
		"candidate_id": {app.CandidateID},
		"applied_at":   {app.AppliedAt.Format(time.RFC3339Nano)},
	}.Encode()
}

func TestHiringScenario(t *testing.T) {
	env := newTestEnv(t, nil)
	env.user("Ada Admin", "ada@example.com", types.RoleAdmin)
	admin := env.login("ada@example.com")

	// Admin onboards a recruiter, who logs in and opens a job.
	w := env.do(http.MethodPost, "/api/admin/users", map[string]string{
		"name": "Rita Recruiter", "email": "rita@example.com", "password": anyPassword, "role": "recruiter",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recruiter := env.login("rita@example.com")

	w = env.do(http.MethodPost, "/api/jobs", map[string]any{
		"title":   "Backend Engineer",
		"status":  "open",
		"visible": true,
		"screening_questions": []map[string]any{
			{"id": "authorized", "label": "Are you authorized to work here?", "preferred_answer": true, "knockout": true},
		},
	}, recruiter)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decodeBody[db.Job](t, w)

	listed := decodeBody[[]db.PublicJob](t, env.do(http.MethodGet, "/api/jobs", nil, ""))
	require.Len(t, listed, 1)
	assert.Equal(t, "Backend Engineer", listed[0].Title)

	// A candidate registers and applies.
	cara, candidate := env.register("Cara Candidate", "cara@example.com")
	answers := map[string]any{"job_id": job.ID.String(), "answers": map[string]bool{"authorized": true}}
	w = env.do(http.MethodPost, "/api/applications", answers, candidate)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := decodeBody[types.ApplyResponse](t, w)
	assert.Equal(t, "pending", app.Status)
	assert.Equal(t, cara.ID.String(), app.CandidateID)

	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/api/applications", answers, candidate).Code)

	pair := url.Values{"job_id": {app.JobID}, "candidate_id": {app.CandidateID}}.Encode()
	rounds := decodeBody[[]db.Round](t, env.do(http.MethodGet, "/api/application-rounds?"+pair, nil, recruiter))
	require.Len(t, rounds, 1)
	assert.Equal(t, "CV Screening", rounds[0].Name)

	// Passing CV screening queues the technical interview and shortlists.
	w = env.do(http.MethodPatch, "/api/application-rounds", map[string]any{
		"job_id": app.JobID, "candidate_id": app.CandidateID, "name": "CV Screening", "order": 1, "status": "passed", "score": 80,
	}, recruiter)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rounds = decodeBody[[]db.Round](t, env.do(http.MethodGet, "/api/application-rounds?"+pair, nil, candidate))
	require.Len(t, rounds, 2)
	assert.Equal(t, "Technical Interview", rounds[1].Name)
	assert.Equal(t, 2, rounds[1].Order)

	current := decodeBody[db.Application](t, env.do(http.MethodGet, "/api/applications?"+appQuery(app), nil, recruiter))
	assert.Equal(t, types.ApplicationShortlisted, current.Status)
	require.NotNil(t, current.Feedback)
	assert.Equal(t, types.RoundPassed, current.Feedback.FinalStatus)

	// Only coordinators and admins decide.
	decision := map[string]any{
		"job_id": app.JobID, "candidate_id": app.CandidateID, "applied_at": app.AppliedAt, "decision": "hired",
	}
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPatch, "/api/admin/shortlist/decision", decision, recruiter).Code)

	w = env.do(http.MethodPatch, "/api/admin/shortlist/decision", decision, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, types.ApplicationHired, decodeBody[db.Application](t, w).Status)

	events := env.events.Events()
	require.Len(t, events, 2)
	passed, ok := events[0].(notify.RoundPassed)
	require.True(t, ok)
	assert.Equal(t, "Technical Interview", passed.NextRound)
	assert.Equal(t, "Backend Engineer", passed.JobTitle)
	hired, ok := events[1].(notify.CandidateHired)
	require.True(t, ok)
	assert.Equal(t, "cara@example.com", hired.Candidate.Email)

	// Candidates see only their own applications.
	mine := decodeBody[[]db.CandidateApplication](t,
		env.do(http.MethodGet, "/api/applications?candidate_id="+app.CandidateID, nil, candidate))
	require.Len(t, mine, 1)
	assert.Equal(t, types.ApplicationHired, mine[0].Status)

	_, other := env.register("Otto Other", "otto@example.com")
	assert.Equal(t, http.StatusForbidden,
		env.do(http.MethodGet, "/api/applications?candidate_id="+app.CandidateID, nil, other).Code)
	assert.Equal(t, http.StatusForbidden,
		env.do(http.MethodGet, "/api/applications?job_id="+app.JobID, nil, other).Code)

	// Failing the knockout question still records the application, rejected.
	w = env.do(http.MethodPost, "/api/applications",
		map[string]any{"job_id": job.ID.String(), "answers": map[string]bool{"authorized": false}}, other)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "rejected", decodeBody[types.ApplyResponse](t, w).Status)
	assert.Len(t, env.events.Events(), 2, "knockout rejection publishes nothing")

	feed := decodeBody[[]db.RecentApplication](t, env.do(http.MethodGet, "/api/recruiter/applications/recent", nil, recruiter))
	assert.Len(t, feed, 2)

	// CV upload, then scoring without a configured scorer.
	w = env.uploadCV(candidate, []byte("not a pdf"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.uploadCV(candidate, []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decodeBody[map[string]string](t, w)["cv_path"])

	w = env.do(http.MethodPost, "/api/applications/match", map[string]any{
		"job_id": app.JobID, "candidate_id": app.CandidateID, "applied_at": app.AppliedAt,
	}, recruiter)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// Withdrawing removes every projection row for the application.
	before := env.store.Counts()
	w = env.do(http.MethodDelete, "/api/applications?"+appQuery(app), nil, candidate)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	after := env.store.Counts()
	assert.Equal(t, atstest.Counts{
		Applications: before.Applications - 1,
		ByCandidate:  before.ByCandidate - 1,
		ByPair:       before.ByPair - 1,
		Recent:       before.Recent - 1,
		Rounds:       before.Rounds - 2,
	}, after)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/applications?"+appQuery(app), nil, recruiter).Code)
}
