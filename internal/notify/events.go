// Package notify turns application lifecycle events into candidate emails.
//
// Services publish events to a Dispatcher; the dispatcher renders and sends mail
// on its own goroutine so a slow or failing mail server never delays a request.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Recipient is the person an event's email is addressed to.
type Recipient struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Event is a domain event that results in an email.
type Event interface {
	// Name identifies the event kind in logs and selects its template.
	Name() string
	// To is the recipient of the resulting email.
	To() Recipient
}

// RoundPassed is published when a screening round is passed and the next round is queued.
type RoundPassed struct {
	Candidate Recipient
	JobID     uuid.UUID
	JobTitle  string
	RoundName string
	NextRound string
}

func (e RoundPassed) Name() string  { return "round_passed" }
func (e RoundPassed) To() Recipient { return e.Candidate }

// InterviewScheduled is published when an interview is booked or rescheduled.
type InterviewScheduled struct {
	Candidate   Recipient
	JobID       uuid.UUID
	JobTitle    string
	RoundName   string
	ScheduledAt time.Time
	MeetingLink string
	Note        string
}

func (e InterviewScheduled) Name() string  { return "interview_scheduled" }
func (e InterviewScheduled) To() Recipient { return e.Candidate }

// CandidateHired is published when a hire decision is recorded. It is published
// again each time the decision is re-submitted.
type CandidateHired struct {
	Candidate Recipient
	JobID     uuid.UUID
	JobTitle  string
}

func (e CandidateHired) Name() string  { return "candidate_hired" }
func (e CandidateHired) To() Recipient { return e.Candidate }
