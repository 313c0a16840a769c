package types

import (
	"fmt"
	"strings"
)

// ApplicationStatus is the lifecycle state of a candidate's application.
type ApplicationStatus string

// Application statuses. These are the only values ever persisted.
const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationActive      ApplicationStatus = "active"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationHired       ApplicationStatus = "hired"
)

// applicationStatusAliases maps legacy spellings seen in older clients.
var applicationStatusAliases = map[string]ApplicationStatus{
	"shortlist": ApplicationShortlisted,
	"reject":    ApplicationRejected,
	"hire":      ApplicationHired,
	"new":       ApplicationPending,
}

// ParseApplicationStatus normalizes s (case-insensitive, legacy aliases accepted).
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := applicationStatusAliases[v]; ok {
		return alias, nil
	}
	st := ApplicationStatus(v)
	if !st.Valid() {
		return "", fmt.Errorf("unknown application status %q", s)
	}
	return st, nil
}

// Valid reports whether s is a canonical application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationActive, ApplicationShortlisted, ApplicationRejected, ApplicationHired:
		return true
	}
	return false
}

// Terminal reports whether no further round progression is expected.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationRejected || s == ApplicationHired
}

// RoundStatus is the outcome state of a single interview round.
type RoundStatus string

// Round statuses.
const (
	RoundScheduled RoundStatus = "SCHEDULED"
	RoundPending   RoundStatus = "PENDING"
	RoundPassed    RoundStatus = "PASSED"
	RoundRejected  RoundStatus = "REJECTED"
)

var roundStatusAliases = map[string]RoundStatus{
	"PASS":   RoundPassed,
	"FAIL":   RoundRejected,
	"FAILED": RoundRejected,
	"REJECT": RoundRejected,
}

// ParseRoundStatus normalizes s to a canonical round status.
func ParseRoundStatus(s string) (RoundStatus, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if alias, ok := roundStatusAliases[v]; ok {
		return alias, nil
	}
	st := RoundStatus(v)
	if !st.Valid() {
		return "", fmt.Errorf("unknown round status %q", s)
	}
	return st, nil
}

// Valid reports whether s is a canonical round status.
func (s RoundStatus) Valid() bool {
	switch s {
	case RoundScheduled, RoundPending, RoundPassed, RoundRejected:
		return true
	}
	return false
}

// JobStatus is the publication state of a job posting.
type JobStatus string

// Job statuses.
const (
	JobDraft  JobStatus = "DRAFT"
	JobOpen   JobStatus = "OPEN"
	JobClosed JobStatus = "CLOSED"
)

// ParseJobStatus normalizes s to a canonical job status.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown job status %q", s)
	}
	return st, nil
}

// Valid reports whether s is a canonical job status.
func (s JobStatus) Valid() bool {
	return s == JobDraft || s == JobOpen || s == JobClosed
}

// Role is the authorization role attached to a user account.
type Role string

// Roles.
const (
	RoleCandidate   Role = "candidate"
	RoleRecruiter   Role = "recruiter"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// ParseRole normalizes s to a known role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleRecruiter, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r may manage jobs and applications.
func (r Role) IsStaff() bool {
	return r == RoleRecruiter || r == RoleCoordinator || r == RoleAdmin
}

// CanCoordinate reports whether r may schedule interviews, decide and reassign jobs.
func (r Role) CanCoordinate() bool {
	return r == RoleCoordinator || r == RoleAdmin
}
