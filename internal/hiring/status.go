// Package hiring holds the application status state machine and the
// notification content produced when an application moves through it.
package hiring

import (
	"fmt"
	"slices"
)

// Application statuses
const (
	StatusApplied      = "applied"
	StatusReviewing    = "reviewing"
	StatusInterviewing = "interviewing"
	StatusOffered      = "offered"
	StatusHired        = "hired"
	StatusRejected     = "rejected"
	StatusWithdrawn    = "withdrawn"
)

// Actor is the party requesting a status change
type Actor string

const (
	ActorCandidate Actor = "candidate"
	ActorEmployer  Actor = "employer"
)

// Statuses lists every status in pipeline order
var Statuses = []string{
	StatusApplied,
	StatusReviewing,
	StatusInterviewing,
	StatusOffered,
	StatusHired,
	StatusRejected,
	StatusWithdrawn,
}

var employerEdges = map[string][]string{
	StatusApplied:      {StatusReviewing, StatusInterviewing, StatusRejected},
	StatusReviewing:    {StatusInterviewing, StatusOffered, StatusRejected},
	StatusInterviewing: {StatusOffered, StatusRejected},
	StatusOffered:      {StatusHired, StatusRejected},
}

// TransitionError reports a rejected status change.
// ActorNotAllowed is set when the edge exists for the other actor.
type TransitionError struct {
	From            string
	To              string
	Actor           Actor
	ActorNotAllowed bool
}

func (e *TransitionError) Error() string {
	if e.ActorNotAllowed {
		return fmt.Sprintf("%s may not move an application from %s to %s", e.Actor, e.From, e.To)
	}
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// ValidStatus reports whether s is a known status
func ValidStatus(s string) bool {
	return slices.Contains(Statuses, s)
}

// IsTerminal reports whether no transition leaves s
func IsTerminal(s string) bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}

// IsActive reports whether an application in status s is still in play
func IsActive(s string) bool {
	return ValidStatus(s) && !IsTerminal(s)
}

func allowed(actor Actor, from, to string) bool {
	switch actor {
	case ActorEmployer:
		return slices.Contains(employerEdges[from], to)
	case ActorCandidate:
		return to == StatusWithdrawn && IsActive(from)
	}
	return false
}

// CanTransition returns nil when actor may move an application from one
// status to another, and a *TransitionError otherwise.
func CanTransition(actor Actor, from, to string) error {
	if !ValidStatus(from) || !ValidStatus(to) || from == to || IsTerminal(from) {
		return &TransitionError{From: from, To: to, Actor: actor}
	}
	if allowed(actor, from, to) {
		return nil
	}

	other := ActorEmployer
	if actor == ActorEmployer {
		other = ActorCandidate
	}
	return &TransitionError{
		From:            from,
		To:              to,
		Actor:           actor,
		ActorNotAllowed: allowed(other, from, to),
	}
}

// NextStatuses returns the statuses actor can move an application in from to
func NextStatuses(actor Actor, from string) []string {
	next := []string{}
	for _, to := range Statuses {
		if CanTransition(actor, from, to) == nil {
			next = append(next, to)
		}
	}
	return next
}
