package hiring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_Employer(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{StatusApplied, StatusReviewing, true},
		{StatusApplied, StatusInterviewing, true},
		{StatusApplied, StatusRejected, true},
		{StatusApplied, StatusOffered, false},
		{StatusApplied, StatusHired, false},
		{StatusReviewing, StatusInterviewing, true},
		{StatusReviewing, StatusOffered, true},
		{StatusReviewing, StatusApplied, false},
		{StatusInterviewing, StatusOffered, true},
		{StatusInterviewing, StatusRejected, true},
		{StatusInterviewing, StatusHired, false},
		{StatusOffered, StatusHired, true},
		{StatusOffered, StatusRejected, true},
		{StatusHired, StatusRejected, false},
		{StatusRejected, StatusReviewing, false},
		{StatusReviewing, StatusReviewing, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			err := CanTransition(ActorEmployer, tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCanTransition_Candidate(t *testing.T) {
	for _, from := range []string{StatusApplied, StatusReviewing, StatusInterviewing, StatusOffered} {
		assert.NoError(t, CanTransition(ActorCandidate, from, StatusWithdrawn), from)
	}
	for _, from := range []string{StatusHired, StatusRejected, StatusWithdrawn} {
		assert.Error(t, CanTransition(ActorCandidate, from, StatusWithdrawn), from)
	}
	assert.Error(t, CanTransition(ActorCandidate, StatusOffered, StatusHired))
}

func TestCanTransition_DistinguishesActorFromEdge(t *testing.T) {
	var te *TransitionError

	err := CanTransition(ActorCandidate, StatusApplied, StatusReviewing)
	require.True(t, errors.As(err, &te))
	assert.True(t, te.ActorNotAllowed)
	assert.Contains(t, err.Error(), "candidate may not")

	err = CanTransition(ActorEmployer, StatusApplied, StatusWithdrawn)
	require.True(t, errors.As(err, &te))
	assert.True(t, te.ActorNotAllowed)

	err = CanTransition(ActorEmployer, StatusApplied, StatusHired)
	require.True(t, errors.As(err, &te))
	assert.False(t, te.ActorNotAllowed)
	assert.Equal(t, "invalid status transition from applied to hired", err.Error())

	err = CanTransition(ActorEmployer, "pending", StatusReviewing)
	require.True(t, errors.As(err, &te))
	assert.False(t, te.ActorNotAllowed)
}

func TestTerminalAndActive(t *testing.T) {
	assert.True(t, IsTerminal(StatusHired))
	assert.True(t, IsTerminal(StatusWithdrawn))
	assert.False(t, IsTerminal(StatusOffered))
	assert.True(t, IsActive(StatusInterviewing))
	assert.False(t, IsActive(StatusRejected))
	assert.False(t, IsActive("bogus"))
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t, []string{StatusHired, StatusRejected}, NextStatuses(ActorEmployer, StatusOffered))
	assert.Equal(t, []string{StatusWithdrawn}, NextStatuses(ActorCandidate, StatusApplied))
	assert.Empty(t, NextStatuses(ActorEmployer, StatusHired))
}

func TestNotificationFor_Received(t *testing.T) {
	c := NotificationFor(Event{Type: EventReceived, JobTitle: "Go Engineer", CandidateName: "Ana"})
	assert.Equal(t, KindApplicationReceived, c.Kind)
	assert.Equal(t, "New application for Go Engineer", c.Title)
	assert.Equal(t, "Ana applied to Go Engineer.", c.Body)

	c = NotificationFor(Event{Type: EventReceived, JobTitle: "Go Engineer"})
	assert.Equal(t, "A candidate applied to Go Engineer.", c.Body)
}

func TestNotificationFor_Withdrawn(t *testing.T) {
	c := NotificationFor(Event{Type: EventWithdrawn, JobTitle: "SRE", CandidateName: "Ben"})
	assert.Equal(t, KindApplicationWithdrawn, c.Kind)
	assert.Contains(t, c.Body, "Ben withdrew")
}

func TestNotificationFor_StatusChanged(t *testing.T) {
	c := NotificationFor(Event{
		Type:        EventStatusChanged,
		JobTitle:    "Go Engineer",
		CompanyName: "Acme",
		Status:      StatusReviewing,
	})
	assert.Equal(t, KindApplicationStatus, c.Kind)
	assert.Equal(t, "Your application is being reviewed", c.Title)
	assert.Equal(t, "Your application to Go Engineer at Acme is being reviewed.", c.Body)

	titles := map[string]bool{}
	for _, s := range []string{StatusInterviewing, StatusOffered, StatusHired, StatusRejected} {
		c := NotificationFor(Event{Type: EventStatusChanged, JobTitle: "Go Engineer", Status: s})
		assert.NotContains(t, c.Body, "is being reviewed", s)
		titles[c.Title] = true
	}
	assert.Len(t, titles, 4, "each status has its own title")

	c = NotificationFor(Event{Type: EventStatusChanged, JobTitle: "Go Engineer", Status: StatusOffered, Note: "Call us"})
	assert.Contains(t, c.Body, "Note from the employer: Call us")
}
