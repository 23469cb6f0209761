package hiring

import "fmt"

// Notification kinds
const (
	KindApplicationReceived  = "application_received"
	KindApplicationStatus    = "application_status"
	KindApplicationWithdrawn = "application_withdrawn"
)

// EventType identifies what happened to an application
type EventType int

const (
	EventReceived EventType = iota
	EventStatusChanged
	EventWithdrawn
)

// Event describes an application change that someone should hear about
type Event struct {
	Type          EventType
	JobTitle      string
	CompanyName   string
	CandidateName string
	Status        string
	Note          string
}

// Content is the text of a notification
type Content struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NotificationFor builds the notification content for an event.
// Received and withdrawn events go to the employer; status changes go to
// the candidate.
func NotificationFor(ev Event) Content {
	candidate := ev.CandidateName
	if candidate == "" {
		candidate = "A candidate"
	}

	switch ev.Type {
	case EventReceived:
		return Content{
			Kind:  KindApplicationReceived,
			Title: "New application for " + ev.JobTitle,
			Body:  fmt.Sprintf("%s applied to %s.", candidate, ev.JobTitle),
		}
	case EventWithdrawn:
		return Content{
			Kind:  KindApplicationWithdrawn,
			Title: "Application withdrawn for " + ev.JobTitle,
			Body:  fmt.Sprintf("%s withdrew their application to %s.", candidate, ev.JobTitle),
		}
	}

	c := Content{Kind: KindApplicationStatus, Title: statusTitle(ev.Status)}
	c.Body = fmt.Sprintf("Your application to %s %s.", position(ev), statusPhrase(ev.Status))
	if ev.Note != "" {
		c.Body += " Note from the employer: " + ev.Note
	}
	return c
}

func position(ev Event) string {
	if ev.CompanyName == "" {
		return ev.JobTitle
	}
	return ev.JobTitle + " at " + ev.CompanyName
}

func statusTitle(status string) string {
	switch status {
	case StatusReviewing:
		return "Your application is being reviewed"
	case StatusInterviewing:
		return "You've been invited to interview"
	case StatusOffered:
		return "You've received an offer"
	case StatusHired:
		return "Congratulations, you're hired"
	case StatusRejected:
		return "Application update"
	case StatusWithdrawn:
		return "Application withdrawn"
	}
	return "Application status updated"
}

func statusPhrase(status string) string {
	switch status {
	case StatusReviewing:
		return "is being reviewed"
	case StatusInterviewing:
		return "has moved to the interview stage"
	case StatusOffered:
		return "has resulted in an offer"
	case StatusHired:
		return "has been accepted and you are hired"
	case StatusRejected:
		return "was not selected to move forward"
	case StatusWithdrawn:
		return "has been withdrawn"
	}
	return "is now " + status
}
