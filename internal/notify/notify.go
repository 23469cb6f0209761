// Package notify records in-app notifications and hands them to the mailer.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/hiring"
	"github.com/sirupsen/logrus"
)

// Store persists notifications
type Store interface {
	CreateNotification(ctx context.Context, n *db.Notification) error
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
}

// Message is an outgoing email
type Message struct {
	To      string
	From    string
	Subject string
	Body    string
	Link    string
}

// Mailer sends email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// DisabledMailer logs instead of sending. No real delivery exists.
type DisabledMailer struct {
	Logger *logrus.Entry
}

// Send logs the suppressed message and returns nil
func (m DisabledMailer) Send(_ context.Context, msg Message) error {
	if m.Logger != nil {
		m.Logger.WithFields(logrus.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
		}).Info("email suppressed")
	}
	return nil
}

// Dispatcher fans a notification out to the in-app inbox and the mailer
type Dispatcher struct {
	store  Store
	mailer Mailer
	from   string
	logger *logrus.Entry
}

// NewDispatcher creates a dispatcher. from is the sender address of emails.
func NewDispatcher(store Store, mailer Mailer, from string, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{store: store, mailer: mailer, from: from, logger: logger}
}

// Notify stores the notification for userID, then emails it. A mail failure
// is logged and does not fail the call once the notification is stored.
func (d *Dispatcher) Notify(ctx context.Context, userID uuid.UUID, content hiring.Content, link string) (*db.Notification, error) {
	n := &db.Notification{
		UserID: userID,
		Kind:   content.Kind,
		Title:  content.Title,
		Body:   content.Body,
		Link:   link,
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	if d.mailer == nil {
		return n, nil
	}

	user, err := d.store.GetUser(ctx, userID)
	if err != nil || user == nil {
		d.logger.WithError(err).WithField("user_id", userID).Warn("notification recipient not found, email skipped")
		return n, nil
	}

	msg := Message{
		To:      user.Email,
		From:    d.from,
		Subject: content.Title,
		Body:    content.Body,
		Link:    link,
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"kind":    content.Kind,
		}).Warn("email delivery failed")
	}
	return n, nil
}
