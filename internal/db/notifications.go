package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Page bounds for notification lists
const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 100
)

// NormalizeNotificationLimit applies the default and the upper bound to a
// requested page size.
func NormalizeNotificationLimit(limit int) int {
	if limit <= 0 {
		return DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		return MaxNotificationLimit
	}
	return limit
}

// -----------------------------------------------------------------------------
// Notification Methods
// -----------------------------------------------------------------------------

// CreateNotification stores a notification and fills in its ID and timestamp
func (db *DB) CreateNotification(ctx context.Context, n *Notification) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO notifications (user_id, kind, title, body, link)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		n.UserID, n.Kind, n.Title, n.Body, n.Link,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first
func (db *DB) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error) {
	limit = NormalizeNotificationLimit(limit)
	query := `SELECT id, user_id, kind, title, body, link, read_at, created_at
		FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := db.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	list := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Link, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkNotificationRead marks one of the user's notifications as read.
// Marking an already-read notification is not an error.
func (db *DB) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return expectOne(tag, "notification "+id.String())
}

// MarkAllNotificationsRead marks every unread notification of a user as read
// and returns how many changed.
func (db *DB) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE notifications SET read_at = NOW() WHERE user_id = $1 AND read_at IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountUnreadNotifications returns the number of unread notifications
func (db *DB) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// Saved Job Methods
// -----------------------------------------------------------------------------

// SaveJob bookmarks a job for a user. Saving twice is a no-op.
func (db *DB) SaveJob(ctx context.Context, userID, jobID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO saved_jobs (user_id, job_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

// UnsaveJob removes a bookmark
func (db *DB) UnsaveJob(ctx context.Context, userID, jobID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	if err != nil {
		return fmt.Errorf("failed to unsave job: %w", err)
	}
	return expectOne(tag, "saved job "+jobID.String())
}

// ListSavedJobs returns the jobs a user bookmarked, most recently saved first
func (db *DB) ListSavedJobs(ctx context.Context, userID uuid.UUID) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM saved_jobs s
		 JOIN jobs j ON j.id = s.job_id
		 JOIN companies c ON c.id = j.company_id
		 WHERE s.user_id = $1
		 ORDER BY s.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// CountSavedJobs returns the number of bookmarks of a user
func (db *DB) CountSavedJobs(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM saved_jobs WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count saved jobs: %w", err)
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// Feedback Methods
// -----------------------------------------------------------------------------

// CreateFeedback stores a feedback entry
func (db *DB) CreateFeedback(ctx context.Context, f *Feedback) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO feedback (user_id, rating, message, page)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		f.UserID, f.Rating, f.Message, f.Page,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}
