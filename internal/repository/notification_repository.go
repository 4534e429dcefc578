package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campus-gate-entry/internal/model"
)

// NotificationRepo provides persistence for the admission workflow's
// notification fan-out.  Notifications are created only after the
// visitor insert has succeeded and are mutated in exactly one way:
// the read flag flips to true.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts one notification and populates the generated ID and
// created_at default.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (visitor_id, authority_id, type, title, message, is_read)
			   VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		n.VisitorID, n.AuthorityID, n.Type, n.Title, n.Message, n.IsRead)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM notifications WHERE id = ?`, n.ID).Scan(&n.CreatedAt)
}

// MarkRead flips a single notification's read flag.
func (r *NotificationRepo) MarkRead(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	return err
}

// MarkReadByVisitor marks every notification tied to the visitor as
// read, regardless of recipient.  A decision by any notified party
// resolves the request for all of them, admin copy included.
func (r *NotificationRepo) MarkReadByVisitor(ctx context.Context, visitorID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE visitor_id = ?`, visitorID)
	return err
}

// UnreadCount returns the number of unread notifications addressed
// to the given authority.
func (r *NotificationRepo) UnreadCount(ctx context.Context, authorityID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE authority_id = ? AND is_read = 0`,
		authorityID).Scan(&n)
	return n, err
}

// NotificationDetail joins a notification with display fields of the
// visitor it concerns and the authority it is addressed to.
type NotificationDetail struct {
	model.Notification
	VisitorName          string  `json:"visitor_name"`
	VisitorPhone         string  `json:"visitor_phone"`
	VisitorPurpose       string  `json:"visitor_purpose"`
	VisitorStatus        string  `json:"visitor_status"`
	VisitorPhotoURL      *string `json:"visitor_photo_url,omitempty"`
	AuthorityName        string  `json:"authority_name"`
	AuthorityDesignation string  `json:"authority_designation"`
}

// List returns notifications newest first.  When authorityID is
// non-zero the listing is restricted to that recipient; zero lists
// everything, the shape used by the shared notifications screen.
func (r *NotificationRepo) List(ctx context.Context, authorityID uint64) ([]NotificationDetail, error) {
	q := `SELECT n.id, n.visitor_id, n.authority_id, n.type, n.title, n.message, n.is_read, n.created_at,
				 v.name, v.phone, v.purpose, v.status, v.photo_url,
				 a.name, a.designation
		  FROM notifications n
		  JOIN visitors v ON v.id = n.visitor_id
		  JOIN authorities a ON a.id = n.authority_id`
	args := make([]any, 0, 1)
	if authorityID != 0 {
		q += ` WHERE n.authority_id = ?`
		args = append(args, authorityID)
	}
	q += ` ORDER BY n.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]NotificationDetail, 0)
	for rows.Next() {
		var (
			d        NotificationDetail
			photoURL sql.NullString
		)
		if err := rows.Scan(
			&d.ID, &d.VisitorID, &d.AuthorityID, &d.Type, &d.Title, &d.Message, &d.IsRead, &d.CreatedAt,
			&d.VisitorName, &d.VisitorPhone, &d.VisitorPurpose, &d.VisitorStatus, &photoURL,
			&d.AuthorityName, &d.AuthorityDesignation,
		); err != nil {
			return nil, err
		}
		if photoURL.Valid {
			u := photoURL.String
			d.VisitorPhotoURL = &u
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByID returns one notification row without joins.
func (r *NotificationRepo) GetByID(ctx context.Context, id uint64) (*model.Notification, error) {
	var n model.Notification
	err := r.db.QueryRowContext(ctx,
		`SELECT id, visitor_id, authority_id, type, title, message, is_read, created_at
		 FROM notifications WHERE id = ?`, id).Scan(
		&n.ID, &n.VisitorID, &n.AuthorityID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
