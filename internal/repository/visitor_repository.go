package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/campus-gate-entry/internal/model"
)

// VisitorRepo provides persistence for visitor records.  Timestamps
// are stored in UTC.  State-changing updates carry their state guard
// in the WHERE clause so that two concurrent writers race at the
// database rather than in process: the loser touches zero rows and
// receives ErrConflict.
type VisitorRepo struct {
	db *sql.DB
}

// NewVisitorRepo returns a VisitorRepo bound to the given database.
func NewVisitorRepo(db *sql.DB) *VisitorRepo { return &VisitorRepo{db: db} }

const visitorColumns = `id, name, phone, email, purpose, authority_id, status, photo_url, notes,
	   created_by, authority_permission_required, authority_permission_granted,
	   permission_granted_at, entry_time, exit_time`

// scanVisitor reads one visitor row from a *sql.Row or *sql.Rows.
func scanVisitor(scan func(dest ...any) error) (*model.Visitor, error) {
	var (
		v           model.Visitor
		authorityID sql.NullInt64
		photoURL    sql.NullString
		notes       sql.NullString
		grantedAt   sql.NullTime
		exitTime    sql.NullTime
	)
	err := scan(
		&v.ID, &v.Name, &v.Phone, &v.Email, &v.Purpose, &authorityID, &v.Status,
		&photoURL, &notes, &v.CreatedBy, &v.PermissionRequired, &v.PermissionGranted,
		&grantedAt, &v.EntryTime, &exitTime,
	)
	if err != nil {
		return nil, err
	}
	if authorityID.Valid {
		id := uint64(authorityID.Int64)
		v.AuthorityID = &id
	}
	if photoURL.Valid {
		u := photoURL.String
		v.PhotoURL = &u
	}
	if notes.Valid {
		n := notes.String
		v.Notes = &n
	}
	if grantedAt.Valid {
		t := grantedAt.Time.UTC()
		v.PermissionGrantedAt = &t
	}
	if exitTime.Valid {
		t := exitTime.Time.UTC()
		v.ExitTime = &t
	}
	return &v, nil
}

// Create inserts a new visitor and populates the generated ID plus
// column defaults (entry_time) by reading the row back.
func (r *VisitorRepo) Create(ctx context.Context, v *model.Visitor) error {
	const q = `INSERT INTO visitors
		(name, phone, email, purpose, authority_id, status, photo_url, notes, created_by,
		 authority_permission_required, authority_permission_granted, permission_granted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		v.Name, v.Phone, v.Email, v.Purpose, v.AuthorityID, v.Status, v.PhotoURL,
		v.Notes, v.CreatedBy, v.PermissionRequired, v.PermissionGranted, v.PermissionGrantedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	// Query back the full row to populate entry_time and defaults.
	row := r.db.QueryRowContext(ctx, `SELECT `+visitorColumns+` FROM visitors WHERE id = ?`, id)
	stored, err := scanVisitor(row.Scan)
	if err != nil {
		return err
	}
	*v = *stored
	return nil
}

// GetByID returns a single visitor or ErrVisitorNotFound.
func (r *VisitorRepo) GetByID(ctx context.Context, id uint64) (*model.Visitor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+visitorColumns+` FROM visitors WHERE id = ?`, id)
	v, err := scanVisitor(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVisitorNotFound
	}
	return v, err
}

// Decide applies an approval decision to a pending visitor.  The
// pending guard lives in the WHERE clause; when zero rows change the
// visitor either does not exist (ErrVisitorNotFound) or has already
// been processed (ErrConflict).
func (r *VisitorRepo) Decide(ctx context.Context, id uint64, status string, granted bool, grantedAt *time.Time) error {
	const q = `UPDATE visitors
		SET status = ?, authority_permission_granted = ?, permission_granted_at = ?
		WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, status, granted, grantedAt, id, model.VisitorStatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// Checkout stamps the exit time and moves the visitor to exited.
// Only visitors still on the premises (exit time unset, status not
// terminal) qualify; anything else yields ErrConflict.
func (r *VisitorRepo) Checkout(ctx context.Context, id uint64, at time.Time) error {
	const q = `UPDATE visitors
		SET exit_time = ?, status = ?
		WHERE id = ? AND exit_time IS NULL AND status IN (?, ?)`
	res, err := r.db.ExecContext(ctx, q, at, model.VisitorStatusExited, id,
		model.VisitorStatusPending, model.VisitorStatusApproved)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// SearchOnPremises finds visitors still inside the campus whose name
// or phone partially matches the query, case-insensitively, newest
// entry first.  Used by the exit desk to pick the record to check out.
func (r *VisitorRepo) SearchOnPremises(ctx context.Context, query string) ([]*model.Visitor, error) {
	const q = `SELECT ` + visitorColumns + ` FROM visitors
		WHERE (LOWER(name) LIKE LOWER(?) OR phone LIKE ?)
		  AND exit_time IS NULL
		  AND status IN (?, ?)
		ORDER BY entry_time DESC`
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, q, pattern, pattern,
		model.VisitorStatusPending, model.VisitorStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Visitor, 0)
	for rows.Next() {
		v, err := scanVisitor(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// VisitorDetail joins a visitor with the assigned authority's display
// fields.  It is the row shape used by listing, approvals and report
// surfaces.
type VisitorDetail struct {
	model.Visitor
	AuthorityName        *string `json:"authority_name,omitempty"`
	AuthorityDesignation *string `json:"authority_designation,omitempty"`
}

// VisitorFilter bounds a history listing.  A zero filter returns
// everything in reverse-chronological order.  From is an inclusive
// and To an exclusive entry-time bound; callers pass start-of-day
// and start-of-next-day.
type VisitorFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
}

// List returns visitors joined with their authority, newest entry
// first, honoring the filter.
func (r *VisitorRepo) List(ctx context.Context, f VisitorFilter) ([]VisitorDetail, error) {
	q := `SELECT v.id, v.name, v.phone, v.email, v.purpose, v.authority_id, v.status,
				 v.photo_url, v.notes, v.created_by, v.authority_permission_required,
				 v.authority_permission_granted, v.permission_granted_at, v.entry_time, v.exit_time,
				 a.name, a.designation
		  FROM visitors v
		  LEFT JOIN authorities a ON a.id = v.authority_id
		  WHERE 1 = 1`
	args := make([]any, 0, 4)
	if f.Status != "" {
		q += " AND v.status = ?"
		args = append(args, f.Status)
	}
	if f.From != nil {
		q += " AND v.entry_time >= ?"
		args = append(args, *f.From)
	}
	if f.To != nil {
		q += " AND v.entry_time < ?"
		args = append(args, *f.To)
	}
	q += " ORDER BY v.entry_time DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVisitorDetails(rows)
}

// ListPending returns visitors awaiting a decision, newest first,
// with their assigned authority resolved for display.
func (r *VisitorRepo) ListPending(ctx context.Context) ([]VisitorDetail, error) {
	return r.List(ctx, VisitorFilter{Status: model.VisitorStatusPending})
}

func scanVisitorDetails(rows *sql.Rows) ([]VisitorDetail, error) {
	out := make([]VisitorDetail, 0)
	for rows.Next() {
		var (
			d           VisitorDetail
			authorityID sql.NullInt64
			photoURL    sql.NullString
			notes       sql.NullString
			grantedAt   sql.NullTime
			exitTime    sql.NullTime
			authName    sql.NullString
			authDesig   sql.NullString
		)
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Phone, &d.Email, &d.Purpose, &authorityID, &d.Status,
			&photoURL, &notes, &d.CreatedBy, &d.PermissionRequired, &d.PermissionGranted,
			&grantedAt, &d.EntryTime, &exitTime, &authName, &authDesig,
		); err != nil {
			return nil, err
		}
		if authorityID.Valid {
			id := uint64(authorityID.Int64)
			d.AuthorityID = &id
		}
		if photoURL.Valid {
			u := photoURL.String
			d.PhotoURL = &u
		}
		if notes.Valid {
			n := notes.String
			d.Notes = &n
		}
		if grantedAt.Valid {
			t := grantedAt.Time.UTC()
			d.PermissionGrantedAt = &t
		}
		if exitTime.Valid {
			t := exitTime.Time.UTC()
			d.ExitTime = &t
		}
		if authName.Valid {
			n := authName.String
			d.AuthorityName = &n
		}
		if authDesig.Valid {
			ds := authDesig.String
			d.AuthorityDesignation = &ds
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Recent returns the most recently entered visitors for the
// dashboard activity feed.
func (r *VisitorRepo) Recent(ctx context.Context, limit int) ([]*model.Visitor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+visitorColumns+` FROM visitors ORDER BY entry_time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Visitor, 0, limit)
	for rows.Next() {
		v, err := scanVisitor(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// VisitorStats aggregates the dashboard counters for visitors.
type VisitorStats struct {
	Total      int `json:"total_visitors"`
	OnPremises int `json:"active_visitors"`
	Pending    int `json:"pending_approvals"`
	Today      int `json:"today_visitors"`
}

// Stats computes the visitor counters.  dayStart/dayEnd bound the
// "today" counter on entry_time (inclusive start, exclusive end).
func (r *VisitorRepo) Stats(ctx context.Context, dayStart, dayEnd time.Time) (VisitorStats, error) {
	var s VisitorStats
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visitors`).Scan(&s.Total); err != nil {
		return s, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visitors WHERE exit_time IS NULL`).Scan(&s.OnPremises); err != nil {
		return s, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visitors WHERE status = ?`,
		model.VisitorStatusPending).Scan(&s.Pending); err != nil {
		return s, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visitors WHERE entry_time >= ? AND entry_time < ?`,
		dayStart, dayEnd).Scan(&s.Today); err != nil {
		return s, err
	}
	return s, nil
}
