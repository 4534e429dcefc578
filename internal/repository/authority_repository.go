package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campus-gate-entry/internal/model"
)

// AuthorityRepo provides persistence for authority accounts.  The
// admission workflow only ever reads active authorities; the
// administrative CRUD operates on the full set.
type AuthorityRepo struct {
	db *sql.DB
}

// NewAuthorityRepo returns an AuthorityRepo bound to the given database.
func NewAuthorityRepo(db *sql.DB) *AuthorityRepo { return &AuthorityRepo{db: db} }

const authorityColumns = `id, name, designation, department, phone, email, role, is_active, created_at`

func scanAuthority(scan func(dest ...any) error) (*model.Authority, error) {
	var (
		a          model.Authority
		department sql.NullString
		phone      sql.NullString
		email      sql.NullString
	)
	err := scan(&a.ID, &a.Name, &a.Designation, &department, &phone, &email,
		&a.Role, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if department.Valid {
		s := department.String
		a.Department = &s
	}
	if phone.Valid {
		s := phone.String
		a.Phone = &s
	}
	if email.Valid {
		s := email.String
		a.Email = &s
	}
	return &a, nil
}

// GetActive returns an active authority by id, or
// ErrAuthorityNotFound when the row is missing or deactivated.
func (r *AuthorityRepo) GetActive(ctx context.Context, id uint64) (*model.Authority, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+authorityColumns+` FROM authorities WHERE id = ? AND is_active = 1`, id)
	a, err := scanAuthority(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuthorityNotFound
	}
	return a, err
}

// GetByID returns an authority regardless of its active flag.
func (r *AuthorityRepo) GetByID(ctx context.Context, id uint64) (*model.Authority, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+authorityColumns+` FROM authorities WHERE id = ?`, id)
	a, err := scanAuthority(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuthorityNotFound
	}
	return a, err
}

// FirstActiveAdmin returns an active admin-role authority for the
// admin-copy notification, or ErrAuthorityNotFound when none exists.
// The workflow treats a missing admin as "skip silently".
func (r *AuthorityRepo) FirstActiveAdmin(ctx context.Context) (*model.Authority, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+authorityColumns+` FROM authorities
		 WHERE role = ? AND is_active = 1 ORDER BY id LIMIT 1`, model.AuthorityRoleAdmin)
	a, err := scanAuthority(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuthorityNotFound
	}
	return a, err
}

// List returns authorities ordered by name.  When activeOnly is set,
// deactivated accounts are filtered out — the shape used by the
// visitor form's authority picker.
func (r *AuthorityRepo) List(ctx context.Context, activeOnly bool) ([]*model.Authority, error) {
	q := `SELECT ` + authorityColumns + ` FROM authorities`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Authority, 0)
	for rows.Next() {
		a, err := scanAuthority(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create inserts a new authority and reads the row back.
func (r *AuthorityRepo) Create(ctx context.Context, a *model.Authority) error {
	const q = `INSERT INTO authorities (name, designation, department, phone, email, role, is_active)
			   VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		a.Name, a.Designation, a.Department, a.Phone, a.Email, a.Role, a.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+authorityColumns+` FROM authorities WHERE id = ?`, id)
	stored, err := scanAuthority(row.Scan)
	if err != nil {
		return err
	}
	*a = *stored
	return nil
}

// Update rewrites the mutable columns of an authority.
func (r *AuthorityRepo) Update(ctx context.Context, a *model.Authority) error {
	const q = `UPDATE authorities
		SET name = ?, designation = ?, department = ?, phone = ?, email = ?, role = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		a.Name, a.Designation, a.Department, a.Phone, a.Email, a.Role, a.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

// SetActive flips the active flag.  Deactivation removes the
// authority from the visitor form without touching history.
func (r *AuthorityRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE authorities SET is_active = ? WHERE id = ?`, active, id)
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
	}
	return nil
}

// CountActive returns the number of active authorities for the
// dashboard.
func (r *AuthorityRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM authorities WHERE is_active = 1`).Scan(&n)
	return n, err
}
