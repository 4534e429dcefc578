package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/campus-gate-entry/internal/model"
)

// BusRepo provides persistence for bus gate entries.  Buses have the
// simpler two-state lifecycle: entered at registration, exited when
// the exit desk stamps them out.  The exit guard lives in the WHERE
// clause, same as the visitor repository.
type BusRepo struct {
	db *sql.DB
}

// NewBusRepo returns a BusRepo bound to the given database.
func NewBusRepo(db *sql.DB) *BusRepo { return &BusRepo{db: db} }

const busColumns = `id, bus_number, driver_name, driver_phone, route, passenger_count,
	   status, notes, created_by, entry_time, exit_time`

func scanBus(scan func(dest ...any) error) (*model.BusEntry, error) {
	var (
		b          model.BusEntry
		driverName sql.NullString
		driverTel  sql.NullString
		route      sql.NullString
		passengers sql.NullInt64
		notes      sql.NullString
		exitTime   sql.NullTime
	)
	err := scan(
		&b.ID, &b.BusNumber, &driverName, &driverTel, &route, &passengers,
		&b.Status, &notes, &b.CreatedBy, &b.EntryTime, &exitTime,
	)
	if err != nil {
		return nil, err
	}
	if driverName.Valid {
		s := driverName.String
		b.DriverName = &s
	}
	if driverTel.Valid {
		s := driverTel.String
		b.DriverPhone = &s
	}
	if route.Valid {
		s := route.String
		b.Route = &s
	}
	if passengers.Valid {
		n := uint32(passengers.Int64)
		b.PassengerCount = &n
	}
	if notes.Valid {
		s := notes.String
		b.Notes = &s
	}
	if exitTime.Valid {
		t := exitTime.Time.UTC()
		b.ExitTime = &t
	}
	return &b, nil
}

// Create inserts a new bus entry and reads the row back to populate
// the generated ID and entry_time default.
func (r *BusRepo) Create(ctx context.Context, b *model.BusEntry) error {
	const q = `INSERT INTO bus_entries
		(bus_number, driver_name, driver_phone, route, passenger_count, status, notes, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.BusNumber, b.DriverName, b.DriverPhone, b.Route, b.PassengerCount,
		b.Status, b.Notes, b.CreatedBy,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+busColumns+` FROM bus_entries WHERE id = ?`, id)
	stored, err := scanBus(row.Scan)
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

// GetByID returns a single bus entry or ErrBusNotFound.
func (r *BusRepo) GetByID(ctx context.Context, id uint64) (*model.BusEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+busColumns+` FROM bus_entries WHERE id = ?`, id)
	b, err := scanBus(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBusNotFound
	}
	return b, err
}

// Exit stamps the exit time on a bus still inside the campus.  A
// second exit on the same entry touches zero rows and yields
// ErrConflict.
func (r *BusRepo) Exit(ctx context.Context, id uint64, at time.Time) error {
	const q = `UPDATE bus_entries
		SET exit_time = ?, status = ?
		WHERE id = ? AND exit_time IS NULL AND status = ?`
	res, err := r.db.ExecContext(ctx, q, at, model.BusStatusExited, id, model.BusStatusEntered)
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

// SearchEntered finds currently-entered buses by case-insensitive
// partial match on the bus number, newest entry first.
func (r *BusRepo) SearchEntered(ctx context.Context, query string) ([]*model.BusEntry, error) {
	const q = `SELECT ` + busColumns + ` FROM bus_entries
		WHERE LOWER(bus_number) LIKE LOWER(?)
		  AND status = ?
		  AND exit_time IS NULL
		ORDER BY entry_time DESC`
	rows, err := r.db.QueryContext(ctx, q, "%"+query+"%", model.BusStatusEntered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.BusEntry, 0)
	for rows.Next() {
		b, err := scanBus(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BusFilter bounds a bus history listing the same way VisitorFilter
// bounds visitors.
type BusFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
}

// List returns bus entries newest first, honoring the filter.
func (r *BusRepo) List(ctx context.Context, f BusFilter) ([]*model.BusEntry, error) {
	q := `SELECT ` + busColumns + ` FROM bus_entries WHERE 1 = 1`
	args := make([]any, 0, 3)
	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.From != nil {
		q += " AND entry_time >= ?"
		args = append(args, *f.From)
	}
	if f.To != nil {
		q += " AND entry_time < ?"
		args = append(args, *f.To)
	}
	q += " ORDER BY entry_time DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.BusEntry, 0)
	for rows.Next() {
		b, err := scanBus(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Recent returns the most recently entered buses for the dashboard
// activity feed.
func (r *BusRepo) Recent(ctx context.Context, limit int) ([]*model.BusEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+busColumns+` FROM bus_entries ORDER BY entry_time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.BusEntry, 0, limit)
	for rows.Next() {
		b, err := scanBus(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BusStats aggregates the dashboard counters for buses.
type BusStats struct {
	Total  int `json:"total_buses"`
	Inside int `json:"active_buses"`
	Today  int `json:"today_buses"`
}

// Stats computes the bus counters; dayStart/dayEnd bound "today" on
// entry_time (inclusive start, exclusive end).
func (r *BusRepo) Stats(ctx context.Context, dayStart, dayEnd time.Time) (BusStats, error) {
	var s BusStats
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bus_entries`).Scan(&s.Total); err != nil {
		return s, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bus_entries WHERE status = ?`,
		model.BusStatusEntered).Scan(&s.Inside); err != nil {
		return s, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bus_entries WHERE entry_time >= ? AND entry_time < ?`,
		dayStart, dayEnd).Scan(&s.Today); err != nil {
		return s, err
	}
	return s, nil
}
