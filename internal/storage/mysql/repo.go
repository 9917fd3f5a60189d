package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"guestflat/internal/domain"
)

// MySQL error numbers for lock conflicts between concurrent writers.
const (
	errLockDeadlock = 1213
	errLockWait     = 1205
)

const createAttempts = 3

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func dateArg(t time.Time) string { return domain.Day(t).Format(domain.DateLayout) }

// Create inserts b unless an active booking overlaps it. The check and the
// insert share one serializable transaction; lock conflicts are retried.
func (r *Repo) Create(ctx context.Context, b domain.Booking) error {
	if err := b.Range().Validate(); err != nil {
		return err
	}
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		err = r.create(ctx, b)
		if !isLockConflict(err) {
			return err
		}
	}
	return err
}

func (r *Repo) create(ctx context.Context, b domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, lockOverlappingSQL, dateArg(b.End), dateArg(b.Start))
	if err != nil {
		return fmt.Errorf("lock overlapping: %w", err)
	}
	var conflicts []domain.BookingID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		conflicts = append(conflicts, domain.BookingID(id))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &domain.ConflictError{IDs: conflicts}
	}

	status := b.Status
	if status == "" {
		status = domain.StatusConfirmed
	}
	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx, insertBookingSQL,
		string(b.ID),
		b.ResidentID,
		dateArg(b.Start),
		dateArg(b.End),
		b.Parking,
		string(status),
		created,
	); err != nil {
		return fmt.Errorf("insert booking %s: %w", b.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking %s: %w", b.ID, err)
	}
	return nil
}

func isLockConflict(err error) bool {
	var me *driver.MySQLError
	if errors.As(err, &me) {
		return me.Number == errLockDeadlock || me.Number == errLockWait
	}
	return false
}

// Cancel marks a booking cancelled. Cancelling twice is a no-op.
func (r *Repo) Cancel(ctx context.Context, id domain.BookingID) error {
	res, err := r.db.ExecContext(ctx, cancelBookingSQL, string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	if err := r.db.QueryRowContext(ctx, existsBookingSQL, string(id)).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id domain.BookingID) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, string(id)))
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, err
}

func (r *Repo) ListActive(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	return r.list(ctx, listActiveSQL, dateArg(to), dateArg(from))
}

func (r *Repo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	return r.list(ctx, listStartingBetweenSQL, dateArg(from), dateArg(to))
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b      domain.Booking
		id     string
		status string
	)
	if err := s.Scan(&id, &b.ResidentID, &b.Start, &b.End, &b.Parking, &status, &b.CreatedAt); err != nil {
		return domain.Booking{}, err
	}
	b.ID = domain.BookingID(id)
	b.Status = domain.Status(status)
	b.Start = domain.Day(b.Start)
	b.End = domain.Day(b.End)
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}
