// Package repository implements the booking engine's ports over MySQL.
// All timestamps are stored and compared in UTC; connections are
// expected to be opened with parseTime=true and loc=UTC (see
// internal/database).  Missing rows on point lookups are reported as
// *booking.NotFoundError so handlers can translate them uniformly.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/swan-prince/booking-server/internal/booking"
    "github.com/swan-prince/booking-server/internal/model"
)

// BookingRepo provides data access to the bookings table.  It implements
// booking.Store.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// bookingColumns is the select list shared by every query that scans a
// full booking row.  Order must match scanBooking.
const bookingColumns = `id, user_id, seller_id, table_id, guests, reserved_time, order_id, status, booked_at, started_at`

// scanBooking reads one bookings row from a row scanner, converting
// nullable columns into pointer fields.
func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
    var (
        b        model.Booking
        tableID  sql.NullInt64
        guests   sql.NullInt64
        reserved sql.NullTime
        status   string
        started  sql.NullTime
    )
    err := row.Scan(&b.ID, &b.UserID, &b.SellerID, &tableID, &guests, &reserved,
        &b.OrderID, &status, &b.BookedAt, &started)
    if err != nil {
        return nil, err
    }
    b.Status = model.BookingStatus(status)
    if tableID.Valid {
        v := uint64(tableID.Int64)
        b.TableID = &v
    }
    if guests.Valid {
        v := int(guests.Int64)
        b.Guests = &v
    }
    if reserved.Valid {
        v := reserved.Time
        b.ReservedTime = &v
    }
    if started.Valid {
        v := started.Time
        b.StartedAt = &v
    }
    return &b, nil
}

// CreateBooking inserts a new booking and marks its order complete in
// one transaction, then populates the generated ID on the provided
// record.  Rolling both writes back together keeps a failed create from
// leaving a booking whose order is still open.
func (r *BookingRepo) CreateBooking(ctx context.Context, b *model.Booking) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer tx.Rollback()

    const ins = `INSERT INTO bookings (user_id, seller_id, table_id, guests, reserved_time, order_id, status, booked_at, started_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, ins,
        b.UserID, b.SellerID, b.TableID, b.Guests, nullableTime(b.ReservedTime),
        b.OrderID, string(b.Status), b.BookedAt.UTC(), nullableTime(b.StartedAt))
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }

    const claim = `UPDATE orders SET complete = 1 WHERE id = ?`
    if _, err := tx.ExecContext(ctx, claim, b.OrderID); err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// GetBooking returns the booking with the given id.
func (r *BookingRepo) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, &booking.NotFoundError{Entity: "booking", ID: id}
    }
    return b, err
}

// SetStatus moves the booking into the given state.
func (r *BookingRepo) SetStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
    const q = `UPDATE bookings SET status = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, string(status), id)
    if err != nil {
        return err
    }
    return mustAffect(res, "booking", id)
}

// SetStarted stamps started_at, making the booking active.  Only queued
// bookings are eligible; the WHERE clause keeps a stale caller from
// re-stamping an already started row.
func (r *BookingRepo) SetStarted(ctx context.Context, id uint64, at time.Time) error {
    const q = `UPDATE bookings SET started_at = ? WHERE id = ? AND status = 'booked' AND started_at IS NULL`
    res, err := r.db.ExecContext(ctx, q, at.UTC(), id)
    if err != nil {
        return err
    }
    return mustAffect(res, "booking", id)
}

// ActiveBooking returns the seller's single active booking, or nil when
// the service slot is free.
func (r *BookingRepo) ActiveBooking(ctx context.Context, sellerID uint64) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE seller_id = ? AND status = 'booked' AND started_at IS NOT NULL
               ORDER BY started_at LIMIT 1`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, sellerID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    return b, err
}

// NextQueued returns the earliest-created queued booking for the seller,
// or nil when the queue is empty.  Ties on booked_at fall back to the
// insertion order of the primary key.
func (r *BookingRepo) NextQueued(ctx context.Context, sellerID uint64) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE seller_id = ? AND status = 'booked' AND started_at IS NULL
               ORDER BY booked_at, id LIMIT 1`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, sellerID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    return b, err
}

// CountQueuedBefore counts queued bookings for the seller created
// strictly before the given instant.
func (r *BookingRepo) CountQueuedBefore(ctx context.Context, sellerID uint64, before time.Time) (int, error) {
    const q = `SELECT COUNT(*) FROM bookings
               WHERE seller_id = ? AND status = 'booked' AND started_at IS NULL AND booked_at < ?`
    var n int
    err := r.db.QueryRowContext(ctx, q, sellerID, before.UTC()).Scan(&n)
    return n, err
}

// TableBooked reports whether any booking holding the table is still
// booked.
func (r *BookingRepo) TableBooked(ctx context.Context, tableID uint64) (bool, error) {
    const q = `SELECT EXISTS(SELECT 1 FROM bookings WHERE table_id = ? AND status = 'booked')`
    var exists bool
    err := r.db.QueryRowContext(ctx, q, tableID).Scan(&exists)
    return exists, err
}

// ActiveBookings returns every active booking across all sellers.  The
// expiry sweep uses this as its snapshot.
func (r *BookingRepo) ActiveBookings(ctx context.Context) ([]*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE status = 'booked' AND started_at IS NOT NULL`
    return r.queryBookings(ctx, q)
}

// ListByUser returns a user's bookings, newest first.  active selects
// between status=booked rows and terminal ones.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64, active bool) ([]*model.Booking, error) {
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? AND status <> 'booked' ORDER BY booked_at DESC`
    if active {
        q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? AND status = 'booked' ORDER BY booked_at DESC`
    }
    return r.queryBookings(ctx, q, userID)
}

// ListByStatus returns bookings across all users, newest first, with the
// same active/terminal split as ListByUser.
func (r *BookingRepo) ListByStatus(ctx context.Context, active bool) ([]*model.Booking, error) {
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE status <> 'booked' ORDER BY booked_at DESC`
    if active {
        q = `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'booked' ORDER BY booked_at DESC`
    }
    return r.queryBookings(ctx, q)
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...any) ([]*model.Booking, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*model.Booking
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

// nullableTime converts a *time.Time into a driver-friendly value,
// normalizing to UTC when present.
func nullableTime(t *time.Time) any {
    if t == nil {
        return nil
    }
    return t.UTC()
}

// mustAffect turns a zero-row UPDATE into a not-found error so callers
// learn when their target vanished underneath them.
func mustAffect(res sql.Result, entity string, id uint64) error {
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return &booking.NotFoundError{Entity: entity, ID: id}
    }
    return nil
}
