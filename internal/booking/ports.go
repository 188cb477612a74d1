package booking

import (
    "context"
    "time"

    "github.com/swan-prince/booking-server/internal/model"
    "github.com/swan-prince/booking-server/internal/queue"
)

// Store is the persistence port of the ledger.  The MySQL implementation
// lives in internal/repository; tests substitute an in-memory fake.
// Queries that look up a single booking where absence is an expected
// outcome (ActiveBooking, NextQueued) return (nil, nil) when no row
// matches; GetBooking returns a *NotFoundError instead, since the caller
// asked for a specific booking.  Catalog implementations report missing
// sellers and tables the same way.
type Store interface {
    // CreateBooking inserts the booking and marks its order (OrderID)
    // complete in one transaction: both writes commit or neither does,
    // so a failed create never leaves a booking holding the seller's
    // slot with its order still pending.  The generated ID is populated
    // on the record.
    CreateBooking(ctx context.Context, b *model.Booking) error
    // GetBooking returns the booking with the given id.
    GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
    // SetStatus moves the booking into the given state.
    SetStatus(ctx context.Context, id uint64, status model.BookingStatus) error
    // SetStarted stamps the booking's started_at, making it active.
    SetStarted(ctx context.Context, id uint64, at time.Time) error

    // ActiveBooking returns the seller's single active booking
    // (status=booked, started_at set), or nil when the slot is free.
    ActiveBooking(ctx context.Context, sellerID uint64) (*model.Booking, error)
    // NextQueued returns the earliest-created queued booking
    // (status=booked, started_at null) for the seller, or nil.
    NextQueued(ctx context.Context, sellerID uint64) (*model.Booking, error)
    // CountQueuedBefore counts the seller's queued bookings created
    // strictly before the given instant.
    CountQueuedBefore(ctx context.Context, sellerID uint64, before time.Time) (int, error)
    // TableBooked reports whether any booking holding the table is
    // still in status booked.
    TableBooked(ctx context.Context, tableID uint64) (bool, error)
    // ActiveBookings returns every active booking across all sellers,
    // for the expiry sweep.
    ActiveBookings(ctx context.Context) ([]*model.Booking, error)
    // ListByUser returns a user's bookings, newest first.  When active
    // is true only status=booked rows are returned, otherwise only
    // terminal ones.
    ListByUser(ctx context.Context, userID uint64, active bool) ([]*model.Booking, error)
    // ListByStatus returns bookings across all users, newest first,
    // filtered the same way as ListByUser.  Staff listings use this.
    ListByStatus(ctx context.Context, active bool) ([]*model.Booking, error)
}

// Catalog is the read-only slice of the catalog collaborator the engine
// needs: seller wait-time configuration and table ownership.
type Catalog interface {
    Seller(ctx context.Context, id uint64) (*model.Seller, error)
    Table(ctx context.Context, id uint64) (*model.Table, error)
}

// Orders is the order collaborator contract.  A booking is only created
// on top of a pending order that has at least one item; the order is
// claimed by Store.CreateBooking as part of the booking insert.
type Orders interface {
    // PendingOrder returns the user's open order with the seller,
    // creating one when none exists.
    PendingOrder(ctx context.Context, userID, sellerID uint64) (*model.Order, error)
    HasItems(ctx context.Context, orderID uint64) (bool, error)
}

// EventSink receives booking lifecycle events.  Publishing is best
// effort: the ledger logs and ignores sink errors so a broker outage
// never fails a booking operation.
type EventSink interface {
    Publish(ctx context.Context, ev queue.BookingEvent) error
}
