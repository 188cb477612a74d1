package model

import "time"

// BookingStatus enumerates the closed set of states a booking can be in.
// The values are stored verbatim in the bookings.status column.  Any
// transition is validated in the booking package before it reaches the
// database so that invalid states never drift into persistence.
type BookingStatus string

const (
    StatusBooked   BookingStatus = "booked"   // waiting in queue or being served
    StatusCanceled BookingStatus = "canceled" // withdrawn by the owner or staff
    StatusExpired  BookingStatus = "expired"  // forced out after the seller's wait time
    StatusPaid     BookingStatus = "paid"     // completed and paid for
)

// Valid reports whether s is one of the known booking states.
func (s BookingStatus) Valid() bool {
    switch s {
    case StatusBooked, StatusCanceled, StatusExpired, StatusPaid:
        return true
    }
    return false
}

// Terminal reports whether a booking in state s can never transition
// again.  Every state except "booked" is terminal.
func (s BookingStatus) Terminal() bool { return s != StatusBooked }

// Booking represents a single reservation request as stored in the
// `bookings` table.  A booking is linked 1:1 to the order that gated its
// creation.  BookedAt records arrival order and is immutable after
// creation; it is the only ordering criterion for the FIFO queue.
// StartedAt is null while the booking waits in the queue and is set
// exactly once when the booking becomes the seller's active booking.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – user who placed the booking.
//  SellerID     – seller whose queue the booking belongs to.
//  TableID      – reserved table, when the seller seats by table (nullable).
//  Guests       – party size for table bookings (nullable).
//  ReservedTime – requested arrival time for table bookings (nullable).
//  OrderID      – the completed order backing this booking.
//  Status       – current lifecycle state.
//  BookedAt     – creation timestamp, FIFO tie-break.
//  StartedAt    – when the booking became active (nullable).
type Booking struct {
    ID           uint64        // bookings.id
    UserID       uint64        // bookings.user_id
    SellerID     uint64        // bookings.seller_id
    TableID      *uint64       // bookings.table_id (nullable)
    Guests       *int          // bookings.guests (nullable)
    ReservedTime *time.Time    // bookings.reserved_time (nullable)
    OrderID      uint64        // bookings.order_id
    Status       BookingStatus // bookings.status
    BookedAt     time.Time     // bookings.booked_at
    StartedAt    *time.Time    // bookings.started_at (nullable)
}

// Active reports whether the booking currently occupies its seller's
// service slot: status "booked" with a started timestamp.
func (b *Booking) Active() bool { return b.Status == StatusBooked && b.StartedAt != nil }

// Queued reports whether the booking is waiting for activation.
func (b *Booking) Queued() bool { return b.Status == StatusBooked && b.StartedAt == nil }
