// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published on the booking.events queue.  One event is
// emitted per lifecycle transition so downstream consumers can log,
// notify, or feed analytics without querying the primary database.
const (
    EventBookingCreated   = "booking.created"
    EventBookingActivated = "booking.activated"
    EventBookingCanceled  = "booking.canceled"
    EventBookingExpired   = "booking.expired"
    EventBookingPaid      = "booking.paid"
)

// BookingEvent is the envelope for every booking lifecycle event.  ID is
// a random UUID assigned by the ledger; OccurredAt is RFC3339 in UTC.
type BookingEvent struct {
    ID         string  `json:"id"`
    Type       string  `json:"type"`
    BookingID  uint64  `json:"booking_id"`
    UserID     uint64  `json:"user_id"`
    SellerID   uint64  `json:"seller_id"`
    TableID    *uint64 `json:"table_id,omitempty"`
    Status     string  `json:"status"`
    OccurredAt string  `json:"occurred_at"`
}
