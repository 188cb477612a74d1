package booking

import (
    "context"
    "time"

    "github.com/swan-prince/booking-server/internal/model"
)

// QueueStatus is the customer-facing view of a booking's place in its
// seller's queue: how many people are ahead and a wait estimate in
// seconds.  The JSON field names are the service's wire contract.
type QueueStatus struct {
    People      int `json:"people"`
    WaitSeconds int `json:"time"`
}

// Status computes the live queue position of a booking.  Only the owner
// and staff may ask.  The estimate is people-ahead times the seller's
// wait time, plus the remaining allowance of the currently active
// booking (clamped at zero).  A booking that is itself active, or
// already terminal, reports an empty queue and zero wait.  The query
// never mutates state and takes no locks: slight staleness under
// concurrent writes is acceptable here.
func (l *Ledger) Status(ctx context.Context, bookingID uint64, actor model.Actor) (*QueueStatus, error) {
    b, err := l.store.GetBooking(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if !actor.Owns(b.UserID) && !actor.Staff {
        return nil, &PermissionError{Reason: "this booking does not belong to the current user"}
    }
    if !b.Queued() {
        return &QueueStatus{}, nil
    }

    seller, err := l.catalog.Seller(ctx, b.SellerID)
    if err != nil {
        return nil, err
    }
    waitPer := seller.WaitTime()

    ahead, err := l.store.CountQueuedBefore(ctx, b.SellerID, b.BookedAt)
    if err != nil {
        return nil, err
    }
    wait := time.Duration(ahead) * waitPer

    active, err := l.store.ActiveBooking(ctx, b.SellerID)
    if err != nil {
        return nil, err
    }
    if active != nil && active.StartedAt != nil {
        left := waitPer - l.now().Sub(*active.StartedAt)
        if left < 0 {
            left = 0
        }
        wait += left
    }

    return &QueueStatus{People: ahead, WaitSeconds: int(wait / time.Second)}, nil
}
