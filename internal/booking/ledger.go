package booking

import (
    "context"
    "log"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/swan-prince/booking-server/internal/model"
    "github.com/swan-prince/booking-server/internal/queue"
)

// Ledger serializes all mutating operations on a seller's bookings and
// enforces the two structural invariants of the queue:
//
//   * at most one booking per seller is active (status=booked with a
//     started timestamp) at any time, and
//   * at most one booked booking references a given table.
//
// Mutual exclusion is a keyed mutex per seller, held across every
// read-decide-write sequence.  Operations on different sellers proceed
// in parallel.  The ledger assumes a single service instance owns the
// bookings tables; the locks are in-process.
type Ledger struct {
    store   Store
    catalog Catalog
    orders  Orders
    events  EventSink // may be nil; publishing is best effort

    now func() time.Time // overridable in tests

    mu      sync.Mutex
    sellers map[uint64]*sync.Mutex
}

// NewLedger constructs a Ledger.  store, catalog and orders must be
// non-nil; events may be nil to disable lifecycle publishing.
func NewLedger(store Store, catalog Catalog, orders Orders, events EventSink) *Ledger {
    if store == nil || catalog == nil || orders == nil {
        panic("nil port passed to NewLedger")
    }
    return &Ledger{
        store:   store,
        catalog: catalog,
        orders:  orders,
        events:  events,
        now:     time.Now,
        sellers: make(map[uint64]*sync.Mutex),
    }
}

// sellerLock returns the mutex guarding the given seller's queue,
// creating it on first use.
func (l *Ledger) sellerLock(sellerID uint64) *sync.Mutex {
    l.mu.Lock()
    defer l.mu.Unlock()
    m, ok := l.sellers[sellerID]
    if !ok {
        m = &sync.Mutex{}
        l.sellers[sellerID] = m
    }
    return m
}

// CreateParams carries the input of Create.  SellerID books an open seat
// with a seller that has no tables; TableID books a specific table and
// then requires Guests and ReservedTime.  When both are given SellerID
// wins and the table fields are ignored.
type CreateParams struct {
    Actor        model.Actor
    SellerID     uint64
    TableID      uint64
    Guests       int
    ReservedTime *time.Time
}

// Create validates the request, gates it on the actor's pending order
// having at least one item, then inserts the booking and claims the
// order in one store transaction.  When the seller's service slot is
// free the new booking is activated immediately; otherwise it joins the
// queue.  The whole decision runs under the seller's lock; lifecycle
// events are published after the lock is released.
func (l *Ledger) Create(ctx context.Context, p CreateParams) (*model.Booking, error) {
    b := &model.Booking{UserID: p.Actor.ID, Status: model.StatusBooked}

    var seller *model.Seller
    switch {
    case p.SellerID != 0:
        var err error
        seller, err = l.catalog.Seller(ctx, p.SellerID)
        if err != nil {
            return nil, err
        }
        if seller.HasTables {
            return nil, &ValidationError{Reason: "a table must be selected for this seller"}
        }
    case p.TableID != 0:
        table, err := l.catalog.Table(ctx, p.TableID)
        if err != nil {
            return nil, err
        }
        if p.ReservedTime == nil {
            return nil, &ValidationError{Reason: "reserved time must be given for a table booking"}
        }
        if p.Guests <= 0 {
            return nil, &ValidationError{Reason: "number of guests must be given for a table booking"}
        }
        seller, err = l.catalog.Seller(ctx, table.SellerID)
        if err != nil {
            return nil, err
        }
        tid := table.ID
        guests := p.Guests
        b.TableID = &tid
        b.Guests = &guests
        b.ReservedTime = p.ReservedTime
    default:
        return nil, &ValidationError{Reason: "either a seller or a table must be given"}
    }
    b.SellerID = seller.ID

    var evs []queue.BookingEvent
    defer func() { l.publish(ctx, evs) }()

    lock := l.sellerLock(seller.ID)
    lock.Lock()
    defer lock.Unlock()

    if b.TableID != nil {
        taken, err := l.store.TableBooked(ctx, *b.TableID)
        if err != nil {
            return nil, err
        }
        if taken {
            return nil, &ConflictError{Reason: "this table is already booked"}
        }
    }

    order, err := l.orders.PendingOrder(ctx, p.Actor.ID, seller.ID)
    if err != nil {
        return nil, err
    }
    has, err := l.orders.HasItems(ctx, order.ID)
    if err != nil {
        return nil, err
    }
    if !has {
        return nil, &ValidationError{Reason: "order items are required before booking"}
    }
    b.OrderID = order.ID

    now := l.now()
    b.BookedAt = now
    active, err := l.store.ActiveBooking(ctx, seller.ID)
    if err != nil {
        return nil, err
    }
    if active == nil {
        // Free slot: the newcomer is served straight away.
        started := now
        b.StartedAt = &started
    }

    // One transaction: the booking row and the order claim land
    // together or not at all, so a failed create leaves nothing to
    // clean up and a retry starts from scratch.
    if err := l.store.CreateBooking(ctx, b); err != nil {
        return nil, err
    }

    evs = append(evs, l.event(queue.EventBookingCreated, b))
    if b.StartedAt != nil {
        evs = append(evs, l.event(queue.EventBookingActivated, b))
    }
    return b, nil
}

// Cancel withdraws a booking.  The owner and staff may cancel; anyone
// else is rejected.  Canceling the seller's active booking hands the
// slot to the next booking in FIFO order.
func (l *Ledger) Cancel(ctx context.Context, bookingID uint64, actor model.Actor) error {
    b, err := l.store.GetBooking(ctx, bookingID)
    if err != nil {
        return err
    }
    if !actor.Owns(b.UserID) && !actor.Staff {
        return &PermissionError{Reason: "this booking does not belong to the current user"}
    }

    var evs []queue.BookingEvent
    defer func() { l.publish(ctx, evs) }()

    lock := l.sellerLock(b.SellerID)
    lock.Lock()
    defer lock.Unlock()

    // Re-read under the lock: the booking may have expired or been paid
    // while we were waiting.
    b, err = l.store.GetBooking(ctx, bookingID)
    if err != nil {
        return err
    }
    if b.Status != model.StatusBooked {
        return &StateError{Reason: "this booking was already " + string(b.Status)}
    }

    wasActive := b.Active()
    if err := l.store.SetStatus(ctx, b.ID, model.StatusCanceled); err != nil {
        return err
    }
    b.Status = model.StatusCanceled
    evs = append(evs, l.event(queue.EventBookingCanceled, b))

    if wasActive {
        next, err := l.advance(ctx, b.SellerID)
        if err != nil {
            return err
        }
        if next != nil {
            evs = append(evs, l.event(queue.EventBookingActivated, next))
        }
    }
    return nil
}

// Pay completes a booking.  Only the owner may pay, the booking must
// still be booked, and it must be the active one: queued bookings cannot
// be paid while others are ahead.  Payment vacates the slot and advances
// the queue.
func (l *Ledger) Pay(ctx context.Context, bookingID uint64, actor model.Actor) error {
    b, err := l.store.GetBooking(ctx, bookingID)
    if err != nil {
        return err
    }
    if !actor.Owns(b.UserID) {
        return &PermissionError{Reason: "this booking cannot be paid by the current user"}
    }

    var evs []queue.BookingEvent
    defer func() { l.publish(ctx, evs) }()

    lock := l.sellerLock(b.SellerID)
    lock.Lock()
    defer lock.Unlock()

    b, err = l.store.GetBooking(ctx, bookingID)
    if err != nil {
        return err
    }
    if b.Status != model.StatusBooked {
        return &StateError{Reason: "this booking cannot be paid as its status was changed"}
    }
    if b.StartedAt == nil {
        return &StateError{Reason: "this booking cannot be paid as there are more guests ahead"}
    }

    if err := l.store.SetStatus(ctx, b.ID, model.StatusPaid); err != nil {
        return err
    }
    b.Status = model.StatusPaid
    evs = append(evs, l.event(queue.EventBookingPaid, b))

    next, err := l.advance(ctx, b.SellerID)
    if err != nil {
        return err
    }
    if next != nil {
        evs = append(evs, l.event(queue.EventBookingActivated, next))
    }
    return nil
}

// advance activates the seller's earliest queued booking and returns it,
// or nil when the queue is empty.  It must be called with the seller's
// lock held; the caller publishes the activation event once the lock is
// released.
func (l *Ledger) advance(ctx context.Context, sellerID uint64) (*model.Booking, error) {
    next, err := l.store.NextQueued(ctx, sellerID)
    if err != nil {
        return nil, err
    }
    if next == nil {
        return nil, nil
    }
    now := l.now()
    if err := l.store.SetStarted(ctx, next.ID, now); err != nil {
        return nil, err
    }
    next.StartedAt = &now
    return next, nil
}

// event builds a lifecycle event for the booking's current state.
func (l *Ledger) event(eventType string, b *model.Booking) queue.BookingEvent {
    return queue.BookingEvent{
        ID:         uuid.NewString(),
        Type:       eventType,
        BookingID:  b.ID,
        UserID:     b.UserID,
        SellerID:   b.SellerID,
        TableID:    b.TableID,
        Status:     string(b.Status),
        OccurredAt: l.now().UTC().Format(time.RFC3339),
    }
}

// publish delivers collected lifecycle events to the sink.  It runs
// after the seller lock is released so a slow broker never stretches a
// lock hold.  Failures are logged and swallowed; the broker is never
// allowed to fail a booking operation.
func (l *Ledger) publish(ctx context.Context, evs []queue.BookingEvent) {
    if l.events == nil {
        return
    }
    for _, ev := range evs {
        if err := l.events.Publish(ctx, ev); err != nil {
            log.Printf("ledger: publish %s for booking %d failed: %v", ev.Type, ev.BookingID, err)
        }
    }
}
