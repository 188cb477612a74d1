package booking

import (
    "context"
    "log"
    "time"

    "github.com/swan-prince/booking-server/internal/model"
    "github.com/swan-prince/booking-server/internal/queue"
)

// SweepExpired walks every active booking, expires those that have been
// served for at least their seller's wait time, and advances each
// affected seller's queue.  Sellers are processed one at a time under
// their own lock so a failure for one seller never stalls the others;
// such failures are logged and skipped.  Returns the number of bookings
// expired.
func (l *Ledger) SweepExpired(ctx context.Context) (int, error) {
    actives, err := l.store.ActiveBookings(ctx)
    if err != nil {
        return 0, err
    }

    expired := 0
    for _, b := range actives {
        n, err := l.expireSeller(ctx, b.SellerID, b.ID)
        expired += n
        if err != nil {
            log.Printf("sweep: seller %d booking %d: %v", b.SellerID, b.ID, err)
        }
    }
    return expired, nil
}

// expireSeller re-checks one seller's active booking under the seller
// lock and expires it when its allowance has run out.  The candidate id
// from the sweep snapshot is only a hint; the authoritative state is
// read inside the lock.
func (l *Ledger) expireSeller(ctx context.Context, sellerID, bookingID uint64) (int, error) {
    var evs []queue.BookingEvent
    defer func() { l.publish(ctx, evs) }()

    lock := l.sellerLock(sellerID)
    lock.Lock()
    defer lock.Unlock()

    b, err := l.store.GetBooking(ctx, bookingID)
    if err != nil {
        return 0, err
    }
    if !b.Active() {
        return 0, nil // vacated between snapshot and lock
    }

    seller, err := l.catalog.Seller(ctx, sellerID)
    if err != nil {
        return 0, err
    }
    if l.now().Sub(*b.StartedAt) < seller.WaitTime() {
        return 0, nil
    }

    if err := l.store.SetStatus(ctx, b.ID, model.StatusExpired); err != nil {
        return 0, err
    }
    b.Status = model.StatusExpired
    evs = append(evs, l.event(queue.EventBookingExpired, b))

    next, err := l.advance(ctx, sellerID)
    if err != nil {
        return 1, err
    }
    if next != nil {
        evs = append(evs, l.event(queue.EventBookingActivated, next))
    }
    return 1, nil
}

// Monitor drives SweepExpired on a fixed wall-clock interval.  It is the
// in-process fallback used when no redis is configured for the asynq
// scheduler; both paths run the same sweep.
type Monitor struct {
    ledger   *Ledger
    interval time.Duration
}

// NewMonitor returns a Monitor sweeping at the given interval.  A zero
// or negative interval defaults to one minute.
func NewMonitor(ledger *Ledger, interval time.Duration) *Monitor {
    if interval <= 0 {
        interval = time.Minute
    }
    return &Monitor{ledger: ledger, interval: interval}
}

// Run blocks, sweeping until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
    ticker := time.NewTicker(m.interval)
    defer ticker.Stop()

    log.Printf("expiry-monitor: sweeping every %s", m.interval)
    for {
        select {
        case <-ctx.Done():
            log.Println("expiry-monitor: stopped")
            return
        case <-ticker.C:
            n, err := m.ledger.SweepExpired(ctx)
            if err != nil {
                log.Printf("expiry-monitor: sweep failed: %v", err)
                continue
            }
            if n > 0 {
                log.Printf("expiry-monitor: expired %d booking(s)", n)
            }
        }
    }
}
