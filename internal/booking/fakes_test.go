package booking

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/swan-prince/booking-server/internal/model"
    "github.com/swan-prince/booking-server/internal/queue"
)

// clock is a controllable time source for tests.
type clock struct {
    mu sync.Mutex
    t  time.Time
}

func newClock(t time.Time) *clock { return &clock{t: t} }

func (c *clock) Now() time.Time {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.t
}

func (c *clock) Advance(d time.Duration) {
    c.mu.Lock()
    defer c.mu.Unlock()
    c.t = c.t.Add(d)
}

// memStore is an in-memory Store used by the engine tests.  It mirrors
// the query semantics of the MySQL repository, including returning
// copies so callers never alias stored rows and claiming the order
// together with the booking insert.  createErr forces CreateBooking to
// fail without persisting anything, like a rolled-back transaction.
type memStore struct {
    mu        sync.Mutex
    seq       uint64
    bookings  map[uint64]*model.Booking
    orders    *fakeOrders
    createErr error
}

func newMemStore() *memStore {
    return &memStore{bookings: make(map[uint64]*model.Booking)}
}

func copyBooking(b *model.Booking) *model.Booking {
    cp := *b
    if b.TableID != nil {
        v := *b.TableID
        cp.TableID = &v
    }
    if b.Guests != nil {
        v := *b.Guests
        cp.Guests = &v
    }
    if b.ReservedTime != nil {
        v := *b.ReservedTime
        cp.ReservedTime = &v
    }
    if b.StartedAt != nil {
        v := *b.StartedAt
        cp.StartedAt = &v
    }
    return &cp
}

func (s *memStore) CreateBooking(_ context.Context, b *model.Booking) error {
    s.mu.Lock()
    if s.createErr != nil {
        err := s.createErr
        s.mu.Unlock()
        return err
    }
    s.seq++
    b.ID = s.seq
    s.bookings[b.ID] = copyBooking(b)
    s.mu.Unlock()
    s.orders.complete(b.OrderID)
    return nil
}

func (s *memStore) GetBooking(_ context.Context, id uint64) (*model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return nil, &NotFoundError{Entity: "booking", ID: id}
    }
    return copyBooking(b), nil
}

func (s *memStore) SetStatus(_ context.Context, id uint64, status model.BookingStatus) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return &NotFoundError{Entity: "booking", ID: id}
    }
    b.Status = status
    return nil
}

func (s *memStore) SetStarted(_ context.Context, id uint64, at time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok || !b.Queued() {
        return &NotFoundError{Entity: "booking", ID: id}
    }
    t := at
    b.StartedAt = &t
    return nil
}

func (s *memStore) ActiveBooking(_ context.Context, sellerID uint64) (*model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, b := range s.bookings {
        if b.SellerID == sellerID && b.Active() {
            return copyBooking(b), nil
        }
    }
    return nil, nil
}

func (s *memStore) NextQueued(_ context.Context, sellerID uint64) (*model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var next *model.Booking
    for _, b := range s.bookings {
        if b.SellerID != sellerID || !b.Queued() {
            continue
        }
        if next == nil || b.BookedAt.Before(next.BookedAt) ||
            (b.BookedAt.Equal(next.BookedAt) && b.ID < next.ID) {
            next = b
        }
    }
    if next == nil {
        return nil, nil
    }
    return copyBooking(next), nil
}

func (s *memStore) CountQueuedBefore(_ context.Context, sellerID uint64, before time.Time) (int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    n := 0
    for _, b := range s.bookings {
        if b.SellerID == sellerID && b.Queued() && b.BookedAt.Before(before) {
            n++
        }
    }
    return n, nil
}

func (s *memStore) TableBooked(_ context.Context, tableID uint64) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, b := range s.bookings {
        if b.TableID != nil && *b.TableID == tableID && b.Status == model.StatusBooked {
            return true, nil
        }
    }
    return false, nil
}

func (s *memStore) ActiveBookings(_ context.Context) ([]*model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []*model.Booking
    for _, b := range s.bookings {
        if b.Active() {
            out = append(out, copyBooking(b))
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (s *memStore) ListByUser(_ context.Context, userID uint64, active bool) ([]*model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []*model.Booking
    for _, b := range s.bookings {
        if b.UserID == userID && (b.Status == model.StatusBooked) == active {
            out = append(out, copyBooking(b))
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.After(out[j].BookedAt) })
    return out, nil
}

func (s *memStore) ListByStatus(_ context.Context, active bool) ([]*model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []*model.Booking
    for _, b := range s.bookings {
        if (b.Status == model.StatusBooked) == active {
            out = append(out, copyBooking(b))
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.After(out[j].BookedAt) })
    return out, nil
}

// fakeCatalog serves sellers and tables from maps.  Errors can be
// injected per seller to exercise sweep failure isolation.
type fakeCatalog struct {
    mu      sync.Mutex
    sellers map[uint64]*model.Seller
    tables  map[uint64]*model.Table
    fail    map[uint64]error // seller id -> forced error
}

func newFakeCatalog() *fakeCatalog {
    return &fakeCatalog{
        sellers: make(map[uint64]*model.Seller),
        tables:  make(map[uint64]*model.Table),
        fail:    make(map[uint64]error),
    }
}

func (f *fakeCatalog) Seller(_ context.Context, id uint64) (*model.Seller, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if err := f.fail[id]; err != nil {
        return nil, err
    }
    s, ok := f.sellers[id]
    if !ok {
        return nil, &NotFoundError{Entity: "seller", ID: id}
    }
    cp := *s
    return &cp, nil
}

func (f *fakeCatalog) Table(_ context.Context, id uint64) (*model.Table, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    t, ok := f.tables[id]
    if !ok {
        return nil, &NotFoundError{Entity: "table", ID: id}
    }
    cp := *t
    return &cp, nil
}

// fakeOrders hands out one pending order per (user, seller) pair.  Items
// exist for every order unless empty is set.
type fakeOrders struct {
    mu        sync.Mutex
    seq       uint64
    pending   map[[2]uint64]uint64 // (user, seller) -> order id
    empty     bool
    completed map[uint64]bool
}

func newFakeOrders() *fakeOrders {
    return &fakeOrders{
        pending:   make(map[[2]uint64]uint64),
        completed: make(map[uint64]bool),
    }
}

func (f *fakeOrders) PendingOrder(_ context.Context, userID, sellerID uint64) (*model.Order, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    key := [2]uint64{userID, sellerID}
    id, ok := f.pending[key]
    if !ok {
        f.seq++
        id = f.seq
        f.pending[key] = id
    }
    return &model.Order{ID: id, UserID: userID, SellerID: sellerID}, nil
}

func (f *fakeOrders) HasItems(_ context.Context, orderID uint64) (bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return !f.empty, nil
}

// complete claims the order, like the UPDATE folded into the booking
// repository's create transaction.
func (f *fakeOrders) complete(orderID uint64) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.completed[orderID] = true
    for key, id := range f.pending {
        if id == orderID {
            delete(f.pending, key)
        }
    }
}

// fakeSink records published events in order.
type fakeSink struct {
    mu     sync.Mutex
    events []queue.BookingEvent
}

func (f *fakeSink) Publish(_ context.Context, ev queue.BookingEvent) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.events = append(f.events, ev)
    return nil
}

func (f *fakeSink) types() []string {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := make([]string, 0, len(f.events))
    for _, ev := range f.events {
        out = append(out, ev.Type)
    }
    return out
}

// lockCheckSink records, per published event, whether the seller's
// mutex was free at publish time.  TryLock succeeding means the ledger
// released the lock before handing events to the sink.
type lockCheckSink struct {
    ledger *Ledger
    mu     sync.Mutex
    free   []bool
}

func (s *lockCheckSink) Publish(_ context.Context, ev queue.BookingEvent) error {
    m := s.ledger.sellerLock(ev.SellerID)
    ok := m.TryLock()
    if ok {
        m.Unlock()
    }
    s.mu.Lock()
    s.free = append(s.free, ok)
    s.mu.Unlock()
    return nil
}

// testEnv bundles a ledger with its fakes and a controllable clock.
type testEnv struct {
    ledger  *Ledger
    store   *memStore
    catalog *fakeCatalog
    orders  *fakeOrders
    sink    *fakeSink
    clock   *clock
}

func newTestEnv() *testEnv {
    env := &testEnv{
        store:   newMemStore(),
        catalog: newFakeCatalog(),
        orders:  newFakeOrders(),
        sink:    &fakeSink{},
        clock:   newClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
    }
    env.store.orders = env.orders
    env.ledger = NewLedger(env.store, env.catalog, env.orders, env.sink)
    env.ledger.now = env.clock.Now
    return env
}

// addSeller registers a seller with the given wait time in minutes and
// optionally some tables.
func (e *testEnv) addSeller(id uint64, waitMin int, tableIDs ...uint64) {
    e.catalog.sellers[id] = &model.Seller{
        ID:          id,
        Name:        "seller",
        WaitTimeMin: waitMin,
        HasTables:   len(tableIDs) > 0,
    }
    for _, tid := range tableIDs {
        e.catalog.tables[tid] = &model.Table{ID: tid, SellerID: id}
    }
}
