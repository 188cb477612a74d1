package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/swan-prince/booking-server/internal/booking"
    "github.com/swan-prince/booking-server/internal/model"
)

// BookingHandler exposes the booking queue engine over HTTP.  All
// methods assume JWT authentication and role validation have already
// been performed by middleware; the acting user is reconstructed from
// the claims stored in the request context.
type BookingHandler struct {
    Ledger *booking.Ledger
    Store  booking.Store // read path for listings
}

// NewBookingHandler constructs a BookingHandler and panics if any
// dependency is nil.
func NewBookingHandler(ledger *booking.Ledger, store booking.Store) *BookingHandler {
    if ledger == nil || store == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{Ledger: ledger, Store: store}
}

// bookingResponse is the wire shape of a booking in list and create
// responses.
type bookingResponse struct {
    ID           uint64     `json:"id"`
    SellerID     uint64     `json:"seller_id"`
    TableID      *uint64    `json:"table_id,omitempty"`
    Guests       *int       `json:"guests,omitempty"`
    ReservedTime *time.Time `json:"reserved_time,omitempty"`
    Status       string     `json:"status"`
    BookedAt     time.Time  `json:"booked_at"`
    StartedAt    *time.Time `json:"started_at,omitempty"`
}

func toResponse(b *model.Booking) bookingResponse {
    return bookingResponse{
        ID:           b.ID,
        SellerID:     b.SellerID,
        TableID:      b.TableID,
        Guests:       b.Guests,
        ReservedTime: b.ReservedTime,
        Status:       string(b.Status),
        BookedAt:     b.BookedAt,
        StartedAt:    b.StartedAt,
    }
}

// CreateBooking handles POST /v1/bookings.  The body names either a
// seller (open-seat booking) or a table, in which case guests and
// reserved_time are required.  On success it returns 201 with the id of
// the created booking and its queue state.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        SellerID     uint64     `json:"seller_id"`
        TableID      uint64     `json:"table_id"`
        Guests       int        `json:"guests"`
        ReservedTime *time.Time `json:"reserved_time"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    b, err := h.Ledger.Create(c.Request().Context(), booking.CreateParams{
        Actor:        actor,
        SellerID:     body.SellerID,
        TableID:      body.TableID,
        Guests:       body.Guests,
        ReservedTime: body.ReservedTime,
    })
    if err != nil {
        return writeBookingError(c, err)
    }
    return c.JSON(http.StatusCreated, toResponse(b))
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  The owner and
// staff may cancel; canceling the active booking advances the queue.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := bookingID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.Ledger.Cancel(c.Request().Context(), id, actor); err != nil {
        return writeBookingError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// PayBooking handles POST /v1/bookings/:id/pay.  Only the owner of the
// active booking may pay; paying advances the queue.
func (h *BookingHandler) PayBooking(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := bookingID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.Ledger.Pay(c.Request().Context(), id, actor); err != nil {
        return writeBookingError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// GetQueueStatus handles GET /v1/bookings/:id/queue.  It returns the
// number of people ahead and the estimated wait in seconds as
// {"people": N, "time": S}.
func (h *BookingHandler) GetQueueStatus(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := bookingID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    st, err := h.Ledger.Status(c.Request().Context(), id, actor)
    if err != nil {
        return writeBookingError(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

// ListBookings handles GET /v1/bookings?scope=active|previous and
// returns the caller's own bookings, newest first.  The default scope is
// active (status=booked); previous returns terminal bookings.
func (h *BookingHandler) ListBookings(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    scope := c.QueryParam("scope")
    if scope == "" {
        scope = "active"
    }
    if scope != "active" && scope != "previous" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "scope must be active or previous"})
    }
    items, err := h.Store.ListByUser(c.Request().Context(), actor.ID, scope == "active")
    if err != nil {
        return writeBookingError(c, err)
    }
    return c.JSON(http.StatusOK, listResponse(items))
}

// StaffListBookings handles GET /v1/staff/bookings: every live booking
// across all sellers, for the back office queue screen.
func (h *BookingHandler) StaffListBookings(c echo.Context) error {
    items, err := h.Store.ListByStatus(c.Request().Context(), true)
    if err != nil {
        return writeBookingError(c, err)
    }
    return c.JSON(http.StatusOK, listResponse(items))
}

// StaffBookingHistory handles GET /v1/staff/bookings/history: bookings
// in terminal states, newest first.
func (h *BookingHandler) StaffBookingHistory(c echo.Context) error {
    items, err := h.Store.ListByStatus(c.Request().Context(), false)
    if err != nil {
        return writeBookingError(c, err)
    }
    return c.JSON(http.StatusOK, listResponse(items))
}

func listResponse(items []*model.Booking) []bookingResponse {
    out := make([]bookingResponse, 0, len(items))
    for _, b := range items {
        out = append(out, toResponse(b))
    }
    return out
}

func bookingID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid booking id")
    }
    return id, nil
}

// writeBookingError translates the engine's error taxonomy into HTTP
// statuses: validation 400, conflict 409, permission 403, state 422,
// not-found 404.  Anything unrecognized becomes a 500 without leaking
// internals to the client.
func writeBookingError(c echo.Context, err error) error {
    var (
        ve *booking.ValidationError
        ce *booking.ConflictError
        pe *booking.PermissionError
        se *booking.StateError
        ne *booking.NotFoundError
    )
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Reason})
    case errors.As(err, &ce):
        return c.JSON(http.StatusConflict, echo.Map{"error": ce.Reason})
    case errors.As(err, &pe):
        return c.JSON(http.StatusForbidden, echo.Map{"error": pe.Reason})
    case errors.As(err, &se):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": se.Reason})
    case errors.As(err, &ne):
        return c.JSON(http.StatusNotFound, echo.Map{"error": ne.Error()})
    }
    c.Logger().Errorf("booking: %v", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
