package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/swan-prince/booking-server/internal/handler"
    "github.com/swan-prince/booking-server/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterBooking registers the booking API under /v1.  Every endpoint
// requires a valid access token; the staff group additionally requires
// the STAFF role.  Customers and staff share the booking endpoints —
// ownership is enforced per operation inside the engine, where staff may
// cancel and inspect bookings they do not own.  The rate limiter runs
// after JWTAuth so its bucket key sees the authenticated user; limiter
// may be nil to disable limiting.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
    v1 := e.Group("/v1")
    v1.Use(middleware.JWTAuth(jwtSecret))
    if limiter != nil {
        v1.Use(limiter)
    }
    v1.Use(middleware.RequireRole("CUSTOMER", "STAFF"))

    v1.POST("/bookings", h.CreateBooking)
    v1.GET("/bookings", h.ListBookings)
    v1.POST("/bookings/:id/cancel", h.CancelBooking)
    v1.POST("/bookings/:id/pay", h.PayBooking)
    v1.GET("/bookings/:id/queue", h.GetQueueStatus)

    staff := v1.Group("/staff")
    staff.Use(middleware.RequireRole("STAFF"))
    staff.GET("/bookings", h.StaffListBookings)
    staff.GET("/bookings/history", h.StaffBookingHistory)
}
