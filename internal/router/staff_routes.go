package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/handler"
)

// registerStaff mounts the routes every staff role may call.  mw runs
// after the group's auth and role checks.
func registerStaff(g *echo.Group, h *handler.HotelHandler, a *handler.AgentHandler, mw ...echo.MiddlewareFunc) {
	g.GET("/rooms", h.ListRooms, mw...)
	g.GET("/rooms/vacant", h.VacantRooms, mw...)
	g.GET("/rooms/search", h.SearchRooms, mw...)
	g.GET("/rooms/:id", h.GetRoom, mw...)
	g.GET("/rooms/:id/availability", h.RoomAvailability, mw...)
	g.POST("/rooms/:id/check-in", h.CheckIn, mw...)
	g.POST("/rooms/:id/check-out", h.CheckOut, mw...)

	g.GET("/stays/current", h.CurrentStays, mw...)

	g.GET("/bookings", h.ListBookings, mw...)
	g.GET("/bookings/range", h.BookingsInRange, mw...)
	g.GET("/bookings/arrivals", h.Arrivals, mw...)
	g.GET("/bookings/departures", h.Departures, mw...)
	g.GET("/bookings/:id", h.GetBooking, mw...)
	g.POST("/bookings", h.BookRoom, mw...)
	g.PATCH("/bookings/:id", h.UpdateBooking, mw...)
	g.DELETE("/bookings/:id", h.CancelBooking, mw...)
	g.POST("/bookings/:id/check-out", h.CheckOutBooking, mw...)

	g.GET("/customers", h.ListCustomers, mw...)
	g.GET("/customers/search", h.SearchCustomers, mw...)
	g.GET("/customers/frequent", h.FrequentCustomers, mw...)
	g.GET("/customers/bookings", h.CustomerBookings, mw...)
	g.GET("/customers/:id", h.GetCustomer, mw...)
	g.POST("/customers", h.AddCustomer, mw...)
	g.PATCH("/customers/:id", h.UpdateCustomer, mw...)

	g.GET("/payments", h.ListPayments, mw...)
	g.GET("/payments/:id", h.GetPayment, mw...)
	g.POST("/payments", h.AddPayment, mw...)
	g.PUT("/payments/:id/discount", h.ApplyDiscount, mw...)
	g.POST("/payments/:id/complete", h.CompletePayment, mw...)

	g.GET("/stats/occupancy", h.OccupancyStats, mw...)
	g.GET("/stats/hotel", h.HotelStats, mw...)
	g.GET("/stats/bookings", h.BookingStats, mw...)
	g.GET("/stats/revenue", h.RevenueStats, mw...)
	g.GET("/stats/forecast", h.Forecast, mw...)

	g.GET("/reports/bookings.xlsx", h.BookingsReport, mw...)

	if a != nil {
		g.GET("/agent/tools", a.List, mw...)
		g.POST("/agent/tools/:name", a.Call, mw...)
	}
}
