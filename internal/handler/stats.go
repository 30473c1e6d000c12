package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/service"
)

// OccupancyStats handles GET /v1/stats/occupancy.
func (h *HotelHandler) OccupancyStats(c echo.Context) error {
	rows, err := h.Svc.OccupancyStats(c.Request().Context())
	return respond(c, http.StatusOK, rows, err)
}

// HotelStats handles GET /v1/stats/hotel.
func (h *HotelHandler) HotelStats(c echo.Context) error {
	out, err := h.Svc.HotelStatistics(c.Request().Context())
	return respond(c, http.StatusOK, out, err)
}

// BookingStats handles GET /v1/stats/bookings?start_date=&end_date=.
func (h *HotelHandler) BookingStats(c echo.Context) error {
	out, err := h.Svc.BookingStatistics(c.Request().Context(), c.QueryParam("start_date"), c.QueryParam("end_date"))
	return respond(c, http.StatusOK, out, err)
}

// RevenueStats handles GET /v1/stats/revenue?start_date=&end_date=.
// With by=room_type only the per-type rows are returned.
func (h *HotelHandler) RevenueStats(c echo.Context) error {
	ctx := c.Request().Context()
	start, end := c.QueryParam("start_date"), c.QueryParam("end_date")
	if c.QueryParam("by") == "room_type" {
		rows, err := h.Svc.RevenueByRoomType(ctx, start, end)
		return respond(c, http.StatusOK, rows, err)
	}
	out, err := h.Svc.RevenueReport(ctx, start, end)
	return respond(c, http.StatusOK, out, err)
}

// Forecast handles GET /v1/stats/forecast?days=30.
func (h *HotelHandler) Forecast(c echo.Context) error {
	days, err := queryInt(c, "days", service.DefaultForecastDays)
	if err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.Svc.OccupancyForecast(c.Request().Context(), days)
	return respond(c, http.StatusOK, out, err)
}
