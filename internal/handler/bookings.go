package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/service"
)

type bookRoomReq struct {
	CustomerID   int64   `json:"customer_id" validate:"required,gt=0"`
	ArrivalDate  string  `json:"arrival_date" validate:"required"`
	DepartureDay string  `json:"departure_day" validate:"required"`
	RoomType     string  `json:"room_type" validate:"required"`
	PaymentType  string  `json:"payment_type" validate:"required"`
	Price        float64 `json:"price" validate:"gte=0"`
	Discount     float64 `json:"discount" validate:"gte=0,lte=100"`
}

type updateBookingReq struct {
	ArrivalDate  *string `json:"arrival_date"`
	DepartureDay *string `json:"departure_day"`
	PaymentID    *int64  `json:"payment_id"`
}

type checkOutBookingReq struct {
	MarkPaymentComplete *bool `json:"mark_payment_complete"`
}

func optDate(field string, s *string) (*model.Date, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := model.ParseDate(*s)
	if err != nil {
		return nil, fmt.Errorf("Invalid %s %q: expected YYYY-MM-DD", field, *s)
	}
	return &d, nil
}

// ListBookings handles GET /v1/bookings.
func (h *HotelHandler) ListBookings(c echo.Context) error {
	rows, err := h.Svc.AllBookings(c.Request().Context())
	return respond(c, http.StatusOK, rows, err)
}

// BookingsInRange handles GET /v1/bookings/range?start_date=&end_date=.
func (h *HotelHandler) BookingsInRange(c echo.Context) error {
	rows, err := h.Svc.BookingsByDateRange(c.Request().Context(), c.QueryParam("start_date"), c.QueryParam("end_date"))
	return respond(c, http.StatusOK, rows, err)
}

// Arrivals handles GET /v1/bookings/arrivals?days=7.
func (h *HotelHandler) Arrivals(c echo.Context) error {
	days, err := queryInt(c, "days", 7)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := h.Svc.UpcomingArrivals(c.Request().Context(), days)
	return respond(c, http.StatusOK, rows, err)
}

// Departures handles GET /v1/bookings/departures?days=7.
func (h *HotelHandler) Departures(c echo.Context) error {
	days, err := queryInt(c, "days", 7)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := h.Svc.UpcomingDepartures(c.Request().Context(), days)
	return respond(c, http.StatusOK, rows, err)
}

// GetBooking handles GET /v1/bookings/:id.
func (h *HotelHandler) GetBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := h.Svc.BookingDetails(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Booking not found"})
	}
	return c.JSON(http.StatusOK, rows[0])
}

// BookRoom handles POST /v1/bookings.
func (h *HotelHandler) BookRoom(c echo.Context) error {
	var req bookRoomReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.Svc.BookRoom(c.Request().Context(), service.BookingRequest{
		CustomerID:   req.CustomerID,
		ArrivalDate:  req.ArrivalDate,
		DepartureDay: req.DepartureDay,
		RoomType:     req.RoomType,
		PaymentType:  req.PaymentType,
		Price:        req.Price,
		Discount:     req.Discount,
	})
	return respond(c, http.StatusCreated, res, err)
}

// UpdateBooking handles PATCH /v1/bookings/:id.
func (h *HotelHandler) UpdateBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	var patch model.BookingPatch
	if patch.ArrivalDate, err = optDate("arrival_date", req.ArrivalDate); err != nil {
		return badRequest(c, err.Error())
	}
	if patch.DepartureDay, err = optDate("departure_day", req.DepartureDay); err != nil {
		return badRequest(c, err.Error())
	}
	patch.PaymentID = req.PaymentID
	res, err := h.Svc.UpdateBooking(c.Request().Context(), id, patch)
	return respond(c, http.StatusOK, res, err)
}

// CancelBooking handles DELETE /v1/bookings/:id.
func (h *HotelHandler) CancelBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.Svc.CancelBooking(c.Request().Context(), id)
	return respond(c, http.StatusOK, res, err)
}

// CheckOutBooking handles POST /v1/bookings/:id/check-out.  The payment
// is settled unless mark_payment_complete is false.
func (h *HotelHandler) CheckOutBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req checkOutBookingReq
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid body")
		}
	}
	mark := req.MarkPaymentComplete == nil || *req.MarkPaymentComplete
	res, err := h.Svc.CheckOutBooking(c.Request().Context(), id, mark)
	return respond(c, http.StatusOK, res, err)
}
