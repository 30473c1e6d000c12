package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/service"
)

type addPaymentReq struct {
	PaymentType string  `json:"payment_type" validate:"required"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	IsDone      bool    `json:"is_done"`
}

type discountReq struct {
	Discount *float64 `json:"discount" validate:"required"`
}

// ListPayments handles GET /v1/payments.
func (h *HotelHandler) ListPayments(c echo.Context) error {
	rows, err := h.Svc.AllPayments(c.Request().Context())
	return respond(c, http.StatusOK, rows, err)
}

// GetPayment handles GET /v1/payments/:id.
func (h *HotelHandler) GetPayment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := h.Svc.PaymentDetails(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Payment not found"})
	}
	return c.JSON(http.StatusOK, rows[0])
}

// AddPayment handles POST /v1/payments.
func (h *HotelHandler) AddPayment(c echo.Context) error {
	var req addPaymentReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	p, err := h.Svc.AddPayment(c.Request().Context(), service.PaymentInput(req))
	return respond(c, http.StatusCreated, p, err)
}

// ApplyDiscount handles PUT /v1/payments/:id/discount.
func (h *HotelHandler) ApplyDiscount(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req discountReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.Svc.ApplyDiscount(c.Request().Context(), id, *req.Discount)
	return respond(c, http.StatusOK, res, err)
}

// CompletePayment handles POST /v1/payments/:id/complete.
func (h *HotelHandler) CompletePayment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.Svc.MarkPaymentComplete(c.Request().Context(), id)
	return respond(c, http.StatusOK, res, err)
}
