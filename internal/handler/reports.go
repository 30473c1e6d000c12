package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/report"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BookingsReport handles GET /v1/reports/bookings.xlsx.
func (h *HotelHandler) BookingsReport(c echo.Context) error {
	ctx := c.Request().Context()
	ledger, err := h.Svc.BookingLedger(ctx)
	if err != nil {
		return fail(c, err)
	}
	stats, err := h.Svc.HotelStatistics(ctx)
	if err != nil {
		return fail(c, err)
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, ledger, stats); err != nil {
		h.Log.WithError(err).Error("render bookings report")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
	}
	name := fmt.Sprintf("bookings-%s.xlsx", h.Svc.Today())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
