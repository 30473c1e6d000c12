package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/repository"
)

type queryReq struct {
	Query string `json:"query" validate:"required"`
}

// ListTables handles GET /v1/records/tables.
func (h *HotelHandler) ListTables(c echo.Context) error {
	rows, err := h.Svc.ListTables(c.Request().Context())
	return respond(c, http.StatusOK, rows, err)
}

// ReadRecords handles GET /v1/records/:table?condition=&limit=5.
func (h *HotelHandler) ReadRecords(c echo.Context) error {
	limit, err := queryInt(c, "limit", repository.DefaultRecordLimit)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := h.Svc.ReadRecords(c.Request().Context(), c.Param("table"), c.QueryParam("condition"), limit)
	return respond(c, http.StatusOK, rows, err)
}

// DescribeTable handles GET /v1/records/:table/describe.
func (h *HotelHandler) DescribeTable(c echo.Context) error {
	rows, err := h.Svc.DescribeTable(c.Request().Context(), c.Param("table"))
	return respond(c, http.StatusOK, rows, err)
}

// CustomQuery handles POST /v1/records/query.
func (h *HotelHandler) CustomQuery(c echo.Context) error {
	var req queryReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := h.Svc.CustomQuery(c.Request().Context(), req.Query)
	return respond(c, http.StatusOK, rows, err)
}
