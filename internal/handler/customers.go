package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/service"
)

type addCustomerReq struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	DOB            string `json:"dob" validate:"required"`
	IdentityType   string `json:"identity_type" validate:"required"`
	IdentityString string `json:"identity_string" validate:"required"`
}

type updateCustomerReq struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	DOB            *string `json:"dob"`
	IdentityType   *string `json:"identity_type"`
	IdentityString *string `json:"identity_string"`
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// ListCustomers handles GET /v1/customers.
func (h *HotelHandler) ListCustomers(c echo.Context) error {
	rows, err := h.Svc.AllCustomers(c.Request().Context())
	return respond(c, http.StatusOK, rows, err)
}

// SearchCustomers handles GET /v1/customers/search?q=.
func (h *HotelHandler) SearchCustomers(c echo.Context) error {
	term := c.QueryParam("q")
	if strings.TrimSpace(term) == "" {
		return badRequest(c, "q is required")
	}
	rows, err := h.Svc.SearchCustomers(c.Request().Context(), term)
	return respond(c, http.StatusOK, rows, err)
}

// FrequentCustomers handles GET /v1/customers/frequent?min_bookings=2.
func (h *HotelHandler) FrequentCustomers(c echo.Context) error {
	min, err := queryInt(c, "min_bookings", 2)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := h.Svc.FrequentCustomers(c.Request().Context(), min)
	return respond(c, http.StatusOK, rows, err)
}

// CustomerBookings handles GET /v1/customers/bookings?customer_id= or ?name=.
func (h *HotelHandler) CustomerBookings(c echo.Context) error {
	var id int64
	if s := strings.TrimSpace(c.QueryParam("customer_id")); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return badRequest(c, "customer_id must be an integer")
		}
		id = n
	}
	rows, err := h.Svc.CustomerBookings(c.Request().Context(), id, c.QueryParam("name"))
	return respond(c, http.StatusOK, rows, err)
}

// GetCustomer handles GET /v1/customers/:id.
func (h *HotelHandler) GetCustomer(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := h.Svc.CustomerByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}
	return c.JSON(http.StatusOK, rows[0])
}

// AddCustomer handles POST /v1/customers.
func (h *HotelHandler) AddCustomer(c echo.Context) error {
	var req addCustomerReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	cust, err := h.Svc.AddCustomer(c.Request().Context(), service.CustomerInput(req))
	return respond(c, http.StatusCreated, cust, err)
}

// UpdateCustomer handles PATCH /v1/customers/:id.  Blank strings count
// as not provided.
func (h *HotelHandler) UpdateCustomer(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req updateCustomerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	patch := model.CustomerPatch{
		FirstName:      nonBlank(req.FirstName),
		LastName:       nonBlank(req.LastName),
		IdentityString: nonBlank(req.IdentityString),
	}
	if patch.DOB, err = optDate("dob", req.DOB); err != nil {
		return badRequest(c, err.Error())
	}
	if t := nonBlank(req.IdentityType); t != nil {
		it := model.IdentityType(*t)
		patch.IdentityType = &it
	}
	res, err := h.Svc.UpdateCustomer(c.Request().Context(), id, patch)
	return respond(c, http.StatusOK, res, err)
}
