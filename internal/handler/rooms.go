package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-management/internal/model"
    "github.com/iliyamo/hotel-management/internal/service"
)

type addRoomReq struct {
    RoomID int64   `json:"room_id" validate:"required,gt=0"`
    Type   string  `json:"room_type" validate:"required"`
    Price  float64 `json:"price"`
}

type updateRoomReq struct {
    Type  *string  `json:"room_type"`
    Price *float64 `json:"price"`
}

type checkInReq struct {
    BookingID int64 `json:"booking_id" validate:"required,gt=0"`
}

// ListRooms handles GET /v1/rooms.
func (h *HotelHandler) ListRooms(c echo.Context) error {
    rows, err := h.Svc.AllRooms(c.Request().Context())
    return respond(c, http.StatusOK, rows, err)
}

// VacantRooms handles GET /v1/rooms/vacant?type=2BHK.
func (h *HotelHandler) VacantRooms(c echo.Context) error {
    rows, err := h.Svc.VacantRooms(c.Request().Context(), c.QueryParam("type"))
    return respond(c, http.StatusOK, rows, err)
}

// SearchRooms handles GET /v1/rooms/search?min_price=&max_price=&only_vacant=.
func (h *HotelHandler) SearchRooms(c echo.Context) error {
    min, err := queryFloat(c, "min_price", service.DefaultMinPrice)
    if err != nil {
        return badRequest(c, err.Error())
    }
    max, err := queryFloat(c, "max_price", service.DefaultMaxPrice)
    if err != nil {
        return badRequest(c, err.Error())
    }
    vacant, err := queryBool(c, "only_vacant", false)
    if err != nil {
        return badRequest(c, err.Error())
    }
    rows, err := h.Svc.SearchRoomsByPrice(c.Request().Context(), min, max, vacant)
    return respond(c, http.StatusOK, rows, err)
}

// GetRoom handles GET /v1/rooms/:id.
func (h *HotelHandler) GetRoom(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, err.Error())
    }
    rows, err := h.Svc.RoomByID(c.Request().Context(), id)
    if err != nil {
        return fail(c, err)
    }
    if len(rows) == 0 {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Room not found"})
    }
    return c.JSON(http.StatusOK, rows[0])
}

// RoomAvailability handles GET /v1/rooms/:id/availability?start_date=&end_date=.
func (h *HotelHandler) RoomAvailability(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, err.Error())
    }
    rows, err := h.Svc.RoomAvailability(c.Request().Context(), id, c.QueryParam("start_date"), c.QueryParam("end_date"))
    return respond(c, http.StatusOK, rows, err)
}

// CheckIn handles POST /v1/rooms/:id/check-in.
func (h *HotelHandler) CheckIn(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, err.Error())
    }
    var req checkInReq
    if err := bindValid(c, &req); err != nil {
        return badRequest(c, err.Error())
    }
    res, err := h.Svc.CheckIn(c.Request().Context(), id, req.BookingID)
    return respond(c, http.StatusOK, res, err)
}

// CheckOut handles POST /v1/rooms/:id/check-out.  Repeating it is harmless.
func (h *HotelHandler) CheckOut(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, err.Error())
    }
    res, err := h.Svc.CheckOutRoom(c.Request().Context(), id)
    return respond(c, http.StatusOK, res, err)
}

// CurrentStays handles GET /v1/stays/current.
func (h *HotelHandler) CurrentStays(c echo.Context) error {
    rows, err := h.Svc.CurrentStays(c.Request().Context())
    return respond(c, http.StatusOK, rows, err)
}

// AddRoom handles POST /v1/rooms.
func (h *HotelHandler) AddRoom(c echo.Context) error {
    var req addRoomReq
    if err := bindValid(c, &req); err != nil {
        return badRequest(c, err.Error())
    }
    room, err := h.Svc.AddRoom(c.Request().Context(), req.RoomID, req.Type, req.Price)
    return respond(c, http.StatusCreated, room, err)
}

// UpdateRoom handles PATCH /v1/rooms/:id.
func (h *HotelHandler) UpdateRoom(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, err.Error())
    }
    var req updateRoomReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    patch := model.RoomPatch{Price: req.Price}
    if req.Type != nil {
        t := model.RoomType(*req.Type)
        patch.Type = &t
    }
    res, err := h.Svc.UpdateRoom(c.Request().Context(), id, patch)
    return respond(c, http.StatusOK, res, err)
}
