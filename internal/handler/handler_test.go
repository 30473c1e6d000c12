package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-management/internal/agent"
	"github.com/iliyamo/hotel-management/internal/database"
	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
	"github.com/iliyamo/hotel-management/internal/service"
)

func newService(t *testing.T) *service.HotelService {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db, database.SQLite))
	require.NoError(t, database.Seed(ctx, db))

	today := time.Date(2025, 5, 6, 10, 0, 0, 0, time.UTC)
	return service.NewHotelService(repository.NewExecutor(db, database.SQLite),
		service.WithClock(func() time.Time { return today }))
}

func newHotelHandler(t *testing.T) *HotelHandler {
	log, _ := test.NewNullLogger()
	return NewHotelHandler(newService(t), log)
}

// call runs h against a request built from method, target and body.
// params are path parameter name/value pairs.
func call(t *testing.T, h echo.HandlerFunc, role, method, target, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if role != "" {
		c.Set(middleware.ContextRole, role)
	}
	require.NoError(t, h(c))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestVacantRooms(t *testing.T) {
	h := newHotelHandler(t)

	rec := call(t, h.VacantRooms, "", http.MethodGet, "/v1/rooms/vacant?type=3BHK", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]map[string]any](t, rec)
	assert.Len(t, rows, 2)

	rec = call(t, h.VacantRooms, "", http.MethodGet, "/v1/rooms/vacant?type=2BHK", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetRoom(t *testing.T) {
	h := newHotelHandler(t)

	rec := call(t, h.GetRoom, "", http.MethodGet, "/v1/rooms/101", "", "id", "101")
	require.Equal(t, http.StatusOK, rec.Code)
	room := decode[map[string]any](t, rec)
	assert.Equal(t, "John", room["FirstName"])

	rec = call(t, h.GetRoom, "", http.MethodGet, "/v1/rooms/999", "", "id", "999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Room not found"}`, rec.Body.String())

	rec = call(t, h.GetRoom, "", http.MethodGet, "/v1/rooms/abc", "", "id", "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid id"}`, rec.Body.String())
}

func TestGetRoom_Routed(t *testing.T) {
	h := newHotelHandler(t)
	e := echo.New()
	e.GET("/v1/rooms/:id", h.GetRoom)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rooms/103", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	room := decode[map[string]any](t, rec)
	assert.EqualValues(t, 103, room["RoomID"])
}

func TestBookRoom(t *testing.T) {
	h := newHotelHandler(t)
	body := `{"customer_id":1,"arrival_date":"2025-06-01","departure_day":"2025-06-04","room_type":"%s","payment_type":"Cash","price":700}`

	rec := call(t, h.BookRoom, "", http.MethodPost, "/v1/bookings", strings.Replace(body, "%s", "3BHK", 1))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[service.BookingResult](t, rec)
	assert.EqualValues(t, 102, res.RoomID)

	rec = call(t, h.BookRoom, "", http.MethodPost, "/v1/bookings", strings.Replace(body, "%s", "2BHK", 1))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"No vacant rooms of type 2BHK available"}`, rec.Body.String())

	rec = call(t, h.BookRoom, "", http.MethodPost, "/v1/bookings", `{"arrival_date":"2025-06-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"customer_id failed on required"}`, rec.Body.String())
}

func TestCheckInAndOut(t *testing.T) {
	h := newHotelHandler(t)

	rec := call(t, h.CheckIn, "", http.MethodPost, "/v1/rooms/101/check-in", `{"booking_id":2}`, "id", "101")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Room is already occupied"}`, rec.Body.String())

	rec = call(t, h.CheckOut, "", http.MethodPost, "/v1/rooms/101/check-out", "", "id", "101")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"room_id":101,"booking_id":1,"affected_rows":1}`, rec.Body.String())

	rec = call(t, h.CheckOut, "", http.MethodPost, "/v1/rooms/101/check-out", "", "id", "101")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"room_id":101,"booking_id":null,"affected_rows":0}`, rec.Body.String())
}

func TestCancelBooking(t *testing.T) {
	h := newHotelHandler(t)

	rec := call(t, h.CancelBooking, "", http.MethodDelete, "/v1/bookings/1", "", "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"booking_id":1,"freed_room_rows":1,"deleted_booking_rows":1,"deleted_payment_rows":1}`, rec.Body.String())

	rec = call(t, h.CancelBooking, "", http.MethodDelete, "/v1/bookings/1", "", "id", "1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Booking not found"}`, rec.Body.String())
}

func TestApplyDiscount(t *testing.T) {
	h := newHotelHandler(t)

	rec := call(t, h.ApplyDiscount, "", http.MethodPut, "/v1/payments/1/discount", `{"discount":101}`, "id", "1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Discount must be between 0 and 100"}`, rec.Body.String())

	rec = call(t, h.ApplyDiscount, "", http.MethodPut, "/v1/payments/1/discount", `{}`, "id", "1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"discount failed on required"}`, rec.Body.String())

	rec = call(t, h.ApplyDiscount, "", http.MethodPut, "/v1/payments/9/discount", `{"discount":0}`, "id", "9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArrivalsHorizon(t *testing.T) {
	h := newHotelHandler(t)

	rec := call(t, h.Arrivals, "", http.MethodGet, "/v1/bookings/arrivals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = call(t, h.Arrivals, "", http.MethodGet, "/v1/bookings/arrivals?days=366", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h.Arrivals, "", http.MethodGet, "/v1/bookings/arrivals?days=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"days must be an integer"}`, rec.Body.String())
}

func TestCustomerBookingsSelectors(t *testing.T) {
	h := newHotelHandler(t)

	rec := call(t, h.CustomerBookings, "", http.MethodGet, "/v1/customers/bookings?name=Brown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = call(t, h.CustomerBookings, "", http.MethodGet, "/v1/customers/bookings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOccupancyStats(t *testing.T) {
	h := newHotelHandler(t)

	rec := call(t, h.OccupancyStats, "", http.MethodGet, "/v1/stats/occupancy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]map[string]any](t, rec)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 100, rows[0]["occupancy_rate"])
}

func TestBookingsReport(t *testing.T) {
	h := newHotelHandler(t)

	rec := call(t, h.BookingsReport, "", http.MethodGet, "/v1/reports/bookings.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxMIME, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "bookings-2025-05-06.xlsx")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx is a zip container")
}

func TestAgentHandler(t *testing.T) {
	log, _ := test.NewNullLogger()
	a := NewAgentHandler(agent.NewDispatcher(newService(t)), log)

	rec := call(t, a.List, model.RoleReception, http.MethodGet, "/v1/agent/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tools := decode[[]agent.Tool](t, rec)
	for _, tool := range tools {
		assert.NotEqual(t, "custom_query", tool.Name)
	}

	rec = call(t, a.Call, model.RoleReception, http.MethodPost, "/v1/agent/tools/get_vacant_rooms",
		`{"room_type":"3BHK"}`, "name", "get_vacant_rooms")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = call(t, a.Call, model.RoleReception, http.MethodPost, "/v1/agent/tools/apply_discount",
		`{"payment_id":1,"discount":150}`, "name", "apply_discount")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"error":"Discount must be between 0 and 100"}]`, rec.Body.String())

	rec = call(t, a.Call, model.RoleManager, http.MethodPost, "/v1/agent/tools/nope", `{}`, "name", "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, a.Call, model.RoleManager, http.MethodPost, "/v1/agent/tools/get_all_rooms", `[1,2]`, "name", "get_all_rooms")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusOf(&service.Error{Kind: service.Validation}))
	assert.Equal(t, http.StatusConflict, statusOf(&service.Error{Kind: service.Conflict}))
	assert.Equal(t, http.StatusNotFound, statusOf(&service.Error{Kind: service.NotFound}))
	assert.Equal(t, http.StatusInternalServerError, statusOf(&service.Error{Kind: service.Compensation}))
	assert.Equal(t, http.StatusInternalServerError, statusOf(assert.AnError))
}
