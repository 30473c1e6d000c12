package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-management/internal/agent"
	"github.com/iliyamo/hotel-management/internal/config"
	"github.com/iliyamo/hotel-management/internal/database"
	"github.com/iliyamo/hotel-management/internal/handler"
	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
	"github.com/iliyamo/hotel-management/internal/service"
	"github.com/iliyamo/hotel-management/internal/utils"
)

const secret = "router-secret"

// newServer builds the full route table over a seeded in-memory database
// with a redis cache shared by every caller of a role.
func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db, database.SQLite))
	require.NoError(t, database.Seed(ctx, db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log, _ := test.NewNullLogger()
	x := repository.NewExecutor(db, database.SQLite)
	today := time.Date(2025, 5, 6, 10, 0, 0, 0, time.UTC)
	svc := service.NewHotelService(x, service.WithClock(func() time.Time { return today }), service.WithLogger(log))

	cacheCfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "test:cache",
		MaxBodyBytes: 1 << 20,
	}

	e := echo.New()
	Register(e, Deps{
		DB:        db,
		JWTSecret: secret,
		Auth:      handler.NewAuthHandler(config.Config{JWTSecret: secret}, repository.NewUserRepo(x), repository.NewTokenRepo(x), log),
		Hotel:     handler.NewHotelHandler(svc, log),
		Agent:     handler.NewAgentHandler(agent.NewDispatcher(svc), log),
		Cache:     middleware.NewRedisCache(cacheCfg, rdb, log),
	})
	return e
}

func do(t *testing.T, e *echo.Echo, userID uint64, role, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, userID, role, 5)
	require.NoError(t, err)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestManagerRoutes_CachedResponseNotServedToReception(t *testing.T) {
	e := newServer(t)

	rec := do(t, e, 1, model.RoleManager, http.MethodGet, "/v1/records/tables", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = do(t, e, 1, model.RoleManager, http.MethodGet, "/v1/records/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	rec = do(t, e, 2, model.RoleReception, http.MethodGet, "/v1/records/tables", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestToolList_CachedPerRole(t *testing.T) {
	e := newServer(t)

	rec := do(t, e, 1, model.RoleManager, http.MethodGet, "/v1/agent/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"custom_query"`)

	rec = do(t, e, 2, model.RoleReception, http.MethodGet, "/v1/agent/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.NotContains(t, rec.Body.String(), `"custom_query"`)
}

func TestStaffRoutes_WriteInvalidatesCachedReads(t *testing.T) {
	e := newServer(t)
	vacant := func() ([]map[string]any, string) {
		rec := do(t, e, 2, model.RoleReception, http.MethodGet, "/v1/rooms/vacant?type=3BHK", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var rows []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		return rows, rec.Header().Get("X-Cache")
	}

	rows, state := vacant()
	assert.Len(t, rows, 2)
	assert.Equal(t, "MISS", state)
	_, state = vacant()
	assert.Equal(t, "HIT", state)

	rec := do(t, e, 2, model.RoleReception, http.MethodPost, "/v1/bookings",
		`{"customer_id":1,"arrival_date":"2025-06-01","departure_day":"2025-06-04","room_type":"3BHK","payment_type":"Cash","price":700}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rows, state = vacant()
	assert.Equal(t, "MISS", state)
	assert.Len(t, rows, 1)
}

func TestStaffRoutes_RequireToken(t *testing.T) {
	e := newServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
