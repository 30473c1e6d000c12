package middleware

import (
    "context"
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

    "github.com/iliyamo/hotel-management/internal/config"
    "github.com/iliyamo/hotel-management/internal/model"
    "github.com/iliyamo/hotel-management/internal/utils"
)

const secret = "test-secret"

func ok(c echo.Context) error { return c.String(http.StatusOK, CurrentRole(c)) }

func run(mw echo.MiddlewareFunc, req *http.Request, before func(c echo.Context)) *httptest.ResponseRecorder {
    e := echo.New()
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/rooms")
    if before != nil {
        before(c)
    }
    _ = mw(ok)(c)
    return rec
}

func TestJWTAuth(t *testing.T) {
    tok, err := utils.NewAccessToken(secret, 7, model.RoleManager, 5)
    require.NoError(t, err)

    req := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
    req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
    rec := run(JWTAuth(secret), req, nil)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, model.RoleManager, rec.Body.String())

    rec = run(JWTAuth(secret), httptest.NewRequest(http.MethodGet, "/v1/rooms", nil), nil)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())

    req = httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
    req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
    rec = run(JWTAuth("other-secret"), req, nil)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
}

func TestJWTAuth_WebsocketQueryToken(t *testing.T) {
    tok, err := utils.NewAccessToken(secret, 3, model.RoleReception, 5)
    require.NoError(t, err)

    req := httptest.NewRequest(http.MethodGet, "/v1/live?access_token="+tok.Token, nil)
    req.Header.Set("Upgrade", "websocket")
    rec := run(JWTAuth(secret), req, nil)
    assert.Equal(t, http.StatusOK, rec.Code)

    req = httptest.NewRequest(http.MethodGet, "/v1/rooms?access_token="+tok.Token, nil)
    rec = run(JWTAuth(secret), req, nil)
    assert.Equal(t, http.StatusUnauthorized, rec.Code, "query token only counts on upgrades")
}

func TestRequireRole(t *testing.T) {
    mw := RequireRole(model.RoleManager)

    rec := run(mw, httptest.NewRequest(http.MethodPost, "/v1/rooms", nil), func(c echo.Context) {
        c.Set(ContextRole, model.RoleReception)
    })
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())

    rec = run(mw, httptest.NewRequest(http.MethodPost, "/v1/rooms", nil), func(c echo.Context) {
        c.Set(ContextRole, model.RoleManager)
    })
    assert.Equal(t, http.StatusOK, rec.Code)
}

func rateConfig() config.RateLimitConfig {
    return config.RateLimitConfig{
        Enabled:        true,
        Capacity:       2,
        RefillTokens:   1,
        RefillInterval: time.Minute,
        TTL:            time.Hour,
        KeyStrategy:    "ip",
        Prefix:         "test:rl",
    }
}

func TestLocalBucket(t *testing.T) {
    b := newLocalBucket(rateConfig())
    now := time.Date(2025, 5, 6, 12, 0, 0, 0, time.UTC)
    b.now = func() time.Time { return now }
    ctx := context.Background()

    for i := 0; i < 2; i++ {
        allowed, _, _, err := b.take(ctx, "k")
        require.NoError(t, err)
        assert.True(t, allowed)
    }
    allowed, remaining, retry, err := b.take(ctx, "k")
    require.NoError(t, err)
    assert.False(t, allowed)
    assert.Zero(t, remaining)
    assert.InDelta(t, time.Minute.Seconds(), retry.Seconds(), 0.001)

    allowed, _, _, _ = b.take(ctx, "other")
    assert.True(t, allowed, "keys are independent")

    now = now.Add(time.Minute)
    allowed, _, _, _ = b.take(ctx, "k")
    assert.True(t, allowed, "one token refilled")
}

func TestLocalBucket_Prune(t *testing.T) {
    b := newLocalBucket(rateConfig())
    now := time.Date(2025, 5, 6, 12, 0, 0, 0, time.UTC)
    b.now = func() time.Time { return now }

    _, _, _, _ = b.take(context.Background(), "idle")
    now = now.Add(2 * time.Hour)
    _, _, _, _ = b.take(context.Background(), "fresh")

    assert.NotContains(t, b.keys, "idle")
    assert.Contains(t, b.keys, "fresh")
}

func TestTokenBucketMiddleware(t *testing.T) {
    log, _ := test.NewNullLogger()
    cfg := rateConfig()
    cfg.Capacity = 1
    mw := tokenBucket(cfg, newLocalBucket(cfg), log)

    rec := run(mw, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil), nil)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

    rec = run(mw, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil), nil)
    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.NotEmpty(t, rec.Header().Get("Retry-After"))
    assert.Contains(t, rec.Body.String(), `"rate limit exceeded"`)
}

func TestNewTokenBucket_Disabled(t *testing.T) {
    log, _ := test.NewNullLogger()
    cfg := rateConfig()
    cfg.Enabled = false
    cfg.Capacity = 0
    mw := NewTokenBucket(cfg, nil, log)

    for i := 0; i < 3; i++ {
        rec := run(mw, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil), nil)
        assert.Equal(t, http.StatusOK, rec.Code)
    }
}

func TestBuildRateKey(t *testing.T) {
    cfg := rateConfig()
    cfg.KeyStrategy = "user_route"
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/rooms/1", nil), httptest.NewRecorder())
    c.SetPath("/v1/rooms/:id")
    c.Set(ContextUserID, uint64(9))

    assert.Equal(t, "test:rl:user:9:route:GET /v1/rooms/:id", buildRateKey(cfg, c))
}

func TestPayloadRoundTrip(t *testing.T) {
    h := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, h, []byte(`{"a":1}`))
    require.NoError(t, err)

    status, header, body, valid := decodePayload(bs)
    require.True(t, valid)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, h, header)
    assert.Equal(t, `{"a":1}`, string(body))

    _, _, _, valid = decodePayload([]byte{0, 0, 0})
    assert.False(t, valid)
    _, _, _, valid = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
    assert.False(t, valid, "header length past the end")
}

func TestCacheKeyFrom_SeparatesUsers(t *testing.T) {
    cfg := config.CacheConfig{KeyStrategy: "route_query_user", Prefix: "test:cache"}
    e := echo.New()
    key := func(uid uint64, gen int64) string {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/rooms?type=2BHK", nil), httptest.NewRecorder())
        c.SetPath("/v1/rooms")
        c.Set(ContextUserID, uid)
        return cacheKeyFrom(cfg, c, gen)
    }

    assert.Equal(t, key(1, 0), key(1, 0))
    assert.NotEqual(t, key(1, 0), key(2, 0))
    assert.NotEqual(t, key(1, 0), key(1, 1), "a new generation retires old keys")
    assert.Equal(t, "test:cache:gen", generationKey(cfg))
}

func TestNewRedisCache_DisabledPassesThrough(t *testing.T) {
    log, _ := test.NewNullLogger()
    mw := NewRedisCache(config.CacheConfig{Enabled: true}, nil, log)

    rec := run(mw, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil), nil)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Empty(t, rec.Header().Get("X-Cache"))
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, config.CacheConfig, *redis.Client) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    cfg := config.CacheConfig{
        Enabled:      true,
        Methods:      map[string]bool{http.MethodGet: true},
        TTL:          time.Minute,
        KeyStrategy:  "route_query",
        Prefix:       "test:cache",
        MaxBodyBytes: 64,
    }
    return mr, cfg, rdb
}

// serve runs h behind mw for one request made by role.
func serve(mw echo.MiddlewareFunc, h echo.HandlerFunc, method, target, role string) *httptest.ResponseRecorder {
    e := echo.New()
    rec := httptest.NewRecorder()
    c := e.NewContext(httptest.NewRequest(method, target, nil), rec)
    c.SetPath("/v1/rooms")
    c.Set(ContextRole, role)
    _ = mw(h)(c)
    return rec
}

func TestRedisCache_HitAndMiss(t *testing.T) {
    _, cfg, rdb := newTestCache(t)
    log, _ := test.NewNullLogger()
    mw := NewRedisCache(cfg, rdb, log)

    calls := 0
    h := func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"calls": calls})
    }

    rec := serve(mw, h, http.MethodGet, "/v1/rooms?type=2BHK", model.RoleManager)
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    assert.JSONEq(t, `{"calls":1}`, rec.Body.String())

    rec = serve(mw, h, http.MethodGet, "/v1/rooms?type=2BHK", model.RoleManager)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
    assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
    assert.JSONEq(t, `{"calls":1}`, rec.Body.String())
    assert.Equal(t, 1, calls)

    rec = serve(mw, h, http.MethodGet, "/v1/rooms?type=3BHK", model.RoleManager)
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "query is part of the key")

    rec = serve(mw, h, http.MethodGet, "/v1/rooms?type=2BHK", model.RoleReception)
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "role is part of the key")
    assert.Equal(t, 3, calls)
}

func TestRedisCache_WriteBumpsGeneration(t *testing.T) {
    mr, cfg, rdb := newTestCache(t)
    log, _ := test.NewNullLogger()
    mw := NewRedisCache(cfg, rdb, log)

    calls := 0
    read := func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"calls": calls})
    }
    write := func(c echo.Context) error { return c.NoContent(http.StatusCreated) }
    rejected := func(c echo.Context) error {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad"})
    }

    serve(mw, read, http.MethodGet, "/v1/rooms", model.RoleManager)
    assert.Equal(t, "HIT", serve(mw, read, http.MethodGet, "/v1/rooms", model.RoleManager).Header().Get("X-Cache"))

    serve(mw, rejected, http.MethodPost, "/v1/rooms", model.RoleManager)
    assert.False(t, mr.Exists(generationKey(cfg)), "a failed write keeps the generation")

    serve(mw, write, http.MethodPost, "/v1/rooms", model.RoleManager)
    gen, err := mr.Get(generationKey(cfg))
    require.NoError(t, err)
    assert.Equal(t, "1", gen)

    rec := serve(mw, read, http.MethodGet, "/v1/rooms", model.RoleManager)
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    assert.JSONEq(t, `{"calls":2}`, rec.Body.String())
}

func TestRedisCache_SkipsErrorsAndLargeBodies(t *testing.T) {
    _, cfg, rdb := newTestCache(t)
    log, _ := test.NewNullLogger()
    mw := NewRedisCache(cfg, rdb, log)

    missing := func(c echo.Context) error {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Room not found"})
    }
    serve(mw, missing, http.MethodGet, "/v1/rooms/9", model.RoleManager)
    assert.Equal(t, "MISS", serve(mw, missing, http.MethodGet, "/v1/rooms/9", model.RoleManager).Header().Get("X-Cache"))

    large := func(c echo.Context) error {
        return c.String(http.StatusOK, strings.Repeat("x", 200))
    }
    serve(mw, large, http.MethodGet, "/v1/rooms/big", model.RoleManager)
    assert.Equal(t, "MISS", serve(mw, large, http.MethodGet, "/v1/rooms/big", model.RoleManager).Header().Get("X-Cache"))
}
