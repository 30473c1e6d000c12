package middleware

import (
    "context"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"
    "golang.org/x/time/rate"

    "github.com/iliyamo/hotel-management/internal/config"
)

// bucket decides whether the request identified by key may proceed.
type bucket interface {
    take(ctx context.Context, key string) (allowed bool, remaining int64, retry time.Duration, err error)
}

var tokenBucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])
    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, retry_after_ms }
`)

type redisBucket struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
}

func (b redisBucket) take(ctx context.Context, key string) (bool, int64, time.Duration, error) {
    vals, err := tokenBucketScript.Run(ctx, b.rdb, []string{key},
        time.Now().UnixMilli(), b.cfg.Capacity, b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(), int64(b.cfg.TTL/time.Second)).Result()
    if err != nil {
        return false, 0, 0, err
    }
    arr, ok := vals.([]any)
    if !ok || len(arr) != 3 {
        return false, 0, 0, fmt.Errorf("unexpected script result %#v", vals)
    }
    return asInt64(arr[0]) == 1, asInt64(arr[1]), time.Duration(asInt64(arr[2])) * time.Millisecond, nil
}

// localBucket keeps one x/time/rate limiter per key in process memory.
// Used when redis is not reachable.
type localBucket struct {
    cfg  config.RateLimitConfig
    mu   sync.Mutex
    keys map[string]*localEntry
    now  func() time.Time
    last time.Time
}

type localEntry struct {
    lim  *rate.Limiter
    seen time.Time
}

func newLocalBucket(cfg config.RateLimitConfig) *localBucket {
    return &localBucket{cfg: cfg, keys: make(map[string]*localEntry), now: time.Now}
}

func (b *localBucket) take(_ context.Context, key string) (bool, int64, time.Duration, error) {
    b.mu.Lock()
    defer b.mu.Unlock()
    now := b.now()
    b.prune(now)

    e, ok := b.keys[key]
    if !ok {
        e = &localEntry{lim: rate.NewLimiter(rate.Limit(b.cfg.PerSecond()), b.cfg.Capacity)}
        b.keys[key] = e
    }
    e.seen = now
    r := e.lim.ReserveN(now, 1)
    if d := r.DelayFrom(now); d > 0 {
        r.CancelAt(now)
        return false, 0, d, nil
    }
    return true, int64(e.lim.TokensAt(now)), 0, nil
}

// prune drops keys idle for longer than the configured TTL, at most once per TTL.
func (b *localBucket) prune(now time.Time) {
    if now.Sub(b.last) < b.cfg.TTL {
        return
    }
    b.last = now
    for k, e := range b.keys {
        if now.Sub(e.seen) > b.cfg.TTL {
            delete(b.keys, k)
        }
    }
}

// NewTokenBucket limits requests per key.  With a redis client the bucket
// is shared across instances through a Lua script; without one each
// process keeps its own limiters.  A redis error lets the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log logrus.FieldLogger) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    var b bucket
    if rdb != nil {
        b = redisBucket{cfg: cfg, rdb: rdb}
    } else {
        b = newLocalBucket(cfg)
    }
    return tokenBucket(cfg, b, log)
}

func tokenBucket(cfg config.RateLimitConfig, b bucket, log logrus.FieldLogger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            allowed, remaining, retry, err := b.take(c.Request().Context(), key)
            if err != nil {
                log.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
                return next(c)
            }
            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if !allowed {
                secs := int(math.Ceil(retry.Seconds()))
                h.Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    log.WithFields(logrus.Fields{"key": key, "retry_ms": retry.Milliseconds()}).Info("rate limited")
                }
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "rate limit exceeded",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

func asInt64(v any) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        n, _ := strconv.ParseInt(t, 10, 64)
        return n
    }
    return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := userKey(c)
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
