package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/hotel-management/internal/database"
)

func setRequired(t *testing.T) {
    t.Setenv("APP_ENV", "test")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("JWT_SECRET", "secret")
    t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
    t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
    t.Setenv("BCRYPT_COST", "10")
}

func TestFromEnv_Defaults(t *testing.T) {
    setRequired(t)
    t.Setenv("DB_DRIVER", "")
    t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

    c := fromEnv()
    assert.Equal(t, "8080", c.Port)
    assert.Equal(t, 15, c.AccessTTLMin)
    assert.Equal(t, database.DriverSQLite, c.DB.Driver)
    assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
}

func TestFromEnv_MySQL(t *testing.T) {
    setRequired(t)
    t.Setenv("DB_DRIVER", "MySQL")
    t.Setenv("DB_USER", "hotel")
    t.Setenv("DB_PASS", "")
    t.Setenv("DB_HOST", "db")
    t.Setenv("DB_PORT", "3306")
    t.Setenv("DB_NAME", "hotel")
    t.Setenv("DB_MIGRATE", "off")

    c := fromEnv()
    assert.Equal(t, database.DriverMySQL, c.DB.Driver)
    assert.Equal(t, "db", c.DB.Host)
    assert.False(t, c.DBMigrate)
}

func TestLoadRateLimitConfig(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    c := LoadRateLimitConfig()
    assert.Equal(t, 1, c.Capacity)
    assert.Equal(t, 1, c.RefillTokens)
    assert.Equal(t, 2*time.Second, c.RefillInterval)
    assert.Equal(t, 10*time.Second, c.TTL)
    assert.InDelta(t, 0.5, c.PerSecond(), 1e-9)
}

func TestLoadCacheConfig(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    t.Setenv("CACHE_TTL", "-1s")

    c := LoadCacheConfig()
    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
    assert.Equal(t, time.Second, c.TTL)
}

func TestLoadQueueConfig(t *testing.T) {
    t.Setenv("QUEUE_BREAKER_MAX_FAILURES", "3")
    t.Setenv("QUEUE_NAME", "events")

    p := LoadQueueConfig().Publisher()
    assert.EqualValues(t, 3, p.MaxFailures)
    assert.Equal(t, "events", p.Queue)
}
