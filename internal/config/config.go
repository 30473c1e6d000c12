package config // package config loads application configuration from the environment

import (
    "os"
    "strconv"
    "strings"

    "github.com/joho/godotenv"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/hotel-management/internal/database"
)

// Config holds the runtime settings of the hotel service.
type Config struct {
    Env            string // APP_ENV
    Port           string // APP_PORT
    JWTSecret      string // JWT_SECRET
    AccessTTLMin   int    // ACCESS_TOKEN_TTL_MIN
    RefreshTTLDays int    // REFRESH_TOKEN_TTL_DAYS
    BcryptCost     int    // BCRYPT_COST

    DB        database.Options
    DBMigrate bool // DB_MIGRATE
    DBSeed    bool // DB_SEED_DEMO

    LogLevel     string // LOG_LEVEL
    LogFormat    string // LOG_FORMAT
    EventLogPath string // EVENT_LOG_PATH

    CORSOrigins []string // CORS_ORIGINS
}

// Load reads .env when present and then the process environment.
// Missing required variables stop the process.
func Load() Config {
    if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
        logrus.WithError(err).Warn("could not read .env")
    }
    return fromEnv()
}

func fromEnv() Config {
    c := Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),

        DB: database.Options{
            Driver:     strings.ToLower(envStr("DB_DRIVER", database.DriverSQLite)),
            SQLitePath: envStr("SQLITE_DB_PATH", "hotel.db"),
        },
        DBMigrate: envBool("DB_MIGRATE", true),
        DBSeed:    envBool("DB_SEED_DEMO", false),

        LogLevel:     envStr("LOG_LEVEL", "info"),
        LogFormat:    envStr("LOG_FORMAT", "text"),
        EventLogPath: envStr("EVENT_LOG_PATH", "logs/hotel-events.log"),

        CORSOrigins: splitList(envStr("CORS_ORIGINS", "*")),
    }
    if c.DB.Driver == database.DriverMySQL {
        c.DB.User = must("DB_USER")
        c.DB.Pass = os.Getenv("DB_PASS")
        c.DB.Host = must("DB_HOST")
        c.DB.Port = must("DB_PORT")
        c.DB.Name = must("DB_NAME")
    }
    return c
}

// must returns a required variable or exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        logrus.Fatalf("missing required env var: %s", key)
    }
    return v
}

func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        logrus.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
