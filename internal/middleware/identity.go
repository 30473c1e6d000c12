package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
    ContextUserID = "user_id"
    ContextRole   = "role"
)

// CurrentUserID returns the authenticated staff user id.
func CurrentUserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ContextUserID).(uint64)
    return id, ok
}

// CurrentRole returns the authenticated staff role, or "".
func CurrentRole(c echo.Context) string {
    role, _ := c.Get(ContextRole).(string)
    return role
}

// userKey identifies the caller in cache and rate-limit keys.
func userKey(c echo.Context) string {
    if id, ok := CurrentUserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "guest"
}
