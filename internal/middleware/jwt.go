package middleware // reusable HTTP middleware for the hotel API

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-management/internal/utils"
)

// JWTAuth validates the staff access token and stores the user id and
// role in the context.  The token comes from the Authorization bearer
// header, or from the access_token query parameter for websocket
// upgrades, where browsers cannot set headers.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := bearerToken(c)
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            id, err := claims.UserID()
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            c.Set(ContextUserID, id)
            c.Set(ContextRole, claims.Role)
            return next(c)
        }
    }
}

func bearerToken(c echo.Context) string {
    auth := c.Request().Header.Get(echo.HeaderAuthorization)
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    }
    if strings.EqualFold(c.Request().Header.Get("Upgrade"), "websocket") {
        return c.QueryParam("access_token")
    }
    return ""
}
