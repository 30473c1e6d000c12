package router // package router registers the HTTP routes of the hotel API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/handler"
	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/model"
)

// Deps are the handlers and middleware the routes are built from.
// Cache may be nil.
type Deps struct {
	DB        *sql.DB
	JWTSecret string
	Auth      *handler.AuthHandler
	Hotel     *handler.HotelHandler
	Agent     *handler.AgentHandler
	Live      *handler.LiveHandler
	Cache     echo.MiddlewareFunc
}

// Register wires every route on e.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
	RegisterAuth(e, d.Auth, d.JWTSecret)

	staff := e.Group("/v1",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleManager, model.RoleReception),
	)
	staff.GET("/me", d.Auth.Me)
	if d.Live != nil {
		// never cached: the upgrade hijacks the connection
		staff.GET("/live", d.Live.Serve)
	}
	var cached []echo.MiddlewareFunc
	if d.Cache != nil {
		cached = append(cached, d.Cache)
	}
	registerStaff(staff, d.Hotel, d.Agent, cached...)
	registerManager(staff, d.Hotel, cached...)
}

// RegisterAuth registers the token endpoints; none of them needs an
// access token up front.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
}
