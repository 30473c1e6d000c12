package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/handler"
	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/model"
)

// registerManager mounts inventory changes and raw record access, which
// only managers may use.  mw runs after the manager check, so a cached
// response is never served to another role.
func registerManager(g *echo.Group, h *handler.HotelHandler, mw ...echo.MiddlewareFunc) {
	manager := append([]echo.MiddlewareFunc{middleware.RequireRole(model.RoleManager)}, mw...)

	g.POST("/rooms", h.AddRoom, manager...)
	g.PATCH("/rooms/:id", h.UpdateRoom, manager...)

	g.GET("/records/tables", h.ListTables, manager...)
	g.GET("/records/:table", h.ReadRecords, manager...)
	g.GET("/records/:table/describe", h.DescribeTable, manager...)
	g.POST("/records/query", h.CustomQuery, manager...)
}
