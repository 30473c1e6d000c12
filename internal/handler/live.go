package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-management/internal/live"
	"github.com/iliyamo/hotel-management/internal/middleware"
)

// LiveHandler upgrades dashboard connections to the event feed.
type LiveHandler struct {
	Hub *live.Hub
	Log logrus.FieldLogger
}

func NewLiveHandler(hub *live.Hub, log logrus.FieldLogger) *LiveHandler {
	return &LiveHandler{Hub: hub, Log: log}
}

// Serve handles GET /v1/live.  It blocks until the client disconnects.
func (h *LiveHandler) Serve(c echo.Context) error {
	if err := h.Hub.Serve(c.Response(), c.Request(), middleware.CurrentRole(c)); err != nil {
		h.Log.WithError(err).Debug("live connection ended")
	}
	return nil
}
