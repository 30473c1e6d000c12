package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-management/internal/agent"
	"github.com/iliyamo/hotel-management/internal/middleware"
)

// AgentHandler exposes the tool catalog to a language-model agent.
type AgentHandler struct {
	Tools *agent.Dispatcher
	Log   logrus.FieldLogger
}

func NewAgentHandler(d *agent.Dispatcher, log logrus.FieldLogger) *AgentHandler {
	return &AgentHandler{Tools: d, Log: log}
}

// List handles GET /v1/agent/tools.  Only the tools the caller's role
// may run are listed.
func (h *AgentHandler) List(c echo.Context) error {
	role := middleware.CurrentRole(c)
	out := make([]agent.Tool, 0)
	for _, t := range h.Tools.Tools() {
		for _, r := range t.Roles {
			if r == role {
				out = append(out, t)
				break
			}
		}
	}
	return c.JSON(http.StatusOK, out)
}

// Call handles POST /v1/agent/tools/:name with a JSON object of
// arguments.  The answer is always 200 with a row sequence; a failure
// is a single row holding "error", which is what the agent reads.
func (h *AgentHandler) Call(c echo.Context) error {
	name := c.Param("name")
	if _, ok := h.Tools.Lookup(name); !ok {
		return c.JSON(http.StatusNotFound, []echo.Map{{"error": "Unknown tool: " + name}})
	}
	args := agent.Args{}
	if c.Request().ContentLength != 0 {
		dec := json.NewDecoder(c.Request().Body)
		dec.UseNumber()
		if err := dec.Decode(&args); err != nil {
			return c.JSON(http.StatusBadRequest, []echo.Map{{"error": "arguments must be a JSON object"}})
		}
	}
	rows := h.Tools.Call(c.Request().Context(), name, middleware.CurrentRole(c), args)
	if len(rows) == 1 {
		if msg, ok := rows[0]["error"]; ok {
			h.Log.WithFields(logrus.Fields{"tool": name, "error": msg}).Debug("agent tool failed")
		}
	}
	return c.JSON(http.StatusOK, rows)
}
