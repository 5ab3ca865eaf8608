package handler // handler package contains audit log handlers

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/admin-portal/internal/middleware"
    "github.com/iliyamo/admin-portal/internal/repository"
    "github.com/iliyamo/admin-portal/internal/service"
)

// recentLogLimit caps GET /v1/logs to the most recent entries.
const recentLogLimit = 100

// LogHandler bundles dependencies for the /v1/logs endpoints.  Entries
// are append-only; there is no update or delete surface.
type LogHandler struct {
	Logs  *repository.LogRepo
	Audit *service.Recorder
}

func NewLogHandler(logs *repository.LogRepo, audit *service.Recorder) *LogHandler {
	return &LogHandler{Logs: logs, Audit: audit}
}

// List handles GET /v1/logs and returns the most recent 100 entries,
// newest first.
func (h *LogHandler) List(c echo.Context) error {
	items, err := h.Logs.ListRecent(c.Request().Context(), recentLogLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type createLogReq struct {
	Action string `json:"action"`
	Detail string `json:"detail"`
}

// Create handles POST /v1/logs: record an action on behalf of the
// authenticated caller.  The network facts come from the request, not
// the payload.
func (h *LogHandler) Create(c echo.Context) error {
	var req createLogReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Action = strings.TrimSpace(req.Action)
	if req.Action == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	h.Audit.Record(ctx, middleware.ActorID(c), req.Action, req.Detail, requestMeta(c))
	return c.NoContent(http.StatusCreated)
}
