package server

import (
	"context"
	"net/http"
	"time"

	"workdesk/internal/logger"
	"workdesk/internal/model"
	"workdesk/internal/monitor"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WorklistSource is the minimal interface the handlers need from the monitor
type WorklistSource interface {
	Snapshot() monitor.Snapshot
	Refresh(ctx context.Context) (monitor.Snapshot, error)
}

// Handlers contains the HTTP handlers for the worklist API
type Handlers struct {
	source    WorklistSource
	startTime time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(source WorklistSource, startTime time.Time) *Handlers {
	return &Handlers{
		source:    source,
		startTime: startTime,
	}
}

// GetHealth handles GET /health
func (h *Handlers) GetHealth(c echo.Context) error {
	snap := h.source.Snapshot()

	status := HealthStatusHealthy
	code := http.StatusOK
	switch {
	case !snap.Ready():
		status = HealthStatusStarting
		code = http.StatusServiceUnavailable
	case snap.LastError != "":
		status = HealthStatusDegraded
	}

	return c.JSON(code, HealthResponse{
		Status:      status,
		Timestamp:   time.Now(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		RefreshedAt: snap.RefreshedAt,
		LastAttempt: snap.LastAttempt,
		LastError:   snap.LastError,
		Cycles:      snap.Cycles,
		Failures:    snap.Failures,
	})
}

// GetWorklist handles GET /worklist. The optional attention query parameter
// filters items by attention level name.
func (h *Handlers) GetWorklist(c echo.Context) error {
	var filter *model.Attention
	if name := c.QueryParam("attention"); name != "" {
		attention, err := model.ParseAttention(name)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter = &attention
	}

	snap := h.source.Snapshot()
	if !snap.Ready() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Worklist is not available yet")
	}

	return c.JSON(http.StatusOK, worklistResponse(snap, filter))
}

// PostRefresh handles POST /refresh by running a cycle immediately
func (h *Handlers) PostRefresh(c echo.Context) error {
	ctx := c.Request().Context()

	snap, err := h.source.Refresh(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("Manual refresh failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, worklistResponse(snap, nil))
}

func worklistResponse(snap monitor.Snapshot, filter *model.Attention) WorklistResponse {
	items := snap.Items
	if filter != nil {
		items = model.FilterByAttention(items, *filter)
	}
	if items == nil {
		items = []model.WorkItem{}
	}

	return WorklistResponse{
		Items:       items,
		Total:       len(items),
		CycleID:     snap.CycleID,
		RefreshedAt: snap.RefreshedAt,
		LastError:   snap.LastError,
		Timestamp:   time.Now(),
	}
}
