package server

import (
	"time"

	"workdesk/internal/model"
)

// Health statuses
const (
	HealthStatusHealthy  = "healthy"
	HealthStatusDegraded = "degraded"
	HealthStatusStarting = "starting"
)

// HealthResponse reports whether a worklist is available
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      string    `json:"uptime"`
	RefreshedAt time.Time `json:"refreshed_at,omitempty"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Cycles      int       `json:"cycles"`
	Failures    int       `json:"failures"`
}

// WorklistResponse is the worklist of the last successful cycle
type WorklistResponse struct {
	Items       []model.WorkItem `json:"items"`
	Total       int              `json:"total"`
	CycleID     string           `json:"cycle_id"`
	RefreshedAt time.Time        `json:"refreshed_at"`
	// LastError is set when the most recent cycle failed and Items are stale
	LastError string    `json:"last_error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
