package monitor

import (
	"sync"
	"time"

	"workdesk/internal/model"
)

// Snapshot is the state of the worklist after the most recent cycles
type Snapshot struct {
	// Items is the worklist from the last successful cycle
	Items []model.WorkItem `json:"items"`

	// CycleID identifies the last successful cycle
	CycleID     string    `json:"cycle_id,omitempty"`
	RefreshedAt time.Time `json:"refreshed_at,omitempty"`

	// LastAttempt and LastError describe the most recent finished cycle,
	// successful or not
	LastAttempt time.Time `json:"last_attempt,omitempty"`
	LastError   string    `json:"last_error,omitempty"`

	Cycles   int `json:"cycles"`
	Failures int `json:"failures"`
}

// Ready returns true once a cycle has succeeded
func (s Snapshot) Ready() bool {
	return s.CycleID != ""
}

// StateManager holds the latest snapshot. It is safe for concurrent use.
type StateManager struct {
	mu    sync.RWMutex
	state Snapshot
}

// NewStateManager creates an empty state manager
func NewStateManager() *StateManager {
	return &StateManager{}
}

// RecordSuccess replaces the worklist with the result of a cycle
func (sm *StateManager) RecordSuccess(cycleID string, items []model.WorkItem, at time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.state.Items = cloneItems(items)
	sm.state.CycleID = cycleID
	sm.state.RefreshedAt = at
	sm.state.LastAttempt = at
	sm.state.LastError = ""
	sm.state.Cycles++
}

// RecordFailure keeps the previous worklist and records the error
func (sm *StateManager) RecordFailure(err error, at time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.state.LastAttempt = at
	sm.state.LastError = err.Error()
	sm.state.Cycles++
	sm.state.Failures++
}

// Snapshot returns a copy that shares no memory with the manager
func (sm *StateManager) Snapshot() Snapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s := sm.state
	s.Items = cloneItems(sm.state.Items)
	return s
}

func cloneItems(items []model.WorkItem) []model.WorkItem {
	if items == nil {
		return nil
	}

	out := make([]model.WorkItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.PullRequests != nil {
			out[i].PullRequests = make([]model.PullRequest, len(item.PullRequests))
			for j, pr := range item.PullRequests {
				out[i].PullRequests[j] = pr.Clone()
			}
		}
		if item.Primary != nil {
			primary := item.Primary.Clone()
			out[i].Primary = &primary
		}
		if item.Ticket.Labels != nil {
			out[i].Ticket.Labels = append([]string(nil), item.Ticket.Labels...)
		}
		if item.Ticket.Sprint != nil {
			sprint := *item.Ticket.Sprint
			out[i].Ticket.Sprint = &sprint
		}
	}
	return out
}
