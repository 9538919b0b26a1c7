package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"workdesk/internal/logger"
	"workdesk/internal/model"
	"workdesk/internal/worklist"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultInterval is used when no refresh interval is configured
const DefaultInterval = 5 * time.Minute

// Aggregator produces one worklist per call
type Aggregator interface {
	Aggregate(ctx context.Context, progress worklist.ProgressFunc) ([]model.WorkItem, error)
}

// Config contains configuration for the monitor
type Config struct {
	Interval time.Duration
}

// Monitor refreshes the worklist on a fixed interval and keeps the latest result
type Monitor struct {
	source Aggregator
	config Config
	state  *StateManager

	// cycles never overlap
	cycleMu sync.Mutex
	now     func() time.Time
}

// New creates a new monitor instance
func New(source Aggregator, config Config) *Monitor {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	return &Monitor{
		source: source,
		config: config,
		state:  NewStateManager(),
		now:    time.Now,
	}
}

// Start runs an initial cycle and then one cycle per interval until ctx is
// cancelled. Failed cycles are logged and retried on the next tick.
func (m *Monitor) Start(ctx context.Context) error {
	lgr := logger.FromContext(ctx)
	lgr.Info("Starting monitor", zap.Duration("interval", m.config.Interval))

	// Run initial check
	if _, err := m.Refresh(ctx); err != nil && ctx.Err() == nil {
		lgr.Warn("Initial refresh failed", zap.Error(err))
	}

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			lgr.Info("Monitor shutting down due to context cancellation")
			return ctx.Err()

		case <-ticker.C:
			if _, err := m.Refresh(ctx); err != nil && ctx.Err() == nil {
				lgr.Warn("Refresh failed", zap.Error(err))
			}
		}
	}
}

// Refresh runs one aggregation cycle and records its outcome. A cancelled
// cycle leaves the state untouched.
func (m *Monitor) Refresh(ctx context.Context) (Snapshot, error) {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	cycleID := uuid.NewString()
	lgr := logger.FromContext(ctx).With(zap.String("cycle_id", cycleID))
	ctx = logger.WithLogger(ctx, lgr)

	started := m.now()
	lgr.Debug("Refreshing worklist")

	items, err := m.source.Aggregate(ctx, func(msg string) {
		lgr.Debug(msg)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			lgr.Debug("Refresh cancelled")
			return m.state.Snapshot(), err
		}
		m.state.RecordFailure(err, m.now())
		return m.state.Snapshot(), fmt.Errorf("refresh %s failed: %w", cycleID, err)
	}

	m.state.RecordSuccess(cycleID, items, m.now())
	lgr.Info("Worklist refreshed",
		zap.Int("work_items", len(items)),
		zap.Duration("duration", m.now().Sub(started)))
	return m.state.Snapshot(), nil
}

// Snapshot returns a copy of the latest state
func (m *Monitor) Snapshot() Snapshot {
	return m.state.Snapshot()
}
