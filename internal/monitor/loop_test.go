package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk/internal/model"
	"workdesk/internal/worklist"
)

type result struct {
	items []model.WorkItem
	err   error
}

// scriptedAggregator returns its results in order, repeating the last one
type scriptedAggregator struct {
	mu      sync.Mutex
	results []result
	calls   int
}

func (s *scriptedAggregator) Aggregate(ctx context.Context, progress worklist.ProgressFunc) ([]model.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := min(s.calls, len(s.results)-1)
	s.calls++
	if progress != nil {
		progress("Assembled items")
	}
	return s.results[i].items, s.results[i].err
}

func (s *scriptedAggregator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func items(keys ...string) []model.WorkItem {
	var out []model.WorkItem
	for _, k := range keys {
		out = append(out, model.WorkItem{
			Key:          k,
			Ticket:       model.Ticket{Key: k, Labels: []string{"team"}},
			PullRequests: []model.PullRequest{{Number: 1, Labels: []string{"bug"}}},
		})
	}
	return out
}

func TestRefresh_RecordsSuccess(t *testing.T) {
	source := &scriptedAggregator{results: []result{{items: items("PM-1", "PM-2")}}}
	m := New(source, Config{})

	assert.False(t, m.Snapshot().Ready())

	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Ready())
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 1, snap.Cycles)
	assert.Empty(t, snap.LastError)

	_, err = uuid.Parse(snap.CycleID)
	assert.NoError(t, err)
}

func TestRefresh_FailureKeepsPreviousItems(t *testing.T) {
	boom := errors.New("search failed")
	source := &scriptedAggregator{results: []result{
		{items: items("PM-1")},
		{err: boom},
		{items: items("PM-3")},
	}}
	m := New(source, Config{})

	first, err := m.Refresh(context.Background())
	require.NoError(t, err)

	failed, err := m.Refresh(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, first.CycleID, failed.CycleID)
	require.Len(t, failed.Items, 1)
	assert.Equal(t, "PM-1", failed.Items[0].Key)
	assert.Equal(t, boom.Error(), failed.LastError)
	assert.Equal(t, 1, failed.Failures)

	recovered, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.CycleID, recovered.CycleID)
	assert.Equal(t, "PM-3", recovered.Items[0].Key)
	assert.Empty(t, recovered.LastError)
	assert.Equal(t, 3, recovered.Cycles)
}

func TestRefresh_CancellationIsNotRecorded(t *testing.T) {
	source := &scriptedAggregator{results: []result{
		{items: items("PM-1")},
		{err: context.Canceled},
	}}
	m := New(source, Config{})

	_, err := m.Refresh(context.Background())
	require.NoError(t, err)

	snap, err := m.Refresh(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, snap.LastError)
	assert.Equal(t, 0, snap.Failures)
	assert.Equal(t, 1, snap.Cycles)
}

func TestSnapshot_IsACopy(t *testing.T) {
	source := &scriptedAggregator{results: []result{{items: items("PM-1")}}}
	m := New(source, Config{})
	_, err := m.Refresh(context.Background())
	require.NoError(t, err)

	snap := m.Snapshot()
	snap.Items[0].Key = "changed"
	snap.Items[0].Ticket.Labels[0] = "changed"
	snap.Items[0].PullRequests[0].Labels[0] = "changed"

	again := m.Snapshot()
	assert.Equal(t, "PM-1", again.Items[0].Key)
	assert.Equal(t, "team", again.Items[0].Ticket.Labels[0])
	assert.Equal(t, "bug", again.Items[0].PullRequests[0].Labels[0])
}

func TestStart_RunsUntilCancelled(t *testing.T) {
	source := &scriptedAggregator{results: []result{{items: items("PM-1")}}}
	m := New(source, Config{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	assert.Eventually(t, func() bool { return source.callCount() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
	assert.True(t, m.Snapshot().Ready())
}

func TestRefresh_Serialized(t *testing.T) {
	source := &scriptedAggregator{results: []result{{items: items("PM-1")}}}
	m := New(source, Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Refresh(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, m.Snapshot().Cycles)
}
