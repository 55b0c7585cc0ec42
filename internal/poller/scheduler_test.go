package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blackroad/cli/pkg/api"
	"github.com/blackroad/cli/pkg/logx"
	"github.com/blackroad/cli/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_InitialBadgeAndTicks(t *testing.T) {
	h := newHarness(t, enabled("k1"))
	h.source.UrgentTasksFunc = func(context.Context) ([]api.Task, error) { return tasks("a"), nil }
	h.source.TaskStatsFunc = func(context.Context) (*api.Stats, error) { return &api.Stats{Pending: 2}, nil }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(h.poller, time.Second, nil, logx.Nop())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Initial badge refresh happens before the first tick.
	require.Eventually(t, func() bool { return len(h.badge.All()) >= 1 }, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool { return len(h.notifier.All()) == 1 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	// One notification in total, however many ticks ran.
	assert.Len(t, h.notifier.All(), 1)
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	h := newHarness(t, enabled("k1"))

	var inFlight, maxInFlight atomic.Int32
	release := make(chan struct{})
	h.source.UrgentTasksFunc = func(ctx context.Context) ([]api.Task, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return tasks(), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(h.poller, time.Second, nil, logx.Nop())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Let several fires land while the first run is blocked.
	time.Sleep(3500 * time.Millisecond)
	close(release)
	cancel()
	<-done

	assert.Equal(t, int32(1), maxInFlight.Load())
	h.source.mu.Lock()
	calls := h.source.UrgentCalls
	h.source.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestScheduler_APIKeyChangeRefreshesBadge(t *testing.T) {
	h := newHarness(t, enabled("k1"))
	h.source.TaskStatsFunc = func(context.Context) (*api.Stats, error) { return &api.Stats{Pending: 1}, nil }

	changed := make(chan struct{})
	watch := func(ctx context.Context, fn settings.ChangeFunc) error {
		fn(enabled("k1"), enabled("k1"))
		fn(enabled("k1"), enabled("k2"))
		close(changed)
		<-ctx.Done()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(h.poller, time.Hour, watch, logx.Nop())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	<-changed
	require.Eventually(t, func() bool { return len(h.badge.All()) == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	// Initial refresh plus one for the key change; the unchanged event is ignored.
	assert.Len(t, h.badge.All(), 2)
}
