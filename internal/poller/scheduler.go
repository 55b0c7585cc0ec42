package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blackroad/cli/pkg/logx"
	"github.com/blackroad/cli/pkg/settings"
	"github.com/robfig/cron/v3"
)

// WatchFunc subscribes to settings changes until ctx is done.
type WatchFunc func(ctx context.Context, fn settings.ChangeFunc) error

// Scheduler runs the poller on a fixed interval. A fire that arrives while
// the previous run is still in flight is skipped.
type Scheduler struct {
	poller   *Poller
	interval time.Duration
	watch    WatchFunc
	log      logx.Logger

	// runMu serializes scheduled runs with key-change badge refreshes.
	runMu sync.Mutex
}

// NewScheduler returns a scheduler for p. watch may be nil.
func NewScheduler(p *Poller, interval time.Duration, watch WatchFunc, log logx.Logger) *Scheduler {
	if interval <= 0 {
		interval = settings.DefaultCheckInterval
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Scheduler{
		poller:   p,
		interval: interval,
		watch:    watch,
		log:      log.With(logx.String("component", "scheduler")),
	}
}

// Run refreshes the badge, then checks on every interval until ctx is done.
// In-flight runs finish before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	clog := cronLogger{log: s.log}
	c := cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	spec := "@every " + s.interval.String()
	if _, err := c.AddFunc(spec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("invalid check interval %s: %w", s.interval, err)
	}

	s.refreshBadge(ctx)

	var wg sync.WaitGroup
	if s.watch != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.watch(ctx, func(prev, next settings.Settings) {
				if settings.APIKeyChanged(prev, next) {
					s.log.Info("API key changed; refreshing badge")
					s.refreshBadge(ctx)
				}
			})
			if err != nil {
				s.log.Warn("settings watch stopped", logx.Err(err))
			}
		}()
	}

	c.Start()
	s.log.Info("scheduler started", logx.Duration("interval", s.interval))

	<-ctx.Done()
	<-c.Stop().Done()
	wg.Wait()
	s.log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	check, badge := s.poller.RunOnce(ctx)
	s.log.Debug("scheduled run finished",
		logx.Duration("took", time.Since(start)),
		logx.Int("new_urgent", len(check.NewTaskIDs)),
		logx.String("badge", badge.Badge.Text),
	)
}

func (s *Scheduler) refreshBadge(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.poller.UpdateBadge(ctx)
}

// cronLogger adapts logx to cron.Logger.
type cronLogger struct {
	log logx.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, logx.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, logx.Err(err), logx.Any("details", keysAndValues))
}
