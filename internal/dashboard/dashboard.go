// Package dashboard fetches and renders the at-a-glance account summary:
// agent, task and memory totals plus the most recent activity.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/blackroad/cli/pkg/api"
	"github.com/blackroad/cli/pkg/logx"
	"github.com/blackroad/cli/pkg/settings"
	"golang.org/x/sync/errgroup"
)

// ActivityLimit is how many activity entries the dashboard shows.
const ActivityLimit = 5

// ErrNotConnected reports a failed or unhealthy health check.
var ErrNotConnected = errors.New("not connected to the BlackRoad API")

// Source is the subset of the API client the dashboard reads from.
type Source interface {
	Health(ctx context.Context) (*api.Health, error)
	AgentStats(ctx context.Context) (*api.Stats, error)
	TaskStats(ctx context.Context) (*api.Stats, error)
	MemoryStats(ctx context.Context) (*api.Stats, error)
	RecentActivity(ctx context.Context, limit int) ([]api.ActivityEntry, error)
}

// SourceFactory builds a Source for the current settings.
type SourceFactory func(s settings.Settings) Source

// Summary is everything the dashboard shows.
type Summary struct {
	Agents   api.Stats           `json:"agents"`
	Tasks    api.Stats           `json:"tasks"`
	Memory   api.Stats           `json:"memory"`
	Activity []api.ActivityEntry `json:"activity"`
	LoadedAt time.Time           `json:"loaded_at"`
}

// Config wires a Presenter.
type Config struct {
	Settings  settings.Provider
	NewSource SourceFactory
	// Out receives Refresh output. Defaults to stdout.
	Out io.Writer
	Now func() time.Time
	Log logx.Logger
}

// Presenter loads and renders the dashboard.
type Presenter struct {
	settings  settings.Provider
	newSource SourceFactory
	out       io.Writer
	now       func() time.Time
	log       logx.Logger
}

func New(cfg Config) *Presenter {
	p := &Presenter{
		settings:  cfg.Settings,
		newSource: cfg.NewSource,
		out:       cfg.Out,
		now:       cfg.Now,
		log:       cfg.Log,
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.log.IsZero() {
		p.log = logx.Nop()
	}
	p.log = p.log.With(logx.String("component", "dashboard"))
	return p
}

func (p *Presenter) source() (Source, error) {
	s, err := p.settings.Load()
	if err != nil {
		return nil, err
	}
	if !s.HasAPIKey() {
		return nil, settings.ErrConfigMissing
	}
	return p.newSource(s), nil
}

// Load fetches the four dashboard resources concurrently. Any failure fails
// the whole load.
func (p *Presenter) Load(ctx context.Context) (*Summary, error) {
	src, err := p.source()
	if err != nil {
		return nil, err
	}
	return p.load(ctx, src)
}

func (p *Presenter) load(ctx context.Context, src Source) (*Summary, error) {
	var (
		sum                   Summary
		agents, tasks, memory *api.Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		agents, err = src.AgentStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = src.TaskStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		memory, err = src.MemoryStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.Activity, err = src.RecentActivity(gctx, ActivityLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		p.log.Warn("failed to load dashboard", logx.Err(err))
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	sum.Agents = deref(agents)
	sum.Tasks = deref(tasks)
	sum.Memory = deref(memory)
	if sum.Activity == nil {
		sum.Activity = []api.ActivityEntry{}
	}
	sum.LoadedAt = p.now()
	return &sum, nil
}

func deref(s *api.Stats) api.Stats {
	if s == nil {
		return api.Stats{}
	}
	return *s
}

// Connect runs the health check and, when healthy, loads the summary.
func (p *Presenter) Connect(ctx context.Context) (*api.Health, *Summary, error) {
	src, err := p.source()
	if err != nil {
		return nil, nil, err
	}

	health, err := src.Health(ctx)
	if err != nil {
		p.log.Warn("connection failed", logx.Err(err))
		return nil, nil, fmt.Errorf("%w: %w", ErrNotConnected, err)
	}
	if !health.Healthy() {
		return health, nil, fmt.Errorf("%w: status %q", ErrNotConnected, health.Status)
	}

	sum, err := p.load(ctx, src)
	if err != nil {
		return health, nil, err
	}
	return health, sum, nil
}

// Open connects and renders the dashboard to w. When the API cannot be
// reached the connect prompt is shown instead.
func (p *Presenter) Open(ctx context.Context, w io.Writer) error {
	_, sum, err := p.Connect(ctx)
	if err != nil {
		if errors.Is(err, ErrNotConnected) || errors.Is(err, settings.ErrConfigMissing) {
			RenderConnectPrompt(w)
		}
		return err
	}
	return Render(w, sum, p.now())
}

// Refresh re-renders the dashboard after a quick action.
func (p *Presenter) Refresh(ctx context.Context) error {
	return p.Open(ctx, p.out)
}
