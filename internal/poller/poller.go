// Package poller checks the API for new urgent tasks and keeps the pending
// badge in sync with the remote task stats.
package poller

import (
	"context"
	"fmt"

	"github.com/blackroad/cli/pkg/api"
	"github.com/blackroad/cli/pkg/logx"
	"github.com/blackroad/cli/pkg/notify"
	"github.com/blackroad/cli/pkg/settings"
	"github.com/samber/lo"
)

// UrgentTitle is the title of the urgent-task notification.
const UrgentTitle = notify.TitlePrefix + "Urgent Tasks"

// TaskSource is the subset of the API client the poller uses.
type TaskSource interface {
	UrgentTasks(ctx context.Context) ([]api.Task, error)
	TaskStats(ctx context.Context) (*api.Stats, error)
}

// ClientFactory builds a TaskSource for the current settings. It is called on
// every run so a changed key or URL takes effect without a restart.
type ClientFactory func(s settings.Settings) TaskSource

// NotifiedStore persists the ids already surfaced to the user.
type NotifiedStore interface {
	NotifiedIDs(ctx context.Context) ([]string, error)
	AppendNotified(ctx context.Context, ids []string) error
	RetainNotified(ctx context.Context, keep []string) (int, error)
}

// Config wires a Poller.
type Config struct {
	Settings   settings.Provider
	NewClient  ClientFactory
	Store      NotifiedStore
	Notifier   notify.Notifier
	Badge      notify.BadgeSink
	ConsoleURL string
	Log        logx.Logger
}

// Poller runs the urgent-task check and the badge refresh.
type Poller struct {
	settings   settings.Provider
	newClient  ClientFactory
	store      NotifiedStore
	notifier   notify.Notifier
	badge      notify.BadgeSink
	consoleURL string
	log        logx.Logger
}

func New(cfg Config) *Poller {
	log := cfg.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Poller{
		settings:   cfg.Settings,
		newClient:  cfg.NewClient,
		store:      cfg.Store,
		notifier:   cfg.Notifier,
		badge:      cfg.Badge,
		consoleURL: cfg.ConsoleURL,
		log:        log.With(logx.String("component", "poller")),
	}
}

// CheckResult describes what one CheckForUpdates call did.
type CheckResult struct {
	// Skipped is set when settings made the check a no-op.
	Skipped    bool
	SkipReason string
	Urgent     int
	NewTaskIDs []string
	Notified   bool
	Pruned     int
	Err        error
}

// UrgentMessage is the notification body for n new urgent tasks.
func UrgentMessage(n int) string {
	return fmt.Sprintf("%d urgent task(s) pending", n)
}

// CheckForUpdates notifies once about urgent pending tasks not notified
// before and records their ids. It never fails: errors are logged and
// reported in the result, and the notified set is only written after a
// successful fetch.
func (p *Poller) CheckForUpdates(ctx context.Context) CheckResult {
	s, err := p.settings.Load()
	if err != nil {
		p.log.Warn("failed to load settings", logx.Err(err))
		return CheckResult{Err: err}
	}
	if !s.HasAPIKey() {
		return CheckResult{Skipped: true, SkipReason: settings.ErrConfigMissing.Error()}
	}
	if !s.Notifications {
		return CheckResult{Skipped: true, SkipReason: "notifications disabled"}
	}

	tasks, err := p.newClient(s).UrgentTasks(ctx)
	if err != nil {
		p.log.Warn("failed to check for updates", logx.Err(err))
		return CheckResult{Err: err}
	}
	res := CheckResult{Urgent: len(tasks)}

	notified, err := p.store.NotifiedIDs(ctx)
	if err != nil {
		p.log.Error("failed to read notified tasks", logx.Err(err))
		res.Err = err
		return res
	}

	seen := lo.Keyify(notified)
	remoteIDs := lo.Uniq(lo.Map(tasks, func(t api.Task, _ int) string { return t.ID }))
	res.NewTaskIDs = lo.Filter(remoteIDs, func(id string, _ int) bool {
		_, ok := seen[id]
		return !ok && id != ""
	})

	if len(res.NewTaskIDs) > 0 {
		err := p.notifier.Notify(ctx, notify.Notification{
			Title:    UrgentTitle,
			Message:  UrgentMessage(len(res.NewTaskIDs)),
			Priority: notify.PriorityHigh,
			URL:      p.consoleURL,
		})
		if err != nil {
			p.log.Warn("failed to emit notification", logx.Err(err))
			res.Err = err
			return res
		}
		res.Notified = true

		if err := p.store.AppendNotified(ctx, res.NewTaskIDs); err != nil {
			p.log.Error("failed to record notified tasks", logx.Err(err), logx.Strings("ids", res.NewTaskIDs))
			res.Err = err
			return res
		}
		p.log.Info("notified urgent tasks", logx.Strings("ids", res.NewTaskIDs))
	}

	if s.PruneNotified {
		pruned, err := p.store.RetainNotified(ctx, remoteIDs)
		if err != nil {
			p.log.Warn("failed to prune notified tasks", logx.Err(err))
		} else {
			res.Pruned = pruned
		}
	}
	return res
}

// BadgeResult describes what one UpdateBadge call did.
type BadgeResult struct {
	Badge   notify.Badge
	Updated bool
	Err     error
}

// UpdateBadge sets the badge to the remote pending count. Without an API key
// the badge is cleared; on a fetch error the previous badge is left alone.
func (p *Poller) UpdateBadge(ctx context.Context) BadgeResult {
	s, err := p.settings.Load()
	if err != nil {
		p.log.Warn("failed to load settings", logx.Err(err))
		return BadgeResult{Err: err}
	}
	if !s.HasAPIKey() {
		return p.setBadge(ctx, notify.Badge{})
	}

	stats, err := p.newClient(s).TaskStats(ctx)
	if err != nil {
		p.log.Warn("failed to update badge", logx.Err(err))
		return BadgeResult{Err: err}
	}
	return p.setBadge(ctx, notify.PendingBadge(stats.Pending))
}

func (p *Poller) setBadge(ctx context.Context, b notify.Badge) BadgeResult {
	if err := p.badge.SetBadge(ctx, b); err != nil {
		p.log.Warn("failed to set badge", logx.Err(err))
		return BadgeResult{Badge: b, Err: err}
	}
	return BadgeResult{Badge: b, Updated: true}
}

// RunOnce performs one check followed by one badge update.
func (p *Poller) RunOnce(ctx context.Context) (CheckResult, BadgeResult) {
	check := p.CheckForUpdates(ctx)
	badge := p.UpdateBadge(ctx)
	return check, badge
}
