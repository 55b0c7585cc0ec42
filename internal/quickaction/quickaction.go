// Package quickaction turns short user input into task and activity-log
// creation requests, then asks for a notification and a dashboard refresh.
package quickaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blackroad/cli/pkg/api"
	"github.com/blackroad/cli/pkg/logx"
	"github.com/blackroad/cli/pkg/notify"
	"github.com/blackroad/cli/pkg/settings"
)

// Notification titles requested after a successful action.
const (
	TitleTaskCreated       = "Task Created"
	TitleDeploymentStarted = "Deployment Started"
	TitleLogged            = "Logged"
)

// DeployDivision owns every deployment task.
const DeployDivision = "OS"

// LogAction is the action recorded for quick log entries.
const LogAction = "updated"

const hashPrefixLen = 8

// ErrInvalidRequest is wrapped by every validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// Creator is the subset of the API client the dispatcher uses.
type Creator interface {
	CreateTask(ctx context.Context, params api.CreateTaskParams) (*api.Task, error)
	CreateLog(ctx context.Context, params api.CreateLogParams) (*api.ActivityEntry, error)
}

// ClientFactory builds a Creator for the current settings.
type ClientFactory func(s settings.Settings) Creator

// Refresher re-renders whatever shows the account state.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// CreateTaskRequest creates a medium-priority task.
type CreateTaskRequest struct {
	Title string
}

func (r CreateTaskRequest) Validate() error {
	return required("title", r.Title)
}

// DeployRequest creates a high-priority deployment task for a project.
type DeployRequest struct {
	Project string
}

func (r DeployRequest) Validate() error {
	return required("project", r.Project)
}

// LogRequest records an activity entry against an entity.
type LogRequest struct {
	Entity  string
	Details string
}

func (r LogRequest) Validate() error {
	return required("entity", r.Entity)
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	}
	return nil
}

// Config wires a Dispatcher. Refresher may be nil.
type Config struct {
	Settings  settings.Provider
	NewClient ClientFactory
	Messenger notify.Messenger
	Refresher Refresher
	Log       logx.Logger
}

// Dispatcher runs quick actions. Errors from validation and from the API are
// returned to the caller; follow-up notification and refresh failures are
// only logged.
type Dispatcher struct {
	settings  settings.Provider
	newClient ClientFactory
	messenger notify.Messenger
	refresher Refresher
	log       logx.Logger
}

func New(cfg Config) *Dispatcher {
	log := cfg.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{
		settings:  cfg.Settings,
		newClient: cfg.NewClient,
		messenger: cfg.Messenger,
		refresher: cfg.Refresher,
		log:       log.With(logx.String("component", "quickaction")),
	}
}

func (d *Dispatcher) client() (Creator, error) {
	s, err := d.settings.Load()
	if err != nil {
		return nil, err
	}
	if !s.HasAPIKey() {
		return nil, settings.ErrConfigMissing
	}
	return d.newClient(s), nil
}

// CreateTask creates a task titled req.Title.
func (d *Dispatcher) CreateTask(ctx context.Context, req CreateTaskRequest) (*api.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := d.client()
	if err != nil {
		return nil, err
	}

	task, err := c.CreateTask(ctx, api.CreateTaskParams{
		Title:    strings.TrimSpace(req.Title),
		Priority: api.PriorityMedium,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	d.after(ctx, notify.NotificationMessage(TitleTaskCreated, task.ID))
	return task, nil
}

// Deploy creates the deployment task for req.Project.
func (d *Dispatcher) Deploy(ctx context.Context, req DeployRequest) (*api.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := d.client()
	if err != nil {
		return nil, err
	}

	project := strings.TrimSpace(req.Project)
	task, err := c.CreateTask(ctx, api.CreateTaskParams{
		Title:       "Deploy " + project,
		Description: fmt.Sprintf("Deploy project %s to production", project),
		Priority:    api.PriorityHigh,
		Division:    DeployDivision,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create deployment task: %w", err)
	}

	d.after(ctx, notify.NotificationMessage(TitleDeploymentStarted, "Task created: "+task.ID))
	return task, nil
}

// Log records an "updated" activity entry for req.Entity.
func (d *Dispatcher) Log(ctx context.Context, req LogRequest) (*api.ActivityEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := d.client()
	if err != nil {
		return nil, err
	}

	entry, err := c.CreateLog(ctx, api.CreateLogParams{
		Action:  LogAction,
		Entity:  strings.TrimSpace(req.Entity),
		Details: strings.TrimSpace(req.Details),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log: %w", err)
	}

	d.after(ctx, notify.NotificationMessage(TitleLogged, HashMessage(entry.Hash)))
	return entry, nil
}

// HashMessage abbreviates an activity hash for display.
func HashMessage(hash string) string {
	if hash == "" {
		return "Entry recorded"
	}
	if len(hash) > hashPrefixLen {
		hash = hash[:hashPrefixLen]
	}
	return "Hash: " + hash + "..."
}

func (d *Dispatcher) after(ctx context.Context, msg notify.Message) {
	if d.messenger != nil {
		if err := d.messenger.Send(ctx, msg); err != nil {
			d.log.Warn("failed to request notification", logx.Err(err), logx.String("title", msg.Title))
		}
	}
	if d.refresher != nil {
		if err := d.refresher.Refresh(ctx); err != nil {
			d.log.Warn("failed to refresh dashboard", logx.Err(err))
		}
	}
}
