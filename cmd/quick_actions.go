package cmd

import (
	"context"
	"fmt"

	"github.com/blackroad/cli/internal/quickaction"
	"github.com/blackroad/cli/pkg/api"
	"github.com/blackroad/cli/pkg/notify"
	"github.com/blackroad/cli/pkg/settings"
	"github.com/blackroad/cli/pkg/util"
	"github.com/pterm/pterm"
)

// QuickActionService defines the quick actions the task, deploy and log
// commands dispatch to.
type QuickActionService interface {
	CreateTask(ctx context.Context, req quickaction.CreateTaskRequest) (*api.Task, error)
	Deploy(ctx context.Context, req quickaction.DeployRequest) (*api.Task, error)
	Log(ctx context.Context, req quickaction.LogRequest) (*api.ActivityEntry, error)
}

// QuickActionCmd handles quick actions independent of cobra.
type QuickActionCmd struct {
	actions QuickActionService
}

type TaskCreateInput struct {
	Title  string
	Output string
}

type DeployInput struct {
	Project string
	Output  string
}

type LogInput struct {
	Entity  string
	Details string
	Output  string
}

func checkOutput(output string) error {
	if output != "" && output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}
	return nil
}

func (c QuickActionCmd) CreateTask(ctx context.Context, in TaskCreateInput) error {
	if err := checkOutput(in.Output); err != nil {
		return err
	}
	task, err := c.actions.CreateTask(ctx, quickaction.CreateTaskRequest{Title: in.Title})
	if err != nil {
		pterm.Error.Println("Failed to create task")
		return util.CleanedUpAPIError{Err: err}
	}
	if in.Output == "json" {
		return util.PrintPrettyJSON(task)
	}
	pterm.Success.Printf("Created task %s\n", task.ID)
	return nil
}

func (c QuickActionCmd) Deploy(ctx context.Context, in DeployInput) error {
	if err := checkOutput(in.Output); err != nil {
		return err
	}
	task, err := c.actions.Deploy(ctx, quickaction.DeployRequest{Project: in.Project})
	if err != nil {
		pterm.Error.Println("Failed to create deployment task")
		return util.CleanedUpAPIError{Err: err}
	}
	if in.Output == "json" {
		return util.PrintPrettyJSON(task)
	}
	pterm.Success.Printf("Deployment of %s requested (task %s)\n", in.Project, task.ID)
	return nil
}

func (c QuickActionCmd) Log(ctx context.Context, in LogInput) error {
	if err := checkOutput(in.Output); err != nil {
		return err
	}
	entry, err := c.actions.Log(ctx, quickaction.LogRequest{Entity: in.Entity, Details: in.Details})
	if err != nil {
		pterm.Error.Println("Failed to log")
		return util.CleanedUpAPIError{Err: err}
	}
	if in.Output == "json" {
		return util.PrintPrettyJSON(entry)
	}
	pterm.Success.Printf("Logged %s %s\n", util.OrDash(entry.Action), util.OrDash(entry.Entity))
	return nil
}

// newQuickActions wires the dispatcher. JSON output gets neither the
// notification nor the dashboard refresh so stdout stays parseable.
func newQuickActions(rt *cliRuntime, output string, refresh bool) *quickaction.Dispatcher {
	cfg := quickaction.Config{
		Settings:  rt.Settings(),
		NewClient: func(s settings.Settings) quickaction.Creator { return newAPIClient(s) },
		Log:       rt.log,
	}
	if output != "json" {
		cfg.Messenger = notify.NewCenter(notify.NewTerminalNotifier(false, rt.log), settings.DefaultConsoleURL)
		if refresh {
			cfg.Refresher = newDashboard(rt)
		}
	}
	return quickaction.New(cfg)
}
