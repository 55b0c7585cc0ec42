package cmd

import (
	"context"
	"fmt"

	"github.com/blackroad/cli/internal/poller"
	"github.com/blackroad/cli/pkg/notify"
	"github.com/blackroad/cli/pkg/settings"
	"github.com/blackroad/cli/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// PollService runs one poll cycle.
type PollService interface {
	RunOnce(ctx context.Context) (poller.CheckResult, poller.BadgeResult)
}

// CheckCmd runs a single urgent-task check and badge refresh.
type CheckCmd struct {
	poller PollService
}

type CheckInput struct {
	Output string
}

type checkView struct {
	Skipped    bool     `json:"skipped"`
	SkipReason string   `json:"skip_reason,omitempty"`
	Urgent     int      `json:"urgent"`
	NewTaskIDs []string `json:"new_task_ids"`
	Notified   bool     `json:"notified"`
	Pruned     int      `json:"pruned,omitempty"`
	Badge      string   `json:"badge"`
	Error      string   `json:"error,omitempty"`
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check once for new urgent tasks and refresh the badge",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringP("output", "o", "", "Output format (json)")
	checkCmd.Flags().Bool("open", false, "Open the console when a notification is raised")
	rootCmd.AddCommand(checkCmd)
}

func (c CheckCmd) Run(ctx context.Context, in CheckInput) error {
	if err := checkOutput(in.Output); err != nil {
		return err
	}

	check, badge := c.poller.RunOnce(ctx)
	firstErr := check.Err
	if firstErr == nil {
		firstErr = badge.Err
	}

	if in.Output == "json" {
		view := checkView{
			Skipped:    check.Skipped,
			SkipReason: check.SkipReason,
			Urgent:     check.Urgent,
			NewTaskIDs: check.NewTaskIDs,
			Notified:   check.Notified,
			Pruned:     check.Pruned,
			Badge:      badge.Badge.Text,
		}
		if view.NewTaskIDs == nil {
			view.NewTaskIDs = []string{}
		}
		if firstErr != nil {
			view.Error = util.CleanedUpAPIError{Err: firstErr}.Error()
		}
		if err := util.PrintPrettyJSON(view); err != nil {
			return err
		}
		if firstErr != nil {
			return util.CleanedUpAPIError{Err: firstErr}
		}
		return nil
	}

	switch {
	case check.Skipped:
		pterm.Info.Printf("Check skipped: %s\n", check.SkipReason)
	case check.Err != nil:
		pterm.Warning.Printf("Check failed: %s\n", util.CleanedUpAPIError{Err: check.Err})
	case check.Notified:
		pterm.Success.Printf("%d new urgent task(s) of %d pending\n", len(check.NewTaskIDs), check.Urgent)
	default:
		pterm.Info.Printf("No new urgent tasks (%d pending)\n", check.Urgent)
	}
	if check.Pruned > 0 {
		pterm.Info.Printf("Forgot %d resolved task(s)\n", check.Pruned)
	}

	switch {
	case badge.Err != nil:
		pterm.Warning.Printf("Badge not updated: %s\n", util.CleanedUpAPIError{Err: badge.Err})
	case badge.Badge.Cleared():
		pterm.Info.Println("Badge: (cleared)")
	default:
		pterm.Info.Printf("Badge: %s\n", badge.Badge.Render())
	}

	if firstErr != nil {
		return fmt.Errorf("check did not complete: %w", util.CleanedUpAPIError{Err: firstErr})
	}
	return nil
}

// newPoller wires a poller against the local state store.
func newPoller(rt *cliRuntime, notifier notify.Notifier, badges ...notify.BadgeSink) (*poller.Poller, error) {
	st, err := rt.State()
	if err != nil {
		return nil, err
	}
	sinks := append([]notify.BadgeSink{notify.NewStateBadge(st)}, badges...)
	return poller.New(poller.Config{
		Settings:   rt.Settings(),
		NewClient:  func(s settings.Settings) poller.TaskSource { return newAPIClient(s) },
		Store:      st,
		Notifier:   notifier,
		Badge:      notify.BadgeSinks(sinks...),
		ConsoleURL: settings.DefaultConsoleURL,
		Log:        rt.log,
	}), nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	output, _ := cmd.Flags().GetString("output")
	open, _ := cmd.Flags().GetBool("open")

	var notifier notify.Notifier = notify.NewTerminalNotifier(open, rt.log)
	if output == "json" {
		notifier = notify.NotifierFunc(func(context.Context, notify.Notification) error { return nil })
	}
	p, err := newPoller(rt, notifier)
	if err != nil {
		return err
	}
	c := CheckCmd{poller: p}
	return c.Run(cmd.Context(), CheckInput{Output: output})
}
