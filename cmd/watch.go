package cmd

import (
	"context"
	"os"
	"time"

	"github.com/blackroad/cli/internal/poller"
	"github.com/blackroad/cli/pkg/notify"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// SchedulerRunner runs the periodic poll until ctx is done.
type SchedulerRunner interface {
	Run(ctx context.Context) error
}

// WatchCmd runs the background poller in the foreground.
type WatchCmd struct {
	scheduler SchedulerRunner
}

type WatchInput struct {
	Interval time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for urgent tasks and keep the badge current",
	Long: `Poll the API on an interval, print a notification when new urgent tasks
appear and keep the pending-task badge current. The badge is also refreshed
as soon as the stored API key changes. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "Check interval (defaults to the check_interval setting)")
	watchCmd.Flags().Bool("open", false, "Open the console in the browser when a notification is raised")
	rootCmd.AddCommand(watchCmd)
}

func (c WatchCmd) Run(ctx context.Context, in WatchInput) error {
	pterm.Info.Printf("Watching for urgent tasks every %s. Press Ctrl+C to stop.\n", in.Interval)
	if err := c.scheduler.Run(ctx); err != nil {
		return err
	}
	pterm.Info.Println("Stopped watching")
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	interval, _ := cmd.Flags().GetDuration("interval")
	open, _ := cmd.Flags().GetBool("open")

	if interval <= 0 {
		s, err := rt.Settings().Load()
		if err != nil {
			return err
		}
		interval = s.CheckInterval
	}

	p, err := newPoller(rt, notify.NewTerminalNotifier(open, rt.log), &notify.TerminalBadge{Out: os.Stdout})
	if err != nil {
		return err
	}
	c := WatchCmd{scheduler: poller.NewScheduler(p, interval, rt.store.Watch, rt.log)}
	return c.Run(cmd.Context(), WatchInput{Interval: interval})
}
