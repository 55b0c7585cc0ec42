package cmd

import (
	"context"
	"fmt"

	"github.com/blackroad/cli/internal/poller"
	"github.com/blackroad/cli/pkg/notify"
	"github.com/blackroad/cli/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// BadgeReader returns the last badge the poller set.
type BadgeReader interface {
	Badge(ctx context.Context) (notify.Badge, error)
}

// BadgeUpdater refreshes the badge from the API.
type BadgeUpdater interface {
	UpdateBadge(ctx context.Context) poller.BadgeResult
}

// BadgeCmd shows the pending-task badge.
type BadgeCmd struct {
	badges  BadgeReader
	updater BadgeUpdater
}

type BadgeInput struct {
	Refresh bool
	Output  string
}

var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "Show the pending-task badge",
	Long:  "Show the pending-task badge last set by watch or check. Use --refresh to update it from the API first.",
	Args:  cobra.NoArgs,
	RunE:  runBadge,
}

func init() {
	badgeCmd.Flags().Bool("refresh", false, "Fetch the pending count before showing the badge")
	badgeCmd.Flags().StringP("output", "o", "", "Output format (json)")
	rootCmd.AddCommand(badgeCmd)
}

func (c BadgeCmd) Run(ctx context.Context, in BadgeInput) error {
	if err := checkOutput(in.Output); err != nil {
		return err
	}

	if in.Refresh && c.updater != nil {
		if res := c.updater.UpdateBadge(ctx); res.Err != nil {
			return fmt.Errorf("failed to refresh badge: %w", util.CleanedUpAPIError{Err: res.Err})
		}
	}

	b, err := c.badges.Badge(ctx)
	if err != nil {
		return err
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(b)
	}
	if b.Cleared() {
		pterm.Info.Println("No pending tasks")
		return nil
	}
	pterm.Println(b.Render())
	return nil
}

func runBadge(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	refresh, _ := cmd.Flags().GetBool("refresh")
	output, _ := cmd.Flags().GetString("output")

	st, err := rt.State()
	if err != nil {
		return err
	}
	c := BadgeCmd{badges: notify.NewStateBadge(st)}
	if refresh {
		p, err := newPoller(rt, notify.NewTerminalNotifier(false, rt.log))
		if err != nil {
			return err
		}
		c.updater = p
	}
	return c.Run(cmd.Context(), BadgeInput{Refresh: refresh, Output: output})
}
