package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/blackroad/cli/internal/dashboard"
	"github.com/blackroad/cli/pkg/api"
	"github.com/blackroad/cli/pkg/settings"
	"github.com/blackroad/cli/pkg/util"
	"github.com/spf13/cobra"
)

// DashboardService defines what the dashboard command needs from the presenter.
type DashboardService interface {
	Connect(ctx context.Context) (*api.Health, *dashboard.Summary, error)
	Open(ctx context.Context, w io.Writer) error
}

// DashboardCmd shows the account summary.
type DashboardCmd struct {
	presenter DashboardService
	out       io.Writer
}

type DashboardInput struct {
	Output string
}

type dashboardView struct {
	Health  *api.Health        `json:"health"`
	Summary *dashboard.Summary `json:"summary"`
}

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Show agent, task and memory totals with recent activity",
	Args:    cobra.NoArgs,
	RunE:    runDashboard,
}

func init() {
	dashboardCmd.Flags().StringP("output", "o", "", "Output format (json)")
	rootCmd.AddCommand(dashboardCmd)
}

func (c DashboardCmd) Run(ctx context.Context, in DashboardInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	if in.Output == "json" {
		health, sum, err := c.presenter.Connect(ctx)
		if err != nil {
			return util.CleanedUpAPIError{Err: err}
		}
		return util.PrintPrettyJSON(dashboardView{Health: health, Summary: sum})
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	if err := c.presenter.Open(ctx, out); err != nil {
		return util.CleanedUpAPIError{Err: err}
	}
	return nil
}

func newDashboard(rt *cliRuntime) *dashboard.Presenter {
	return dashboard.New(dashboard.Config{
		Settings:  rt.Settings(),
		NewSource: func(s settings.Settings) dashboard.Source { return newAPIClient(s) },
		Log:       rt.log,
	})
}

func runDashboard(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	output, _ := cmd.Flags().GetString("output")

	c := DashboardCmd{presenter: newDashboard(rt)}
	return c.Run(cmd.Context(), DashboardInput{Output: output})
}
