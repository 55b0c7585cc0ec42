package cmd

import (
	"context"
	"fmt"

	"github.com/blackroad/cli/pkg/api"
	"github.com/blackroad/cli/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// HealthService defines the subset of the API client used by status.
type HealthService interface {
	Health(ctx context.Context) (*api.Health, error)
	BaseURL() string
}

// StatusCmd reports the health of the BlackRoad API.
type StatusCmd struct {
	health HealthService
}

type StatusInput struct {
	Output string
}

type statusView struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	APIURL  string `json:"api_url"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the health of the BlackRoad API",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringP("output", "o", "", "Output format (json)")
	rootCmd.AddCommand(statusCmd)
}

func (c StatusCmd) Run(ctx context.Context, in StatusInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	health, err := c.health.Health(ctx)
	if err != nil {
		pterm.Error.Printf("Could not reach the BlackRoad API at %s.\n", c.health.BaseURL())
		return util.CleanedUpAPIError{Err: err}
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(statusView{Status: health.Status, Version: health.Version, APIURL: c.health.BaseURL()})
	}

	printStatus(health, c.health.BaseURL())
	if !health.Healthy() {
		return fmt.Errorf("API reported status %q", health.Status)
	}
	return nil
}

var statusDisplay = map[string]struct {
	label string
	rgb   pterm.RGB
}{
	"healthy":     {label: "Healthy", rgb: pterm.NewRGB(31, 163, 130)},
	"degraded":    {label: "Degraded", rgb: pterm.NewRGB(245, 158, 11)},
	"unhealthy":   {label: "Unhealthy", rgb: pterm.NewRGB(239, 68, 68)},
	"maintenance": {label: "Maintenance", rgb: pterm.NewRGB(36, 99, 235)},
}

func getStatusDisplay(status string) (string, pterm.RGB) {
	if d, ok := statusDisplay[status]; ok {
		return d.label, d.rgb
	}
	return "Unknown", pterm.NewRGB(128, 128, 128)
}

func coloredDot(rgb pterm.RGB) string {
	return rgb.Sprint("●")
}

func printStatus(h *api.Health, apiURL string) {
	label, rgb := getStatusDisplay(h.Status)
	pterm.Println()
	pterm.Printf("  %s BlackRoad API: %s\n", coloredDot(rgb), rgb.Sprint(label))
	pterm.Printf("    %-10s %s\n", "Version", util.OrDash(h.Version))
	pterm.Printf("    %-10s %s\n", "URL", apiURL)
	pterm.Println()
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	output, _ := cmd.Flags().GetString("output")

	s, err := rt.Settings().Load()
	if err != nil {
		return err
	}
	c := StatusCmd{health: newAPIClient(s)}
	return c.Run(cmd.Context(), StatusInput{Output: output})
}
