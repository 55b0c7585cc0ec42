package cmd

import (
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log <entity>",
	Short: "Record an activity-log entry",
	Long: `Record an "updated" activity-log entry for an entity.

Examples:
  blackroad log billing-service --details "rotated signing keys"`,
	Args: cobra.ExactArgs(1),
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringP("details", "d", "", "Optional details for the entry")
	logCmd.Flags().StringP("output", "o", "", "Output format: json for the created entry")
	logCmd.Flags().Bool("no-refresh", false, "Skip the dashboard refresh after logging")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	details, _ := cmd.Flags().GetString("details")
	output, _ := cmd.Flags().GetString("output")
	noRefresh, _ := cmd.Flags().GetBool("no-refresh")

	c := QuickActionCmd{actions: newQuickActions(rt, output, !noRefresh)}
	return c.Log(cmd.Context(), LogInput{Entity: args[0], Details: details, Output: output})
}
