package cmd

import (
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy <project>",
	Short: "Request a production deployment of a project",
	Long:  "Create a high-priority OS task asking for the project to be deployed to production",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeploy,
}

func init() {
	deployCmd.Flags().StringP("output", "o", "", "Output format: json for the created task")
	deployCmd.Flags().Bool("no-refresh", false, "Skip the dashboard refresh after creating")
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	output, _ := cmd.Flags().GetString("output")
	noRefresh, _ := cmd.Flags().GetBool("no-refresh")

	c := QuickActionCmd{actions: newQuickActions(rt, output, !noRefresh)}
	return c.Deploy(cmd.Context(), DeployInput{Project: args[0], Output: output})
}
