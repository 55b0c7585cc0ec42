package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks"},
	Short:   "Manage tasks",
}

var tasksCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a medium-priority task",
	Long: `Create a medium-priority task. Words after the command form the title.

Examples:
  blackroad task create Fix login`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTasksCreate,
}

func init() {
	tasksCreateCmd.Flags().StringP("output", "o", "", "Output format: json for the created task")
	tasksCreateCmd.Flags().Bool("no-refresh", false, "Skip the dashboard refresh after creating")

	tasksCmd.AddCommand(tasksCreateCmd)
	rootCmd.AddCommand(tasksCmd)
}

func runTasksCreate(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	output, _ := cmd.Flags().GetString("output")
	noRefresh, _ := cmd.Flags().GetBool("no-refresh")

	c := QuickActionCmd{actions: newQuickActions(rt, output, !noRefresh)}
	return c.CreateTask(cmd.Context(), TaskCreateInput{
		Title:  strings.Join(args, " "),
		Output: output,
	})
}
