package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blackroad/cli/pkg/table"
	"github.com/blackroad/cli/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NotifiedService defines the dedup-set operations exposed to the user.
type NotifiedService interface {
	NotifiedIDs(ctx context.Context) ([]string, error)
	ClearNotified(ctx context.Context) error
}

// NotifiedCmd inspects and resets the set of already-notified tasks.
type NotifiedCmd struct {
	store NotifiedService
}

type NotifiedListInput struct {
	Output string
}

type NotifiedClearInput struct {
	SkipConfirm bool
}

var notifiedCmd = &cobra.Command{
	Use:   "notified",
	Short: "Inspect or reset the tasks you have already been notified about",
}

var notifiedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notified task IDs",
	Args:  cobra.NoArgs,
	RunE:  runNotifiedList,
}

var notifiedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every notified task so pending urgent tasks notify again",
	Args:  cobra.NoArgs,
	RunE:  runNotifiedClear,
}

func init() {
	notifiedListCmd.Flags().StringP("output", "o", "", "Output format (json)")
	notifiedClearCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	notifiedCmd.AddCommand(notifiedListCmd)
	notifiedCmd.AddCommand(notifiedClearCmd)
	rootCmd.AddCommand(notifiedCmd)
}

func (c NotifiedCmd) List(ctx context.Context, in NotifiedListInput) error {
	if err := checkOutput(in.Output); err != nil {
		return err
	}

	ids, err := c.store.NotifiedIDs(ctx)
	if err != nil {
		return err
	}

	if in.Output == "json" {
		if ids == nil {
			ids = []string{}
		}
		return util.PrintPrettyJSON(ids)
	}

	if len(ids) == 0 {
		pterm.Info.Println("No tasks have been notified yet")
		return nil
	}
	rows := pterm.TableData{{"#", "Task ID"}}
	for i, id := range ids {
		rows = append(rows, []string{strconv.Itoa(i + 1), id})
	}
	table.PrintTableNoPad(rows, true)
	return nil
}

func (c NotifiedCmd) Clear(ctx context.Context, in NotifiedClearInput) error {
	if !in.SkipConfirm {
		msg := "Forget all notified tasks? Pending urgent tasks will notify again."
		pterm.DefaultInteractiveConfirm.DefaultText = msg
		ok, _ := pterm.DefaultInteractiveConfirm.Show()
		if !ok {
			pterm.Info.Println("Clear cancelled")
			return nil
		}
	}

	if err := c.store.ClearNotified(ctx); err != nil {
		return fmt.Errorf("failed to clear notified tasks: %w", err)
	}
	pterm.Success.Println("Cleared notified tasks")
	return nil
}

func runNotifiedList(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	output, _ := cmd.Flags().GetString("output")

	st, err := rt.State()
	if err != nil {
		return err
	}
	c := NotifiedCmd{store: st}
	return c.List(cmd.Context(), NotifiedListInput{Output: output})
}

func runNotifiedClear(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	skip, _ := cmd.Flags().GetBool("yes")

	st, err := rt.State()
	if err != nil {
		return err
	}
	c := NotifiedCmd{store: st}
	return c.Clear(cmd.Context(), NotifiedClearInput{SkipConfirm: skip})
}
