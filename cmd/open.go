package cmd

import (
	"context"
	"fmt"

	"github.com/blackroad/cli/pkg/settings"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// OpenCmd opens the BlackRoad console.
type OpenCmd struct {
	openURL func(url string) error
}

type OpenInput struct {
	URL   string
	Print bool
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the BlackRoad console in your browser",
	Args:  cobra.NoArgs,
	RunE:  runOpen,
}

func init() {
	openCmd.Flags().Bool("print", false, "Print the console URL instead of opening it")
	rootCmd.AddCommand(openCmd)
}

func (c OpenCmd) Run(ctx context.Context, in OpenInput) error {
	url := in.URL
	if url == "" {
		url = settings.DefaultConsoleURL
	}
	if in.Print {
		pterm.Println(url)
		return nil
	}
	if err := c.openURL(url); err != nil {
		pterm.Warning.Printf("Could not open a browser. Visit %s\n", url)
		return fmt.Errorf("failed to open browser: %w", err)
	}
	pterm.Success.Printf("Opened %s\n", url)
	return nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	printOnly, _ := cmd.Flags().GetBool("print")

	c := OpenCmd{openURL: browser.OpenURL}
	return c.Run(cmd.Context(), OpenInput{Print: printOnly})
}
