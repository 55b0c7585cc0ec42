package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blackroad/cli/pkg/settings"
	"github.com/blackroad/cli/pkg/table"
	"github.com/blackroad/cli/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ConfigCmd shows, edits and tests the stored settings.
type ConfigCmd struct {
	store SettingsStore
	test  ConnectionTester
	now   func() time.Time
}

type ConfigShowInput struct {
	Output string
}

// ConfigSetInput carries only the settings the user asked to change.
type ConfigSetInput struct {
	APIURL        *string
	Notifications *bool
	UrgentOnly    *bool
	CheckInterval *time.Duration
	PruneNotified *bool
}

func (in ConfigSetInput) empty() bool {
	return in.APIURL == nil && in.Notifications == nil && in.UrgentOnly == nil &&
		in.CheckInterval == nil && in.PruneNotified == nil
}

type ConfigTestInput struct {
	APIKey string
	APIURL string
	Output string
}

type configView struct {
	APIKey        string     `json:"api_key"`
	APIURL        string     `json:"api_url"`
	Notifications bool       `json:"notifications"`
	UrgentOnly    bool       `json:"urgent_only"`
	CheckInterval string     `json:"check_interval"`
	PruneNotified bool       `json:"prune_notified"`
	KeyExpiresAt  *time.Time `json:"key_expires_at,omitempty"`
	Path          string     `json:"path"`
}

func (c ConfigCmd) Show(ctx context.Context, in ConfigShowInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	s, err := c.store.Load()
	if err != nil {
		return err
	}
	view := configView{
		APIKey:        settings.MaskKey(s.APIKey),
		APIURL:        s.APIURL,
		Notifications: s.Notifications,
		UrgentOnly:    s.UrgentOnly,
		CheckInterval: s.CheckInterval.String(),
		PruneNotified: s.PruneNotified,
		Path:          c.store.Path(),
	}
	if exp, ok := settings.KeyExpiry(s.APIKey); ok {
		view.KeyExpiresAt = &exp
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(view)
	}

	expires := "-"
	if view.KeyExpiresAt != nil {
		expires = view.KeyExpiresAt.Local().Format(time.RFC1123)
		if settings.KeyExpired(s.APIKey, c.clock()) {
			expires += " (expired)"
		}
	}

	rows := pterm.TableData{{"Property", "Value"}}
	rows = append(rows, []string{"API Key", view.APIKey})
	rows = append(rows, []string{"Key Expires", expires})
	rows = append(rows, []string{"API URL", view.APIURL})
	rows = append(rows, []string{"Notifications", util.OnOff(view.Notifications)})
	rows = append(rows, []string{"Urgent Only", util.OnOff(view.UrgentOnly)})
	rows = append(rows, []string{"Check Interval", view.CheckInterval})
	rows = append(rows, []string{"Prune Notified", util.OnOff(view.PruneNotified)})
	rows = append(rows, []string{"Settings File", util.OrDash(view.Path)})

	table.PrintTableNoPad(rows, true)
	return nil
}

func (c ConfigCmd) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c ConfigCmd) Set(ctx context.Context, in ConfigSetInput) error {
	if in.empty() {
		return fmt.Errorf("nothing to change: pass at least one setting flag")
	}

	s, err := c.store.Load()
	if err != nil {
		return err
	}
	if in.APIURL != nil {
		s.APIURL = *in.APIURL
	}
	if in.Notifications != nil {
		s.Notifications = *in.Notifications
	}
	if in.UrgentOnly != nil {
		s.UrgentOnly = *in.UrgentOnly
	}
	if in.CheckInterval != nil {
		if *in.CheckInterval < time.Minute {
			return fmt.Errorf("--check-interval must be at least 1m")
		}
		s.CheckInterval = *in.CheckInterval
	}
	if in.PruneNotified != nil {
		s.PruneNotified = *in.PruneNotified
	}

	if err := c.store.Save(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	pterm.Success.Println("Settings saved!")
	return nil
}

type connectionView struct {
	Outcome string `json:"outcome"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
	Warning string `json:"warning,omitempty"`
}

func (c ConfigCmd) Test(ctx context.Context, in ConfigTestInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	key, apiURL := strings.TrimSpace(in.APIKey), strings.TrimSpace(in.APIURL)
	if key == "" || apiURL == "" {
		s, err := c.store.Load()
		if err != nil {
			return err
		}
		if key == "" {
			key = s.APIKey
		}
		if apiURL == "" {
			apiURL = s.APIURL
		}
	}

	if in.Output != "json" {
		pterm.Info.Printf("Testing connection to %s...\n", settings.NormalizeURL(apiURL))
	}
	res := c.test(ctx, key, settings.NormalizeURL(apiURL))

	if in.Output == "json" {
		if err := util.PrintPrettyJSON(connectionView{
			Outcome: res.Outcome.String(),
			Message: res.Message,
			Version: res.Version,
			Warning: res.Warning,
		}); err != nil {
			return err
		}
		if !res.OK() {
			return fmt.Errorf("connection test failed: %s", res.Outcome)
		}
		return nil
	}
	return reportConnection(res)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, change and test settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	Long: `Change one or more settings. Only the flags you pass are changed.

Examples:
  # Only notify about urgent tasks, every 10 minutes
  blackroad config set --urgent-only --check-interval 10m

  # Point at a staging API
  blackroad config set --url https://staging-api.blackroad.io/v1`,
	Args: cobra.NoArgs,
	RunE: runConfigSet,
}

var configTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the API key and URL",
	Args:  cobra.NoArgs,
	RunE:  runConfigTest,
}

func init() {
	configShowCmd.Flags().StringP("output", "o", "", "Output format (json)")

	configSetCmd.Flags().AddFlagSet(configSetFlags())

	configTestCmd.Flags().String("api-key", "", "API key to test instead of the stored one")
	configTestCmd.Flags().String("url", "", "API URL to test instead of the stored one")
	configTestCmd.Flags().StringP("output", "o", "", "Output format (json)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configTestCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	output, _ := cmd.Flags().GetString("output")

	c := ConfigCmd{store: rt.store}
	return c.Show(cmd.Context(), ConfigShowInput{Output: output})
}

func configSetFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("config set", pflag.ContinueOnError)
	flags.String("url", "", "API base URL (blank resets to "+settings.DefaultAPIURL+")")
	flags.Bool("notifications", true, "Enable urgent-task notifications")
	flags.Bool("urgent-only", false, "Only notify about urgent tasks")
	flags.Duration("check-interval", settings.DefaultCheckInterval, "How often watch checks for updates")
	flags.Bool("prune-notified", false, "Forget notified tasks once they are no longer pending")
	return flags
}

// configSetInputFromFlags collects the flags the user actually set.
func configSetInputFromFlags(flags *pflag.FlagSet) ConfigSetInput {
	var in ConfigSetInput
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "url":
			v, _ := flags.GetString("url")
			in.APIURL = &v
		case "notifications":
			v, _ := flags.GetBool("notifications")
			in.Notifications = &v
		case "urgent-only":
			v, _ := flags.GetBool("urgent-only")
			in.UrgentOnly = &v
		case "check-interval":
			v, _ := flags.GetDuration("check-interval")
			in.CheckInterval = &v
		case "prune-notified":
			v, _ := flags.GetBool("prune-notified")
			in.PruneNotified = &v
		}
	})
	return in
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	c := ConfigCmd{store: rt.store}
	return c.Set(cmd.Context(), configSetInputFromFlags(cmd.Flags()))
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	apiKey, _ := cmd.Flags().GetString("api-key")
	apiURL, _ := cmd.Flags().GetString("url")
	output, _ := cmd.Flags().GetString("output")

	c := ConfigCmd{store: rt.store, test: rt.withURLOverride(defaultConnectionTester)}
	return c.Test(cmd.Context(), ConfigTestInput{APIKey: apiKey, APIURL: apiURL, Output: output})
}
