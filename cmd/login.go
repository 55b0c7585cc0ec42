package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blackroad/cli/pkg/api"
	"github.com/blackroad/cli/pkg/settings"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// SettingsStore defines the subset of the settings store the commands use.
type SettingsStore interface {
	Load() (settings.Settings, error)
	Save(s settings.Settings) error
	Clear() error
	Path() string
}

// ConnectionTester checks an API key against an API URL.
type ConnectionTester func(ctx context.Context, apiKey, apiURL string) api.ConnectionResult

// KeyPrompter asks the user for an API key.
type KeyPrompter func() (string, error)

// LoginCmd stores an API key and verifies it.
type LoginCmd struct {
	store  SettingsStore
	test   ConnectionTester
	prompt KeyPrompter
	now    func() time.Time
}

type LoginInput struct {
	APIKey     string
	SkipVerify bool
}

func (c LoginCmd) Run(ctx context.Context, in LoginInput) error {
	key := strings.TrimSpace(in.APIKey)
	if key == "" && c.prompt != nil {
		entered, err := c.prompt()
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		key = strings.TrimSpace(entered)
	}
	if key == "" {
		return fmt.Errorf("an API key is required")
	}

	cur, err := c.store.Load()
	if err != nil {
		return err
	}
	cur.APIKey = key
	if err := c.store.Save(cur); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	pterm.Success.Printf("Saved API key %s\n", settings.MaskKey(key))

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	if exp, ok := settings.KeyExpiry(key); ok {
		if settings.KeyExpired(key, now()) {
			pterm.Warning.Printf("This API key expired on %s\n", exp.Local().Format(time.RFC1123))
		} else {
			pterm.Info.Printf("API key expires %s\n", exp.Local().Format(time.RFC1123))
		}
	}

	if in.SkipVerify || c.test == nil {
		return nil
	}
	return reportConnection(c.test(ctx, key, cur.Normalize().APIURL))
}

// reportConnection prints a connection test result and returns an error for
// every outcome except healthy.
func reportConnection(res api.ConnectionResult) error {
	switch res.Outcome {
	case api.ConnectionHealthy:
		pterm.Success.Println(res.Message)
		if res.Warning != "" {
			pterm.Warning.Println(res.Warning)
		}
		return nil
	case api.ConnectionDegraded:
		pterm.Warning.Println(res.Message)
	default:
		pterm.Error.Println(res.Message)
	}
	return fmt.Errorf("connection test failed: %s", res.Outcome)
}

// LogoutCmd removes the stored API key.
type LogoutCmd struct {
	store SettingsStore
}

func (c LogoutCmd) Run(ctx context.Context) error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to remove API key: %w", err)
	}
	pterm.Success.Println("Logged out. Notifications and the badge stop until you log in again.")
	return nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store your BlackRoad API key",
	Long: `Store your BlackRoad API key and verify it against the API.

The key is saved in the OS keyring when one is available. Without --api-key
you are prompted for it.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().String("api-key", "", "API key to store (prompted for when omitted)")
	loginCmd.Flags().Bool("skip-verify", false, "Store the key without testing the connection")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func promptAPIKey() (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithMask("*").
		Show("Enter your BlackRoad API key")
}

func defaultConnectionTester(ctx context.Context, apiKey, apiURL string) api.ConnectionResult {
	return api.TestConnection(ctx, apiKey, apiURL, api.WithUserAgent(userAgent()))
}

func runLogin(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	apiKey, _ := cmd.Flags().GetString("api-key")
	skipVerify, _ := cmd.Flags().GetBool("skip-verify")

	c := LoginCmd{
		store:  rt.store,
		test:   rt.withURLOverride(defaultConnectionTester),
		prompt: promptAPIKey,
	}
	return c.Run(cmd.Context(), LoginInput{APIKey: apiKey, SkipVerify: skipVerify})
}

func runLogout(cmd *cobra.Command, args []string) error {
	rt := getRuntime(cmd)
	c := LogoutCmd{store: rt.store}
	return c.Run(cmd.Context())
}
