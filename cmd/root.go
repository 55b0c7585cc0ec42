package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/blackroad/cli/pkg/api"
	"github.com/blackroad/cli/pkg/logx"
	"github.com/blackroad/cli/pkg/settings"
	"github.com/blackroad/cli/pkg/state"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is set at build time.
var Version = "dev"

const (
	envLogLevel = "BLACKROAD_LOG_LEVEL"
	envLogFile  = "BLACKROAD_LOG_FILE"
)

var rootCmd = &cobra.Command{
	Use:   "blackroad",
	Short: "BlackRoad command line client",
	Long: `Watch BlackRoad for urgent tasks, check your dashboard and create tasks,
deployments and activity-log entries from the terminal.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupRuntime,
	PersistentPostRunE: teardownRuntime,
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().AddFlagSet(globalFlags())
}

func globalFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("global", pflag.ContinueOnError)
	flags.String("log-level", "", "Log level: debug, info, warn, error (env "+envLogLevel+")")
	flags.String("api-url", "", "Override the API base URL for this invocation")
	flags.String("config", "", "Path to the settings file")
	flags.String("state", "", "Path to the local state database")
	return flags
}

type runtimeKey struct{}

// cliRuntime carries what every command shares: the logger, the settings
// store and, once opened, the local state store.
type cliRuntime struct {
	log       logx.Logger
	store     *settings.Store
	apiURL    string
	statePath string
	state     *state.Store
}

func setupRuntime(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	flags := cmd.Flags()
	level, _ := flags.GetString("log-level")
	if level == "" {
		level = os.Getenv(envLogLevel)
	}
	log := logx.New(logx.Config{Level: level, FilePath: os.Getenv(envLogFile)})

	configPath, _ := flags.GetString("config")
	if configPath == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	statePath, _ := flags.GetString("state")
	apiURL, _ := flags.GetString("api-url")

	rt := &cliRuntime{
		log:       log,
		store:     settings.NewStore(configPath, settings.WithLogger(log)),
		apiURL:    strings.TrimSpace(apiURL),
		statePath: statePath,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, rt))
	return nil
}

func teardownRuntime(cmd *cobra.Command, args []string) error {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*cliRuntime)
	if !ok {
		return nil
	}
	var errs []error
	if rt.state != nil {
		errs = append(errs, rt.state.Close())
	}
	errs = append(errs, rt.log.Close())
	return errors.Join(errs...)
}

func getRuntime(cmd *cobra.Command) *cliRuntime {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*cliRuntime)
	if !ok {
		pterm.Error.Println("internal error: command runtime not initialized")
		os.Exit(1)
	}
	return rt
}

// Settings returns the settings provider with the --api-url override applied.
func (rt *cliRuntime) Settings() settings.Provider {
	return settings.ProviderFunc(func() (settings.Settings, error) {
		s, err := rt.store.Load()
		if err != nil {
			return s, err
		}
		if rt.apiURL != "" {
			s.APIURL = settings.NormalizeURL(rt.apiURL)
		}
		return s, nil
	})
}

// State opens the local state store on first use.
func (rt *cliRuntime) State() (*state.Store, error) {
	if rt.state != nil {
		return rt.state, nil
	}
	path := rt.statePath
	if path == "" {
		p, err := state.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	st, err := state.Open(path, rt.log)
	if err != nil {
		return nil, err
	}
	rt.state = st
	return st, nil
}

func userAgent() string {
	return "blackroad-cli/" + Version
}

func newAPIClient(s settings.Settings) *api.Client {
	return api.NewClient(s.APIKey, s.APIURL, api.WithUserAgent(userAgent()))
}

// withURLOverride makes test use the --api-url override when one is set.
func (rt *cliRuntime) withURLOverride(test ConnectionTester) ConnectionTester {
	return func(ctx context.Context, apiKey, apiURL string) api.ConnectionResult {
		if rt.apiURL != "" {
			apiURL = settings.NormalizeURL(rt.apiURL)
		}
		return test(ctx, apiKey, apiURL)
	}
}
