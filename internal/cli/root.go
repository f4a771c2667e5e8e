package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/artpar/starplate/internal/client"
	"github.com/artpar/starplate/internal/config"
	"github.com/artpar/starplate/internal/logging"
	"github.com/spf13/cobra"
)

// DefaultEndpoint is used by the client commands when neither --endpoint nor
// API_ENDPOINT is set.
const DefaultEndpoint = "http://localhost:3001"

// GlobalOptions holds the persistent flags shared by every subcommand.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
	Endpoint   string
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "starplate",
		Short:         "Starplate - restaurants and starred restaurants service",
		Long:          "Starplate serves a restaurant catalogue and a list of starred restaurants with comments.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default ./"+config.DefaultFileName+" if present)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.Endpoint, "endpoint", "", "API endpoint for client commands (default $"+client.EndpointEnv+" or "+DefaultEndpoint+")")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewStarredCommand(opts))
	cmd.AddCommand(NewRestaurantsCommand(opts))
	cmd.AddCommand(newVersionCommand(version))

	return cmd
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "starplate %s\n", version)
			return err
		},
	}
}

// loadConfig reads the config file and applies flag overrides.
func (o *GlobalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	return cfg, nil
}

func (o *GlobalOptions) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
}

// endpoint resolves the API endpoint: flag, then environment, then default.
func (o *GlobalOptions) endpoint() string {
	if o.Endpoint != "" {
		return o.Endpoint
	}
	if env := os.Getenv(client.EndpointEnv); env != "" {
		return env
	}
	return DefaultEndpoint
}

func (o *GlobalOptions) client() (*client.Client, error) {
	c, err := client.New(o.endpoint())
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	return c, nil
}
