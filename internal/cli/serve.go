package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/artpar/starplate/internal/app"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	ListenAddr string
	Backend    string
	DataDir    string
}

// NewServeCommand creates the serve command.
func NewServeCommand(global *GlobalOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Examples:
  # Serve from JSON files in the current directory on :3001
  starplate serve

  # Keep data in SQLite under /var/lib/starplate
  starplate serve --backend sqlite --data-dir /var/lib/starplate

  # Listen on a different port
  starplate serve --listen :8080
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ListenAddr, "listen", "l", "", "Listen address (overrides config)")
	cmd.Flags().StringVarP(&opts.Backend, "backend", "b", "", "Storage backend: json, sqlite, postgres or memory (overrides config)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "Directory for data files (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, global *GlobalOptions, opts *ServeOptions) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	if opts.ListenAddr != "" {
		cfg.ListenAddr = opts.ListenAddr
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	logger, err := global.logger(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, app.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	srv := application.Server()
	if err := srv.Start(ctx); err != nil {
		application.Close()
		return fmt.Errorf("failed to start server: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Server listening on %s\n", displayAddr(srv.ListenAddr()))
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl+C to stop...\n")

	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
	return application.Close()
}

// displayAddr turns a wildcard listen address into something a browser can
// open.
func displayAddr(addr string) string {
	if len(addr) > 4 && addr[:4] == "[::]" {
		return "localhost" + addr[4:]
	}
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
