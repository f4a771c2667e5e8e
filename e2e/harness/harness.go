// Package harness runs a real starplate server against a temporary data
// directory and drives it through the CLI.
package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/starplate/internal/app"
	"github.com/artpar/starplate/internal/config"
	"github.com/artpar/starplate/internal/logging"
)

// E2EHarness is the main test orchestrator.
type E2EHarness struct {
	t          *testing.T
	app        *app.App
	cfg        *config.Config
	configPath string
	timeout    time.Duration
}

// Config configures the harness.
type Config struct {
	Backend      string        // Default: json
	AtomicWrites bool
	Timeout      time.Duration // Default: 5 seconds
}

// New starts a server on a random local port backed by a temp directory.
func New(t *testing.T, cfg Config) *E2EHarness {
	t.Helper()

	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Backend == "" {
		cfg.Backend = config.BackendJSON
	}

	appCfg := config.Default()
	appCfg.ListenAddr = "127.0.0.1:0"
	appCfg.Backend = cfg.Backend
	appCfg.DataDir = t.TempDir()
	appCfg.AtomicWrites = cfg.AtomicWrites

	h := &E2EHarness{
		t:          t,
		cfg:        appCfg,
		configPath: filepath.Join(appCfg.DataDir, config.DefaultFileName),
		timeout:    cfg.Timeout,
	}
	h.writeConfig()
	h.start()

	t.Cleanup(h.stop)
	return h
}

func (h *E2EHarness) writeConfig() {
	h.t.Helper()
	body := fmt.Sprintf("backend: %s\ndata_dir: %s\natomic_writes: %t\nlog_level: error\n",
		h.cfg.Backend, h.cfg.DataDir, h.cfg.AtomicWrites)
	if err := os.WriteFile(h.configPath, []byte(body), 0o644); err != nil {
		h.t.Fatalf("failed to write config: %v", err)
	}
}

func (h *E2EHarness) start() {
	h.t.Helper()
	ctx := context.Background()

	loaded, err := config.Load(h.configPath)
	if err != nil {
		h.t.Fatalf("failed to load config: %v", err)
	}
	loaded.ListenAddr = h.cfg.ListenAddr
	h.cfg = loaded

	a, err := app.New(ctx, h.cfg, app.WithLogger(logging.Discard()))
	if err != nil {
		h.t.Fatalf("failed to build app: %v", err)
	}
	if err := a.Server().Start(ctx); err != nil {
		a.Close()
		h.t.Fatalf("failed to start server: %v", err)
	}
	h.app = a
	// Later restarts must come back on the same port.
	h.cfg.ListenAddr = a.Server().ListenAddr()
}

func (h *E2EHarness) stop() {
	if h.app == nil {
		return
	}
	if err := h.app.Close(); err != nil {
		h.t.Errorf("failed to close app: %v", err)
	}
	h.app = nil
}

// Restart closes the server and opens it again from the same data.
func (h *E2EHarness) Restart() {
	h.t.Helper()
	h.stop()
	h.start()
}

// ServerURL returns the base URL of the running server.
func (h *E2EHarness) ServerURL() string {
	return "http://" + h.cfg.ListenAddr
}

// DataDir returns the directory holding the collection files.
func (h *E2EHarness) DataDir() string {
	return h.cfg.DataDir
}

// ConfigPath returns the config file written for this harness.
func (h *E2EHarness) ConfigPath() string {
	return h.configPath
}

// App returns the running application.
func (h *E2EHarness) App() *app.App {
	return h.app
}

// Timeout returns the configured timeout.
func (h *E2EHarness) Timeout() time.Duration {
	return h.timeout
}

// T returns the testing.T instance.
func (h *E2EHarness) T() *testing.T {
	return h.t
}

// CLI returns a CLI runner pointed at this harness's server.
func (h *E2EHarness) CLI() *CLIRunner {
	return &CLIRunner{harness: h}
}
