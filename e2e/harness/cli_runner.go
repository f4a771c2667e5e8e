package harness

import (
	"bytes"
	"context"
	"time"

	"github.com/artpar/starplate/internal/cli"
)

// CLIResult holds CLI execution results.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CLIRunner executes CLI commands.
type CLIRunner struct {
	harness *E2EHarness
}

// Run executes a CLI command with the given arguments. The harness endpoint
// is appended so client commands reach the running server.
func (r *CLIRunner) Run(args ...string) (*CLIResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.harness.timeout)
	defer cancel()

	start := time.Now()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := cli.NewRootCommand("test")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append(args, "--endpoint", r.harness.ServerURL()))

	err := cmd.ExecuteContext(ctx)

	result := &CLIResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		result.ExitCode = 1
	}

	return result, err
}

// Star stars one or more restaurants with a comment.
func (r *CLIRunner) Star(comment string, restaurantIDs ...string) (*CLIResult, error) {
	args := append([]string{"starred", "add", "--comment", comment}, restaurantIDs...)
	return r.Run(args...)
}

// ListStarred runs "starred list".
func (r *CLIRunner) ListStarred() (*CLIResult, error) {
	return r.Run("starred", "list")
}

// AddRestaurant runs "restaurants add".
func (r *CLIRunner) AddRestaurant(name string) (*CLIResult, error) {
	return r.Run("restaurants", "add", name)
}
