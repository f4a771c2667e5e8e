package harness

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
)

// Assertions provides output and file assertions for CLI runs.
type Assertions struct {
	t *testing.T
}

// NewAssertions creates an assertions helper.
func NewAssertions(t *testing.T) *Assertions {
	return &Assertions{t: t}
}

// OutputContains asserts the output contains all given strings.
func (a *Assertions) OutputContains(output string, expected ...string) {
	a.t.Helper()
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			a.t.Errorf("expected output to contain %q, got:\n%s", exp, truncate(output, 500))
		}
	}
}

// OutputNotContains asserts the output does not contain any of the given strings.
func (a *Assertions) OutputNotContains(output string, unexpected ...string) {
	a.t.Helper()
	for _, unexp := range unexpected {
		if strings.Contains(output, unexp) {
			a.t.Errorf("expected output NOT to contain %q, got:\n%s", unexp, truncate(output, 500))
		}
	}
}

// StatusLine asserts the output starts with the status line printed by the
// unstar and comment commands.
func (a *Assertions) StatusLine(output string, code int) {
	a.t.Helper()
	expected := fmt.Sprintf("%d %s", code, http.StatusText(code))
	if !strings.HasPrefix(output, expected) {
		a.t.Errorf("expected status line %d in output:\n%s", code, truncate(output, 500))
	}
}

// NoError asserts the output doesn't contain error indicators.
func (a *Assertions) NoError(output string) {
	a.t.Helper()
	errorIndicators := []string{"Error:", "error:", "panic:", "PANIC:"}
	for _, ind := range errorIndicators {
		if strings.Contains(output, ind) {
			a.t.Errorf("unexpected error in output: found %q in:\n%s", ind, truncate(output, 500))
			return
		}
	}
}

// FileContains asserts the file at path exists and contains every string.
func (a *Assertions) FileContains(path string, expected ...string) {
	a.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		a.t.Errorf("failed to read %s: %v", path, err)
		return
	}
	a.OutputContains(string(data), expected...)
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "... (truncated)"
}
