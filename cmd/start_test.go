package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// setupTestEnv points all state (profile, config, session store) at temp
// directories so tests never touch real data.
func setupTestEnv(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_DATA_HOME", tmp)
	t.Setenv("SHIFTCLOCK_SUBJECT", "alice")
}

// TestDoubleStartError verifies that running "start" twice returns an error
// explaining the session is already open.
func TestDoubleStartError(t *testing.T) {
	setupTestEnv(t)

	if out, err := executeCommand(rootCmd, "start"); err != nil {
		t.Fatalf("first start: %v (output: %s)", err, out)
	}

	out, err := executeCommand(rootCmd, "start")
	if err == nil {
		t.Fatal("expected an error from double-start, got nil")
	}
	combined := out + err.Error()
	if !strings.Contains(combined, "session already open") {
		t.Errorf("expected error to contain %q, got: %q", "session already open", combined)
	}
}

func TestStartReportsTime(t *testing.T) {
	setupTestEnv(t)

	out, err := executeCommand(rootCmd, "start")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(out, "Session started") {
		t.Errorf("output = %q, want a started confirmation", out)
	}
}
