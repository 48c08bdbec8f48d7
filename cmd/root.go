package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/rbeaumont/shiftclock/internal/bus"
	"github.com/rbeaumont/shiftclock/internal/config"
	"github.com/rbeaumont/shiftclock/internal/profile"
	"github.com/rbeaumont/shiftclock/internal/store"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded worker profile.
var activeProfile *profile.Profile

var rootCmd = &cobra.Command{
	Use:   "shiftclock",
	Short: "Track work sessions: start, pause, resume and report on your hours",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		// First-run: profile missing → run setup wizard automatically.
		// Only do this when stdin is an interactive terminal.
		if !profile.Exists() {
			if term.IsTerminal(os.Stdin.Fd()) {
				fmt.Println()
				fmt.Println("  Welcome to shiftclock! Looks like this is your first time.")
				if err := runSetup(true); err != nil {
					return err
				}
			}
			// Non-interactive (tests, pipes): continue with defaults, no profile required.
		}

		// Load profile (optional — may not exist in non-interactive environments).
		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		}

		// Load and merge config files, then overlay the environment.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.ApplyEnv(config.Merge(global, project))

		// Profile values fill in config gaps.
		if activeProfile != nil {
			if cfg.Subject == "" && activeProfile.Subject != "" {
				cfg.Subject = activeProfile.Subject
			}
			if activeProfile.IdleMinutes > 0 && cfg.IdleThresholdMinutes == config.Defaults().IdleThresholdMinutes {
				cfg.IdleThresholdMinutes = activeProfile.IdleMinutes
			}
			if cfg.DefaultFormat == "" || cfg.DefaultFormat == "text" {
				if activeProfile.DefaultFormat != "" {
					cfg.DefaultFormat = activeProfile.DefaultFormat
				}
			}
		}

		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active worker profile.
func GetProfile() *profile.Profile {
	return activeProfile
}

// subjectID resolves the subject all commands operate on: config/env/profile
// value, falling back to the OS user.
func subjectID() string {
	if cfg.Subject != "" {
		return cfg.Subject
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "worker"
}

// openStore builds the session store from the merged config.
func openStore() (store.Store, error) {
	return store.New(cfg.DataDir, nil)
}

// resolveDataDir returns the configured data directory, falling back to the
// XDG default the store itself would use.
func resolveDataDir() string {
	if cfg.DataDir != "" {
		return cfg.DataDir
	}
	dir, err := store.DataDir()
	if err != nil {
		return ""
	}
	return dir
}

// announceActivity tells any running watch dashboard that the user just did
// something. Best effort; a session transition must not fail on it.
func announceActivity() {
	_ = bus.Announce(resolveDataDir())
}

// exemptPolicy adapts the merged config and profile into the guard's policy
// contract.
type exemptPolicy struct{}

func (exemptPolicy) IsExempt(subjectID string) bool {
	if activeProfile != nil && activeProfile.Exempt && activeProfile.Subject == subjectID {
		return true
	}
	return cfg.IsExempt(subjectID)
}

// terminalConfirmer asks a yes/no question on the controlling terminal.
type terminalConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (t terminalConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(t.in).ReadString('\n')
	if err != nil {
		return false, err
	}
	ans := strings.ToLower(strings.TrimSpace(line))
	return ans == "y" || ans == "yes", nil
}

// autoConfirmer answers yes to everything (--yes flags, non-interactive use).
type autoConfirmer struct{}

func (autoConfirmer) Confirm(string) (bool, error) { return true, nil }
