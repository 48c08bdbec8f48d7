// Package profile manages the worker's persistent shiftclock profile.
// The profile is stored at ~/.config/shiftclock/profile.json and is created
// once via the interactive setup flow, then referenced on every command.
package profile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Profile holds worker-level preferences set during first-run setup.
type Profile struct {
	Name          string `json:"name"`
	Subject       string `json:"subject"`        // subject id used for tracking
	Exempt        bool   `json:"exempt"`         // worker is exempt from time tracking
	IdleMinutes   int    `json:"idle_minutes"`   // 0 means use config/default
	DefaultFormat string `json:"default_format"` // "text" | "json"
}

// profilePath returns the path to the profile file.
func profilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "shiftclock", "profile.json"), nil
}

// ConfigDir returns the shiftclock config directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "shiftclock"), nil
}

// Exists reports whether a profile file is present on disk.
func Exists() bool {
	p, err := profilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Load reads the profile from disk. Returns an error if the file is missing or malformed.
func Load() (*Profile, error) {
	p, err := profilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("profile not found — run 'shiftclock setup' to configure: %w", err)
	}
	var prof Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("malformed profile at %s: %w", p, err)
	}
	return &prof, nil
}

// Save writes the profile to disk, creating the config directory if needed.
func Save(prof *Profile) error {
	p, err := profilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// RunSetup runs the interactive setup wizard and saves the resulting profile.
// If existing is non-nil, it is used as the default for each prompt (edit mode).
func RunSetup(existing *Profile) (*Profile, error) {
	r := bufio.NewReader(os.Stdin)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Printf("%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Printf("%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	askBool := func(prompt string, defaultVal bool) (bool, error) {
		def := "n"
		if defaultVal {
			def = "y"
		}
		ans, err := ask(prompt+" (y/n)", def)
		if err != nil {
			return false, err
		}
		return strings.ToLower(ans) == "y" || strings.ToLower(ans) == "yes", nil
	}

	prof := &Profile{
		DefaultFormat: "text",
	}
	if existing != nil {
		*prof = *existing
	}

	fmt.Println()
	fmt.Println("  ┌─────────────────────────────────┐")
	fmt.Println("  │  shiftclock — first-time setup  │")
	fmt.Println("  └─────────────────────────────────┘")
	fmt.Println()

	var err error

	prof.Name, err = ask("  Your name", prof.Name)
	if err != nil {
		return nil, err
	}

	defaultSubject := prof.Subject
	if defaultSubject == "" {
		defaultSubject = defaultSubjectID()
	}
	prof.Subject, err = ask("  Subject id (used to key your sessions)", defaultSubject)
	if err != nil {
		return nil, err
	}

	prof.Exempt, err = askBool("  Exempt from time tracking", prof.Exempt)
	if err != nil {
		return nil, err
	}

	idleDefault := ""
	if prof.IdleMinutes > 0 {
		idleDefault = strconv.Itoa(prof.IdleMinutes)
	}
	idle, err := ask("  Idle auto-pause threshold in minutes (blank for default)", idleDefault)
	if err != nil {
		return nil, err
	}
	if idle != "" {
		if n, convErr := strconv.Atoi(idle); convErr == nil && n > 0 {
			prof.IdleMinutes = n
		}
	}

	format, err := ask("  Default report format (text/json)", prof.DefaultFormat)
	if err != nil {
		return nil, err
	}
	if format == "json" {
		prof.DefaultFormat = "json"
	} else {
		prof.DefaultFormat = "text"
	}

	fmt.Println()
	return prof, nil
}

// defaultSubjectID derives a subject id from the OS user name.
func defaultSubjectID() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "worker"
}
