package test

import (
	"os"
	"path/filepath"
	"testing"
)

// TempHome is an isolated state directory for a single test.
type TempHome struct {
	Dir string
}

// NewTempHome points HOME and the MutedVoice state and config variables at
// a fresh temp dir. The environment is restored when the test ends.
func NewTempHome(t *testing.T) *TempHome {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("MUTEDVOICE_STATE_DIR", filepath.Join(dir, ".mutedvoice"))
	t.Setenv("MUTEDVOICE_CONFIG_PATH", "")

	if err := os.MkdirAll(filepath.Join(dir, ".mutedvoice"), 0755); err != nil {
		t.Fatalf("Failed to create state dir: %v", err)
	}

	return &TempHome{Dir: dir}
}

// StateDir returns the MutedVoice state directory in the temp home.
func (th *TempHome) StateDir() string {
	return filepath.Join(th.Dir, ".mutedvoice")
}

// WriteConfig writes the default config file and returns its path.
func (th *TempHome) WriteConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(th.StateDir(), "mutedvoice.json")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return configPath
}
