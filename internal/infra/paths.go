// Package infra provides infrastructure utilities.
package infra

import (
	"os"
	"path/filepath"

	"github.com/mutedvoice/mutedvoice/internal/config"
)

const (
	lockFileName = "mutedvoice.lock"
	pidFileName  = "mutedvoice.pid"
)

// LockFile is the single-instance lock held by a running server.
func LockFile() string {
	return filepath.Join(config.StateDir(), lockFileName)
}

// PIDFile records the pid of the running server for `serve stop`.
func PIDFile() string {
	return filepath.Join(config.StateDir(), pidFileName)
}

// EnsureStateDir creates the state directory if needed.
func EnsureStateDir() error {
	return os.MkdirAll(config.StateDir(), 0755)
}
