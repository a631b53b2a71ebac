//go:build !windows

package commands

import (
	"syscall"
	"time"
)

// processAlive reports whether pid exists, using signal 0.
func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}

// signalStop asks the server process to shut down gracefully.
func signalStop(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// awaitExit polls until pid is gone or timeout elapses.
func awaitExit(pid int, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) && processAlive(pid) {
		time.Sleep(150 * time.Millisecond)
	}
}
