//go:build windows

package commands

import (
	"os"
	"time"
)

// processAlive reports whether pid can be opened. Windows has no signal 0,
// so a process that exited but kept its handle may still look alive.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}

// signalStop kills the server process; Windows cannot deliver SIGTERM.
func signalStop(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

// awaitExit gives the process a moment to go away.
func awaitExit(pid int, timeout time.Duration) {
	time.Sleep(timeout / 3)
}
