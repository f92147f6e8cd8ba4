package cli

import (
	"fmt"
	"os"
)

// Restart replaces the current process with a fresh copy of itself, which is
// the only reliable way to release an audio device that refuses to stop.
func Restart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	return execFunc(exe, os.Args, os.Environ())
}
