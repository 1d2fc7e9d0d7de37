package instance

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/door-sentry/internal/logger"
)

var (
	// ErrAlreadyRunning is returned when another process runs the same executable.
	ErrAlreadyRunning = errors.New("another instance is already running")
	// errSelfNotFound is returned when the current process is missing from the process table.
	errSelfNotFound = errors.New("current process not found")
)

// EnsureSingle fails with ErrAlreadyRunning if another process runs the same executable.
func EnsureSingle(ctx context.Context) error {
	thisProcessID := os.Getpid()

	self, err := ps.FindProcess(thisProcessID)
	if err != nil {
		return fmt.Errorf("find current process: %w", err)
	}

	if self == nil {
		return errSelfNotFound
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	if pid, found := findOther(processList, thisProcessID, self.Executable()); found {
		return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, self.Executable(), pid)
	}

	logger.DebugKV(ctx, "No other instance found", "executable", self.Executable())

	return nil
}

// findOther returns the pid of a process other than self running name.
func findOther(processList []ps.Process, self int, name string) (int, bool) {
	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if process.Executable() == name {
			return process.Pid(), true
		}
	}

	return 0, false
}
