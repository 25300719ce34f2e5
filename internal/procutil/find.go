package procutil

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNotFound is returned by FindPID when no process has the requested name.
var ErrNotFound = errors.New("process not found")

// commLen is TASK_COMM_LEN-1, the longest name /proc/<pid>/comm holds.
const commLen = 15

// procRoot is a test seam; tests point it at a fake procfs tree.
var procRoot = "/proc"

var getpidFn = os.Getpid

// FindPID returns the PID of a running process named name, matching either
// its comm or the base name of argv[0]. When several match, the highest PID
// wins, which is the first one pidof prints. The calling process is skipped.
func FindPID(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("process name required")
	}
	entries, err := os.ReadDir(procRoot)
	if err != nil {
		return 0, fmt.Errorf("find %q: %w", name, err)
	}

	self := getpidFn()
	found := 0
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 || pid == self || pid <= found {
			continue
		}
		if processMatches(filepath.Join(procRoot, entry.Name()), name) {
			found = pid
		}
	}
	if found == 0 {
		return 0, fmt.Errorf("find %q: %w", name, ErrNotFound)
	}
	return found, nil
}

// processMatches reads comm and cmdline of one procfs entry. Processes that
// exit mid-scan simply fail to match.
func processMatches(dir string, name string) bool {
	if cmdline, err := os.ReadFile(filepath.Join(dir, "cmdline")); err == nil && len(cmdline) > 0 {
		argv0, _, _ := bytes.Cut(cmdline, []byte{0})
		if filepath.Base(string(argv0)) == name {
			return true
		}
	}
	// comm is truncated, so it can only confirm short names.
	if len(name) > commLen {
		return false
	}
	comm, err := os.ReadFile(filepath.Join(dir, "comm"))
	if err != nil {
		return false
	}
	return strings.TrimSuffix(string(comm), "\n") == name
}
