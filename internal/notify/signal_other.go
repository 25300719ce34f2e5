//go:build !linux

package notify

import (
	"errors"

	"hkd-relayer/internal/hotkeys"
)

// Signal is unavailable outside Linux; queued signals with a payload are a
// Linux interface.
type Signal struct {
	pid int
}

// NewSignal returns a notifier whose Notify always fails on this platform.
func NewSignal(pid int) *Signal { return &Signal{pid: pid} }

// PID returns the target process id.
func (s *Signal) PID() int { return s.pid }

// Notify always returns an error on non-Linux platforms.
func (s *Signal) Notify(_ hotkeys.ActionID) error {
	return errors.New("queued signal notification is supported only on Linux")
}
