// Package notify delivers matched hotkey actions to the target process.
package notify

import "hkd-relayer/internal/hotkeys"

// Notifier sends one action id to the target process. Delivery is
// fire-and-forget: a nil error only means the message was handed off.
type Notifier interface {
	Notify(action hotkeys.ActionID) error
}

// Func adapts a plain function to Notifier.
type Func func(action hotkeys.ActionID) error

// Notify calls f(action).
func (f Func) Notify(action hotkeys.ActionID) error { return f(action) }
