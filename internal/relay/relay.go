// Package relay implements the event filter that sits between an input device
// and its consumer: it forwards events, tracks held modifiers and notifies the
// target process when a configured chord is hit.
package relay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/holoplot/go-evdev"

	"hkd-relayer/internal/event"
	"hkd-relayer/internal/hotkeys"
	"hkd-relayer/internal/notify"
)

// ErrWrite wraps a failure to forward an event. The output stream can no
// longer be trusted after it, so Run stops.
var ErrWrite = errors.New("write event")

// Options configures a Relay. All tables are read-only after New.
type Options struct {
	Groups   hotkeys.Groups
	Bindings hotkeys.Table
	Filter   event.Filter
	Notifier notify.Notifier
}

// Stats counts what the relay did with the events it read.
type Stats struct {
	Read         uint64
	Forwarded    uint64
	Consumed     uint64
	Dropped      uint64
	Repeats      uint64
	Anomalies    uint64
	Notified     uint64
	NotifyFailed uint64
}

// Relay holds the modifier mask and last pressed key. It is not safe for
// concurrent use; one goroutine owns it for the lifetime of the stream.
type Relay struct {
	groups    hotkeys.Groups
	bindings  hotkeys.Table
	filter    event.Filter
	notifier  notify.Notifier
	mask      hotkeys.Mask
	lastPress evdev.EvCode
	stats     Stats
}

// New returns a Relay with an empty modifier mask.
func New(opts Options) *Relay {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Func(func(hotkeys.ActionID) error { return nil })
	}
	return &Relay{
		groups:   opts.Groups,
		bindings: opts.Bindings,
		filter:   opts.Filter,
		notifier: notifier,
	}
}

// Mask returns the current modifier mask.
func (r *Relay) Mask() hotkeys.Mask { return r.mask }

// LastPress returns the most recently pressed key code.
func (r *Relay) LastPress() evdev.EvCode { return r.lastPress }

// Stats returns a snapshot of the counters.
func (r *Relay) Stats() Stats { return r.stats }

// Process applies the relay policy to one event and reports whether it must
// be forwarded unchanged.
//
// Presses of ordinary keys that match a binding are consumed. Releases are
// always forwarded so the consumer never sees a stuck key. Repeats are
// dropped; the consumer generates its own.
func (r *Relay) Process(ev evdev.InputEvent) bool {
	r.stats.Read++
	if r.filter.Drops(ev) {
		r.stats.Dropped++
		return false
	}
	if ev.Type != evdev.EvType(evdev.EV_KEY) {
		return r.forward()
	}

	switch ev.Value {
	case event.ValuePress:
		r.lastPress = ev.Code
		bit := r.groups.MaskOf(ev.Code)
		if bit == 0 {
			if action, ok := r.bindings.Match(ev.Code, r.mask); ok {
				r.stats.Consumed++
				r.notify(action, ev.Code)
				return false
			}
		}
		r.mask |= bit
		return r.forward()

	case event.ValueRelease:
		if bit := r.groups.MaskOf(ev.Code); bit != 0 {
			// Toggle, not clear: one state bit per group, so two keys of a
			// group released out of order leave the bit inverted.
			r.mask ^= bit
			if ev.Code == r.lastPress {
				if action, ok := r.bindings.Match(ev.Code, r.mask); ok {
					r.notify(action, ev.Code)
				}
			}
		}
		return r.forward()

	case event.ValueRepeat:
		r.stats.Repeats++
		return false

	default:
		r.stats.Anomalies++
		slog.Warn("[relay] unexpected key event value, dropping event",
			"value", ev.Value,
			"code", ev.Code,
			"key", hotkeys.KeyName(ev.Code),
		)
		return false
	}
}

func (r *Relay) forward() bool {
	r.stats.Forwarded++
	return true
}

// notify is fire-and-forget: a failure is logged and the stream continues.
func (r *Relay) notify(action hotkeys.ActionID, key evdev.EvCode) {
	slog.Debug("[DEBUG-RELAY] hotkey matched",
		"action", action,
		"key", hotkeys.KeyName(key),
		"mods", r.groups.Names(r.mask),
	)
	if err := r.notifier.Notify(action); err != nil {
		r.stats.NotifyFailed++
		slog.Warn("[notify] failed to deliver action", "action", action, "error", err)
		return
	}
	r.stats.Notified++
}

// Run decodes events from src until end of stream, writing every forwarded
// event to dst before reading the next one. A short or failed read ends the
// stream cleanly and Run returns nil; a failed write returns an error
// wrapping ErrWrite.
func (r *Relay) Run(src io.Reader, dst io.Writer) error {
	dec := event.NewDecoder(src)
	enc := event.NewEncoder(dst)
	for {
		ev, err := dec.Decode()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("[relay] read failed, treating as end of stream", "error", err)
			}
			r.logStats()
			return nil
		}
		if !r.Process(ev) {
			continue
		}
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
}

func (r *Relay) logStats() {
	s := r.stats
	slog.Debug("[DEBUG-RELAY] end of stream",
		"read", s.Read,
		"forwarded", s.Forwarded,
		"consumed", s.Consumed,
		"dropped", s.Dropped,
		"repeats", s.Repeats,
		"anomalies", s.Anomalies,
		"notified", s.Notified,
		"notifyFailed", s.NotifyFailed,
	)
}
