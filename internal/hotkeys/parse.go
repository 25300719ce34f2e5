package hotkeys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holoplot/go-evdev"
)

// KeyName returns the KEY_* name of key, or its decimal code.
func KeyName(key evdev.EvCode) string {
	if name, ok := evdev.KEYToString[key]; ok {
		return name
	}
	return strconv.Itoa(int(key))
}

// ParseKey resolves "KEY_LEFTSHIFT", "leftshift" or a decimal key code.
func ParseKey(raw string) (evdev.EvCode, error) {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if token == "" {
		return 0, fmt.Errorf("missing key token")
	}
	if n, err := strconv.ParseUint(token, 10, 16); err == nil {
		return evdev.EvCode(n), nil
	}
	if !strings.HasPrefix(token, "KEY_") {
		token = "KEY_" + token
	}
	key, ok := evdev.KEYFromString[token]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", raw)
	}
	return key, nil
}

// ParseBinding parses a chord like "super+shift+a" against groups. Every
// token but the last names a modifier group; the last is the trigger key.
// A lone key ("leftmeta") binds with an empty mask, which is how a modifier
// tap is expressed: the mask is checked after the release toggled it off.
func ParseBinding(chord string, groups Groups, action ActionID) (Binding, error) {
	raw := strings.TrimSpace(chord)
	if raw == "" {
		return Binding{}, fmt.Errorf("hotkey is empty")
	}
	parts := strings.Split(raw, "+")

	var mask Mask
	for _, token := range parts[:len(parts)-1] {
		name := strings.TrimSpace(token)
		bit, ok := groups.Lookup(name)
		if !ok {
			return Binding{}, fmt.Errorf("unknown modifier %q in hotkey %q", token, raw)
		}
		mask |= bit
	}

	key, err := ParseKey(parts[len(parts)-1])
	if err != nil {
		return Binding{}, fmt.Errorf("hotkey %q: %w", raw, err)
	}

	b := NewBinding(key, mask, action)
	b.normalized = strings.Join(append(groups.Names(mask), KeyName(key)), "+")
	return b, nil
}
