package hotkeys

import (
	"fmt"
	"slices"
	"strings"

	"github.com/holoplot/go-evdev"
)

// MaxGroups is the number of groups a Mask can address.
const MaxGroups = 32

// Group is a set of interchangeable modifier keys, e.g. both Shift keys.
type Group struct {
	Name string
	Keys []evdev.EvCode
}

// Groups is the ordered modifier grouping. With n groups, the group at
// position p owns bit 1<<(n-1-p), so the first group owns the highest bit.
type Groups []Group

// Bit returns the mask bit owned by the group at position p.
func (g Groups) Bit(p int) Mask {
	return Mask(1) << (len(g) - 1 - p)
}

// MaskOf returns the bit of the group containing key, or zero when key is
// not a modifier.
func (g Groups) MaskOf(key evdev.EvCode) Mask {
	for p, group := range g {
		if slices.Contains(group.Keys, key) {
			return g.Bit(p)
		}
	}
	return 0
}

// Lookup returns the bit of the group with the given name (case-insensitive).
func (g Groups) Lookup(name string) (Mask, bool) {
	for p, group := range g {
		if strings.EqualFold(group.Name, name) {
			return g.Bit(p), true
		}
	}
	return 0, false
}

// Names lists the group names whose bits are set in m, highest bit first.
func (g Groups) Names(m Mask) []string {
	var names []string
	for p, group := range g {
		if m&g.Bit(p) != 0 {
			names = append(names, group.Name)
		}
	}
	return names
}

// Validate checks the grouping invariants: bounded group count, unique
// non-empty names and no key shared between groups.
func (g Groups) Validate() error {
	if len(g) > MaxGroups {
		return fmt.Errorf("too many modifier groups: %d (max %d)", len(g), MaxGroups)
	}
	names := make(map[string]struct{}, len(g))
	owner := map[evdev.EvCode]string{}
	for _, group := range g {
		name := strings.ToLower(strings.TrimSpace(group.Name))
		if name == "" {
			return fmt.Errorf("modifier group name is required")
		}
		if _, dup := names[name]; dup {
			return fmt.Errorf("duplicate modifier group %q", group.Name)
		}
		names[name] = struct{}{}
		if len(group.Keys) == 0 {
			return fmt.Errorf("modifier group %q has no keys", group.Name)
		}
		for _, key := range group.Keys {
			if prev, dup := owner[key]; dup {
				return fmt.Errorf("key %s is in modifier groups %q and %q", KeyName(key), prev, group.Name)
			}
			owner[key] = group.Name
		}
	}
	return nil
}
