// Package hotkeys tracks modifier groups and matches key chords against the
// configured binding table.
package hotkeys

import (
	"strconv"

	"github.com/holoplot/go-evdev"
)

// Mask is a modifier bitmask. Each bit belongs to one modifier group.
type Mask uint32

// ActionID identifies a binding to the notified process.
type ActionID int32

// Binding describes one configured chord.
// Construct via NewBinding or ParseBinding.
type Binding struct {
	key        evdev.EvCode
	mask       Mask
	action     ActionID
	normalized string
}

// NewBinding returns a binding firing action for key while exactly mask is held.
func NewBinding(key evdev.EvCode, mask Mask, action ActionID) Binding {
	return Binding{
		key:        key,
		mask:       mask,
		action:     action,
		normalized: KeyName(key) + "/" + strconv.FormatUint(uint64(mask), 2),
	}
}

// Key returns the trigger key code.
func (b Binding) Key() evdev.EvCode { return b.key }

// Mask returns the exact modifier mask required.
func (b Binding) Mask() Mask { return b.mask }

// Action returns the action id sent on match.
func (b Binding) Action() ActionID { return b.action }

// Normalized returns the canonical human-readable binding string.
func (b Binding) Normalized() string { return b.normalized }

// Table is the ordered binding table.
type Table []Binding

// Match returns the action of the first binding whose key and mask both equal
// the arguments. Masks must match exactly; a held superset does not match.
func (t Table) Match(key evdev.EvCode, mask Mask) (ActionID, bool) {
	for _, b := range t {
		if b.key == key && b.mask == mask {
			return b.action, true
		}
	}
	return 0, false
}
