package event

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holoplot/go-evdev"
)

// Rule matches events of one type. When AnyCode is false the code must match too.
type Rule struct {
	Type    evdev.EvType
	Code    evdev.EvCode
	AnyCode bool
}

// Matches reports whether ev is selected by the rule.
func (r Rule) Matches(ev evdev.InputEvent) bool {
	if ev.Type != r.Type {
		return false
	}
	return r.AnyCode || ev.Code == r.Code
}

func (r Rule) String() string {
	if r.AnyCode {
		return TypeName(r.Type) + "/*"
	}
	return TypeName(r.Type) + "/" + CodeName(r.Type, r.Code)
}

// Filter is the set of events discarded before any other relay processing.
type Filter []Rule

// DefaultFilter drops the MSC_SCAN metadata that pointer and touch devices
// emit alongside their button events.
func DefaultFilter() Filter {
	return Filter{{Type: evdev.EvType(evdev.EV_MSC), Code: evdev.EvCode(evdev.MSC_SCAN)}}
}

// Drops reports whether any rule matches ev.
func (f Filter) Drops(ev evdev.InputEvent) bool {
	for _, rule := range f {
		if rule.Matches(ev) {
			return true
		}
	}
	return false
}

var codeTables = map[evdev.EvType]map[string]evdev.EvCode{
	evdev.EvType(evdev.EV_SYN): evdev.SYNFromString,
	evdev.EvType(evdev.EV_KEY): evdev.KEYFromString,
	evdev.EvType(evdev.EV_REL): evdev.RELFromString,
	evdev.EvType(evdev.EV_ABS): evdev.ABSFromString,
	evdev.EvType(evdev.EV_MSC): evdev.MSCFromString,
}

var codeNames = map[evdev.EvType]map[evdev.EvCode]string{
	evdev.EvType(evdev.EV_SYN): evdev.SYNToString,
	evdev.EvType(evdev.EV_KEY): evdev.KEYToString,
	evdev.EvType(evdev.EV_REL): evdev.RELToString,
	evdev.EvType(evdev.EV_ABS): evdev.ABSToString,
	evdev.EvType(evdev.EV_MSC): evdev.MSCToString,
}

// ParseType resolves "EV_MSC", "msc" or a decimal type number.
func ParseType(s string) (evdev.EvType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return 0, fmt.Errorf("empty event type")
	}
	if n, err := strconv.ParseUint(name, 10, 16); err == nil {
		return evdev.EvType(n), nil
	}
	if !strings.HasPrefix(name, "EV_") {
		name = "EV_" + name
	}
	t, ok := evdev.EVFromString[name]
	if !ok {
		return 0, fmt.Errorf("unknown event type %q", s)
	}
	return t, nil
}

// ParseCode resolves a code name within type t ("MSC_SCAN", "scan") or a
// decimal code number.
func ParseCode(t evdev.EvType, s string) (evdev.EvCode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return 0, fmt.Errorf("empty event code")
	}
	if n, err := strconv.ParseUint(name, 10, 16); err == nil {
		return evdev.EvCode(n), nil
	}
	table, ok := codeTables[t]
	if !ok {
		return 0, fmt.Errorf("event type %s has no named codes, use a number", TypeName(t))
	}
	if code, ok := table[name]; ok {
		return code, nil
	}
	prefix := strings.TrimPrefix(TypeName(t), "EV_") + "_"
	if code, ok := table[prefix+name]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("unknown %s code %q", TypeName(t), s)
}

// TypeName returns the symbolic name of t, or its number.
func TypeName(t evdev.EvType) string {
	if name, ok := evdev.EVToString[t]; ok {
		return name
	}
	return strconv.Itoa(int(t))
}

// CodeName returns the symbolic name of code within type t, or its number.
func CodeName(t evdev.EvType, code evdev.EvCode) string {
	if names, ok := codeNames[t]; ok {
		if name, ok := names[code]; ok {
			return name
		}
	}
	return strconv.Itoa(int(code))
}
