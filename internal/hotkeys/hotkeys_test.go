package hotkeys

import (
	"reflect"
	"strings"
	"testing"

	"github.com/holoplot/go-evdev"
)

func testGroups() Groups {
	return Groups{
		{Name: "super", Keys: []evdev.EvCode{evdev.EvCode(evdev.KEY_LEFTMETA), evdev.EvCode(evdev.KEY_RIGHTMETA)}},
		{Name: "ctrl", Keys: []evdev.EvCode{evdev.EvCode(evdev.KEY_LEFTCTRL), evdev.EvCode(evdev.KEY_RIGHTCTRL)}},
		{Name: "shift", Keys: []evdev.EvCode{evdev.EvCode(evdev.KEY_LEFTSHIFT), evdev.EvCode(evdev.KEY_RIGHTSHIFT)}},
	}
}

func TestGroupsMaskOf(t *testing.T) {
	groups := testGroups()
	tests := []struct {
		name string
		key  evdev.EvCode
		want Mask
	}{
		{name: "first group owns highest bit", key: evdev.EvCode(evdev.KEY_LEFTMETA), want: 0b100},
		{name: "second key of first group", key: evdev.EvCode(evdev.KEY_RIGHTMETA), want: 0b100},
		{name: "middle group", key: evdev.EvCode(evdev.KEY_RIGHTCTRL), want: 0b010},
		{name: "last group owns bit zero", key: evdev.EvCode(evdev.KEY_LEFTSHIFT), want: 0b001},
		{name: "ordinary key", key: evdev.EvCode(evdev.KEY_A), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := groups.MaskOf(tt.key); got != tt.want {
				t.Fatalf("MaskOf(%s) = %03b, want %03b", KeyName(tt.key), got, tt.want)
			}
		})
	}
}

func TestGroupsMaskOfEmpty(t *testing.T) {
	var groups Groups
	if got := groups.MaskOf(evdev.EvCode(evdev.KEY_LEFTSHIFT)); got != 0 {
		t.Fatalf("MaskOf on empty groups = %b, want 0", got)
	}
}

func TestGroupsLookupAndNames(t *testing.T) {
	groups := testGroups()
	bit, ok := groups.Lookup("CTRL")
	if !ok || bit != 0b010 {
		t.Fatalf("Lookup(CTRL) = (%03b, %v), want (010, true)", bit, ok)
	}
	if _, ok := groups.Lookup("hyper"); ok {
		t.Fatal("Lookup(hyper) found a group")
	}
	got := groups.Names(0b101)
	want := []string{"super", "shift"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Names(101) = %v, want %v", got, want)
	}
	if got := groups.Names(0); got != nil {
		t.Fatalf("Names(0) = %v, want nil", got)
	}
}

func TestGroupsValidate(t *testing.T) {
	tests := []struct {
		name    string
		groups  Groups
		wantErr string
	}{
		{name: "valid", groups: testGroups()},
		{
			name: "key in two groups",
			groups: Groups{
				{Name: "a", Keys: []evdev.EvCode{evdev.EvCode(evdev.KEY_LEFTSHIFT)}},
				{Name: "b", Keys: []evdev.EvCode{evdev.EvCode(evdev.KEY_LEFTSHIFT)}},
			},
			wantErr: "KEY_LEFTSHIFT",
		},
		{
			name: "duplicate name",
			groups: Groups{
				{Name: "Shift", Keys: []evdev.EvCode{evdev.EvCode(evdev.KEY_LEFTSHIFT)}},
				{Name: "shift", Keys: []evdev.EvCode{evdev.EvCode(evdev.KEY_RIGHTSHIFT)}},
			},
			wantErr: "duplicate",
		},
		{
			name:    "empty name",
			groups:  Groups{{Name: " ", Keys: []evdev.EvCode{evdev.EvCode(evdev.KEY_LEFTSHIFT)}}},
			wantErr: "name is required",
		},
		{
			name:    "no keys",
			groups:  Groups{{Name: "shift"}},
			wantErr: "no keys",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.groups.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGroupsValidateTooMany(t *testing.T) {
	groups := make(Groups, MaxGroups+1)
	if err := groups.Validate(); err == nil {
		t.Fatal("Validate() accepted more than MaxGroups groups")
	}
}

func TestTableMatch(t *testing.T) {
	table := Table{
		NewBinding(evdev.EvCode(evdev.KEY_A), 0b10, 7),
		NewBinding(evdev.EvCode(evdev.KEY_A), 0b11, 8),
		NewBinding(evdev.EvCode(evdev.KEY_B), 0, 9),
		NewBinding(evdev.EvCode(evdev.KEY_A), 0b10, 99),
	}
	tests := []struct {
		name      string
		key       evdev.EvCode
		mask      Mask
		want      ActionID
		wantMatch bool
	}{
		{name: "exact match", key: evdev.EvCode(evdev.KEY_A), mask: 0b10, want: 7, wantMatch: true},
		{name: "other mask same key", key: evdev.EvCode(evdev.KEY_A), mask: 0b11, want: 8, wantMatch: true},
		{name: "superset mask does not match", key: evdev.EvCode(evdev.KEY_B), mask: 0b01, wantMatch: false},
		{name: "subset mask does not match", key: evdev.EvCode(evdev.KEY_A), mask: 0b01, wantMatch: false},
		{name: "empty mask", key: evdev.EvCode(evdev.KEY_B), mask: 0, want: 9, wantMatch: true},
		{name: "unbound key", key: evdev.EvCode(evdev.KEY_C), mask: 0b10, wantMatch: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Match(tt.key, tt.mask)
			if ok != tt.wantMatch || got != tt.want {
				t.Fatalf("Match(%s, %b) = (%d, %v), want (%d, %v)",
					KeyName(tt.key), tt.mask, got, ok, tt.want, tt.wantMatch)
			}
		})
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    evdev.EvCode
		wantErr bool
	}{
		{in: "KEY_LEFTSHIFT", want: evdev.EvCode(evdev.KEY_LEFTSHIFT)},
		{in: "leftshift", want: evdev.EvCode(evdev.KEY_LEFTSHIFT)},
		{in: " key_a ", want: evdev.EvCode(evdev.KEY_A)},
		{in: "30", want: evdev.EvCode(evdev.KEY_A)},
		{in: "", wantErr: true},
		{in: "NOT_A_KEY", wantErr: true},
		{in: "70000", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseKey(%q) error = nil, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKey(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseKey(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseBindingSuccess(t *testing.T) {
	groups := testGroups()
	tests := []struct {
		name     string
		chord     string
		wantKey  evdev.EvCode
		wantMask Mask
		wantNorm string
	}{
		{
			name:     "two modifiers",
			chord:     "Super+Shift+a",
			wantKey:  evdev.EvCode(evdev.KEY_A),
			wantMask: 0b101,
			wantNorm: "super+shift+KEY_A",
		},
		{
			name:     "modifier order is normalized",
			chord:     "shift+super+KEY_ENTER",
			wantKey:  evdev.EvCode(evdev.KEY_ENTER),
			wantMask: 0b101,
			wantNorm: "super+shift+KEY_ENTER",
		},
		{
			name:     "repeated modifier",
			chord:     "ctrl+ctrl+b",
			wantKey:  evdev.EvCode(evdev.KEY_B),
			wantMask: 0b010,
			wantNorm: "ctrl+KEY_B",
		},
		{
			name:     "lone modifier tap",
			chord:     "leftmeta",
			wantKey:  evdev.EvCode(evdev.KEY_LEFTMETA),
			wantMask: 0,
			wantNorm: "KEY_LEFTMETA",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBinding(tt.chord, groups, 3)
			if err != nil {
				t.Fatalf("ParseBinding(%q) error = %v", tt.chord, err)
			}
			if b.Key() != tt.wantKey || b.Mask() != tt.wantMask || b.Action() != 3 {
				t.Fatalf("ParseBinding(%q) = key %d mask %03b action %d, want key %d mask %03b action 3",
					tt.chord, b.Key(), b.Mask(), b.Action(), tt.wantKey, tt.wantMask)
			}
			if b.Normalized() != tt.wantNorm {
				t.Fatalf("Normalized() = %q, want %q", b.Normalized(), tt.wantNorm)
			}
		})
	}
}

func TestParseBindingErrors(t *testing.T) {
	groups := testGroups()
	for _, chord := range []string{"", "  ", "hyper+a", "super+", "super+nokey"} {
		t.Run(chord, func(t *testing.T) {
			if _, err := ParseBinding(chord, groups, 0); err == nil {
				t.Fatalf("ParseBinding(%q) error = nil, want error", chord)
			}
		})
	}
}
