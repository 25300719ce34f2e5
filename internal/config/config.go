package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"hkd-relayer/internal/event"
	"hkd-relayer/internal/hotkeys"
)

const (
	maxConfigFileBytes int64 = 1 << 20 // 1MB
	defaultTarget            = "hkd"
	defaultLogLevel          = "info"
)

// userHomeDirFn is a test seam for DefaultPath's home directory fallback.
var userHomeDirFn = os.UserHomeDir

var knownTopLevelKeys = []string{"target", "log_level", "modifiers", "bindings", "drop"}

// Config is the relayer's static configuration. It is read once at startup.
type Config struct {
	// Target is the command name of the process that receives notifications.
	Target   string `yaml:"target" json:"target"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	// Modifiers lists the modifier groups. The first group owns the highest
	// mask bit and the last group owns bit 0.
	Modifiers []ModifierGroup `yaml:"modifiers" json:"modifiers"`
	Bindings  []Binding       `yaml:"bindings" json:"bindings"`
	// Drop lists events discarded before any processing. When the key is
	// absent MSC_SCAN events are dropped; an explicit empty list drops nothing.
	Drop []DropRule `yaml:"drop" json:"drop"`
}

// ModifierGroup is a named set of interchangeable modifier keys.
type ModifierGroup struct {
	Name string   `yaml:"name" json:"name"`
	Keys []string `yaml:"keys" json:"keys"`
}

// Binding maps a chord such as "super+shift+a" to an action id. When Action
// is nil the binding's position in the list is sent.
type Binding struct {
	Hotkey string `yaml:"hotkey" json:"hotkey"`
	Action *int32 `yaml:"action,omitempty" json:"action,omitempty"`
}

// DropRule selects events by type and, optionally, code.
type DropRule struct {
	Type string `yaml:"type" json:"type"`
	Code string `yaml:"code,omitempty" json:"code,omitempty"`
}

// Compiled holds the lookup tables built from a Config.
type Compiled struct {
	Groups   hotkeys.Groups
	Bindings hotkeys.Table
	Filter   event.Filter
}

// DefaultConfig returns the standard four modifier groups, no bindings and
// the MSC_SCAN drop rule.
func DefaultConfig() Config {
	return Config{
		Target:   defaultTarget,
		LogLevel: defaultLogLevel,
		Modifiers: []ModifierGroup{
			{Name: "super", Keys: []string{"KEY_LEFTMETA", "KEY_RIGHTMETA"}},
			{Name: "alt", Keys: []string{"KEY_LEFTALT", "KEY_RIGHTALT"}},
			{Name: "ctrl", Keys: []string{"KEY_LEFTCTRL", "KEY_RIGHTCTRL"}},
			{Name: "shift", Keys: []string{"KEY_LEFTSHIFT", "KEY_RIGHTSHIFT"}},
		},
		Bindings: []Binding{},
		Drop:     []DropRule{{Type: "EV_MSC", Code: "MSC_SCAN"}},
	}
}

// DefaultPath resolves the config file path under XDG_CONFIG_HOME, falling
// back to ~/.config, and then to os.TempDir() if the home directory cannot
// be resolved.
func DefaultPath() string {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := userHomeDirFn()
		if err != nil {
			slog.Warn("[WARN-CONFIG] using temp dir as config path fallback", "error", err)
			base = os.TempDir()
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "hkd", "relayer.yaml")
}

// Load reads the config file. If the file does not exist, defaults are
// returned. The result is validated by compiling it once.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, errors.New("config path required")
	}

	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("[DEBUG-CONFIG] config file not found, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, err
	}
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}

	rawMap, metadataErr := parseRawConfigMetadata(raw)
	if metadataErr != nil {
		slog.Warn("[WARN-CONFIG] failed to parse config metadata", "error", metadataErr)
	} else {
		warnUnknownFields(rawMap)
	}

	if err := applyDefaultsAndValidate(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaultsAndValidate fills missing defaults and validates cfg in place.
// MUTATES: cfg is directly modified.
func applyDefaultsAndValidate(cfg *Config) error {
	cfg.Target = strings.TrimSpace(cfg.Target)
	if cfg.Target == "" {
		cfg.Target = defaultTarget
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.Bindings == nil {
		cfg.Bindings = []Binding{}
	}
	_, err := cfg.Compile()
	return err
}

// ParseLevel maps "debug", "info", "warn" or "error" to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Compile resolves key names and builds the modifier groups, binding table
// and drop filter.
func (c Config) Compile() (Compiled, error) {
	groups, err := compileGroups(c.Modifiers)
	if err != nil {
		return Compiled{}, err
	}
	bindings, err := compileBindings(c.Bindings, groups)
	if err != nil {
		return Compiled{}, err
	}
	filter, err := compileFilter(c.Drop)
	if err != nil {
		return Compiled{}, err
	}
	return Compiled{Groups: groups, Bindings: bindings, Filter: filter}, nil
}

func compileGroups(in []ModifierGroup) (hotkeys.Groups, error) {
	groups := make(hotkeys.Groups, 0, len(in))
	for i, g := range in {
		group := hotkeys.Group{Name: strings.TrimSpace(g.Name)}
		for _, name := range g.Keys {
			key, err := hotkeys.ParseKey(name)
			if err != nil {
				return nil, fmt.Errorf("modifiers[%d]: %w", i, err)
			}
			group.Keys = append(group.Keys, key)
		}
		groups = append(groups, group)
	}
	if err := groups.Validate(); err != nil {
		return nil, fmt.Errorf("modifiers: %w", err)
	}
	return groups, nil
}

func compileBindings(in []Binding, groups hotkeys.Groups) (hotkeys.Table, error) {
	table := make(hotkeys.Table, 0, len(in))
	type chord struct {
		key  uint16
		mask hotkeys.Mask
	}
	seen := make(map[chord]int, len(in))
	actions := make(map[hotkeys.ActionID]int, len(in))
	for i, b := range in {
		action := hotkeys.ActionID(i)
		if b.Action != nil {
			action = hotkeys.ActionID(*b.Action)
		}
		binding, err := hotkeys.ParseBinding(b.Hotkey, groups, action)
		if err != nil {
			return nil, fmt.Errorf("bindings[%d]: %w", i, err)
		}
		c := chord{key: uint16(binding.Key()), mask: binding.Mask()}
		if prev, dup := seen[c]; dup {
			return nil, fmt.Errorf("bindings[%d]: %s duplicates bindings[%d]", i, binding.Normalized(), prev)
		}
		seen[c] = i
		if prev, dup := actions[action]; dup {
			return nil, fmt.Errorf("bindings[%d]: action %d already used by bindings[%d]", i, action, prev)
		}
		actions[action] = i
		table = append(table, binding)
	}
	return table, nil
}

func compileFilter(in []DropRule) (event.Filter, error) {
	filter := make(event.Filter, 0, len(in))
	for i, r := range in {
		t, err := event.ParseType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("drop[%d]: %w", i, err)
		}
		rule := event.Rule{Type: t, AnyCode: strings.TrimSpace(r.Code) == ""}
		if !rule.AnyCode {
			if rule.Code, err = event.ParseCode(t, r.Code); err != nil {
				return nil, fmt.Errorf("drop[%d]: %w", i, err)
			}
		}
		filter = append(filter, rule)
	}
	return filter, nil
}

func parseRawConfigMetadata(raw []byte) (map[string]any, error) {
	var rawMap map[string]any
	if err := yaml.Unmarshal(raw, &rawMap); err != nil {
		return nil, err
	}
	return rawMap, nil
}

// warnUnknownFields logs top-level keys that yaml.Unmarshal silently ignores.
func warnUnknownFields(rawMap map[string]any) {
	for key := range rawMap {
		if !slices.Contains(knownTopLevelKeys, key) {
			slog.Warn("[WARN-CONFIG] unknown config field ignored", "field", key)
		}
	}
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	limited := io.LimitReader(file, maxBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", maxBytes)
	}
	return raw, nil
}
