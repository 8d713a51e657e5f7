package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CurrentVersion is the current config schema version
const CurrentVersion = 1

// Migration represents a config migration function
type Migration struct {
	FromVersion int
	ToVersion   int
	Migrate     func(data map[string]interface{}) (map[string]interface{}, error)
}

// migrations is the list of migrations in order
var migrations = []Migration{
	// Migration 0 -> 1: import the flat snake_case layout of older releases
	{
		FromVersion: 0,
		ToVersion:   1,
		Migrate:     migrateLegacy,
	},
}

// legacyCtrlFields are old top-level fields holding a single character
// that is bound with ctrl
var legacyCtrlFields = map[string]string{
	"new_sticky_note_char_ctrl":    "newStickyNote",
	"new_note_char_ctrl":           "newNote",
	"new_todo_char_ctrl":           "newTodoItem",
	"edit_todo_char_ctrl":          "editCurrentItem",
	"remove_sticky_note_char_ctrl": "removeStickyNote",
	"save_state_to_db_char_ctrl":   "saveState",
	"exit_key_char_ctrl":           "exit",
}

// legacyKeyFields are old top-level fields holding a tagged key
var legacyKeyFields = map[string]string{
	"mark_done":   "markDone",
	"remove_todo": "removeItem",
}

func migrateLegacy(data map[string]interface{}) (map[string]interface{}, error) {
	if v, ok := data["highlight_string"]; ok {
		data["highlight"] = v
		delete(data, "highlight_string")
	}

	keys, _ := data["keys"].(map[string]interface{})
	setKey := func(cmd, binding string) {
		if keys == nil {
			keys = map[string]interface{}{}
		}
		keys[cmd] = binding
	}
	for field, cmd := range legacyCtrlFields {
		raw, ok := data[field]
		if !ok {
			continue
		}
		c, ok := raw.(string)
		if !ok || c == "" {
			return nil, fmt.Errorf("%s: expected a character, got %v", field, raw)
		}
		setKey(cmd, "ctrl+"+c)
		delete(data, field)
	}
	for field, cmd := range legacyKeyFields {
		raw, ok := data[field]
		if !ok {
			continue
		}
		binding, err := legacyKey(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		setKey(cmd, binding)
		delete(data, field)
	}
	if keys != nil {
		data["keys"] = keys
	}

	if old, ok := data["app_colors"].(map[string]interface{}); ok {
		colors := map[string]interface{}{}
		for slot, v := range old {
			style, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			converted := map[string]interface{}{}
			for _, f := range []string{"fg", "bg"} {
				if c, ok := style[f]; ok {
					s, err := legacyColor(c)
					if err != nil {
						return nil, fmt.Errorf("app_colors.%s.%s: %w", slot, f, err)
					}
					converted[f] = s
				}
			}
			if m, ok := style["modifier"].(string); ok {
				converted["modifier"] = m
			}
			colors[slot] = converted
		}
		data["colors"] = colors
		delete(data, "app_colors")
	}

	data["version"] = 1
	return data, nil
}

// legacyKey converts the old tagged key encoding: "Backspace", "Esc",
// {"Char": "x"}, {"Ctrl": "h"}, {"Alt": "x"} or {"F": 5}.
func legacyKey(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		switch v {
		case "PageUp":
			return "page_up", nil
		case "PageDown":
			return "page_down", nil
		}
		return strings.ToLower(v), nil
	case map[string]interface{}:
		if len(v) != 1 {
			return "", fmt.Errorf("malformed key %v", v)
		}
		for tag, val := range v {
			switch tag {
			case "Char":
				if s, ok := val.(string); ok {
					return s, nil
				}
			case "Ctrl":
				if s, ok := val.(string); ok {
					return "ctrl+" + s, nil
				}
			case "Alt":
				if s, ok := val.(string); ok {
					return "alt+" + s, nil
				}
			case "F":
				if n, ok := val.(float64); ok {
					return fmt.Sprintf("f%d", int(n)), nil
				}
			}
			return "", fmt.Errorf("malformed key %s: %v", tag, val)
		}
	}
	return "", fmt.Errorf("malformed key %v", raw)
}

// legacyColor converts the old tagged colour encoding: "Yellow",
// {"Indexed": 42} or {"Rgb": [r, g, b]}.
func legacyColor(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case map[string]interface{}:
		if n, ok := v["Indexed"].(float64); ok {
			return fmt.Sprintf("%d", int(n)), nil
		}
		if rgb, ok := v["Rgb"].([]interface{}); ok && len(rgb) == 3 {
			var c [3]int
			for i, x := range rgb {
				f, ok := x.(float64)
				if !ok {
					return "", fmt.Errorf("malformed rgb %v", rgb)
				}
				c[i] = int(f)
			}
			return fmt.Sprintf("rgb(%d,%d,%d)", c[0], c[1], c[2]), nil
		}
	}
	return "", fmt.Errorf("malformed colour %v", raw)
}

// ParseVersionedConfig parses config data with version migration support
func ParseVersionedConfig(data []byte) (*Config, error) {
	// First, parse as raw JSON to get version
	var rawConfig map[string]interface{}
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Detect version (0 if not present = legacy config)
	version := 0
	if v, ok := rawConfig["version"].(float64); ok {
		version = int(v)
	}

	// Check for future version
	if version > CurrentVersion {
		return nil, fmt.Errorf("config version %d is newer than supported version %d", version, CurrentVersion)
	}

	// Apply migrations if needed
	if version < CurrentVersion {
		var err error
		rawConfig, err = ApplyMigrations(rawConfig, version)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate config: %w", err)
		}
	}

	// Re-marshal and unmarshal to get proper types
	migratedData, err := json.Marshal(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal migrated config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(migratedData, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// ApplyMigrations applies all migrations from the given version to CurrentVersion
func ApplyMigrations(data map[string]interface{}, fromVersion int) (map[string]interface{}, error) {
	for _, migration := range migrations {
		if migration.FromVersion == fromVersion {
			var err error
			data, err = migration.Migrate(data)
			if err != nil {
				return nil, fmt.Errorf("migration %d -> %d failed: %w",
					migration.FromVersion, migration.ToVersion, err)
			}
			fromVersion = migration.ToVersion
		}
	}

	if fromVersion < CurrentVersion {
		return nil, fmt.Errorf("no migration path from version %d to %d", fromVersion, CurrentVersion)
	}

	return data, nil
}

// MarshalVersionedConfig serializes a config as a flat document with a
// top-level version field
func MarshalVersionedConfig(cfg *Config) ([]byte, error) {
	cfgData, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	var cfgMap map[string]interface{}
	if err := json.Unmarshal(cfgData, &cfgMap); err != nil {
		return nil, err
	}
	cfgMap["version"] = CurrentVersion

	// encoding/json sorts map keys, so version lands among the fields
	return json.MarshalIndent(cfgMap, "", "  ")
}
