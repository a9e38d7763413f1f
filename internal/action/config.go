package action

import (
	"fmt"
	"strings"
)

// ControllerKey is set on every Config handed to a factory by the definition
// loader; it holds the name of the controller the action belongs to.
const ControllerKey = "controller"

// Config is the free-form payload of an action definition.
type Config map[string]any

// Clone returns a shallow copy.
func (c Config) Clone() Config {
	out := make(Config, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// String returns the trimmed string stored under key.
func (c Config) String(key string) (string, bool) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// RequireString is String but fails when the key is missing or blank.
func (c Config) RequireString(key string) (string, error) {
	s, ok := c.String(key)
	if !ok {
		return "", fmt.Errorf("config %q is required", key)
	}
	return s, nil
}

// Float returns the number stored under key. YAML and JSON decoders produce
// different numeric types, so every integer and float kind is accepted.
func (c Config) Float(key string, fallback float64) (float64, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("config %q must be a number, got %T", key, raw)
	}
}
