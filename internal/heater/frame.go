package heater

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

const legacySettingsPrefix = "CURRENT_SETTINGS:"

var errUnrecognisedFrame = errors.New("unrecognised frame")

// parseFrame decodes one inbound message into the fields it updates.
// Settings arrive nested under "settings", status fields at the root.
func parseFrame(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err == nil {
			if nested, ok := obj["settings"].(map[string]any); ok {
				obj = nested
			}
			return normalize(obj), nil
		}
	}
	text := string(trimmed)
	if strings.HasPrefix(text, legacySettingsPrefix) {
		return parseLegacySettings(strings.TrimPrefix(text, legacySettingsPrefix)), nil
	}
	return nil, errUnrecognisedFrame
}

func normalize(obj map[string]any) map[string]any {
	for k, v := range obj {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				obj[k] = i
			} else if f, err := n.Float64(); err == nil {
				obj[k] = f
			}
		}
	}
	return obj
}

// parseLegacySettings reads "k=v,k=v". Values with a dot become floats,
// other numbers ints, anything else stays a string.
func parseLegacySettings(params string) map[string]any {
	out := map[string]any{}
	for _, part := range strings.Split(params, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if strings.Contains(value, ".") {
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				out[key] = f
				continue
			}
		} else if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			out[key] = i
			continue
		}
		out[key] = value
	}
	return out
}

// ErrIncompleteSettings is returned when a setting needed by SET is missing.
var ErrIncompleteSettings = errors.New("settings incomplete")

// setCommand composes "SET:k=v,..." over all settings, as integers.
func setCommand(data map[string]any) (string, error) {
	parts := make([]string, 0, len(numbers))
	var missing []string
	for _, n := range numbers {
		raw, ok := data[n.key]
		if !ok || raw == nil {
			missing = append(missing, n.key)
			continue
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return "", fmt.Errorf("setting %s=%v: %w", n.key, raw, err)
		}
		parts = append(parts, n.key+"="+strconv.FormatInt(int64(clamp(f, n.min, n.max)), 10))
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrIncompleteSettings, strings.Join(missing, ", "))
	}
	return saveCommand + ":" + strings.Join(parts, ","), nil
}
