package card

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Option names understood by SetConfig.
const (
	OptEntityPrefix       = "entity_prefix"
	OptAvailabilityEntity = "availability_entity"
	OptBackgroundColor    = "background_color"
	OptBackgroundOpacity  = "background_opacity"
)

// Defaults for the card background.
const (
	DefaultBackgroundColor   = "#1f2937"
	DefaultBackgroundOpacity = 1.0
)

// legacyAliases maps option names of the first card revision onto the
// per-entity override keys.
var legacyAliases = map[string]string{
	"warning_temp_entity":   LocalKey(KindNumber, NumberWarningTemp),
	"max_pwm_fan_entity":    LocalKey(KindNumber, NumberMaxFanPWM),
	"save_settings_button":  LocalKey(KindButton, ButtonSaveSettings),
	"reset_settings_button": LocalKey(KindButton, ButtonResetSettings),
	"load_settings_button":  LocalKey(KindButton, ButtonLoadSettings),
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Config is the parsed card configuration. Replace it wholesale; do not
// mutate a Config that has been handed to a Card.
type Config struct {
	EntityPrefix       string
	AvailabilityEntity string
	// Overrides maps a local key ({kind}_{slug}) to an explicit entity id.
	Overrides         map[string]string
	BackgroundColor   string
	BackgroundOpacity float64
}

// DefaultConfig returns the configuration used when no options are set.
func DefaultConfig() Config {
	return Config{
		Overrides:         map[string]string{},
		BackgroundColor:   DefaultBackgroundColor,
		BackgroundOpacity: DefaultBackgroundOpacity,
	}
}

// Prefix returns the effective entity prefix.
func (c Config) Prefix() string {
	if p := strings.TrimSpace(c.EntityPrefix); p != "" {
		return p
	}
	return DefaultPrefix
}

// Override returns the explicit entity id configured for a local key.
func (c Config) Override(localKey string) (string, bool) {
	id, ok := c.Overrides[localKey]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Incomplete reports a configuration with neither a prefix nor any explicit
// entity. Such a card still renders, resolving against the default prefix.
func (c Config) Incomplete() bool {
	return strings.TrimSpace(c.EntityPrefix) == "" && strings.TrimSpace(c.AvailabilityEntity) == "" && len(c.Overrides) == 0
}

// ParseWarning is a non-fatal problem found while parsing options.
type ParseWarning struct {
	Option string
	Reason string
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Option, w.Reason)
}

// ParseConfig builds a Config from raw options. It never fails: bad values
// fall back to defaults and are reported as warnings.
func ParseConfig(options map[string]any) (Config, []ParseWarning) {
	cfg := DefaultConfig()
	var warnings []ParseWarning

	str := func(name string) (string, bool) {
		raw, ok := options[name]
		if !ok || raw == nil {
			return "", false
		}
		s, err := cast.ToStringE(raw)
		if err != nil {
			warnings = append(warnings, ParseWarning{Option: name, Reason: "not a string"})
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	}

	if s, ok := str(OptEntityPrefix); ok {
		cfg.EntityPrefix = s
	}
	if s, ok := str(OptAvailabilityEntity); ok {
		cfg.AvailabilityEntity = s
	}
	if s, ok := str(OptBackgroundColor); ok {
		if hexColor.MatchString(s) {
			cfg.BackgroundColor = s
		} else {
			warnings = append(warnings, ParseWarning{Option: OptBackgroundColor, Reason: fmt.Sprintf("%q is not a hex color", s)})
		}
	}
	if raw, ok := options[OptBackgroundOpacity]; ok && raw != nil {
		op, err := cast.ToFloat64E(raw)
		switch {
		case err != nil:
			warnings = append(warnings, ParseWarning{Option: OptBackgroundOpacity, Reason: "not a number"})
		case op < 0:
			cfg.BackgroundOpacity = 0
			warnings = append(warnings, ParseWarning{Option: OptBackgroundOpacity, Reason: "clamped to 0"})
		case op > 1:
			cfg.BackgroundOpacity = 1
			warnings = append(warnings, ParseWarning{Option: OptBackgroundOpacity, Reason: "clamped to 1"})
		default:
			cfg.BackgroundOpacity = op
		}
	}

	// aliases first so that explicit new-style keys win
	aliases := make([]string, 0, len(legacyAliases))
	for alias := range legacyAliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		if s, ok := str(alias); ok {
			cfg.Overrides[legacyAliases[alias]] = s
		}
	}
	for _, kind := range Kinds {
		for _, slug := range Slugs(kind) {
			key := LocalKey(kind, slug)
			if s, ok := str(key); ok {
				cfg.Overrides[key] = s
			}
		}
	}
	return cfg, warnings
}

// Options renders the configuration back into option form.
func (c Config) Options() map[string]any {
	out := map[string]any{
		OptBackgroundColor:   c.BackgroundColor,
		OptBackgroundOpacity: c.BackgroundOpacity,
	}
	if c.EntityPrefix != "" {
		out[OptEntityPrefix] = c.EntityPrefix
	}
	if c.AvailabilityEntity != "" {
		out[OptAvailabilityEntity] = c.AvailabilityEntity
	}
	for k, v := range c.Overrides {
		out[k] = v
	}
	return out
}
