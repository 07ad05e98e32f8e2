package card

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/jask/webastocard/internal/hass"
)

// Unknown is shown for absent entities and values without a usable state.
const Unknown = "unknown"

// Tone is the style tag attached to a display value.
type Tone string

const (
	ToneNeutral  Tone = "neutral"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
)

// Display is a formatted value.
type Display struct {
	Text string
	Tone Tone
}

// sensorDecimals holds the fixed precision per sensor slug; -1 truncates to
// an integer.
var sensorDecimals = map[string]int{
	SensorExhaustTemp:  1,
	SensorFuelRateHz:   2,
	SensorFuelConsumed: 2,
	SensorFuelPerHour:  2,
	SensorFanSpeed:     -1,
}

// percentSlugs are numbers whose display carries value/max as a percentage.
var percentSlugs = map[string]bool{
	NumberMaxFanPWM:      true,
	NumberGlowBrightness: true,
}

func hasValue(state string) bool {
	switch strings.TrimSpace(state) {
	case "", hass.StateUnknown, hass.StateUnavailable:
		return false
	}
	return true
}

func parseNumber(state string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(state), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatSensor renders a sensor state for its slug.
func FormatSensor(slug string, r Resolved) string {
	if !r.Present() || !hasValue(r.Entity.State) {
		return Unknown
	}
	state := r.Entity.State
	decimals, numeric := sensorDecimals[slug]
	f, ok := parseNumber(state)
	switch {
	case numeric && !ok:
		return Unknown
	case !ok:
		return state
	case !numeric:
		return state
	case decimals < 0:
		return strconv.FormatFloat(math.Trunc(f), 'f', 0, 64)
	default:
		return strconv.FormatFloat(f, 'f', decimals, 64)
	}
}

// BinaryMode selects the label pair of a binary sensor.
type BinaryMode int

const (
	BinaryActive BinaryMode = iota
	BinaryYesNo
	BinaryEnabled
	BinaryOnline
)

func (m BinaryMode) labels() (on, off string) {
	switch m {
	case BinaryYesNo:
		return "yes", "no"
	case BinaryEnabled:
		return "enabled", "disabled"
	case BinaryOnline:
		return "online", "offline"
	default:
		return "active", "inactive"
	}
}

// FormatBinary renders a binary sensor. "on" is positive, "off" negative,
// anything else unknown.
func FormatBinary(r Resolved, mode BinaryMode) Display {
	on, off := mode.labels()
	switch r.State() {
	case hass.StateOn:
		return Display{Text: on, Tone: TonePositive}
	case hass.StateOff:
		return Display{Text: off, Tone: ToneNegative}
	default:
		return Display{Text: Unknown, Tone: ToneNeutral}
	}
}

// Bounds are slider limits read from a number entity.
type Bounds struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultBounds apply to absent number entities.
var DefaultBounds = Bounds{Min: 0, Max: 100, Step: 1}

func numberAttr(e *hass.Entity, key string, fallback float64) float64 {
	if e == nil {
		return fallback
	}
	raw, ok := e.Attr(key)
	if !ok || raw == nil {
		return fallback
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return fallback
	}
	return f
}

// NumberBounds returns min, max and step for a number entry.
func NumberBounds(r Resolved) Bounds {
	b := Bounds{
		Min:  numberAttr(r.Entity, "min", DefaultBounds.Min),
		Max:  numberAttr(r.Entity, "max", DefaultBounds.Max),
		Step: numberAttr(r.Entity, "step", DefaultBounds.Step),
	}
	if b.Step <= 0 {
		b.Step = DefaultBounds.Step
	}
	return b
}

// NumberValue returns the numeric state of a number entry.
func NumberValue(r Resolved) (float64, bool) {
	if !r.Present() || !hasValue(r.Entity.State) {
		return 0, false
	}
	return parseNumber(r.Entity.State)
}

// Percent returns round(value/max*100), or false when max is not positive.
func Percent(value, maxValue float64) (int, bool) {
	if maxValue <= 0 {
		return 0, false
	}
	return int(math.Round(value / maxValue * 100)), true
}

// FormatNumber renders "{value}{unit}", with "(p%)" for the fan PWM and glow
// brightness settings.
func FormatNumber(slug string, r Resolved, unit string) string {
	v, ok := NumberValue(r)
	if !ok {
		return Unknown
	}
	text := strconv.FormatFloat(v, 'f', -1, 64) + unit
	if percentSlugs[slug] {
		if p, ok := Percent(v, NumberBounds(r).Max); ok {
			text += " (" + strconv.Itoa(p) + "%)"
		}
	}
	return text
}

// ButtonEnabled reports whether a press can be dispatched.
func ButtonEnabled(r Resolved, hostAttached bool) bool {
	return r.Present() && hostAttached
}
