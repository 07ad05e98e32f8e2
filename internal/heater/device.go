// Package heater talks to the heater's ESP controller directly and presents
// its data as the same entity catalog the Home Assistant integration
// publishes.
package heater

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/jask/webastocard/internal/card"
)

// sensorSpec binds a device field to a sensor slug.
type sensorSpec struct {
	key  string
	slug string
	name string
	unit string
	icon string
}

var sensors = []sensorSpec{
	{"exhaust_temp", card.SensorExhaustTemp, "Exhaust temperature", "°C", "mdi:thermometer"},
	{"fan_speed", card.SensorFanSpeed, "Fan speed", "%", "mdi:fan"},
	{"fuel_rate_hz", card.SensorFuelRateHz, "Fuel rate", "Hz", "mdi:fuel"},
	{"burn_mode", card.SensorBurnMode, "Burn mode", "", "mdi:tune"},
	{"attempt", card.SensorStartAttempt, "Start attempt", "", "mdi:counter"},
	{"message", card.SensorMessage, "Status", "", "mdi:information-outline"},
	{"wifi_ssid", card.SensorWifiSSID, "Wi-Fi SSID", "", "mdi:wifi-marker"},
	{"wifi_ip", card.SensorWifiIP, "Wi-Fi IP address", "", "mdi:ip-network"},
	{"total_fuel_consumed_liters", card.SensorFuelConsumed, "Fuel consumed", "L", "mdi:fuel"},
	{"fuel_consumption_per_hour", card.SensorFuelPerHour, "Hourly fuel rate", "L/h", "mdi:fuel"},
	{"currentState", card.SensorCurrentStateText, "Current mode", "", "mdi:state-machine"},
}

// currentStateNames maps the numeric currentState field.
var currentStateNames = map[int]string{0: "HIGH", 1: "MID", 2: "LOW"}

type binarySpec struct {
	key  string
	slug string
	name string
	icon string
}

var binarySensors = []binarySpec{
	{"burn", card.BinaryBurning, "Burning", "mdi:fire"},
	{"webasto_fail", card.BinaryFailure, "Failure", "mdi:alert-circle"},
	{"debug_glow_plug_on", card.BinaryGlowPlug, "Glow plug", "mdi:lightbulb-on-outline"},
	{"fuel_pumping_active", card.BinaryFuelPumping, "Fuel pumping", "mdi:pump"},
	{"logging_enabled", card.BinaryLogging, "Logging", "mdi:file-document-outline"},
	{"wifi_status", card.BinaryWifiConnected, "Wi-Fi connected", "mdi:wifi"},
}

// wifiConnected is the wifi_status value of an associated station.
const wifiConnected = 3

// numberSpec is a setting held by the controller.
type numberSpec struct {
	key  string
	slug string
	name string
	min  float64
	max  float64
	step float64
	unit string
}

// numbers is also the field order of the SET command.
var numbers = []numberSpec{
	{"pump_size", card.NumberPumpSize, "Pump size", 10, 100, 1, ""},
	{"heater_target", card.NumberTargetTemp, "Target temperature", 150, 250, 1, "°C"},
	{"heater_min", card.NumberMinTemp, "Minimum temperature", 140, 240, 1, "°C"},
	{"heater_overheat", card.NumberOverheatTemp, "Overheat temperature", 200, 300, 1, "°C"},
	{"heater_warning", card.NumberWarningTemp, "Warning temperature", 180, 280, 1, "°C"},
	{"max_pwm_fan", card.NumberMaxFanPWM, "Max fan PWM", 0, 255, 1, ""},
	{"glow_brightness", card.NumberGlowBrightness, "Glow brightness", 0, 255, 1, ""},
	{"glow_fade_in_duration", card.NumberGlowFadeIn, "Glow fade-in", 0, 60000, 100, "ms"},
	{"glow_fade_out_duration", card.NumberGlowFadeOut, "Glow fade-out", 0, 60000, 100, "ms"},
}

// saveCommand marks the button that composes SET from the stored settings.
const saveCommand = "SET"

type buttonSpec struct {
	slug    string
	name    string
	command string
}

var buttons = []buttonSpec{
	{card.ButtonToggleBurn, "Toggle burner", "ENTER"},
	{card.ButtonModeUp, "Mode up", "UP"},
	{card.ButtonModeDown, "Mode down", "DOWN"},
	{card.ButtonFuelPump, "Prime fuel", "FP"},
	{card.ButtonClearFailure, "Clear failure", "CF"},
	{card.ButtonSaveSettings, "Save settings", saveCommand},
	{card.ButtonResetSettings, "Reset settings", "RESET_SETTINGS"},
	{card.ButtonLoadSettings, "Load settings", "GET_SETTINGS"},
	{card.ButtonResetWifi, "Reset Wi-Fi", "RESET_WIFI"},
	{card.ButtonRebootESP, "Reboot ESP", "REBOOT_ESP"},
	{card.ButtonResetFuel, "Reset fuel consumption", "RESET_FUEL_CONSUMPTION"},
	{card.ButtonLoggingOn, "Enable logging", "LOG_ON"},
	{card.ButtonLoggingOff, "Disable logging", "LOG_OFF"},
}

func findNumber(slug string) (numberSpec, bool) {
	for _, n := range numbers {
		if n.slug == slug {
			return n, true
		}
	}
	return numberSpec{}, false
}

func findButton(slug string) (buttonSpec, bool) {
	for _, b := range buttons {
		if b.slug == slug {
			return b, true
		}
	}
	return buttonSpec{}, false
}

// truthy interprets a device flag the way the firmware's web page does.
func truthy(v any) (on, known bool) {
	switch t := v.(type) {
	case nil:
		return false, false
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "on", "yes":
			return true, true
		}
		return false, true
	default:
		f, err := cast.ToFloat64E(t)
		if err != nil {
			return false, false
		}
		return f != 0, true
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
