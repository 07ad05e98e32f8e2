package card

import "github.com/jask/webastocard/internal/hass"

// Kind is the entity domain a slug belongs to.
type Kind string

const (
	KindSensor       Kind = hass.DomainSensor
	KindBinarySensor Kind = hass.DomainBinarySensor
	KindNumber       Kind = hass.DomainNumber
	KindButton       Kind = hass.DomainButton
)

// Kinds lists the monitored kinds in resolution order.
var Kinds = []Kind{KindSensor, KindBinarySensor, KindNumber, KindButton}

// DefaultPrefix is used when the configuration leaves entity_prefix empty.
const DefaultPrefix = "webasto"

// AvailabilityKey is the local key of the availability entry.
const AvailabilityKey = "availability"

// Sensor slugs.
const (
	SensorExhaustTemp      = "temperatura_vykhlopa"
	SensorFanSpeed         = "skorost_ventiliatora"
	SensorFuelRateHz       = "raskhod_topliva_gts"
	SensorBurnMode         = "rezhim_goreniia"
	SensorStartAttempt     = "popytka_zapuska"
	SensorMessage          = "sostoianie"
	SensorWifiSSID         = "ssid_wi_fi"
	SensorWifiIP           = "ip_adres_wi_fi"
	SensorFuelConsumed     = "tekushchee_potreblenie_topliva"
	SensorFuelPerHour      = "raschetnyi_raskhod_za_chas"
	SensorCurrentStateText = "tekushchii_rezhim"
)

// Binary sensor slugs.
const (
	BinaryBurning       = "gorenie_aktivno"
	BinaryFailure       = "oshibka_webasto"
	BinaryGlowPlug      = "svecha_nakalivaniia"
	BinaryFuelPumping   = "prokachka_topliva"
	BinaryLogging       = "logirovanie_vkliucheno"
	BinaryWifiConnected = "wi_fi_podkliuchen"
)

// availabilitySlug is the binary sensor used for availability when no
// availability_entity override is configured.
const availabilitySlug = BinaryWifiConnected

// Number slugs.
const (
	NumberPumpSize       = "razmer_nasosa"
	NumberTargetTemp     = "tselevaia_temperatura_nagrevatelia"
	NumberMinTemp        = "minimalnaia_temperatura_nagrevatelia"
	NumberOverheatTemp   = "temperatura_peregreva"
	NumberWarningTemp    = "temperatura_preduprezhdeniia"
	NumberMaxFanPWM      = "maks_shim_ventiliatora"
	NumberGlowBrightness = "iarkost_svechi_nakalivaniia"
	NumberGlowFadeIn     = "vremia_rozzhiga_svechi"
	NumberGlowFadeOut    = "vremia_zatukhaniia_svechi"
)

// Button slugs.
const (
	ButtonToggleBurn    = "vkliuchit_vykliuchit"
	ButtonModeUp        = "rezhim_vverkh"
	ButtonModeDown      = "rezhim_vniz"
	ButtonFuelPump      = "prokachka_topliva"
	ButtonClearFailure  = "sbrosit_oshibku"
	ButtonSaveSettings  = "sokhranit_nastroiki"
	ButtonResetSettings = "sbrosit_nastroiki"
	ButtonLoadSettings  = "zagruzit_nastroiki"
	ButtonResetWifi     = "sbrosit_wi_fi"
	ButtonRebootESP     = "perezagruzit_esp"
	ButtonResetFuel     = "sbrosit_potreblenie_topliva"
	ButtonLoggingOn     = "vkliuchit_logirovanie"
	ButtonLoggingOff    = "vykliuchit_logirovanie"
)

var sensorSlugs = []string{
	SensorExhaustTemp,
	SensorFanSpeed,
	SensorFuelRateHz,
	SensorBurnMode,
	SensorStartAttempt,
	SensorMessage,
	SensorWifiSSID,
	SensorWifiIP,
	SensorFuelConsumed,
	SensorFuelPerHour,
	SensorCurrentStateText,
}

var binarySensorSlugs = []string{
	BinaryBurning,
	BinaryFailure,
	BinaryGlowPlug,
	BinaryFuelPumping,
	BinaryLogging,
	BinaryWifiConnected,
}

var numberSlugs = []string{
	NumberPumpSize,
	NumberTargetTemp,
	NumberMinTemp,
	NumberOverheatTemp,
	NumberWarningTemp,
	NumberMaxFanPWM,
	NumberGlowBrightness,
	NumberGlowFadeIn,
	NumberGlowFadeOut,
}

var buttonSlugs = []string{
	ButtonToggleBurn,
	ButtonModeUp,
	ButtonModeDown,
	ButtonFuelPump,
	ButtonClearFailure,
	ButtonSaveSettings,
	ButtonResetSettings,
	ButtonLoadSettings,
	ButtonResetWifi,
	ButtonRebootESP,
	ButtonResetFuel,
	ButtonLoggingOn,
	ButtonLoggingOff,
}

// Slugs returns a copy of the fixed slug list for kind.
func Slugs(kind Kind) []string {
	var src []string
	switch kind {
	case KindSensor:
		src = sensorSlugs
	case KindBinarySensor:
		src = binarySensorSlugs
	case KindNumber:
		src = numberSlugs
	case KindButton:
		src = buttonSlugs
	}
	return append([]string(nil), src...)
}

// LocalKey returns the mapping key for a slug: {kind}_{slug}.
func LocalKey(kind Kind, slug string) string {
	return string(kind) + "_" + slug
}

// DefaultEntityID returns {kind}.{prefix}_{slug}.
func DefaultEntityID(kind Kind, prefix, slug string) string {
	return string(kind) + "." + prefix + "_" + slug
}

// IsKnownSlug reports whether slug is in the fixed list for kind.
func IsKnownSlug(kind Kind, slug string) bool {
	for _, s := range Slugs(kind) {
		if s == slug {
			return true
		}
	}
	return false
}

// ExpectedEntries is the size of every resolved mapping.
func ExpectedEntries() int {
	return len(sensorSlugs) + len(binarySensorSlugs) + len(numberSlugs) + len(buttonSlugs) + 1
}
