package card

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg, warnings := ParseConfig(nil)
	require.Empty(t, warnings)
	require.Equal(t, DefaultPrefix, cfg.Prefix())
	require.Equal(t, DefaultBackgroundColor, cfg.BackgroundColor)
	require.InDelta(t, 1.0, cfg.BackgroundOpacity, 1e-9)
	require.True(t, cfg.Incomplete())
}

func TestParseConfigOverridesAndAliases(t *testing.T) {
	t.Parallel()
	cfg, warnings := ParseConfig(map[string]any{
		"entity_prefix":                 "  garage ",
		"sensor_temperatura_vykhlopa":   "sensor.custom_x",
		"warning_temp_entity":           "number.old_warning",
		"save_settings_button":          "button.old_save",
		"button_sokhranit_nastroiki":    "button.new_save",
		"number_not_a_slug":             "number.ignored",
		"binary_sensor_gorenie_aktivno": "",
		"availability_entity":           "binary_sensor.online",
	})
	require.Empty(t, warnings)
	require.Equal(t, "garage", cfg.Prefix())
	require.False(t, cfg.Incomplete())
	require.Equal(t, "binary_sensor.online", cfg.AvailabilityEntity)

	id, ok := cfg.Override("sensor_temperatura_vykhlopa")
	require.True(t, ok)
	require.Equal(t, "sensor.custom_x", id)

	id, ok = cfg.Override(LocalKey(KindNumber, NumberWarningTemp))
	require.True(t, ok)
	require.Equal(t, "number.old_warning", id)

	id, ok = cfg.Override(LocalKey(KindButton, ButtonSaveSettings))
	require.True(t, ok)
	require.Equal(t, "button.new_save", id, "new-style key wins over alias")

	_, ok = cfg.Override(LocalKey(KindBinarySensor, BinaryBurning))
	require.False(t, ok)
	_, ok = cfg.Override("number_not_a_slug")
	require.False(t, ok)
}

func TestParseConfigBackground(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		options  map[string]any
		color    string
		opacity  float64
		warnings int
	}{
		{"valid", map[string]any{"background_color": "#ABCDEF", "background_opacity": 0.4}, "#ABCDEF", 0.4, 0},
		{"short hex", map[string]any{"background_color": "#abc"}, "#abc", 1, 0},
		{"string opacity", map[string]any{"background_opacity": "0.25"}, DefaultBackgroundColor, 0.25, 0},
		{"bad color", map[string]any{"background_color": "red"}, DefaultBackgroundColor, 1, 1},
		{"opacity above", map[string]any{"background_opacity": 3}, DefaultBackgroundColor, 1, 1},
		{"opacity below", map[string]any{"background_opacity": -0.5}, DefaultBackgroundColor, 0, 1},
		{"opacity garbage", map[string]any{"background_opacity": "thick"}, DefaultBackgroundColor, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, warnings := ParseConfig(tt.options)
			require.Equal(t, tt.color, cfg.BackgroundColor)
			require.InDelta(t, tt.opacity, cfg.BackgroundOpacity, 1e-9)
			require.Len(t, warnings, tt.warnings)
		})
	}
}

func TestConfigOptionsRoundTrip(t *testing.T) {
	t.Parallel()
	in := map[string]any{
		"entity_prefix":               "garage",
		"sensor_temperatura_vykhlopa": "sensor.custom_x",
		"background_opacity":          0.5,
	}
	cfg, _ := ParseConfig(in)
	again, warnings := ParseConfig(cfg.Options())
	require.Empty(t, warnings)
	require.Equal(t, cfg, again)
}
