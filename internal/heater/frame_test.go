package heater

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			name: "status at root",
			raw:  `{"exhaust_temp": 201.5, "burn": true, "attempt": 1, "message": "Heating"}`,
			want: map[string]any{"exhaust_temp": 201.5, "burn": true, "attempt": int64(1), "message": "Heating"},
		},
		{
			name: "nested settings",
			raw:  `{"settings": {"pump_size": 22, "heater_target": 195}}`,
			want: map[string]any{"pump_size": int64(22), "heater_target": int64(195)},
		},
		{
			name: "legacy settings",
			raw:  "CURRENT_SETTINGS:pump_size=22, heater_target=195,ratio=1.5,mode=eco,broken",
			want: map[string]any{"pump_size": int64(22), "heater_target": int64(195), "ratio": 1.5, "mode": "eco"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseFrame([]byte(tt.raw))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := parseFrame([]byte("hello"))
	require.ErrorIs(t, err, errUnrecognisedFrame)
	_, err = parseFrame([]byte("{not json"))
	require.ErrorIs(t, err, errUnrecognisedFrame)
}

func TestSetCommand(t *testing.T) {
	t.Parallel()
	data := map[string]any{
		"pump_size":              int64(22),
		"heater_target":          195.7,
		"heater_min":             int64(170),
		"heater_overheat":        "250",
		"heater_warning":         int64(230),
		"max_pwm_fan":            int64(300),
		"glow_brightness":        int64(128),
		"glow_fade_in_duration":  int64(1500),
		"glow_fade_out_duration": int64(2000),
	}
	cmd, err := setCommand(data)
	require.NoError(t, err)
	require.Equal(t, "SET:pump_size=22,heater_target=195,heater_min=170,heater_overheat=250,"+
		"heater_warning=230,max_pwm_fan=255,glow_brightness=128,glow_fade_in_duration=1500,glow_fade_out_duration=2000", cmd)

	delete(data, "heater_min")
	delete(data, "glow_brightness")
	_, err = setCommand(data)
	require.ErrorIs(t, err, ErrIncompleteSettings)
	require.Contains(t, err.Error(), "heater_min, glow_brightness")

	data["heater_min"] = "warm"
	data["glow_brightness"] = int64(1)
	_, err = setCommand(data)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrIncompleteSettings)
}
