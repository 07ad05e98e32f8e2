package card

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/webastocard/internal/hass"
)

func findRow(t *testing.T, sections []Section, slug string, kind RowKind) Row {
	t.Helper()
	for _, s := range sections {
		for _, r := range s.Rows {
			if r.Slug == slug && r.Kind == kind {
				return r
			}
		}
	}
	t.Fatalf("row %s not found", slug)
	return Row{}
}

func heaterCatalog() hass.Catalog {
	return catalogOf(
		entity("sensor.webasto_sostoianie", "Heating", nil),
		entity("sensor.webasto_temperatura_vykhlopa", "201.26", nil),
		entity("sensor.webasto_skorost_ventiliatora", "63.7", nil),
		entity("binary_sensor.webasto_gorenie_aktivno", "on", nil),
		entity("binary_sensor.webasto_oshibka_webasto", "off", nil),
		entity("binary_sensor.webasto_wi_fi_podkliuchen", "on", nil),
		entity("number.webasto_iarkost_svechi_nakalivaniia", "50", map[string]any{"min": 0, "max": 200, "step": 1}),
		entity("number.webasto_tselevaia_temperatura_nagrevatelia", "195", map[string]any{"min": 150, "max": 250, "step": 1}),
		entity("button.webasto_vkliuchit_vykliuchit", "unknown", nil),
		entity("sensor.webasto_tekushchee_potreblenie_topliva", "1.234", nil),
	)
}

func TestCardSectionsMain(t *testing.T) {
	t.Parallel()
	c := New(testLogger())
	c.Attach(&fakeHost{catalog: heaterCatalog()})

	sections := c.Sections(TabMain)
	require.Len(t, sections, 2)
	require.Equal(t, "201.3°C", findRow(t, sections, SensorExhaustTemp, RowSensor).Value.Text)
	require.Equal(t, "63%", findRow(t, sections, SensorFanSpeed, RowSensor).Value.Text)
	require.Equal(t, Unknown, findRow(t, sections, SensorFuelRateHz, RowSensor).Value.Text)
	require.Equal(t, Display{"no", ToneNegative}, findRow(t, sections, BinaryFailure, RowBinary).Value)

	toggle := findRow(t, sections, ButtonToggleBurn, RowButton)
	require.Equal(t, "Turn off", toggle.Label)
	require.True(t, toggle.Enabled)
	require.False(t, findRow(t, sections, ButtonModeUp, RowButton).Enabled)
	require.Equal(t, ButtonDanger, findRow(t, sections, ButtonClearFailure, RowButton).Style)
}

func TestCardSectionsSettings(t *testing.T) {
	t.Parallel()
	c := New(testLogger())
	c.Attach(&fakeHost{catalog: heaterCatalog()})

	sections := c.Sections(TabSettings)
	glow := findRow(t, sections, NumberGlowBrightness, RowNumber)
	require.Equal(t, "50 (25%)", glow.Value.Text)
	require.True(t, glow.HasNum)
	require.True(t, glow.Percent)
	require.Equal(t, Bounds{Min: 0, Max: 200, Step: 1}, glow.Bounds)

	target := findRow(t, sections, NumberTargetTemp, RowNumber)
	require.Equal(t, "195°C", target.Value.Text)

	pump := findRow(t, sections, NumberPumpSize, RowNumber)
	require.Equal(t, Unknown, pump.Value.Text)
	require.False(t, pump.HasNum)
	require.Equal(t, DefaultBounds, pump.Bounds)
}

func TestCardSectionsFuelAndWifi(t *testing.T) {
	t.Parallel()
	c := New(testLogger())
	c.OnCatalogUpdated(heaterCatalog())

	fuel := c.Sections(TabFuel)
	require.Equal(t, "1.23 L", findRow(t, fuel, SensorFuelConsumed, RowSensor).Value.Text)
	require.False(t, findRow(t, fuel, ButtonResetFuel, RowButton).Enabled)

	wifi := c.Sections(TabWifi)
	require.Equal(t, Display{"active", TonePositive}, findRow(t, wifi, BinaryWifiConnected, RowBinary).Value)
	require.Equal(t, Unknown, findRow(t, wifi, SensorWifiSSID, RowSensor).Value.Text)

	require.Equal(t, c.Sections(TabMain), c.Sections(Tab("bogus")))
}

func TestCardHeaderAndStyle(t *testing.T) {
	t.Parallel()
	c := New(testLogger())
	h := c.Header()
	require.Equal(t, Unknown, h.Message)
	require.False(t, h.Burning)
	require.Equal(t, Display{Unknown, ToneNeutral}, h.Availability)

	c.OnCatalogUpdated(heaterCatalog())
	h = c.Header()
	require.Equal(t, "Heating", h.Message)
	require.True(t, h.Burning)
	require.Equal(t, TonePositive, h.Indicator)
	require.Equal(t, Display{"online", TonePositive}, h.Availability)

	c.SetConfig(map[string]any{"background_color": "#000000", "background_opacity": 0.5})
	require.Equal(t, Style{BackgroundColor: "#000000", BackgroundOpacity: 0.5}, c.Style())
	require.Equal(t, 8, c.Size())
}

func TestSetConfigWarnsWhenIncomplete(t *testing.T) {
	t.Parallel()
	logger, buf := bufferLogger()
	c := New(logger)
	c.SetConfig(map[string]any{})
	require.Contains(t, buf.String(), "neither entity_prefix nor explicit entities configured")

	buf.Reset()
	c.SetConfig(map[string]any{"entity_prefix": "garage", "background_opacity": 7})
	require.NotContains(t, buf.String(), "neither entity_prefix")
	require.Contains(t, buf.String(), "clamped to 1")
}

func TestDetachDisablesButtons(t *testing.T) {
	t.Parallel()
	c := New(testLogger())
	c.Attach(&fakeHost{catalog: heaterCatalog()})
	require.True(t, c.HostAttached())
	c.Detach()
	require.False(t, c.HostAttached())
	require.False(t, findRow(t, c.Sections(TabMain), ButtonToggleBurn, RowButton).Enabled)
	require.Equal(t, "Heating", c.Header().Message)
}
