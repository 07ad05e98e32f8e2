package card

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/webastocard/internal/hass"
)

func TestResolveEmptyCatalogHasEveryEntry(t *testing.T) {
	t.Parallel()
	m := Resolve(DefaultConfig(), hass.Catalog{})
	require.Len(t, m, ExpectedEntries())
	for _, kind := range Kinds {
		for _, slug := range Slugs(kind) {
			r, ok := m[LocalKey(kind, slug)]
			require.True(t, ok, "%s %s", kind, slug)
			require.False(t, r.Present())
			require.Equal(t, DefaultEntityID(kind, DefaultPrefix, slug), r.EntityID)
		}
	}
	require.Len(t, m.Missing(), ExpectedEntries())
}

func TestResolvePrefixedExhaustTemp(t *testing.T) {
	t.Parallel()
	for _, prefix := range []string{"webasto", "garage", "x_1"} {
		cfg, _ := ParseConfig(map[string]any{"entity_prefix": prefix})
		cat := catalogOf(entity("sensor."+prefix+"_temperatura_vykhlopa", "85.333", nil))
		r := Resolve(cfg, cat).Get(KindSensor, SensorExhaustTemp)
		require.True(t, r.Present())
		require.Equal(t, "85.3", FormatSensor(SensorExhaustTemp, r))
	}
}

func TestResolveOverrideIgnoresPrefix(t *testing.T) {
	t.Parallel()
	for _, prefix := range []string{"", "webasto", "garage"} {
		cfg, _ := ParseConfig(map[string]any{
			"entity_prefix":               prefix,
			"sensor_temperatura_vykhlopa": "sensor.custom_x",
		})
		cat := catalogOf(
			entity("sensor.custom_x", "12", nil),
			entity("sensor.garage_temperatura_vykhlopa", "99", nil),
		)
		r := Resolve(cfg, cat).Get(KindSensor, SensorExhaustTemp)
		require.Equal(t, "sensor.custom_x", r.EntityID)
		require.Equal(t, "12", r.State())
	}
}

func TestResolveAvailability(t *testing.T) {
	t.Parallel()
	cfg, _ := ParseConfig(map[string]any{"entity_prefix": "garage"})
	m := Resolve(cfg, catalogOf(entity("binary_sensor.garage_wi_fi_podkliuchen", "on", nil)))
	require.Equal(t, "binary_sensor.garage_wi_fi_podkliuchen", m.Availability().EntityID)
	require.True(t, m.Availability().Present())

	cfg, _ = ParseConfig(map[string]any{"availability_entity": "binary_sensor.ping"})
	m = Resolve(cfg, catalogOf(entity("binary_sensor.ping", "off", nil)))
	require.Equal(t, "off", m.Availability().State())
}

func TestResolveIsIdempotent(t *testing.T) {
	t.Parallel()
	cfg, _ := ParseConfig(map[string]any{"entity_prefix": "garage"})
	cat := catalogOf(
		entity("sensor.garage_skorost_ventiliatora", "40.9", nil),
		entity("number.garage_razmer_nasosa", "22", map[string]any{"min": 10, "max": 100}),
	)
	first := Resolve(cfg, cat)
	second := Resolve(cfg, cat)
	require.Equal(t, first, second)
	require.Len(t, second, ExpectedEntries())
}

func TestResolveDropsStaleEntities(t *testing.T) {
	t.Parallel()
	c := New(testLogger())
	c.SetConfig(map[string]any{"entity_prefix": "garage"})
	c.OnCatalogUpdated(catalogOf(entity("sensor.garage_sostoianie", "Idle", nil)))
	require.True(t, c.Entities().Get(KindSensor, SensorMessage).Present())

	c.OnCatalogUpdated(hass.Catalog{})
	require.False(t, c.Entities().Get(KindSensor, SensorMessage).Present())
	require.Len(t, c.Entities(), ExpectedEntries())
}

func TestMappingGetUnknownSlug(t *testing.T) {
	t.Parallel()
	r := Resolve(DefaultConfig(), nil).Get(KindSensor, "nope")
	require.False(t, r.Present())
	require.Empty(t, r.EntityID)
}
