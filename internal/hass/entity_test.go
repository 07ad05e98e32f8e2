package hass

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntityAccessors(t *testing.T) {
	t.Parallel()
	e := Entity{
		EntityID:   "sensor.webasto_temperatura_vykhlopa",
		State:      "85.3",
		Attributes: map[string]any{"unit_of_measurement": "°C", "friendly_name": "Exhaust", "max": 300},
	}
	require.Equal(t, "sensor", e.Domain())
	require.Equal(t, "°C", e.Unit())
	require.Equal(t, "Exhaust", e.FriendlyName())
	require.Empty(t, e.StringAttr("max"))
	_, ok := e.Attr("min")
	require.False(t, ok)
	require.Equal(t, "button.x", Entity{EntityID: "button.x"}.FriendlyName())
}

func TestCatalogCloneIsIndependent(t *testing.T) {
	t.Parallel()
	c := FromList([]Entity{{EntityID: "a.b", State: "1"}, {State: "dropped"}})
	require.Len(t, c, 1)
	clone := c.Clone()
	clone["a.c"] = Entity{EntityID: "a.c"}
	require.Len(t, c, 1)
}
