package card

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTabStateTransitions(t *testing.T) {
	t.Parallel()
	var s TabState
	require.Equal(t, TabMain, s.Active())
	s.Select(TabFuel)
	require.Equal(t, TabFuel, s.Active())
	require.Equal(t, TabMain, s.Next())
	require.Equal(t, TabFuel, s.Prev())
	require.Equal(t, TabWifi, s.Prev())
}

func TestTabTitles(t *testing.T) {
	t.Parallel()
	require.Equal(t, []Tab{TabMain, TabSettings, TabWifi, TabFuel}, Tabs())
	require.Equal(t, "Wi-Fi", TabWifi.Title())
	require.False(t, Tab("graphs").Valid())
	require.True(t, TabSettings.Valid())
}

func TestSelectTabChangesNothingElse(t *testing.T) {
	t.Parallel()
	host := &fakeHost{catalog: catalogOf(entity("sensor.webasto_sostoianie", "Idle", nil))}
	c := New(testLogger())
	c.Attach(host)
	before := c.Entities()
	cfg := c.Config()

	c.SelectTab(TabFuel)

	require.Equal(t, TabFuel, c.ActiveTab())
	require.Equal(t, before, c.Entities())
	require.Equal(t, cfg, c.Config())
	require.Empty(t, host.Calls())
}
