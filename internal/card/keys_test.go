package card

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugLists(t *testing.T) {
	t.Parallel()
	require.Len(t, Slugs(KindSensor), 11)
	require.Len(t, Slugs(KindBinarySensor), 6)
	require.Len(t, Slugs(KindNumber), 9)
	require.Len(t, Slugs(KindButton), 13)
	require.Nil(t, Slugs(Kind("light")))
	require.Equal(t, 40, ExpectedEntries())
}

func TestSlugsReturnsCopy(t *testing.T) {
	t.Parallel()
	s := Slugs(KindSensor)
	s[0] = "mutated"
	require.Equal(t, SensorExhaustTemp, Slugs(KindSensor)[0])
}

func TestEntityIDComposition(t *testing.T) {
	t.Parallel()
	require.Equal(t, "sensor_temperatura_vykhlopa", LocalKey(KindSensor, SensorExhaustTemp))
	require.Equal(t, "button.garage_rezhim_vniz", DefaultEntityID(KindButton, "garage", ButtonModeDown))
	require.True(t, IsKnownSlug(KindButton, ButtonFuelPump))
	require.True(t, IsKnownSlug(KindBinarySensor, BinaryFuelPumping))
	require.False(t, IsKnownSlug(KindNumber, ButtonFuelPump))
}
