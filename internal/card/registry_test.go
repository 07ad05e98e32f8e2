package card

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	require.NoError(t, r.Register(HeaterDescriptor()))
	require.ErrorIs(t, r.Register(HeaterDescriptor()), ErrDuplicateType)
	require.Error(t, r.Register(Descriptor{}))
	require.NoError(t, r.Register(Descriptor{Type: "another-card", Name: "Another"}))

	d, ok := r.Lookup(CardType)
	require.True(t, ok)
	require.Equal(t, "webastoheater-card-editor", d.EditorType)
	require.True(t, d.Configurable)

	_, ok = r.Lookup("missing")
	require.False(t, ok)

	list := r.List()
	require.Len(t, list, 2)
	require.Equal(t, "another-card", list[0].Type)
	require.Equal(t, CardType, list[1].Type)
}

func TestRegistriesAreIndependent(t *testing.T) {
	t.Parallel()
	a, b := NewRegistry(), NewRegistry()
	require.NoError(t, a.Register(HeaterDescriptor()))
	require.NoError(t, b.Register(HeaterDescriptor()))
}
