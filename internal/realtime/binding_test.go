package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindAndUnbind(t *testing.T) {
	bindings := NewConnectionBindings()
	bindings.Bind("conn-1", "algebra-101", "a")

	binding, ok := bindings.Unbind("conn-1")
	require.True(t, ok)
	assert.Equal(t, "algebra-101", binding.SessionID)
	assert.Equal(t, "a", binding.ParticipantID)

	// unbind is used exactly once; the second call reports no association
	_, ok = bindings.Unbind("conn-1")
	assert.False(t, ok)
}

func TestBindOverwritesPriorAssociation(t *testing.T) {
	bindings := NewConnectionBindings()
	bindings.Bind("conn-1", "algebra-101", "a")
	bindings.Bind("conn-1", "geometry-202", "a")

	binding, ok := bindings.Lookup("conn-1")
	require.True(t, ok)
	assert.Equal(t, "geometry-202", binding.SessionID)
}

func TestUnbindUnknownConnectionIsSafe(t *testing.T) {
	bindings := NewConnectionBindings()
	_, ok := bindings.Unbind("never-seen")
	assert.False(t, ok)
}
