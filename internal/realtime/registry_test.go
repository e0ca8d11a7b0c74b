package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func student(participantID, connectionID string) Participant {
	return Participant{
		ParticipantID: participantID,
		DisplayName:   "Student " + participantID,
		AvatarRef:     "https://cdn.educonnect.test/avatars/" + participantID,
		Role:          RoleStudent,
		ConnectionID:  connectionID,
	}
}

func TestUpsertCreatesSessionLazily(t *testing.T) {
	registry := NewSessionRegistry()
	assert.Empty(t, registry.ListParticipants("algebra-101"))

	registry.UpsertParticipant("algebra-101", student("a", "conn-a"))

	roster := registry.ListParticipants("algebra-101")
	require.Len(t, roster, 1)
	assert.Equal(t, "a", roster[0].ParticipantID)
	assert.Equal(t, []string{"algebra-101"}, registry.ActiveSessions())
}

func TestRejoinReplacesNotAccumulates(t *testing.T) {
	registry := NewSessionRegistry()
	registry.UpsertParticipant("algebra-101", student("a", "conn-1"))
	registry.UpsertParticipant("algebra-101", student("b", "conn-2"))
	registry.UpsertParticipant("algebra-101", student("a", "conn-3"))

	roster := registry.ListParticipants("algebra-101")
	require.Len(t, roster, 2)
	assert.Equal(t, "conn-3", roster[0].ConnectionID)
}

func TestRemoveParticipantDropsEmptySession(t *testing.T) {
	registry := NewSessionRegistry()
	registry.UpsertParticipant("algebra-101", student("a", "conn-a"))

	assert.True(t, registry.RemoveParticipant("algebra-101", "a"))
	assert.Empty(t, registry.ListParticipants("algebra-101"))
	assert.Empty(t, registry.ActiveSessions())
}

func TestRemoveParticipantUnknownIsNoop(t *testing.T) {
	registry := NewSessionRegistry()

	assert.False(t, registry.RemoveParticipant("nope", "a"))

	registry.UpsertParticipant("algebra-101", student("a", "conn-a"))
	assert.False(t, registry.RemoveParticipant("algebra-101", "ghost"))
	assert.Len(t, registry.ListParticipants("algebra-101"), 1)
}

func TestRemoveByConnection(t *testing.T) {
	registry := NewSessionRegistry()
	registry.UpsertParticipant("algebra-101", student("a", "conn-a"))
	registry.UpsertParticipant("algebra-101", student("b", "conn-b"))

	removed, ok := registry.RemoveByConnection("algebra-101", "conn-a")
	require.True(t, ok)
	assert.Equal(t, "a", removed.ParticipantID)

	_, ok = registry.RemoveByConnection("algebra-101", "conn-a")
	assert.False(t, ok)

	_, ok = registry.RemoveByConnection("algebra-101", "conn-b")
	require.True(t, ok)
	assert.Empty(t, registry.ActiveSessions())
}

func TestListParticipantsReturnsSnapshot(t *testing.T) {
	registry := NewSessionRegistry()
	registry.UpsertParticipant("algebra-101", student("a", "conn-a"))

	snapshot := registry.ListParticipants("algebra-101")
	registry.RemoveParticipant("algebra-101", "a")

	// the earlier snapshot must not reflect later mutation
	require.Len(t, snapshot, 1)
	assert.Equal(t, "a", snapshot[0].ParticipantID)
}
