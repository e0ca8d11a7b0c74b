package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInbound(t *testing.T) {
	evt, err := parseInbound([]byte(`{"event":"chat-message","sessionId":"algebra-101","message":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, EventChat, evt.Event)
	assert.Equal(t, "hi", evt.Message)
}

func TestParseInboundMalformed(t *testing.T) {
	_, err := parseInbound([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	// valid JSON but no event name
	_, err = parseInbound([]byte(`{"sessionId":"algebra-101"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestValidateJoinRoles(t *testing.T) {
	for _, role := range []string{RoleStudent, RoleTutor, RoleAdmin} {
		evt := &InboundEvent{
			Event:     EventJoin,
			SessionID: "algebra-101",
			Participant: &Participant{
				ParticipantID: "a",
				DisplayName:   "A",
				Role:          role,
			},
		}
		assert.NoError(t, validateJoin(evt), role)
	}
}

func TestParticipantWireShapeOmitsConnectionID(t *testing.T) {
	p := student("a", "conn-secret")
	data := mustMarshal(p)
	assert.NotContains(t, string(data), "conn-secret")
	assert.Contains(t, string(data), "participantId")
}
