package realtime

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

// inbound event names sent by clients
const (
	EventJoin      = "join"
	EventLeave     = "leave"
	EventChat      = "chat-message"
	EventHandRaise = "raise-hand"
)

// outbound event names broadcast to sessions
const (
	EventParticipantsUpdated = "participants-updated"
	EventNewMessage          = "new-message"
	EventHandRaised          = "hand-raised"
	EventError               = "error"
)

// participant roles
const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

var (
	ErrNotJoined        = errors.New("connection has not joined a session")
	ErrUnknownEvent     = errors.New("unknown event type")
	ErrInvalidJoin      = errors.New("join requires a session id and a participant descriptor")
	ErrEmptyMessage     = errors.New("chat message must not be empty")
	ErrRateLimited      = errors.New("too many events, slow down")
	ErrMalformedPayload = errors.New("malformed event payload")
)

var validate = validator.New()

// Participant is one user's presence inside one session. ConnectionID is
// per physical connection and never leaves the process.
type Participant struct {
	ParticipantID string `json:"participantId" validate:"required"`
	DisplayName   string `json:"displayName" validate:"required"`
	AvatarRef     string `json:"avatarRef"`
	Role          string `json:"role" validate:"required,oneof=student tutor admin"`
	ConnectionID  string `json:"-"`
}

// InboundEvent is the envelope for every client-sent message.
type InboundEvent struct {
	Event         string       `json:"event"`
	SessionID     string       `json:"sessionId"`
	Participant   *Participant `json:"participant,omitempty"`
	ParticipantID string       `json:"participantId,omitempty"`
	Message       string       `json:"message,omitempty"`
	Raised        bool         `json:"raised,omitempty"`
}

type rosterUpdate struct {
	Event        string        `json:"event"`
	SessionID    string        `json:"sessionId"`
	Participants []Participant `json:"participants"`
}

type chatMessage struct {
	Event         string `json:"event"`
	SessionID     string `json:"sessionId"`
	From          string `json:"from"`
	Message       string `json:"message"`
	DeliveryOrder int64  `json:"deliveryOrder"`
}

type handRaised struct {
	Event         string `json:"event"`
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	Raised        bool   `json:"raised"`
}

type errorEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

func parseInbound(data []byte) (*InboundEvent, error) {
	var evt InboundEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, ErrMalformedPayload
	}
	if evt.Event == "" {
		return nil, ErrMalformedPayload
	}
	return &evt, nil
}

// validateJoin checks the join payload before any state is touched, so a
// rejected join never partially mutates the registry.
func validateJoin(evt *InboundEvent) error {
	if evt.SessionID == "" || evt.Participant == nil {
		return ErrInvalidJoin
	}
	if err := validate.Struct(evt.Participant); err != nil {
		return ErrInvalidJoin
	}
	return nil
}

func mustMarshal(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}
