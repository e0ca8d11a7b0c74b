package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// EventRouter is the single choke point between inbound client events and the
// registry: it validates events against current bindings, mutates the roster,
// and fans the result out to every connection in the affected session.
//
// Processing for one session is serialized by that session's track mutex, so
// the sequence "mutate registry -> snapshot roster -> send" can never observe
// a roster torn by a concurrent join/leave on the same session. Events for
// different sessions proceed in parallel.
type EventRouter struct {
	registry *SessionRegistry
	bindings *ConnectionBindings
	logger   *zap.Logger

	mutex    sync.Mutex
	sessions map[string]*sessionTrack
}

// sessionTrack holds the live connections bound to one session plus the
// per-session chat delivery counter.
type sessionTrack struct {
	mutex     sync.Mutex
	clients   map[string]*Client
	nextOrder int64
	dead      bool
}

func NewEventRouter(registry *SessionRegistry, bindings *ConnectionBindings, logger *zap.Logger) *EventRouter {
	return &EventRouter{
		registry: registry,
		bindings: bindings,
		logger:   logger,
		sessions: make(map[string]*sessionTrack),
	}
}

// Dispatch routes one decoded client event. A non-nil error is a protocol
// error: it is reported to the sender only and never mutates state.
func (r *EventRouter) Dispatch(client *Client, evt *InboundEvent) error {
	switch evt.Event {
	case EventJoin:
		return r.handleJoin(client, evt)
	case EventLeave:
		return r.handleLeave(client)
	case EventChat:
		return r.handleChat(client, evt)
	case EventHandRaise:
		return r.handleHandRaise(client, evt)
	default:
		return ErrUnknownEvent
	}
}

func (r *EventRouter) handleJoin(client *Client, evt *InboundEvent) error {
	if err := validateJoin(evt); err != nil {
		return err
	}

	// one session and one identity per connection: joining a different
	// session, or the same session under a new participantId, first runs the
	// full leave flow on the old membership so no roster entry outlives it.
	if binding, ok := r.bindings.Lookup(client.id); ok &&
		(binding.SessionID != evt.SessionID || binding.ParticipantID != evt.Participant.ParticipantID) {
		r.leave(client, binding)
	}

	track := r.lockTrack(evt.SessionID, true)
	defer track.mutex.Unlock()

	participant := *evt.Participant
	participant.ConnectionID = client.id

	// one connection per participant per session: a rejoin replaces the
	// roster entry and evicts the stale connection.
	for _, existing := range r.registry.ListParticipants(evt.SessionID) {
		if existing.ParticipantID == participant.ParticipantID && existing.ConnectionID != client.id {
			if old, ok := track.clients[existing.ConnectionID]; ok {
				delete(track.clients, existing.ConnectionID)
				r.bindings.Unbind(existing.ConnectionID)
				old.closeSend()
				r.logger.Info("stale connection evicted on rejoin",
					zap.String("session", evt.SessionID),
					zap.String("participant", participant.ParticipantID))
			}
		}
	}

	r.registry.UpsertParticipant(evt.SessionID, participant)
	r.bindings.Bind(client.id, evt.SessionID, participant.ParticipantID)
	track.clients[client.id] = client

	r.logger.Info("participant joined",
		zap.String("session", evt.SessionID),
		zap.String("participant", participant.ParticipantID),
		zap.String("role", participant.Role))

	r.broadcastRoster(track, evt.SessionID)
	return nil
}

func (r *EventRouter) handleLeave(client *Client) error {
	binding, ok := r.bindings.Unbind(client.id)
	if !ok {
		return ErrNotJoined
	}
	r.removeAndNotify(client.id, binding, false)
	return nil
}

// Disconnect handles the transport-level signal that a connection died. Safe
// to call unconditionally; a connection that never joined is a no-op.
func (r *EventRouter) Disconnect(client *Client) {
	binding, ok := r.bindings.Unbind(client.id)
	if !ok {
		return
	}
	r.removeAndNotify(client.id, binding, true)
}

// leave is the explicit-leave flow for a known binding, used when a bound
// connection joins a different session.
func (r *EventRouter) leave(client *Client, binding Binding) {
	r.bindings.Unbind(client.id)
	r.removeAndNotify(client.id, binding, false)
}

func (r *EventRouter) removeAndNotify(connectionID string, binding Binding, byConnection bool) {
	track := r.lockTrack(binding.SessionID, false)
	if track == nil {
		return
	}
	defer track.mutex.Unlock()

	var removed bool
	if byConnection {
		_, removed = r.registry.RemoveByConnection(binding.SessionID, connectionID)
	} else {
		removed = r.registry.RemoveParticipant(binding.SessionID, binding.ParticipantID)
	}
	delete(track.clients, connectionID)

	if removed {
		r.logger.Info("participant left",
			zap.String("session", binding.SessionID),
			zap.String("participant", binding.ParticipantID),
			zap.Bool("disconnect", byConnection))
		r.broadcastRoster(track, binding.SessionID)
	}
	r.dropIfEmptyLocked(binding.SessionID, track)
}

func (r *EventRouter) handleChat(client *Client, evt *InboundEvent) error {
	// payload validation first, membership second; neither rejection writes
	if evt.Message == "" {
		return ErrEmptyMessage
	}
	binding, ok := r.bindings.Lookup(client.id)
	if !ok {
		return ErrNotJoined
	}

	track := r.lockTrack(binding.SessionID, false)
	if track == nil {
		return ErrNotJoined
	}
	defer track.mutex.Unlock()

	track.nextOrder++
	r.broadcast(track, binding.SessionID, mustMarshal(chatMessage{
		Event:         EventNewMessage,
		SessionID:     binding.SessionID,
		From:          binding.ParticipantID,
		Message:       evt.Message,
		DeliveryOrder: track.nextOrder,
	}))
	r.dropIfEmptyLocked(binding.SessionID, track)
	return nil
}

func (r *EventRouter) handleHandRaise(client *Client, evt *InboundEvent) error {
	binding, ok := r.bindings.Lookup(client.id)
	if !ok {
		return ErrNotJoined
	}

	track := r.lockTrack(binding.SessionID, false)
	if track == nil {
		return ErrNotJoined
	}
	defer track.mutex.Unlock()

	r.broadcast(track, binding.SessionID, mustMarshal(handRaised{
		Event:         EventHandRaised,
		SessionID:     binding.SessionID,
		ParticipantID: binding.ParticipantID,
		Raised:        evt.Raised,
	}))
	r.dropIfEmptyLocked(binding.SessionID, track)
	return nil
}

// lockTrack returns the session's track with its mutex held, creating it when
// create is set. Retries if it raced with a concurrent cleanup that dropped
// the track between lookup and lock.
func (r *EventRouter) lockTrack(sessionID string, create bool) *sessionTrack {
	for {
		r.mutex.Lock()
		track, ok := r.sessions[sessionID]
		if !ok {
			if !create {
				r.mutex.Unlock()
				return nil
			}
			track = &sessionTrack{clients: make(map[string]*Client)}
			r.sessions[sessionID] = track
		}
		r.mutex.Unlock()

		track.mutex.Lock()
		if !track.dead {
			return track
		}
		track.mutex.Unlock()
	}
}

// dropIfEmptyLocked removes the track the instant its last connection is
// gone. Caller holds track.mutex.
func (r *EventRouter) dropIfEmptyLocked(sessionID string, track *sessionTrack) {
	if len(track.clients) > 0 {
		return
	}
	r.mutex.Lock()
	if r.sessions[sessionID] == track {
		delete(r.sessions, sessionID)
		track.dead = true
		r.logger.Info("session cleaned up", zap.String("session", sessionID))
	}
	r.mutex.Unlock()
}

func (r *EventRouter) broadcastRoster(track *sessionTrack, sessionID string) {
	r.broadcast(track, sessionID, mustMarshal(rosterUpdate{
		Event:        EventParticipantsUpdated,
		SessionID:    sessionID,
		Participants: r.registry.ListParticipants(sessionID),
	}))
}

// broadcast fans one payload out to every connection in the session. A
// recipient whose buffer is full is treated as disconnected: it is evicted
// and cleaned up, and delivery to the others continues. Caller holds
// track.mutex.
func (r *EventRouter) broadcast(track *sessionTrack, sessionID string, payload []byte) {
	for connectionID, client := range track.clients {
		select {
		case client.send <- payload:
		default:
			delete(track.clients, connectionID)
			r.bindings.Unbind(connectionID)
			r.registry.RemoveByConnection(sessionID, connectionID)
			client.closeSend()
			r.logger.Warn("slow client evicted during broadcast",
				zap.String("session", sessionID),
				zap.String("connection", connectionID))
		}
	}
}
