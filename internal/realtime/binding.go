package realtime

import "sync"

// Binding is the last known session membership of one connection.
type Binding struct {
	SessionID     string
	ParticipantID string
}

// ConnectionBindings tracks which session and participant each live
// connection is bound to, so an abrupt disconnect can be resolved back to a
// roster removal without the client telling us anything.
type ConnectionBindings struct {
	mutex  sync.Mutex
	byConn map[string]Binding
}

func NewConnectionBindings() *ConnectionBindings {
	return &ConnectionBindings{
		byConn: make(map[string]Binding),
	}
}

// Bind records the association, overwriting any prior one. A connection is in
// at most one session at a time.
func (b *ConnectionBindings) Bind(connectionID, sessionID, participantID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.byConn[connectionID] = Binding{SessionID: sessionID, ParticipantID: participantID}
}

// Unbind clears the association and returns the last known pair. Safe to call
// unconditionally: unknown connections report ok=false instead of failing.
func (b *ConnectionBindings) Unbind(connectionID string) (Binding, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	binding, ok := b.byConn[connectionID]
	if ok {
		delete(b.byConn, connectionID)
	}
	return binding, ok
}

// Lookup reads the current association without clearing it.
func (b *ConnectionBindings) Lookup(connectionID string) (Binding, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	binding, ok := b.byConn[connectionID]
	return binding, ok
}
