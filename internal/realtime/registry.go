package realtime

import (
	"sort"
	"sync"
)

// SessionRegistry owns the authoritative sessionId -> roster mapping. Rosters
// are keyed by participantId so a rejoin replaces instead of accumulating.
// All mutation goes through the EventRouter; nothing else writes here.
type SessionRegistry struct {
	mutex    sync.RWMutex
	sessions map[string]map[string]Participant
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]map[string]Participant),
	}
}

// UpsertParticipant inserts or replaces the roster entry for the participant,
// creating the session lazily on first join. Idempotent under identical input.
func (r *SessionRegistry) UpsertParticipant(sessionID string, p Participant) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	roster, exists := r.sessions[sessionID]
	if !exists {
		roster = make(map[string]Participant)
		r.sessions[sessionID] = roster
	}
	roster[p.ParticipantID] = p
}

// RemoveParticipant removes the entry if present; unknown ids are a no-op.
// The session entry itself is dropped the moment its roster empties.
func (r *SessionRegistry) RemoveParticipant(sessionID, participantID string) (removed bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	roster, exists := r.sessions[sessionID]
	if !exists {
		return false
	}
	if _, ok := roster[participantID]; !ok {
		return false
	}

	delete(roster, participantID)
	if len(roster) == 0 {
		delete(r.sessions, sessionID)
	}
	return true
}

// RemoveByConnection removes whichever participant currently holds the
// connection. Used on ungraceful disconnects where the client never sent an
// explicit leave. Returns the removed participant so the caller can log it.
func (r *SessionRegistry) RemoveByConnection(sessionID, connectionID string) (Participant, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	roster, exists := r.sessions[sessionID]
	if !exists {
		return Participant{}, false
	}

	for id, p := range roster {
		if p.ConnectionID == connectionID {
			delete(roster, id)
			if len(roster) == 0 {
				delete(r.sessions, sessionID)
			}
			return p, true
		}
	}
	return Participant{}, false
}

// ListParticipants returns a snapshot copy of the roster, sorted by
// participantId for stable broadcast payloads. Empty slice if the session
// does not exist.
func (r *SessionRegistry) ListParticipants(sessionID string) []Participant {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	roster := r.sessions[sessionID]
	out := make([]Participant, 0, len(roster))
	for _, p := range roster {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}

// ActiveSessions lists ids of sessions that currently have participants.
func (r *SessionRegistry) ActiveSessions() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
