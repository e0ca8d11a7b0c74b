package realtime

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/3bube/EduConnect-sub001/internal/config"
	"github.com/3bube/EduConnect-sub001/internal/utils"
)

// Hub is the process-wide live-class coordinator: one explicitly-constructed
// instance owning the session registry, the connection bindings, and the
// event router. The rest of the application only ever calls Attach, plus the
// read-only supervisor accessors below.
type Hub struct {
	registry *SessionRegistry
	bindings *ConnectionBindings
	router   *EventRouter
	cfg      config.RealtimeConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewHub(cfg config.RealtimeConfig, allowedOrigins []string, logger *zap.Logger) *Hub {
	registry := NewSessionRegistry()
	bindings := NewConnectionBindings()

	h := &Hub{
		registry: registry,
		bindings: bindings,
		router:   NewEventRouter(registry, bindings, logger),
		cfg:      cfg,
		logger:   logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// Attach registers the hub's websocket endpoint on the application router.
// This is the hub's single lifecycle method; there is no teardown because the
// hub holds nothing but memory.
func (h *Hub) Attach(router *mux.Router) {
	router.HandleFunc(utils.LiveWebSocketPath, h.serveWebSocket)
	h.logger.Info("live-class hub attached", zap.String("path", utils.LiveWebSocketPath))
}

func (h *Hub) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:      uuid.NewString(),
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, h.cfg.SendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.EventRate), h.cfg.EventBurst),
		logger:  h.logger,
	}

	h.logger.Info("websocket connection established",
		zap.String("connection", client.id),
		zap.String("remote", r.RemoteAddr))

	go client.writePump()
	go client.readPump()
}

// ListParticipants returns a snapshot of the session's roster. Supervisor
// surface; an unknown session yields an empty roster.
func (h *Hub) ListParticipants(sessionID string) []Participant {
	return h.registry.ListParticipants(sessionID)
}

// ActiveSessions lists ids of sessions that currently have participants.
func (h *Hub) ActiveSessions() []string {
	return h.registry.ActiveSessions()
}

// SessionStats summarizes one session's live roster.
type SessionStats struct {
	SessionID         string        `json:"sessionId"`
	Exists            bool          `json:"exists"`
	ActiveConnections int           `json:"activeConnections"`
	Students          int           `json:"students"`
	Tutors            int           `json:"tutors"`
	Admins            int           `json:"admins"`
	Participants      []Participant `json:"participants"`
}

func (h *Hub) SessionStats(sessionID string) SessionStats {
	roster := h.registry.ListParticipants(sessionID)

	stats := SessionStats{
		SessionID:         sessionID,
		Exists:            len(roster) > 0,
		ActiveConnections: len(roster),
		Participants:      roster,
	}
	for _, p := range roster {
		switch p.Role {
		case RoleStudent:
			stats.Students++
		case RoleTutor:
			stats.Tutors++
		case RoleAdmin:
			stats.Admins++
		}
	}
	return stats
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[origin] = true
	}
	return func(r *http.Request) bool {
		return set[r.Header.Get("Origin")]
	}
}
