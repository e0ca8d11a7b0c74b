package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/3bube/EduConnect-sub001/internal/realtime"
	"github.com/3bube/EduConnect-sub001/internal/utils"
)

// GetSessionStatsHandler reports the live roster and per-role counts for one
// session. Supervisors poll this to spot idle sessions.
func GetSessionStatsHandler(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["sessionId"]
		if sessionID == "" {
			utils.ErrorResponse(w, http.StatusBadRequest, "sessionId is required")
			return
		}
		utils.JSONResponse(w, http.StatusOK, hub.SessionStats(sessionID))
	}
}

// ListActiveSessionsHandler lists ids of sessions with at least one
// connected participant.
func ListActiveSessionsHandler(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSONResponse(w, http.StatusOK, map[string]interface{}{
			"sessions": hub.ActiveSessions(),
		})
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
