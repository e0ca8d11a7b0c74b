package routers

import (
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/3bube/EduConnect-sub001/internal/config"
	"github.com/3bube/EduConnect-sub001/internal/handlers"
	"github.com/3bube/EduConnect-sub001/internal/middleware"
	"github.com/3bube/EduConnect-sub001/internal/realtime"
)

// RegisterLiveRoutes mounts the live-class hub and its supervisor endpoints
// on the api subrouter. The websocket endpoint is left outside the HTTP rate
// limiter; inbound events carry their own per-connection limiter.
func RegisterLiveRoutes(apiRouter *mux.Router, hub *realtime.Hub, cfg config.ServerConfig, logger *zap.Logger) {
	hub.Attach(apiRouter)

	restRouter := apiRouter.PathPrefix("/live").Subrouter()
	restRouter.Use(middleware.RateLimitMiddleware(cfg.RequestRate, cfg.RequestBurst, logger))

	restRouter.HandleFunc("/sessions", handlers.ListActiveSessionsHandler(hub)).Methods("GET")
	restRouter.HandleFunc("/sessions/{sessionId}/stats", handlers.GetSessionStatsHandler(hub)).Methods("GET")
}
