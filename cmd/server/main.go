package main

import (
	"flag"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/3bube/EduConnect-sub001/internal/config"
	"github.com/3bube/EduConnect-sub001/internal/handlers"
	"github.com/3bube/EduConnect-sub001/internal/realtime"
	"github.com/3bube/EduConnect-sub001/internal/routers"
	"github.com/3bube/EduConnect-sub001/internal/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	// one hub instance for the process, injected into the transport layer.
	hub := realtime.NewHub(cfg.Realtime, cfg.Server.AllowedOrigins, logger)

	// cors setup
	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "DELETE", "POST", "OPTIONS", "PUT", "PATCH"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
	})

	// setup routes
	mainRouter := mux.NewRouter()

	mainRouter.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.ErrorResponse(w, http.StatusNotFound, "The API endpoint you are trying to reach does not exist. Make sure you are trying out the right one.")
	})
	mainRouter.HandleFunc("/healthz", handlers.HealthHandler).Methods("GET")

	apiRouter := mainRouter.PathPrefix(utils.APIPrefix).Subrouter()
	routers.RegisterLiveRoutes(apiRouter, hub, cfg.Server, logger)

	handler := corsOptions.Handler(mainRouter)

	logger.Info("backend listening", zap.String("address", cfg.Server.Address))
	if err := http.ListenAndServe(cfg.Server.Address, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
