package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tcgconnect/tcgconnect-go/internal/api/handler"
	"github.com/tcgconnect/tcgconnect-go/internal/api/middleware"
	"github.com/tcgconnect/tcgconnect-go/internal/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Registry    registry.RegistryInterface
	Connections handler.ConnectionCounter
	// WebSocket is mounted at /ws; the transport owns its own upgrade
	WebSocket http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.Registry)
	statsHandler := handler.NewStatsHandler(cfg.Registry, cfg.Connections)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(middleware.CORS)

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/stats", statsHandler.Get).Methods(http.MethodGet)

	// The websocket endpoint skips the logging middleware: its
	// request lives for the whole connection
	if cfg.WebSocket != nil {
		r.Handle("/ws", cfg.WebSocket)
	}

	return r
}
