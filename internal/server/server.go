// Package server provides the HTTP server for the game UI.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/handstrike/internal/capture"
	"github.com/ayusman/handstrike/internal/game"
	"github.com/ayusman/handstrike/internal/server/api"
	"github.com/ayusman/handstrike/internal/store"
)

// Game is the session the server exposes.
type Game interface {
	api.Game
	Frame(now time.Time) game.Snapshot
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Game      Game
	Preview   *capture.Latest
	Metrics   http.Handler

	// Settings are validated against Base before they are stored.
	Base       game.Config
	OnSettings func(map[string]string)

	// FrameRate of the /ws/game broadcast. Zero means DefaultFrameRate.
	FrameRate int
	// PreviewRate caps /api/stream. Zero means DefaultPreviewRate.
	PreviewRate int
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	socket *GameSocket
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Game != nil {
		gameHandler := api.NewGameHandler(s.config.Game)
		s.mux.Handle("/api/state", gameHandler)
		s.mux.Handle("/api/game/", gameHandler)

		s.socket = NewGameSocket(s.config.Game, s.config.FrameRate)
		s.mux.Handle("/ws/game", s.socket)
	}

	if s.config.Store != nil {
		rounds := api.NewRoundsHandler(s.config.Store)
		s.mux.Handle("/api/rounds", rounds)
		s.mux.Handle("/api/rounds/", rounds)
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Store, s.config.Base, s.config.OnSettings))
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview, s.config.PreviewRate))
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close stops the game broadcast and disconnects its clients.
func (s *Server) Close() {
	if s.socket != nil {
		s.socket.Close()
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
