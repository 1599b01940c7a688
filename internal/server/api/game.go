package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/handstrike/internal/game"
	"github.com/ayusman/handstrike/internal/target"
)

// Game is the session surface the handlers drive.
type Game interface {
	Snapshot(now time.Time) game.Snapshot
	Toggle(now time.Time) bool
	ManualAction(now time.Time) bool
	Restart(now time.Time)
	SwitchTarget(name string) error
}

// GameHandler serves game state and player controls.
type GameHandler struct {
	game Game
	now  func() time.Time
}

// NewGameHandler creates a new GameHandler for g.
func NewGameHandler(g Game) *GameHandler {
	return &GameHandler{game: g, now: time.Now}
}

type playingResponse struct {
	Playing bool `json:"playing"`
}

type actionResponse struct {
	Fired bool `json:"fired"`
}

type targetRequest struct {
	Target string `json:"target"`
}

type targetsResponse struct {
	Active target.Type   `json:"active"`
	Types  []target.Type `json:"types"`
}

// ServeHTTP routes /api/state and /api/game/{toggle,action,restart,target}.
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/state" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.game.Snapshot(h.now()))
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/game/") {
	case "toggle":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, playingResponse{Playing: h.game.Toggle(h.now())})
	case "action":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, actionResponse{Fired: h.game.ManualAction(h.now())})
	case "restart":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		now := h.now()
		h.game.Restart(now)
		writeJSON(w, http.StatusOK, h.game.Snapshot(now))
	case "target":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, targetsResponse{
				Active: h.game.Snapshot(h.now()).Target,
				Types:  target.Types(),
			})
		case http.MethodPut:
			h.switchTarget(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func (h *GameHandler) switchTarget(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.game.SwitchTarget(req.Target); err != nil {
		if errors.Is(err, target.ErrUnknownType) {
			writeError(w, http.StatusBadRequest, "Unknown target type")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to switch target")
		return
	}
	writeJSON(w, http.StatusOK, h.game.Snapshot(h.now()))
}
