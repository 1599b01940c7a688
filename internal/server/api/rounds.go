package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/handstrike/internal/store"
	"github.com/ayusman/handstrike/internal/target"
)

const defaultRoundLimit = 20

// RoundsHandler serves round history.
type RoundsHandler struct {
	store *store.Store
}

// NewRoundsHandler creates a new RoundsHandler with the given store.
func NewRoundsHandler(s *store.Store) *RoundsHandler {
	return &RoundsHandler{store: s}
}

type listRoundsResponse struct {
	Rounds []*store.Round `json:"rounds"`
}

// ServeHTTP handles GET /api/rounds, GET /api/rounds/best?target= and
// DELETE /api/rounds/{id}.
func (h *RoundsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/rounds")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case path == "best" && r.Method == http.MethodGet:
		h.best(w, r)
	case path != "" && path != "best" && r.Method == http.MethodDelete:
		h.delete(w, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RoundsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultRoundLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	rounds, err := h.store.Rounds().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rounds")
		return
	}
	if rounds == nil {
		rounds = []*store.Round{}
	}
	writeJSON(w, http.StatusOK, listRoundsResponse{Rounds: rounds})
}

func (h *RoundsHandler) best(w http.ResponseWriter, r *http.Request) {
	typ, err := target.ParseType(r.URL.Query().Get("target"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown target type")
		return
	}

	rd, err := h.store.Rounds().Best(string(typ))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No rounds for target")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get best round")
		return
	}
	writeJSON(w, http.StatusOK, rd)
}

func (h *RoundsHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Rounds().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Round not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete round")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
