package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/handstrike/internal/game"
	"github.com/ayusman/handstrike/internal/store"
)

// SettingsHandler reads and writes persisted game settings.
type SettingsHandler struct {
	store    *store.Store
	base     game.Config
	onChange func(map[string]string)
}

// NewSettingsHandler creates a SettingsHandler. Updates are validated
// against base before they are stored; onChange, if set, receives the
// accepted values.
func NewSettingsHandler(s *store.Store, base game.Config, onChange func(map[string]string)) *SettingsHandler {
	return &SettingsHandler{store: s, base: base, onChange: onChange}
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// ServeHTTP handles GET and PUT /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) get(w http.ResponseWriter) {
	settings, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: settings})
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	for k := range req {
		if !game.IsSettingKey(k) {
			writeError(w, http.StatusBadRequest, "Unknown setting: "+k)
			return
		}
	}

	current, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	for k, v := range req {
		current[k] = v
	}
	cfg := h.base
	if err := cfg.ApplySettings(current); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().SetAll(req); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	if h.onChange != nil && len(req) > 0 {
		h.onChange(req)
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: current})
}
