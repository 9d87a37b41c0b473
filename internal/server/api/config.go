package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/ayusman/abhinaya/internal/config"
	"github.com/ayusman/abhinaya/internal/store"
)

type configResponse struct {
	Config config.Config `json:"config"`
	Stored bool          `json:"stored"`
	// RestartRequired is set after a change; the running engine keeps its
	// configuration until the next start.
	RestartRequired bool `json:"restart_required,omitempty"`
}

// ConfigHandler serves /api/config. GET returns the stored configuration or,
// when none is stored, the active one. PUT validates and stores a new
// configuration. DELETE drops the stored configuration.
type ConfigHandler struct {
	store  *store.Store
	active config.Config
}

// NewConfigHandler creates a ConfigHandler. active is the configuration the
// process started with.
func NewConfigHandler(s *store.Store, active config.Config) *ConfigHandler {
	return &ConfigHandler{store: s, active: active}
}

func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		h.put(w, r)
	case http.MethodDelete:
		h.delete(w)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ConfigHandler) get(w http.ResponseWriter) {
	cfg, err := LoadStoredConfig(h.store)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusOK, configResponse{Config: h.active})
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to load configuration")
	default:
		writeJSON(w, http.StatusOK, configResponse{Config: cfg, Stored: true})
	}
}

func (h *ConfigHandler) put(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	cfg, err := config.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().SetJSON(store.KeyConfig, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store configuration")
		return
	}

	writeJSON(w, http.StatusOK, configResponse{Config: cfg, Stored: true, RestartRequired: true})
}

func (h *ConfigHandler) delete(w http.ResponseWriter) {
	err := h.store.Settings().Delete(store.KeyConfig)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No stored configuration")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete configuration")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadStoredConfig returns the configuration saved over the API, or
// store.ErrNotFound when there is none.
func LoadStoredConfig(s *store.Store) (config.Config, error) {
	raw, err := s.Settings().Get(store.KeyConfig)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Parse([]byte(raw))
	if err != nil {
		return config.Config{}, err
	}
	cfg.Source = "<store>"
	return cfg, nil
}
